package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-system/core/barcode"
	"inventory-system/core/schema"
)

type testStores struct {
	ingredients IngredientsStore
	products    ProductsStore
	groups      GroupsStore
	events      EventsStore
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	db := openTestDB(t)
	synchronize(t, NewSynchronizer(db, schema.Inventory(), nil))
	gen := barcode.NewSeededGenerator(7, nil)
	events := NewEventsStore(db)
	return testStores{
		ingredients: NewIngredientsStore(db, gen, events),
		products:    NewProductsStore(db, gen),
		groups:      NewGroupsStore(db),
		events:      events,
	}
}

func createIngredient(t *testing.T, s IngredientsStore, name string, cost float64, expires string) *Ingredient {
	t.Helper()
	ing, err := s.Create(context.Background(), IngredientInput{Name: name, Supplier: "Acme", UnitCost: cost, ExpirationDate: expires})
	if err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
	return ing
}

func TestIngredientLifecycle(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	ing := createIngredient(t, s.ingredients, "  Beeswax ", 0.25, "2030-01-01")
	if ing.Name != "Beeswax" || !barcode.ValidUPC(ing.BarcodeID) {
		t.Fatalf("unexpected ingredient %+v", ing)
	}
	if ing.PurchaseDate == "" || ing.ExpirationDate != "2030-01-01" {
		t.Fatalf("unexpected dates %q %q", ing.PurchaseDate, ing.ExpirationDate)
	}

	byCode, err := s.ingredients.GetByBarcode(ctx, ing.BarcodeID)
	if err != nil || byCode.ID != ing.ID {
		t.Fatalf("lookup by barcode: %+v %v", byCode, err)
	}

	updated, err := s.ingredients.Update(ctx, ing.ID, IngredientInput{Name: "Yellow beeswax", UnitCost: 0.3, PurchaseDate: "2024-02-01"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BarcodeID != ing.BarcodeID || updated.Name != "Yellow beeswax" || updated.ExpirationDate != "" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if _, err := s.ingredients.Create(ctx, IngredientInput{Name: "Bad", ExpirationDate: "01/02/2024"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.ingredients.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	name, err := s.ingredients.Delete(ctx, ing.ID)
	if err != nil || name != "Yellow beeswax" {
		t.Fatalf("delete: %q %v", name, err)
	}
	if _, err := s.ingredients.Delete(ctx, ing.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestIngredientFlaggingAndExpiry(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	old := createIngredient(t, s.ingredients, "Old oil", 1, "2024-01-01")
	fresh := createIngredient(t, s.ingredients, "Fresh oil", 1, "2030-01-01")
	createIngredient(t, s.ingredients, "Salt", 1, "")

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expired, err := s.ingredients.ListExpired(ctx, now)
	if err != nil {
		t.Fatalf("list expired: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != old.ID {
		t.Fatalf("unexpected expired list %+v", expired)
	}

	if err := s.ingredients.MarkExpired(ctx, old.ID, "expired 2024-01-01"); err != nil {
		t.Fatalf("mark expired: %v", err)
	}
	if err := s.ingredients.SetFlagged(ctx, fresh.ID, true); err != nil {
		t.Fatalf("flag: %v", err)
	}
	flagged, err := s.ingredients.ListFlagged(ctx)
	if err != nil || len(flagged) != 2 {
		t.Fatalf("expected 2 flagged, got %d (%v)", len(flagged), err)
	}
	if expired, _ := s.ingredients.ListExpired(ctx, now); len(expired) != 0 {
		t.Fatalf("flagged ingredients should not be listed as expired again")
	}
	if err := s.ingredients.SetFlagged(ctx, fresh.ID, false); err != nil {
		t.Fatalf("unflag: %v", err)
	}
	if err := s.ingredients.SetFlagged(ctx, 999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	events, err := s.events.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	kinds := map[string]int{}
	for _, ev := range events {
		kinds[ev.Type]++
		if ev.UID == "" || ev.IngredientID == nil {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
	if kinds[EventIngredientExpired] != 1 || kinds[EventIngredientFlagged] != 1 {
		t.Fatalf("unexpected event kinds %v", kinds)
	}
}

func TestProductCreateComputesTotals(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	wax := createIngredient(t, s.ingredients, "Beeswax", 0.5, "")
	oil := createIngredient(t, s.ingredients, "Olive oil", 0.2, "")

	p, err := s.products.Create(ctx, ProductInput{
		Name:      "Lip balm",
		DateMixed: "2024-05-01",
		Amount:    12,
		Lines:     []ProductLine{{IngredientID: wax.ID, Quantity: 10}, {IngredientID: oil.ID, Quantity: 20}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.TotalQuantity != 30 || p.TotalCost != 9 || p.Amount != 12 || p.DateMixed != "2024-05-01" {
		t.Fatalf("unexpected product %+v", p)
	}
	if len(p.BarcodeID) != 15 || p.BarcodeID[:3] != "PRD" || len(p.BatchNumber) != 9 {
		t.Fatalf("unexpected identifiers %q %q", p.BarcodeID, p.BatchNumber)
	}

	lines, err := s.products.Ingredients(ctx, p.ID)
	if err != nil || len(lines) != 2 {
		t.Fatalf("ingredients: %d %v", len(lines), err)
	}
	if lines[0].Name != "Beeswax" || lines[0].LineCost != 5 || lines[1].LineCost != 4 {
		t.Fatalf("unexpected lines %+v", lines)
	}

	events, err := s.events.ListForProduct(ctx, p.ID, 0)
	if err != nil || len(events) != 1 || events[0].Type != EventProductCreated || *events[0].AmountAfter != 12 {
		t.Fatalf("unexpected creation events %+v %v", events, err)
	}

	if _, err := s.products.Create(ctx, ProductInput{Name: "Empty"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing lines, got %v", err)
	}
	if _, err := s.products.Create(ctx, ProductInput{Name: "Ghost", Lines: []ProductLine{{IngredientID: 999, Quantity: 1}}}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown ingredient, got %v", err)
	}
	all, _ := s.products.List(ctx)
	if len(all) != 1 {
		t.Fatalf("failed creates must not leave products behind, got %d", len(all))
	}
}

func TestProductUpdateAmountsAndSearch(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	wax := createIngredient(t, s.ingredients, "Beeswax", 1, "")
	oil := createIngredient(t, s.ingredients, "Olive oil", 2, "")
	p, err := s.products.Create(ctx, ProductInput{Name: "Salve", Amount: 3, Lines: []ProductLine{{IngredientID: wax.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err = s.products.Update(ctx, p.ID, ProductInput{Name: "Salve v2", DateMixed: "2024-06-01", Amount: 3, Lines: []ProductLine{{IngredientID: oil.ID, Quantity: 4}}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Name != "Salve v2" || p.TotalQuantity != 4 || p.TotalCost != 8 {
		t.Fatalf("unexpected update %+v", p)
	}

	amount, err := s.products.AdjustAmount(ctx, p.ID, -10)
	if err != nil || amount != 0 {
		t.Fatalf("adjust should clamp at zero: %d %v", amount, err)
	}
	amount, err = s.products.AdjustAmount(ctx, p.ID, 5)
	if err != nil || amount != 5 {
		t.Fatalf("adjust: %d %v", amount, err)
	}
	amount, err = s.products.SetAmount(ctx, p.ID, -1)
	if err != nil || amount != 0 {
		t.Fatalf("set should clamp at zero: %d %v", amount, err)
	}
	if _, err := s.products.AdjustAmount(ctx, 999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	events, _ := s.events.ListForProduct(ctx, p.ID, 0)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	byName, err := s.products.SearchByIngredientName(ctx, "OLIVE")
	if err != nil || len(byName) != 1 {
		t.Fatalf("search by name: %d %v", len(byName), err)
	}
	if none, _ := s.products.SearchByIngredientName(ctx, "wax"); len(none) != 0 {
		t.Fatalf("replaced lines should not match")
	}
	byCode, err := s.products.SearchByIngredientBarcode(ctx, oil.BarcodeID[:6])
	if err != nil || len(byCode) != 1 {
		t.Fatalf("search by barcode prefix: %d %v", len(byCode), err)
	}

	flagged, _ := s.products.HasFlaggedIngredients(ctx, p.ID)
	if flagged {
		t.Fatalf("no ingredient is flagged yet")
	}
	s.ingredients.SetFlagged(ctx, oil.ID, true)
	if flagged, _ = s.products.HasFlaggedIngredients(ctx, p.ID); !flagged {
		t.Fatalf("expected flagged ingredient to be reported")
	}

	if _, err := s.products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	kept, err := s.events.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	for _, ev := range kept {
		if ev.ProductID != nil {
			t.Fatalf("events should outlive their product with a null reference, got %+v", ev)
		}
	}
}

func TestGroupsAndParameters(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	wax := createIngredient(t, s.ingredients, "Beeswax", 1, "")
	p, err := s.products.Create(ctx, ProductInput{Name: "Balm", Lines: []ProductLine{{IngredientID: wax.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	other, err := s.products.Create(ctx, ProductInput{Name: "Soap", Lines: []ProductLine{{IngredientID: wax.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	g, err := s.groups.Create(ctx, "Balms", "lip and body")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := s.groups.Create(ctx, "Balms", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := s.groups.AddProduct(ctx, g.ID, p.ID); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if err := s.groups.AddProduct(ctx, g.ID, p.ID); err != nil {
		t.Fatalf("adding twice should be harmless: %v", err)
	}
	members, err := s.groups.Products(ctx, g.ID)
	if err != nil || len(members) != 1 || members[0].ID != p.ID {
		t.Fatalf("unexpected members %+v %v", members, err)
	}

	viscosity, err := s.groups.AddParameter(ctx, g.ID, "Viscosity", "cP")
	if err != nil {
		t.Fatalf("add parameter: %v", err)
	}
	ph, err := s.groups.AddParameter(ctx, g.ID, "pH", "")
	if err != nil || ph.Position != 1 {
		t.Fatalf("second parameter: %+v %v", ph, err)
	}
	if err := s.groups.SetParameterValue(ctx, p.ID, viscosity.ID, "1200"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if err := s.groups.SetParameterValue(ctx, p.ID, viscosity.ID, "1300"); err != nil {
		t.Fatalf("overwrite value: %v", err)
	}
	if err := s.groups.SetParameterValue(ctx, other.ID, viscosity.ID, "1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for non-member, got %v", err)
	}
	values, err := s.groups.ParameterValues(ctx, p.ID)
	if err != nil || len(values) != 2 {
		t.Fatalf("values: %+v %v", values, err)
	}
	if values[0].Name != "Viscosity" || values[0].Value != "1300" || values[1].Value != "" {
		t.Fatalf("unexpected values %+v", values)
	}

	if err := s.groups.DeleteParameter(ctx, ph.ID); err != nil {
		t.Fatalf("delete parameter: %v", err)
	}
	if params, _ := s.groups.Parameters(ctx, g.ID); len(params) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(params))
	}
	if err := s.groups.RemoveProduct(ctx, g.ID, p.ID); err != nil {
		t.Fatalf("remove product: %v", err)
	}
	if err := s.groups.Delete(ctx, g.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	if list, _ := s.groups.List(ctx); len(list) != 0 {
		t.Fatalf("expected no groups, got %d", len(list))
	}
}
