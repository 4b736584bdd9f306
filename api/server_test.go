package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory-system/config"
	"inventory-system/core/barcode"
	"inventory-system/core/schema"
	"inventory-system/core/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := store.NewDB(config.DataLocation{Dir: t.TempDir(), DBFile: "api.db"}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	d := schema.Inventory()
	report, err := store.NewSynchronizer(db, d, nil).Synchronize(context.Background())
	if err != nil {
		t.Fatalf("synchronize: %v", err)
	}
	gen := barcode.NewGenerator()
	events := store.NewEventsStore(db)
	s := NewServer(ServerDeps{
		Config:      &config.AppConfig{AppVersion: "test", ListenAddr: "127.0.0.1:0"},
		DB:          db,
		Descriptor:  d,
		Report:      report,
		Ingredients: store.NewIngredientsStore(db, gen, events),
		Products:    store.NewProductsStore(db, gen),
		Groups:      store.NewGroupsStore(db),
		Events:      events,
	})
	return s.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHealthAndSchemaReport(t *testing.T) {
	h := newTestServer(t)
	health := doJSON(t, h, http.MethodGet, "/api/health", nil)
	if health.Code != http.StatusOK {
		t.Fatalf("health: %d", health.Code)
	}
	if got := decode[map[string]string](t, health); got["status"] != "ok" || got["version"] != "test" {
		t.Fatalf("unexpected health body %v", got)
	}
	rr := doJSON(t, h, http.MethodGet, "/api/schema", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("schema: %d %s", rr.Code, rr.Body.String())
	}
	report := decode[store.SyncReport](t, rr)
	if len(report.Tables) != len(schema.Inventory().Tables) {
		t.Fatalf("unexpected report %+v", report)
	}
	rr = doJSON(t, h, http.MethodGet, "/api/schema/plan", nil)
	plan := decode[map[string]any](t, rr)
	if plan["changes"] != false || plan["summary"] != "schema matches" {
		t.Fatalf("unexpected plan %v", plan)
	}
	rr = doJSON(t, h, http.MethodGet, "/api/schema/backups", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("backups: %d %s", rr.Code, rr.Body.String())
	}
	listed := decode[map[string][]any](t, rr)
	if len(listed["items"]) != 0 {
		t.Fatalf("expected no backups, got %v", listed)
	}
}

func TestInventoryFlowOverHTTP(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, http.MethodPost, "/api/ingredients", map[string]any{"name": "Beeswax", "unit_cost": 0.5, "supplier": "Hive"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create ingredient: %d %s", rr.Code, rr.Body.String())
	}
	ing := decode[store.Ingredient](t, rr)

	if rr := doJSON(t, h, http.MethodGet, "/api/ingredients/barcode/"+ing.BarcodeID, nil); rr.Code != http.StatusOK {
		t.Fatalf("lookup by barcode: %d", rr.Code)
	}
	if rr := doJSON(t, h, http.MethodPost, "/api/ingredients", map[string]any{"name": ""}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/products", map[string]any{
		"product_name": "Balm",
		"amount":       5,
		"ingredients":  []map[string]any{{"ingredient_id": ing.ID, "quantity": 4}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create product: %d %s", rr.Code, rr.Body.String())
	}
	p := decode[store.Product](t, rr)
	if p.TotalCost != 2 {
		t.Fatalf("unexpected total cost %v", p.TotalCost)
	}

	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/amount", p.ID), map[string]any{"delta": -8})
	if rr.Code != http.StatusOK || decode[map[string]int64](t, rr)["amount"] != 0 {
		t.Fatalf("adjust amount: %d %s", rr.Code, rr.Body.String())
	}
	if rr := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/amount", p.ID), map[string]any{}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without delta or amount, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/groups", map[string]any{"name": "Balms"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create group: %d %s", rr.Code, rr.Body.String())
	}
	g := decode[store.Group](t, rr)
	if rr := doJSON(t, h, http.MethodPost, "/api/groups", map[string]any{"name": "Balms"}); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate group, got %d", rr.Code)
	}
	if rr := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/groups/%d/products/%d", g.ID, p.ID), nil); rr.Code != http.StatusOK {
		t.Fatalf("add product to group: %d %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/groups/%d/parameters", g.ID), map[string]any{"name": "Viscosity", "unit": "cP"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add parameter: %d %s", rr.Code, rr.Body.String())
	}
	param := decode[store.GroupParameter](t, rr)
	if rr := doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/products/%d/parameters/%d", p.ID, param.ID), map[string]any{"value": "900"}); rr.Code != http.StatusOK {
		t.Fatalf("set parameter value: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d", p.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get product: %d", rr.Code)
	}
	detail := decode[struct {
		Product         store.Product             `json:"product"`
		Ingredients     []store.ProductIngredient `json:"ingredients"`
		HasFlagged      bool                      `json:"has_flagged"`
		ParameterValues []store.ParameterValue    `json:"parameter_values"`
	}](t, rr)
	if len(detail.Ingredients) != 1 || detail.HasFlagged || len(detail.ParameterValues) != 1 || detail.ParameterValues[0].Value != "900" {
		t.Fatalf("unexpected detail %+v", detail)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/products?ingredient=bees", nil)
	if items := decode[map[string][]store.Product](t, rr)["items"]; len(items) != 1 {
		t.Fatalf("search by ingredient: %d", len(items))
	}
	rr = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d/events", p.ID), nil)
	if items := decode[map[string][]store.InventoryEvent](t, rr)["items"]; len(items) != 2 {
		t.Fatalf("expected 2 events, got %d", len(items))
	}

	if rr := doJSON(t, h, http.MethodGet, "/api/products/999", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), nil); rr.Code != http.StatusOK {
		t.Fatalf("delete product: %d", rr.Code)
	}
}
