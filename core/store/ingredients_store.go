package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-system/core/barcode"
	"inventory-system/core/utils"
)

type IngredientsStore interface {
	Create(ctx context.Context, in IngredientInput) (*Ingredient, error)
	Update(ctx context.Context, id int64, in IngredientInput) (*Ingredient, error)
	Delete(ctx context.Context, id int64) (string, error)
	Get(ctx context.Context, id int64) (*Ingredient, error)
	GetByBarcode(ctx context.Context, barcodeID string) (*Ingredient, error)
	List(ctx context.Context) ([]Ingredient, error)
	SetFlagged(ctx context.Context, id int64, flagged bool) error
	MarkExpired(ctx context.Context, id int64, note string) error
	ListFlagged(ctx context.Context) ([]Ingredient, error)
	ListExpired(ctx context.Context, before time.Time) ([]Ingredient, error)
}

type ingredientsStore struct {
	db       *sql.DB
	barcodes *barcode.Generator
	events   EventsStore
}

func NewIngredientsStore(db *sql.DB, barcodes *barcode.Generator, events EventsStore) IngredientsStore {
	return &ingredientsStore{db: db, barcodes: barcodes, events: events}
}

const ingredientColumns = `id, barcode_id, name, unit_cost, purchase_date, expiration_date, supplier, is_flagged, date_added, last_updated`

func (s *ingredientsStore) Create(ctx context.Context, in IngredientInput) (*Ingredient, error) {
	in, err := validateIngredient(in)
	if err != nil {
		return nil, err
	}
	if in.PurchaseDate == "" {
		in.PurchaseDate = utils.FormatDate(utils.NowUTC())
	}
	// A generated code can collide with an existing one; retry a few times.
	for attempt := 0; attempt < 5; attempt++ {
		code := s.barcodes.Ingredient()
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO ingredients (barcode_id, name, supplier, expiration_date, unit_cost, purchase_date, is_flagged)
			VALUES (?, ?, ?, ?, ?, ?, 0)`,
			code, in.Name, in.Supplier, nullableText(in.ExpirationDate), in.UnitCost, nullableText(in.PurchaseDate))
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		return s.Get(ctx, id)
	}
	return nil, fmt.Errorf("%w: could not allocate a unique ingredient barcode", ErrConflict)
}

func (s *ingredientsStore) Update(ctx context.Context, id int64, in IngredientInput) (*Ingredient, error) {
	in, err := validateIngredient(in)
	if err != nil {
		return nil, err
	}
	if in.PurchaseDate == "" {
		in.PurchaseDate = utils.FormatDate(utils.NowUTC())
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE ingredients
		SET name=?, supplier=?, expiration_date=?, unit_cost=?, purchase_date=?, last_updated=CURRENT_TIMESTAMP
		WHERE id=?`,
		in.Name, in.Supplier, nullableText(in.ExpirationDate), in.UnitCost, nullableText(in.PurchaseDate), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the ingredient and its product links and returns its name.
func (s *ingredientsStore) Delete(ctx context.Context, id int64) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	var name string
	if err := tx.QueryRowContext(ctx, `SELECT name FROM ingredients WHERE id=?`, id).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_ingredients WHERE ingredient_id=?`, id); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredients WHERE id=?`, id); err != nil {
		return "", err
	}
	return name, tx.Commit()
}

func (s *ingredientsStore) Get(ctx context.Context, id int64) (*Ingredient, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id=?`, id)
	return scanIngredientRow(row)
}

func (s *ingredientsStore) GetByBarcode(ctx context.Context, barcodeID string) (*Ingredient, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE barcode_id=?`, strings.TrimSpace(barcodeID))
	return scanIngredientRow(row)
}

func (s *ingredientsStore) List(ctx context.Context) ([]Ingredient, error) {
	return s.query(ctx, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY name, id`)
}

func (s *ingredientsStore) SetFlagged(ctx context.Context, id int64, flagged bool) error {
	eventType := ""
	if flagged {
		eventType = EventIngredientFlagged
	}
	return s.flag(ctx, id, flagged, eventType, "")
}

// MarkExpired flags an ingredient found past its expiration date.
func (s *ingredientsStore) MarkExpired(ctx context.Context, id int64, note string) error {
	return s.flag(ctx, id, true, EventIngredientExpired, note)
}

func (s *ingredientsStore) flag(ctx context.Context, id int64, flagged bool, eventType, note string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE ingredients SET is_flagged=?, last_updated=CURRENT_TIMESTAMP WHERE id=?`, boolToInt(flagged), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if eventType == "" || s.events == nil {
		return nil
	}
	ingredientID := id
	if _, err := s.events.Record(ctx, InventoryEvent{Type: eventType, IngredientID: &ingredientID, Note: note}); err != nil {
		return fmt.Errorf("record %s event: %w", eventType, err)
	}
	return nil
}

func (s *ingredientsStore) ListFlagged(ctx context.Context) ([]Ingredient, error) {
	return s.query(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE is_flagged=1 ORDER BY name, id`)
}

// ListExpired returns unflagged ingredients whose expiration date is before
// the given day.
func (s *ingredientsStore) ListExpired(ctx context.Context, before time.Time) ([]Ingredient, error) {
	return s.query(ctx, `
		SELECT `+ingredientColumns+` FROM ingredients
		WHERE expiration_date IS NOT NULL AND expiration_date <> '' AND substr(expiration_date, 1, 10) < ? AND COALESCE(is_flagged, 0)=0
		ORDER BY expiration_date, id`, utils.FormatDate(before))
}

func (s *ingredientsStore) query(ctx context.Context, q string, args ...any) ([]Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ing)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIngredient(row rowScanner) (*Ingredient, error) {
	var ing Ingredient
	var purchase, expiration dbDate
	var supplier sql.NullString
	var unitCost sql.NullFloat64
	var flagged sql.NullInt64
	var added, updated dbTime
	if err := row.Scan(&ing.ID, &ing.BarcodeID, &ing.Name, &unitCost, &purchase, &expiration, &supplier, &flagged, &added, &updated); err != nil {
		return nil, err
	}
	ing.UnitCost = unitCost.Float64
	ing.PurchaseDate = string(purchase)
	ing.ExpirationDate = string(expiration)
	ing.Supplier = supplier.String
	ing.Flagged = flagged.Int64 == 1
	ing.DateAdded = time.Time(added)
	ing.LastUpdated = time.Time(updated)
	return &ing, nil
}

func scanIngredientRow(row *sql.Row) (*Ingredient, error) {
	ing, err := scanIngredient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ing, err
}

func validateIngredient(in IngredientInput) (IngredientInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Supplier = strings.TrimSpace(in.Supplier)
	if in.Name == "" {
		return in, validationErr("ingredient name is required")
	}
	if in.UnitCost < 0 {
		return in, validationErr("unit cost must not be negative")
	}
	var err error
	if in.PurchaseDate, err = normalizeDate("purchase_date", in.PurchaseDate); err != nil {
		return in, err
	}
	if in.ExpirationDate, err = normalizeDate("expiration_date", in.ExpirationDate); err != nil {
		return in, err
	}
	return in, nil
}
