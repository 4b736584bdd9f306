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

type ProductsStore interface {
	Create(ctx context.Context, in ProductInput) (*Product, error)
	Update(ctx context.Context, id int64, in ProductInput) (*Product, error)
	Delete(ctx context.Context, id int64) (string, error)
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Ingredients(ctx context.Context, productID int64) ([]ProductIngredient, error)
	AdjustAmount(ctx context.Context, id int64, delta int64) (int64, error)
	SetAmount(ctx context.Context, id int64, amount int64) (int64, error)
	HasFlaggedIngredients(ctx context.Context, id int64) (bool, error)
	SearchByIngredientName(ctx context.Context, name string) ([]Product, error)
	SearchByIngredientBarcode(ctx context.Context, prefix string) ([]Product, error)
}

type productsStore struct {
	db       *sql.DB
	barcodes *barcode.Generator
}

func NewProductsStore(db *sql.DB, barcodes *barcode.Generator) ProductsStore {
	return &productsStore{db: db, barcodes: barcodes}
}

const productColumns = `p.id, p.barcode_id, p.product_name, p.batch_number, p.date_mixed, p.total_quantity, p.total_cost, p.amount, p.notes, p.date_added`

const productOrder = ` ORDER BY p.date_mixed DESC, p.date_added DESC, p.id DESC`

func (s *productsStore) Create(ctx context.Context, in ProductInput) (*Product, error) {
	in, err := validateProduct(in)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id int64
	for attempt := 0; ; attempt++ {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO products (barcode_id, product_name, batch_number, date_mixed, amount, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.barcodes.Product(), in.Name, s.barcodes.Batch(), in.DateMixed, in.Amount, in.Notes)
		if isUniqueViolation(err) && attempt < 5 {
			continue
		}
		if err != nil {
			return nil, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, err
		}
		break
	}
	if err := writeProductLines(ctx, tx, id, in.Lines); err != nil {
		return nil, err
	}
	amount := float64(in.Amount)
	productID := id
	if _, err := recordEvent(ctx, tx, InventoryEvent{
		Type:        EventProductCreated,
		ProductID:   &productID,
		Delta:       amount,
		AmountAfter: &amount,
	}); err != nil {
		return nil, fmt.Errorf("record %s event: %w", EventProductCreated, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update replaces the product's fields and ingredient lines and recomputes
// its totals from the current ingredient unit costs.
func (s *productsStore) Update(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	in, err := validateProduct(in)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `
		UPDATE products SET product_name=?, date_mixed=?, amount=?, notes=?, last_updated=CURRENT_TIMESTAMP
		WHERE id=?`, in.Name, in.DateMixed, in.Amount, in.Notes, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_ingredients WHERE product_id=?`, id); err != nil {
		return nil, err
	}
	if err := writeProductLines(ctx, tx, id, in.Lines); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func writeProductLines(ctx context.Context, tx *sql.Tx, productID int64, lines []ProductLine) error {
	var totalQty, totalCost float64
	for _, line := range lines {
		var unitCost sql.NullFloat64
		err := tx.QueryRowContext(ctx, `SELECT unit_cost FROM ingredients WHERE id=?`, line.IngredientID).Scan(&unitCost)
		if errors.Is(err, sql.ErrNoRows) {
			return validationErr("ingredient %d does not exist", line.IngredientID)
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_ingredients (product_id, ingredient_id, quantity_used, cost_per_unit)
			VALUES (?, ?, ?, ?)`, productID, line.IngredientID, line.Quantity, unitCost.Float64); err != nil {
			return err
		}
		totalQty += line.Quantity
		totalCost += line.Quantity * unitCost.Float64
	}
	_, err := tx.ExecContext(ctx, `UPDATE products SET total_quantity=?, total_cost=? WHERE id=?`, totalQty, totalCost, productID)
	return err
}

// Delete removes the product with its ingredient lines and group links and
// returns its name.
func (s *productsStore) Delete(ctx context.Context, id int64) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	var name string
	if err := tx.QueryRowContext(ctx, `SELECT product_name FROM products WHERE id=?`, id).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	for _, q := range []string{
		`DELETE FROM product_ingredients WHERE product_id=?`,
		`DELETE FROM group_products WHERE product_id=?`,
		`DELETE FROM product_group_parameter_values WHERE product_id=?`,
		`DELETE FROM products WHERE id=?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return "", err
		}
	}
	return name, tx.Commit()
}

func (s *productsStore) Get(ctx context.Context, id int64) (*Product, error) {
	rows, err := s.query(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id=?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *productsStore) List(ctx context.Context) ([]Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products p`+productOrder)
}

func (s *productsStore) Ingredients(ctx context.Context, productID int64) ([]ProductIngredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.barcode_id, i.name, i.unit_cost, i.purchase_date, i.expiration_date, i.supplier, i.is_flagged, i.date_added, i.last_updated,
		       pi.quantity_used, pi.cost_per_unit
		FROM ingredients i
		JOIN product_ingredients pi ON i.id = pi.ingredient_id
		WHERE pi.product_id = ?
		ORDER BY i.name, i.id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProductIngredient
	for rows.Next() {
		var line ProductIngredient
		var purchase, expiration dbDate
		var supplier sql.NullString
		var unitCost, costPerUnit sql.NullFloat64
		var flagged sql.NullInt64
		var added, updated dbTime
		if err := rows.Scan(&line.ID, &line.BarcodeID, &line.Name, &unitCost, &purchase, &expiration, &supplier, &flagged, &added, &updated,
			&line.QuantityUsed, &costPerUnit); err != nil {
			return nil, err
		}
		line.UnitCost = unitCost.Float64
		line.PurchaseDate = string(purchase)
		line.ExpirationDate = string(expiration)
		line.Supplier = supplier.String
		line.Flagged = flagged.Int64 == 1
		line.DateAdded = time.Time(added)
		line.LastUpdated = time.Time(updated)
		line.CostPerUnit = costPerUnit.Float64
		line.LineCost = line.QuantityUsed * line.CostPerUnit
		out = append(out, line)
	}
	return out, rows.Err()
}

// AdjustAmount adds delta to the stock amount, clamping at zero, and returns
// the new amount.
func (s *productsStore) AdjustAmount(ctx context.Context, id int64, delta int64) (int64, error) {
	return s.changeAmount(ctx, id, EventAmountAdjusted, func(current int64) int64 { return current + delta })
}

// SetAmount overwrites the stock amount, clamping at zero.
func (s *productsStore) SetAmount(ctx context.Context, id int64, amount int64) (int64, error) {
	return s.changeAmount(ctx, id, EventAmountSet, func(int64) int64 { return amount })
}

func (s *productsStore) changeAmount(ctx context.Context, id int64, eventType string, next func(current int64) int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	var current sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT amount FROM products WHERE id=?`, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	amount := next(current.Int64)
	if amount < 0 {
		amount = 0
	}
	if _, err := tx.ExecContext(ctx, `UPDATE products SET amount=?, last_updated=CURRENT_TIMESTAMP WHERE id=?`, amount, id); err != nil {
		return 0, err
	}
	after := float64(amount)
	productID := id
	if _, err := recordEvent(ctx, tx, InventoryEvent{
		Type:        eventType,
		ProductID:   &productID,
		Delta:       float64(amount - current.Int64),
		AmountAfter: &after,
	}); err != nil {
		return 0, fmt.Errorf("record %s event: %w", eventType, err)
	}
	return amount, tx.Commit()
}

func (s *productsStore) HasFlaggedIngredients(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ingredients i
		JOIN product_ingredients pi ON i.id = pi.ingredient_id
		WHERE pi.product_id = ? AND i.is_flagged = 1`, id).Scan(&n)
	return n > 0, err
}

func (s *productsStore) SearchByIngredientName(ctx context.Context, name string) ([]Product, error) {
	return s.query(ctx, `
		SELECT DISTINCT `+productColumns+`
		FROM products p
		JOIN product_ingredients pi ON p.id = pi.product_id
		JOIN ingredients i ON pi.ingredient_id = i.id
		WHERE LOWER(i.name) LIKE LOWER(?) ESCAPE '\'`+productOrder, "%"+escapeLike(strings.TrimSpace(name))+"%")
}

func (s *productsStore) SearchByIngredientBarcode(ctx context.Context, prefix string) ([]Product, error) {
	return s.query(ctx, `
		SELECT DISTINCT `+productColumns+`
		FROM products p
		JOIN product_ingredients pi ON p.id = pi.product_id
		JOIN ingredients i ON pi.ingredient_id = i.id
		WHERE i.barcode_id LIKE ? ESCAPE '\'`+productOrder, escapeLike(strings.TrimSpace(prefix))+"%")
}

func (s *productsStore) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		var batch, notes sql.NullString
		var mixed dbDate
		var totalQty, totalCost sql.NullFloat64
		var amount sql.NullInt64
		var added dbTime
		if err := rows.Scan(&p.ID, &p.BarcodeID, &p.Name, &batch, &mixed, &totalQty, &totalCost, &amount, &notes, &added); err != nil {
			return nil, err
		}
		p.BatchNumber = batch.String
		p.DateMixed = string(mixed)
		p.TotalQuantity = totalQty.Float64
		p.TotalCost = totalCost.Float64
		p.Amount = amount.Int64
		p.Notes = notes.String
		p.DateAdded = time.Time(added)
		out = append(out, p)
	}
	return out, rows.Err()
}

func validateProduct(in ProductInput) (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Name == "" {
		return in, validationErr("product name is required")
	}
	if len(in.Lines) == 0 {
		return in, validationErr("select at least one ingredient for the product")
	}
	if in.Amount < 0 {
		return in, validationErr("amount must not be negative")
	}
	seen := make(map[int64]bool, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return in, validationErr("quantity for ingredient %d must be positive", line.IngredientID)
		}
		if seen[line.IngredientID] {
			return in, validationErr("ingredient %d listed twice", line.IngredientID)
		}
		seen[line.IngredientID] = true
	}
	var err error
	if in.DateMixed, err = normalizeDate("date_mixed", in.DateMixed); err != nil {
		return in, err
	}
	if in.DateMixed == "" {
		in.DateMixed = utils.FormatDate(utils.NowUTC())
	}
	return in, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
