package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-system/core/utils"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

type Ingredient struct {
	ID             int64     `json:"id"`
	BarcodeID      string    `json:"barcode_id"`
	Name           string    `json:"name"`
	UnitCost       float64   `json:"unit_cost"`
	PurchaseDate   string    `json:"purchase_date,omitempty"`
	ExpirationDate string    `json:"expiration_date,omitempty"`
	Supplier       string    `json:"supplier"`
	Flagged        bool      `json:"is_flagged"`
	DateAdded      time.Time `json:"date_added"`
	LastUpdated    time.Time `json:"last_updated"`
}

type IngredientInput struct {
	Name           string  `json:"name"`
	Supplier       string  `json:"supplier"`
	UnitCost       float64 `json:"unit_cost"`
	PurchaseDate   string  `json:"purchase_date"`
	ExpirationDate string  `json:"expiration_date"`
}

type Product struct {
	ID            int64     `json:"id"`
	BarcodeID     string    `json:"barcode_id"`
	Name          string    `json:"product_name"`
	BatchNumber   string    `json:"batch_number"`
	DateMixed     string    `json:"date_mixed"`
	TotalQuantity float64   `json:"total_quantity"`
	TotalCost     float64   `json:"total_cost"`
	Amount        int64     `json:"amount"`
	Notes         string    `json:"notes"`
	DateAdded     time.Time `json:"date_added"`
}

type ProductLine struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type ProductInput struct {
	Name      string        `json:"product_name"`
	DateMixed string        `json:"date_mixed"`
	Amount    int64         `json:"amount"`
	Notes     string        `json:"notes"`
	Lines     []ProductLine `json:"ingredients"`
}

// ProductIngredient is one ingredient line of a product with its cost.
type ProductIngredient struct {
	Ingredient
	QuantityUsed float64 `json:"quantity_used"`
	CostPerUnit  float64 `json:"cost_per_unit"`
	LineCost     float64 `json:"total_ingredient_cost"`
}

type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DateAdded   time.Time `json:"date_added"`
}

type GroupParameter struct {
	ID       int64  `json:"id"`
	GroupID  int64  `json:"group_id"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Position int    `json:"position"`
}

type ParameterValue struct {
	ParameterID int64  `json:"parameter_id"`
	GroupID     int64  `json:"group_id"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Value       string `json:"value"`
}

// Inventory event types.
const (
	EventProductCreated    = "product_created"
	EventAmountAdjusted    = "amount_adjusted"
	EventAmountSet         = "amount_set"
	EventIngredientExpired = "ingredient_expired"
	EventIngredientFlagged = "ingredient_flagged"
)

type InventoryEvent struct {
	ID           int64     `json:"id"`
	UID          string    `json:"event_uid"`
	Type         string    `json:"event_type"`
	ProductID    *int64    `json:"product_id,omitempty"`
	IngredientID *int64    `json:"ingredient_id,omitempty"`
	Delta        float64   `json:"delta"`
	AmountAfter  *float64  `json:"amount_after,omitempty"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

// dbDate reads DATE columns. The driver may hand them back as text or as
// time.Time depending on how they were written; both normalise to YYYY-MM-DD.
type dbDate string

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = dbDate(utils.FormatDate(v))
	case string:
		*d = dbDate(normalizeDateText(v))
	case []byte:
		*d = dbDate(normalizeDateText(string(v)))
	default:
		return fmt.Errorf("unsupported date value %T", src)
	}
	return nil
}

func normalizeDateText(v string) string {
	if len(v) >= len(utils.DateLayout) {
		if _, err := time.Parse(utils.DateLayout, v[:len(utils.DateLayout)]); err == nil {
			return v[:len(utils.DateLayout)]
		}
	}
	return v
}

// dbTime reads DATETIME columns filled by CURRENT_TIMESTAMP.
type dbTime time.Time

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	utils.DateLayout,
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = dbTime(time.Time{})
		return nil
	case time.Time:
		*t = dbTime(v.UTC())
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp value %T", src)
	}
}

func (t *dbTime) parse(v string) error {
	v = strings.TrimSpace(v)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			*t = dbTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", v)
}

// nullableText writes empty strings as NULL.
func nullableText(s string) driver.Value {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// normalizeDate validates an optional YYYY-MM-DD input.
func normalizeDate(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if _, _, err := utils.ParseDate(value); err != nil {
		return "", validationErr("%s must be YYYY-MM-DD, got %q", field, value)
	}
	return value, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
