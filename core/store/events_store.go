package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

type EventsStore interface {
	Record(ctx context.Context, ev InventoryEvent) (*InventoryEvent, error)
	ListForProduct(ctx context.Context, productID int64, limit int) ([]InventoryEvent, error)
	ListRecent(ctx context.Context, limit int) ([]InventoryEvent, error)
}

type eventsStore struct {
	db *sql.DB
}

func NewEventsStore(db *sql.DB) EventsStore {
	return &eventsStore{db: db}
}

const (
	eventColumns      = `id, event_uid, event_type, product_id, ingredient_id, delta, amount_after, note, created_at`
	defaultEventLimit = 100
)

func (s *eventsStore) Record(ctx context.Context, ev InventoryEvent) (*InventoryEvent, error) {
	return recordEvent(ctx, s.db, ev)
}

func (s *eventsStore) ListForProduct(ctx context.Context, productID int64, limit int) ([]InventoryEvent, error) {
	return queryEvents(ctx, s.db, `SELECT `+eventColumns+` FROM inventory_events WHERE product_id=? ORDER BY created_at DESC, id DESC LIMIT ?`, productID, eventLimit(limit))
}

func (s *eventsStore) ListRecent(ctx context.Context, limit int) ([]InventoryEvent, error) {
	return queryEvents(ctx, s.db, `SELECT `+eventColumns+` FROM inventory_events ORDER BY created_at DESC, id DESC LIMIT ?`, eventLimit(limit))
}

// recordEvent inserts ev through q so callers can keep it in their
// transaction. The UID is generated when empty.
func recordEvent(ctx context.Context, q Queryer, ev InventoryEvent) (*InventoryEvent, error) {
	ev.Type = strings.TrimSpace(ev.Type)
	if ev.Type == "" {
		return nil, validationErr("event type is required")
	}
	if ev.UID == "" {
		ev.UID = uuid.Must(uuid.NewV4()).String()
	}
	var amountAfter any
	if ev.AmountAfter != nil {
		amountAfter = *ev.AmountAfter
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO inventory_events (event_uid, event_type, product_id, ingredient_id, delta, amount_after, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.UID, ev.Type, nullableID(ev.ProductID), nullableID(ev.IngredientID), ev.Delta, amountAfter, ev.Note)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	ev.ID = id
	ev.CreatedAt = time.Now().UTC().Truncate(time.Second)
	return &ev, nil
}

func queryEvents(ctx context.Context, q Queryer, query string, args ...any) ([]InventoryEvent, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InventoryEvent
	for rows.Next() {
		var ev InventoryEvent
		var productID, ingredientID sql.NullInt64
		var amountAfter sql.NullFloat64
		var note sql.NullString
		var created dbTime
		if err := rows.Scan(&ev.ID, &ev.UID, &ev.Type, &productID, &ingredientID, &ev.Delta, &amountAfter, &note, &created); err != nil {
			return nil, err
		}
		if productID.Valid {
			v := productID.Int64
			ev.ProductID = &v
		}
		if ingredientID.Valid {
			v := ingredientID.Int64
			ev.IngredientID = &v
		}
		if amountAfter.Valid {
			v := amountAfter.Float64
			ev.AmountAfter = &v
		}
		ev.Note = note.String
		ev.CreatedAt = time.Time(created)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func eventLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return defaultEventLimit
	}
	return limit
}
