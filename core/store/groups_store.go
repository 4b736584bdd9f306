package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type GroupsStore interface {
	Create(ctx context.Context, name, description string) (*Group, error)
	Update(ctx context.Context, id int64, name, description string) (*Group, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Group, error)
	List(ctx context.Context) ([]Group, error)
	AddProduct(ctx context.Context, groupID, productID int64) error
	RemoveProduct(ctx context.Context, groupID, productID int64) error
	Products(ctx context.Context, groupID int64) ([]Product, error)
	AddParameter(ctx context.Context, groupID int64, name, unit string) (*GroupParameter, error)
	DeleteParameter(ctx context.Context, parameterID int64) error
	Parameters(ctx context.Context, groupID int64) ([]GroupParameter, error)
	SetParameterValue(ctx context.Context, productID, parameterID int64, value string) error
	ParameterValues(ctx context.Context, productID int64) ([]ParameterValue, error)
}

type groupsStore struct {
	db *sql.DB
}

func NewGroupsStore(db *sql.DB) GroupsStore {
	return &groupsStore{db: db}
}

func (s *groupsStore) Create(ctx context.Context, name, description string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("group name is required")
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO groups (name, description) VALUES (?, ?)`, name, strings.TrimSpace(description))
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
	return s.Get(ctx, id)
}

func (s *groupsStore) Update(ctx context.Context, id int64, name, description string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("group name is required")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE groups SET name=?, description=? WHERE id=?`, name, strings.TrimSpace(description), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the group, its product links, its parameters and the
// values recorded for them.
func (s *groupsStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM product_group_parameter_values
		WHERE parameter_id IN (SELECT id FROM group_parameters WHERE group_id=?)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM group_parameters WHERE group_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM group_products WHERE group_id=?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *groupsStore) Get(ctx context.Context, id int64) (*Group, error) {
	var g Group
	var desc sql.NullString
	var added dbTime
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description, date_added FROM groups WHERE id=?`, id).Scan(&g.ID, &g.Name, &desc, &added)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	g.Description = desc.String
	g.DateAdded = time.Time(added)
	return &g, nil
}

func (s *groupsStore) List(ctx context.Context) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, date_added FROM groups ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		var g Group
		var desc sql.NullString
		var added dbTime
		if err := rows.Scan(&g.ID, &g.Name, &desc, &added); err != nil {
			return nil, err
		}
		g.Description = desc.String
		g.DateAdded = time.Time(added)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *groupsStore) AddProduct(ctx context.Context, groupID, productID int64) error {
	if err := s.requireRow(ctx, "groups", groupID); err != nil {
		return err
	}
	if err := s.requireRow(ctx, "products", productID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO group_products (group_id, product_id) VALUES (?, ?)`, groupID, productID)
	return err
}

func (s *groupsStore) RemoveProduct(ctx context.Context, groupID, productID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM group_products WHERE group_id=? AND product_id=?`, groupID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *groupsStore) Products(ctx context.Context, groupID int64) ([]Product, error) {
	ps := &productsStore{db: s.db}
	return ps.query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN group_products gp ON gp.product_id = p.id
		WHERE gp.group_id = ?`+productOrder, groupID)
}

func (s *groupsStore) AddParameter(ctx context.Context, groupID int64, name, unit string) (*GroupParameter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("parameter name is required")
	}
	if err := s.requireRow(ctx, "groups", groupID); err != nil {
		return nil, err
	}
	p := GroupParameter{GroupID: groupID, Name: name, Unit: strings.TrimSpace(unit)}
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM group_parameters WHERE group_id=?`, groupID).Scan(&p.Position); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO group_parameters (group_id, name, unit, position) VALUES (?, ?, ?, ?)`, groupID, p.Name, p.Unit, p.Position)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *groupsStore) DeleteParameter(ctx context.Context, parameterID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_group_parameter_values WHERE parameter_id=?`, parameterID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM group_parameters WHERE id=?`, parameterID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *groupsStore) Parameters(ctx context.Context, groupID int64) ([]GroupParameter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, name, unit, position FROM group_parameters
		WHERE group_id=? ORDER BY position, id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GroupParameter
	for rows.Next() {
		var p GroupParameter
		var unit sql.NullString
		var pos sql.NullInt64
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &unit, &pos); err != nil {
			return nil, err
		}
		p.Unit = unit.String
		p.Position = int(pos.Int64)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetParameterValue stores a value for a product. The parameter must belong
// to a group the product is a member of.
func (s *groupsStore) SetParameterValue(ctx context.Context, productID, parameterID int64, value string) error {
	var member int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM group_parameters gp
		JOIN group_products g ON g.group_id = gp.group_id
		WHERE gp.id = ? AND g.product_id = ?`, parameterID, productID).Scan(&member)
	if err != nil {
		return err
	}
	if member == 0 {
		if err := s.requireRow(ctx, "group_parameters", parameterID); err != nil {
			return err
		}
		if err := s.requireRow(ctx, "products", productID); err != nil {
			return err
		}
		return validationErr("product %d is not in the group of parameter %d", productID, parameterID)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO product_group_parameter_values (product_id, parameter_id, value)
		VALUES (?, ?, ?)
		ON CONFLICT(product_id, parameter_id) DO UPDATE SET value=excluded.value, last_updated=CURRENT_TIMESTAMP`,
		productID, parameterID, strings.TrimSpace(value))
	return err
}

// ParameterValues lists every parameter of every group the product belongs
// to, with the stored value or an empty string.
func (s *groupsStore) ParameterValues(ctx context.Context, productID int64) ([]ParameterValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT gp.id, gp.group_id, gp.name, gp.unit, COALESCE(v.value, '')
		FROM group_parameters gp
		JOIN group_products g ON g.group_id = gp.group_id AND g.product_id = ?
		LEFT JOIN product_group_parameter_values v ON v.parameter_id = gp.id AND v.product_id = ?
		ORDER BY gp.group_id, gp.position, gp.id`, productID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ParameterValue
	for rows.Next() {
		var v ParameterValue
		var unit sql.NullString
		if err := rows.Scan(&v.ParameterID, &v.GroupID, &v.Name, &unit, &v.Value); err != nil {
			return nil, err
		}
		v.Unit = unit.String
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *groupsStore) requireRow(ctx context.Context, table string, id int64) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+table+` WHERE id=?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
