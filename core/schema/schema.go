// Package schema declares the expected shape of every table the application
// queries. It is pure data: the store package diffs it against the live
// database at startup.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSpec = errors.New("invalid schema spec")

// ColumnSpec is one column. Decl is an opaque SQL type/constraint string; the
// migrator compares columns by name only.
type ColumnSpec struct {
	Name string
	Decl string
}

type TableSpec struct {
	Name        string
	Columns     []ColumnSpec
	Constraints []string
}

type IndexSpec struct {
	Name    string
	Table   string
	Columns []string
}

// Descriptor is ordered: a table referenced by a foreign key must come before
// the tables referencing it.
type Descriptor struct {
	Tables  []TableSpec
	Indexes []IndexSpec
	Legacy  []string
}

func (t TableSpec) ColumnNames() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, c.Name)
	}
	return out
}

func (t TableSpec) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (t TableSpec) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: table name is empty", ErrInvalidSpec)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: table %s declares no columns", ErrInvalidSpec, t.Name)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: table %s has a column without a name", ErrInvalidSpec, t.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: table %s declares column %s twice", ErrInvalidSpec, t.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// CreateStatement renders CREATE TABLE for t under the given name, so the
// same TableSpec creates the real table or a rebuild sibling.
func (t TableSpec) CreateStatement(name string) string {
	defs := make([]string, 0, len(t.Columns)+len(t.Constraints))
	for _, c := range t.Columns {
		def := QuoteIdent(c.Name)
		if decl := strings.TrimSpace(c.Decl); decl != "" {
			def += " " + decl
		}
		defs = append(defs, def)
	}
	for _, con := range t.Constraints {
		if con = strings.TrimSpace(con); con != "" {
			defs = append(defs, con)
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", QuoteIdent(name), strings.Join(defs, ",\n\t"))
}

func (i IndexSpec) CreateStatement() string {
	cols := make([]string, 0, len(i.Columns))
	for _, c := range i.Columns {
		cols = append(cols, QuoteIdent(c))
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", QuoteIdent(i.Name), QuoteIdent(i.Table), strings.Join(cols, ", "))
}

func (d Descriptor) Table(name string) (TableSpec, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSpec{}, false
}

func (d Descriptor) Names() []string {
	out := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		out = append(out, t.Name)
	}
	return out
}

func (d Descriptor) Validate() error {
	seen := map[string]struct{}{}
	for _, t := range d.Tables {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: table %s declared twice", ErrInvalidSpec, t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	for _, name := range d.Legacy {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: legacy table %s is also declared", ErrInvalidSpec, name)
		}
	}
	for _, idx := range d.Indexes {
		t, ok := d.Table(idx.Table)
		if !ok {
			return fmt.Errorf("%w: index %s refers to undeclared table %s", ErrInvalidSpec, idx.Name, idx.Table)
		}
		if len(idx.Columns) == 0 {
			return fmt.Errorf("%w: index %s has no columns", ErrInvalidSpec, idx.Name)
		}
		for _, c := range idx.Columns {
			if !t.HasColumn(c) {
				return fmt.Errorf("%w: index %s refers to undeclared column %s.%s", ErrInvalidSpec, idx.Name, idx.Table, c)
			}
		}
	}
	return nil
}

// QuoteIdent quotes an SQL identifier with double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var constraintKeywords = map[string]struct{}{
	"PRIMARY": {}, "NOT": {}, "NULL": {}, "UNIQUE": {}, "DEFAULT": {}, "CHECK": {},
	"REFERENCES": {}, "COLLATE": {}, "CONSTRAINT": {}, "GENERATED": {}, "AS": {},
}

// TypeName extracts the type part of a column declaration, the part SQLite
// reports back through PRAGMA table_info.
func TypeName(decl string) string {
	fields := strings.Fields(decl)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := constraintKeywords[strings.ToUpper(f)]; ok {
			break
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}
