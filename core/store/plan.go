package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"inventory-system/core/schema"
)

// TypeDrift is a column kept by name whose declared type differs from the
// live one. It is reported, never migrated.
type TypeDrift struct {
	Column   string `json:"column"`
	Live     string `json:"live"`
	Declared string `json:"declared"`
}

// TableDiff compares one TableSpec against the live table by column name.
type TableDiff struct {
	Table     string      `json:"table"`
	Missing   bool        `json:"missing,omitempty"`
	Add       []string    `json:"add,omitempty"`
	Drop      []string    `json:"drop,omitempty"`
	Common    []string    `json:"common,omitempty"`
	TypeDrift []TypeDrift `json:"type_drift,omitempty"`
}

func (d TableDiff) Matched() bool {
	return !d.Missing && len(d.Add) == 0 && len(d.Drop) == 0
}

func diffTable(spec schema.TableSpec, live LiveSchema) TableDiff {
	d := TableDiff{Table: spec.Name}
	for _, c := range spec.Columns {
		lc, ok := live.Column(c.Name)
		if !ok {
			d.Add = append(d.Add, c.Name)
			continue
		}
		d.Common = append(d.Common, c.Name)
		declared := schema.TypeName(c.Decl)
		if !strings.EqualFold(strings.TrimSpace(declared), strings.TrimSpace(lc.Type)) {
			d.TypeDrift = append(d.TypeDrift, TypeDrift{Column: c.Name, Live: lc.Type, Declared: declared})
		}
	}
	for _, lc := range live.Columns {
		if !spec.HasColumn(lc.Name) {
			d.Drop = append(d.Drop, lc.Name)
		}
	}
	return d
}

// SchemaPlan is what a synchronization would do, computed without writing.
type SchemaPlan struct {
	Legacy []string    `json:"legacy,omitempty"`
	Tables []TableDiff `json:"tables"`
}

func (p SchemaPlan) HasChanges() bool {
	if len(p.Legacy) > 0 {
		return true
	}
	for _, t := range p.Tables {
		if !t.Matched() {
			return true
		}
	}
	return false
}

// RewritesExisting reports whether applying the plan would drop or rebuild a
// table that already exists.
func (p SchemaPlan) RewritesExisting() bool {
	if len(p.Legacy) > 0 {
		return true
	}
	for _, t := range p.Tables {
		if !t.Missing && !t.Matched() {
			return true
		}
	}
	return false
}

// ExistingTables lists the live tables the plan touches or keeps.
func (p SchemaPlan) ExistingTables() []string {
	out := append([]string{}, p.Legacy...)
	for _, t := range p.Tables {
		if !t.Missing {
			out = append(out, t.Table)
		}
	}
	return out
}

// Describe returns a human-readable summary of the plan.
func (p SchemaPlan) Describe() string {
	var lines []string
	for _, name := range p.Legacy {
		lines = append(lines, fmt.Sprintf("drop legacy table %s", name))
	}
	for _, t := range p.Tables {
		switch {
		case t.Missing:
			lines = append(lines, fmt.Sprintf("create table %s", t.Table))
		case !t.Matched():
			parts := []string{fmt.Sprintf("rebuild table %s", t.Table)}
			if len(t.Add) > 0 {
				parts = append(parts, "add "+strings.Join(t.Add, ", "))
			}
			if len(t.Drop) > 0 {
				parts = append(parts, "drop "+strings.Join(t.Drop, ", "))
			}
			lines = append(lines, strings.Join(parts, "; "))
		}
		for _, drift := range t.TypeDrift {
			lines = append(lines, fmt.Sprintf("table %s column %s: live type %q differs from declared %q (not migrated)", t.Table, drift.Column, drift.Live, drift.Declared))
		}
	}
	if len(lines) == 0 {
		return "schema matches"
	}
	return strings.Join(lines, "\n")
}

// Plan diffs the live database against d without changing anything.
func Plan(ctx context.Context, db *sql.DB, d schema.Descriptor) (SchemaPlan, error) {
	if err := d.Validate(); err != nil {
		return SchemaPlan{}, err
	}
	var plan SchemaPlan
	for _, name := range d.Legacy {
		exists, err := tableExists(ctx, db, name)
		if err != nil {
			return SchemaPlan{}, fmt.Errorf("inspect table %s: %w", name, err)
		}
		if exists {
			plan.Legacy = append(plan.Legacy, name)
		}
	}
	for _, spec := range d.Tables {
		exists, err := tableExists(ctx, db, spec.Name)
		if err != nil {
			return SchemaPlan{}, fmt.Errorf("inspect table %s: %w", spec.Name, err)
		}
		if !exists {
			plan.Tables = append(plan.Tables, TableDiff{Table: spec.Name, Missing: true, Add: spec.ColumnNames()})
			continue
		}
		live, err := introspectTable(ctx, db, spec.Name)
		if err != nil {
			return SchemaPlan{}, fmt.Errorf("introspect table %s: %w", spec.Name, err)
		}
		plan.Tables = append(plan.Tables, diffTable(spec, live))
	}
	return plan, nil
}
