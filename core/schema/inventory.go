package schema

// Table names used by the inventory store.
const (
	TableIngredients         = "ingredients"
	TableProducts            = "products"
	TableProductIngredients  = "product_ingredients"
	TableGroups              = "groups"
	TableGroupProducts       = "group_products"
	TableGroupParameters     = "group_parameters"
	TableProductParamValues  = "product_group_parameter_values"
	TableInventoryEvents     = "inventory_events"
	legacyInventorySnapshots = "inventory"
)

// Inventory returns the compiled-in schema of the inventory database.
func Inventory() Descriptor {
	return Descriptor{
		Legacy: []string{legacyInventorySnapshots},
		Tables: []TableSpec{
			{
				Name: TableIngredients,
				Columns: []ColumnSpec{
					{Name: "id", Decl: "INTEGER PRIMARY KEY AUTOINCREMENT"},
					{Name: "barcode_id", Decl: "TEXT UNIQUE NOT NULL"},
					{Name: "name", Decl: "TEXT NOT NULL"},
					{Name: "unit_cost", Decl: "REAL DEFAULT 0.0"},
					{Name: "purchase_date", Decl: "DATE"},
					{Name: "expiration_date", Decl: "DATE"},
					{Name: "supplier", Decl: "TEXT"},
					{Name: "is_flagged", Decl: "INTEGER DEFAULT 0"},
					{Name: "date_added", Decl: "DATETIME DEFAULT CURRENT_TIMESTAMP"},
					{Name: "last_updated", Decl: "DATETIME DEFAULT CURRENT_TIMESTAMP"},
				},
			},
			{
				Name: TableProducts,
				Columns: []ColumnSpec{
					{Name: "id", Decl: "INTEGER PRIMARY KEY AUTOINCREMENT"},
					{Name: "barcode_id", Decl: "TEXT UNIQUE NOT NULL"},
					{Name: "product_name", Decl: "TEXT NOT NULL"},
					{Name: "batch_number", Decl: "TEXT"},
					{Name: "date_mixed", Decl: "DATE NOT NULL"},
					{Name: "total_quantity", Decl: "REAL DEFAULT 0.0"},
					{Name: "total_cost", Decl: "REAL DEFAULT 0.0"},
					{Name: "amount", Decl: "INTEGER DEFAULT 0"},
					{Name: "notes", Decl: "TEXT"},
					{Name: "date_added", Decl: "DATETIME DEFAULT CURRENT_TIMESTAMP"},
					{Name: "last_updated", Decl: "DATETIME DEFAULT CURRENT_TIMESTAMP"},
				},
			},
			{
				Name: TableProductIngredients,
				Columns: []ColumnSpec{
					{Name: "id", Decl: "INTEGER PRIMARY KEY AUTOINCREMENT"},
					{Name: "product_id", Decl: "INTEGER NOT NULL"},
					{Name: "ingredient_id", Decl: "INTEGER NOT NULL"},
					{Name: "quantity_used", Decl: "REAL NOT NULL"},
					{Name: "cost_per_unit", Decl: "REAL DEFAULT 0.0"},
				},
				Constraints: []string{
					"FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE",
					"FOREIGN KEY (ingredient_id) REFERENCES ingredients (id) ON DELETE CASCADE",
					"UNIQUE(product_id, ingredient_id)",
				},
			},
			{
				Name: TableGroups,
				Columns: []ColumnSpec{
					{Name: "id", Decl: "INTEGER PRIMARY KEY AUTOINCREMENT"},
					{Name: "name", Decl: "TEXT UNIQUE NOT NULL"},
					{Name: "description", Decl: "TEXT DEFAULT ''"},
					{Name: "date_added", Decl: "DATETIME DEFAULT CURRENT_TIMESTAMP"},
				},
			},
			{
				Name: TableGroupProducts,
				Columns: []ColumnSpec{
					{Name: "id", Decl: "INTEGER PRIMARY KEY AUTOINCREMENT"},
					{Name: "group_id", Decl: "INTEGER NOT NULL"},
					{Name: "product_id", Decl: "INTEGER NOT NULL"},
					{Name: "date_added", Decl: "DATETIME DEFAULT CURRENT_TIMESTAMP"},
				},
				Constraints: []string{
					"FOREIGN KEY (group_id) REFERENCES groups (id) ON DELETE CASCADE",
					"FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE",
					"UNIQUE(group_id, product_id)",
				},
			},
			{
				Name: TableGroupParameters,
				Columns: []ColumnSpec{
					{Name: "id", Decl: "INTEGER PRIMARY KEY AUTOINCREMENT"},
					{Name: "group_id", Decl: "INTEGER NOT NULL"},
					{Name: "name", Decl: "TEXT NOT NULL"},
					{Name: "unit", Decl: "TEXT DEFAULT ''"},
					{Name: "position", Decl: "INTEGER DEFAULT 0"},
				},
				Constraints: []string{
					"FOREIGN KEY (group_id) REFERENCES groups (id) ON DELETE CASCADE",
					"UNIQUE(group_id, name)",
				},
			},
			{
				Name: TableProductParamValues,
				Columns: []ColumnSpec{
					{Name: "id", Decl: "INTEGER PRIMARY KEY AUTOINCREMENT"},
					{Name: "product_id", Decl: "INTEGER NOT NULL"},
					{Name: "parameter_id", Decl: "INTEGER NOT NULL"},
					{Name: "value", Decl: "TEXT DEFAULT ''"},
					{Name: "last_updated", Decl: "DATETIME DEFAULT CURRENT_TIMESTAMP"},
				},
				Constraints: []string{
					"FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE",
					"FOREIGN KEY (parameter_id) REFERENCES group_parameters (id) ON DELETE CASCADE",
					"UNIQUE(product_id, parameter_id)",
				},
			},
			{
				Name: TableInventoryEvents,
				Columns: []ColumnSpec{
					{Name: "id", Decl: "INTEGER PRIMARY KEY AUTOINCREMENT"},
					{Name: "event_uid", Decl: "TEXT UNIQUE NOT NULL"},
					{Name: "event_type", Decl: "TEXT NOT NULL"},
					{Name: "product_id", Decl: "INTEGER"},
					{Name: "ingredient_id", Decl: "INTEGER"},
					{Name: "delta", Decl: "REAL DEFAULT 0.0"},
					{Name: "amount_after", Decl: "REAL"},
					{Name: "note", Decl: "TEXT DEFAULT ''"},
					{Name: "created_at", Decl: "DATETIME DEFAULT CURRENT_TIMESTAMP"},
				},
				Constraints: []string{
					"FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE SET NULL",
					"FOREIGN KEY (ingredient_id) REFERENCES ingredients (id) ON DELETE SET NULL",
				},
			},
		},
		Indexes: []IndexSpec{
			{Name: "idx_ingredients_barcode", Table: TableIngredients, Columns: []string{"barcode_id"}},
			{Name: "idx_ingredients_expiration", Table: TableIngredients, Columns: []string{"expiration_date"}},
			{Name: "idx_products_barcode", Table: TableProducts, Columns: []string{"barcode_id"}},
			{Name: "idx_products_date_mixed", Table: TableProducts, Columns: []string{"date_mixed"}},
			{Name: "idx_product_ingredients_product", Table: TableProductIngredients, Columns: []string{"product_id"}},
			{Name: "idx_product_ingredients_ingredient", Table: TableProductIngredients, Columns: []string{"ingredient_id"}},
			{Name: "idx_group_products_group", Table: TableGroupProducts, Columns: []string{"group_id"}},
			{Name: "idx_group_products_product", Table: TableGroupProducts, Columns: []string{"product_id"}},
			{Name: "idx_group_parameters_group", Table: TableGroupParameters, Columns: []string{"group_id"}},
			{Name: "idx_param_values_product", Table: TableProductParamValues, Columns: []string{"product_id"}},
			{Name: "idx_inventory_events_product", Table: TableInventoryEvents, Columns: []string{"product_id", "created_at"}},
			{Name: "idx_inventory_events_created", Table: TableInventoryEvents, Columns: []string{"created_at"}},
		},
	}
}
