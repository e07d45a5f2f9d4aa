package database

import (
	"fmt"
	"strings"

	"github.com/01moynul/tenantdesk-golang/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table in creation order (parents first).
func Models() []any {
	return []any{
		&models.Shop{},
		&models.TenantUser{},
		&models.Customer{},
		&models.Address{},
		&models.Product{},
		&models.Variant{},
		&models.Order{},
		&models.LineItem{},
	}
}

type foreignKey struct {
	table      string
	name       string
	columns    []string
	refTable   string
	refColumns []string
}

// foreignKeys are composite where the parent has a composite key, so a child can only point
// at a parent of its own shop. line_item.variant_id is deliberately absent.
var foreignKeys = []foreignKey{
	{"tenant_users", "fk_tenant_users_shop", []string{"shop_id"}, "shop", []string{"id"}},
	{"customer", "fk_customer_shop", []string{"shop_id"}, "shop", []string{"id"}},
	{"address", "fk_address_shop", []string{"shop_id"}, "shop", []string{"id"}},
	{"address", "fk_address_customer", []string{"customer_id", "shop_id"}, "customer", []string{"id", "shop_id"}},
	{"product", "fk_product_shop", []string{"shop_id"}, "shop", []string{"id"}},
	{"variant", "fk_variant_shop", []string{"shop_id"}, "shop", []string{"id"}},
	{"variant", "fk_variant_product", []string{"product_id", "shop_id"}, "product", []string{"id", "shop_id"}},
	{"order", "fk_order_shop", []string{"shop_id"}, "shop", []string{"id"}},
	{"order", "fk_order_customer", []string{"customer_id", "shop_id"}, "customer", []string{"id", "shop_id"}},
	{"line_item", "fk_line_item_shop", []string{"shop_id"}, "shop", []string{"id"}},
	{"line_item", "fk_line_item_order", []string{"order_id", "shop_id"}, "order", []string{"id", "shop_id"}},
	{"line_item", "fk_line_item_product", []string{"product_id", "shop_id"}, "product", []string{"id", "shop_id"}},
}

// Migrate creates or updates every table. On MySQL and Postgres withForeignKeys adds the
// reference constraints afterwards. SQLite cannot alter constraints, so its tables are created
// with them declared; enforcement there is the connection's foreign_keys pragma.
func Migrate(db *gorm.DB, withForeignKeys bool) error {
	if db.Dialector.Name() == "sqlite" {
		for _, model := range Models() {
			if err := createSQLiteTable(db, model); err != nil {
				return err
			}
		}
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if !withForeignKeys || db.Dialector.Name() == "sqlite" {
		return nil
	}
	for _, fk := range foreignKeys {
		if db.Migrator().HasConstraint(fk.table, fk.name) {
			continue
		}
		if err := db.Exec(
			"ALTER TABLE ? ADD CONSTRAINT ? FOREIGN KEY ("+placeholders(len(fk.columns))+") REFERENCES ? ("+placeholders(len(fk.refColumns))+")",
			fkArgs(fk)...,
		).Error; err != nil {
			return fmt.Errorf("add foreign key %s: %w", fk.name, err)
		}
	}
	return nil
}

// createSQLiteTable builds the same CREATE TABLE gorm would, plus the model's foreign keys.
// Indexes are left to AutoMigrate. Existing tables are not touched.
func createSQLiteTable(db *gorm.DB, model any) error {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Errorf("parse %T: %w", model, err)
	}
	table := stmt.Schema.Table
	if db.Migrator().HasTable(table) {
		return nil
	}

	defs := make([]string, 0, len(stmt.Schema.DBNames)+len(foreignKeys)+1)
	args := []any{clause.Table{Name: table}}
	for _, name := range stmt.Schema.DBNames {
		defs = append(defs, "? ?")
		args = append(args, clause.Column{Name: name}, db.Migrator().FullDataTypeOf(stmt.Schema.FieldsByDBName[name]))
	}

	primary := make([]any, 0, len(stmt.Schema.PrimaryFields))
	for _, f := range stmt.Schema.PrimaryFields {
		primary = append(primary, clause.Column{Name: f.DBName})
	}
	defs = append(defs, "PRIMARY KEY ?")
	args = append(args, primary)

	for _, fk := range foreignKeys {
		if fk.table != table {
			continue
		}
		defs = append(defs, "CONSTRAINT ? FOREIGN KEY ? REFERENCES ??")
		args = append(args, clause.Column{Name: fk.name}, columnList(fk.columns), clause.Table{Name: fk.refTable}, columnList(fk.refColumns))
	}

	if err := db.Exec("CREATE TABLE ? ("+strings.Join(defs, ",")+")", args...).Error; err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func columnList(names []string) []any {
	cols := make([]any, 0, len(names))
	for _, n := range names {
		cols = append(cols, clause.Column{Name: n})
	}
	return cols
}

// Reset drops every table (children first) and migrates again.
func Reset(db *gorm.DB, withForeignKeys bool) error {
	all := Models()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return Migrate(db, withForeignKeys)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func fkArgs(fk foreignKey) []any {
	args := []any{clause.Table{Name: fk.table}, clause.Column{Name: fk.name}}
	for _, c := range fk.columns {
		args = append(args, clause.Column{Name: c})
	}
	args = append(args, clause.Table{Name: fk.refTable})
	for _, c := range fk.refColumns {
		args = append(args, clause.Column{Name: c})
	}
	return args
}
