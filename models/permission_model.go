package models

import "fmt"

// PermissionSchemaAccess is the permission kind guarding schema-level access.
const PermissionSchemaAccess = "schema_access"

// SchemaPermission is an access-control entry for one (database name, schema)
// pair, keyed by the derived view-menu name. Entries are created lazily when a
// schema is first discovered and renamed in place when the owning database
// record is renamed; they are never deleted by the update flow.
type SchemaPermission struct {
	ID           uint   `gorm:"primaryKey;column:id" json:"id"`
	Permission   string `gorm:"column:permission" json:"permission"`              // Permission kind, e.g. schema_access
	ViewMenuName string `gorm:"column:view_menu_name;unique" json:"view_menu_name"` // Derived [database].[schema] identifier
}

// TableName specifies the static table name for GORM.
// Required to override GORM's default pluralization behavior.
func (SchemaPermission) TableName() string {
	return "schema_permissions"
}

// ViewMenuName derives the access-control identifier for a
// (database name, schema name) pair. The derivation is pure and deterministic;
// dependent Dataset and Chart records denormalize this exact string.
func ViewMenuName(databaseName, schemaName string) string {
	return fmt.Sprintf("[%s].[%s]", databaseName, schemaName)
}
