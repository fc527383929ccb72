package models

// DatasourceTypeTable marks datasets (and the charts on top of them) that are
// backed by a physical table, the only kind the permission cascade touches.
const DatasourceTypeTable = "table"

// Dataset is a table-backed dataset defined on top of a Database record.
// SchemaPerm denormalizes the SchemaPermission view-menu name for the
// dataset's (database name, schema); the update flow only ever rewrites that
// one field, everything else belongs to the dataset lifecycle.
type Dataset struct {
	ID         uint   `gorm:"primaryKey;column:id" json:"id"`
	DatabaseID uint   `gorm:"column:database_id" json:"database_id"` // Owning Database record
	Table      string `gorm:"column:table_name" json:"table_name"`   // Physical table name
	SchemaName string `gorm:"column:schema_name" json:"schema_name"` // Schema the table lives in
	SchemaPerm string `gorm:"column:schema_perm" json:"schema_perm"` // Denormalized view-menu name
	Kind       string `gorm:"column:kind" json:"kind"`               // Datasource kind (table, ...)
}

// TableName specifies the static table name for GORM.
// Required to override GORM's default pluralization behavior.
func (Dataset) TableName() string {
	return "datasets"
}
