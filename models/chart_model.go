package models

// Chart is a dashboard widget bound to a Dataset. SchemaPerm mirrors the
// parent dataset's value whenever the chart is table-backed
// (DatasourceType == DatasourceTypeTable); the update flow rewrites only that
// field during a permission rename cascade.
type Chart struct {
	ID             uint   `gorm:"primaryKey;column:id" json:"id"`
	DatasetID      uint   `gorm:"column:dataset_id" json:"dataset_id"`           // Parent Dataset
	DatasourceType string `gorm:"column:datasource_type" json:"datasource_type"` // table, query, ...
	SchemaPerm     string `gorm:"column:schema_perm" json:"schema_perm"`         // Mirrors parent dataset
}

// TableName specifies the static table name for GORM.
// Required to override GORM's default pluralization behavior.
func (Chart) TableName() string {
	return "charts"
}
