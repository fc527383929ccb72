package repository

import (
	"datasourceapi/config"
	"datasourceapi/models"

	"gorm.io/gorm"
)

// ChartRepository provides the chart lookups and the single mutation the
// permission cascade needs.
type ChartRepository interface {
	// GetByDatasetAndType returns charts bound to the dataset with the given
	// datasource type.
	GetByDatasetAndType(tx *gorm.DB, datasetID uint, datasourceType string) ([]models.Chart, error)
	UpdateSchemaPerm(tx *gorm.DB, id uint, schemaPerm string) error
}

type chartRepository struct {
	db *gorm.DB
}

// NewChartRepository creates a new chart repository instance.
func NewChartRepository() ChartRepository {
	return &chartRepository{
		db: config.DB,
	}
}

func (r *chartRepository) GetByDatasetAndType(tx *gorm.DB, datasetID uint, datasourceType string) ([]models.Chart, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var charts []models.Chart
	if err := db.Where("dataset_id = ? AND datasource_type = ?", datasetID, datasourceType).
		Find(&charts).Error; err != nil {
		return nil, err
	}
	return charts, nil
}

func (r *chartRepository) UpdateSchemaPerm(tx *gorm.DB, id uint, schemaPerm string) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Chart{}).
		Where("id = ?", id).
		Update("schema_perm", schemaPerm).Error
}
