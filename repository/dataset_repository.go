package repository

import (
	"datasourceapi/config"
	"datasourceapi/models"

	"gorm.io/gorm"
)

// DatasetRepository provides the dataset lookups and the single mutation the
// permission cascade needs. Dataset lifecycle lives elsewhere.
type DatasetRepository interface {
	GetBySchemaPerm(tx *gorm.DB, schemaPerm string) ([]models.Dataset, error)
	UpdateSchemaPerm(tx *gorm.DB, id uint, schemaPerm string) error
}

type datasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository creates a new dataset repository instance.
func NewDatasetRepository() DatasetRepository {
	return &datasetRepository{
		db: config.DB,
	}
}

func (r *datasetRepository) GetBySchemaPerm(tx *gorm.DB, schemaPerm string) ([]models.Dataset, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var datasets []models.Dataset
	if err := db.Where("schema_perm = ?", schemaPerm).Find(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

func (r *datasetRepository) UpdateSchemaPerm(tx *gorm.DB, id uint, schemaPerm string) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Dataset{}).
		Where("id = ?", id).
		Update("schema_perm", schemaPerm).Error
}
