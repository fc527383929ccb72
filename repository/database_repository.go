package repository

import (
	"datasourceapi/config"
	"datasourceapi/models"

	"gorm.io/gorm"
)

// DatabaseRepository provides data access operations for database connection records.
type DatabaseRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Database, error)
	// CountByNameExcludingID counts records carrying name, ignoring the record
	// with the given id. Backs the rename uniqueness check.
	CountByNameExcludingID(tx *gorm.DB, name string, id uint) (int64, error)
	// Update stages the record's current field values without committing tx.
	Update(tx *gorm.DB, database *models.Database) error
}

type databaseRepository struct {
	db *gorm.DB
}

// NewDatabaseRepository creates a new database connection repository instance.
func NewDatabaseRepository() DatabaseRepository {
	return &databaseRepository{
		db: config.DB,
	}
}

func (r *databaseRepository) GetByID(tx *gorm.DB, id uint) (*models.Database, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var database models.Database
	if err := db.Where("id = ?", id).First(&database).Error; err != nil {
		return nil, err
	}
	return &database, nil
}

func (r *databaseRepository) CountByNameExcludingID(tx *gorm.DB, name string, id uint) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var count int64
	if err := db.Model(&models.Database{}).
		Where("database_name = ? AND id <> ?", name, id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *databaseRepository) Update(tx *gorm.DB, database *models.Database) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Database{}).
		Where("id = ?", database.ID).
		Updates(map[string]interface{}{
			"database_name":   database.DatabaseName,
			"connection_uri":  database.ConnectionURI,
			"encrypted_extra": database.EncryptedExtra,
			"driver":          database.Driver,
		}).Error
}
