package repository

import (
	"datasourceapi/config"

	"gorm.io/gorm"
)

// BaseRepository provides transaction management capabilities for the update flow.
// Every write of a single update runs inside one transaction handed out here;
// commit and rollback stay with the service that called Begin.
type BaseRepository interface {
	Begin() *gorm.DB
}

type baseRepository struct {
	db *gorm.DB
}

// NewBaseRepository creates a new base repository instance with database connection.
func NewBaseRepository() BaseRepository {
	return &baseRepository{
		db: config.DB,
	}
}

// NewBaseRepositoryWithDB creates a base repository over an explicit GORM
// handle. Used by tests to run against a mocked connection.
func NewBaseRepositoryWithDB(db *gorm.DB) BaseRepository {
	return &baseRepository{db: db}
}

func (r *baseRepository) Begin() *gorm.DB {
	return r.db.Begin()
}
