package repository

import (
	"errors"

	"datasourceapi/config"
	"datasourceapi/models"

	"gorm.io/gorm"
)

// PermissionRepository provides data access operations for schema access-control entries.
type PermissionRepository interface {
	// FindByViewMenu returns the permission entry of the given kind keyed by
	// viewMenuName, or nil when none exists.
	FindByViewMenu(tx *gorm.DB, permission, viewMenuName string) (*models.SchemaPermission, error)
	Create(tx *gorm.DB, permission *models.SchemaPermission) error
	// RenameViewMenu rewrites the identifier of an existing entry in place,
	// preserving its identity so foreign references stay valid.
	RenameViewMenu(tx *gorm.DB, id uint, newViewMenuName string) error
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates a new schema permission repository instance.
func NewPermissionRepository() PermissionRepository {
	return &permissionRepository{
		db: config.DB,
	}
}

func (r *permissionRepository) FindByViewMenu(tx *gorm.DB, permission, viewMenuName string) (*models.SchemaPermission, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var entry models.SchemaPermission
	if err := db.Where("permission = ? AND view_menu_name = ?", permission, viewMenuName).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *permissionRepository) Create(tx *gorm.DB, permission *models.SchemaPermission) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(permission).Error
}

func (r *permissionRepository) RenameViewMenu(tx *gorm.DB, id uint, newViewMenuName string) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Model(&models.SchemaPermission{}).
		Where("id = ?", id).
		Update("view_menu_name", newViewMenuName).Error
}
