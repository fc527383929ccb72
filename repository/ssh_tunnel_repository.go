package repository

import (
	"errors"

	"datasourceapi/config"
	"datasourceapi/models"

	"gorm.io/gorm"
)

// SSHTunnelRepository provides data access operations for SSH tunnel credentials.
type SSHTunnelRepository interface {
	// GetByDatabaseID returns the tunnel owned by the database record, or nil
	// when none exists.
	GetByDatabaseID(tx *gorm.DB, databaseID uint) (*models.SSHTunnel, error)
	Create(tx *gorm.DB, tunnel *models.SSHTunnel) error
	Update(tx *gorm.DB, tunnel *models.SSHTunnel) error
	DeleteByID(tx *gorm.DB, id uint) error
}

type sshTunnelRepository struct {
	db *gorm.DB
}

// NewSSHTunnelRepository creates a new SSH tunnel repository instance.
func NewSSHTunnelRepository() SSHTunnelRepository {
	return &sshTunnelRepository{
		db: config.DB,
	}
}

func (r *sshTunnelRepository) GetByDatabaseID(tx *gorm.DB, databaseID uint) (*models.SSHTunnel, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var tunnel models.SSHTunnel
	if err := db.Where("database_id = ?", databaseID).First(&tunnel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tunnel, nil
}

func (r *sshTunnelRepository) Create(tx *gorm.DB, tunnel *models.SSHTunnel) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(tunnel).Error
}

func (r *sshTunnelRepository) Update(tx *gorm.DB, tunnel *models.SSHTunnel) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Model(&models.SSHTunnel{}).
		Where("id = ?", tunnel.ID).
		Updates(map[string]interface{}{
			"server_address":       tunnel.ServerAddress,
			"server_port":          tunnel.ServerPort,
			"username":             tunnel.Username,
			"password":             tunnel.Password,
			"private_key":          tunnel.PrivateKey,
			"private_key_password": tunnel.PrivateKeyPassword,
		}).Error
}

func (r *sshTunnelRepository) DeleteByID(tx *gorm.DB, id uint) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.SSHTunnel{}, id).Error
}
