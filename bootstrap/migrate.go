package bootstrap

import (
	"fmt"

	"datasourceapi/config"
	"datasourceapi/models"
	"datasourceapi/pkg/logger"
)

// LoadData prepares the metadata store schema at startup. Schema permission
// rows are created lazily by the update flow, so nothing is seeded here.
func LoadData() error {
	if err := config.DB.AutoMigrate(
		&models.Database{},
		&models.SSHTunnel{},
		&models.SchemaPermission{},
		&models.Dataset{},
		&models.Chart{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	logger.Infof("Metadata store schema is up to date")
	return nil
}
