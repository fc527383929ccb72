// Package permission keeps schema access-control entries and the records that
// denormalize them in line with a database record's logical name.
package permission

import (
	"fmt"

	"datasourceapi/models"
	"datasourceapi/pkg/logger"
	"datasourceapi/repository"

	"gorm.io/gorm"
)

// Propagator renames schema access-control entries when a database record's
// name changes and cascades the new identifier to every dependent dataset and
// table-backed chart. All writes run on the caller's transaction.
type Propagator interface {
	// Propagate reconciles permissions for every discovered schema. With an
	// unchanged name it only creates entries missing for newly seen schemas;
	// with a rename it rewrites each existing entry's identifier in place and
	// cascades to dependents, so no stale reference survives a commit.
	Propagate(tx *gorm.DB, oldName, newName string, schemas []string) error
}

type propagator struct {
	permissionRepo repository.PermissionRepository
	datasetRepo    repository.DatasetRepository
	chartRepo      repository.ChartRepository
}

// NewPropagator creates a new permission propagator instance.
func NewPropagator() Propagator {
	return &propagator{
		permissionRepo: repository.NewPermissionRepository(),
		datasetRepo:    repository.NewDatasetRepository(),
		chartRepo:      repository.NewChartRepository(),
	}
}

// NewPropagatorWithDeps creates a propagator instance with injected dependencies.
// Used for testing to provide mock implementations of repositories.
func NewPropagatorWithDeps(
	permissionRepo repository.PermissionRepository,
	datasetRepo repository.DatasetRepository,
	chartRepo repository.ChartRepository,
) Propagator {
	return &propagator{
		permissionRepo: permissionRepo,
		datasetRepo:    datasetRepo,
		chartRepo:      chartRepo,
	}
}

func (p *propagator) Propagate(tx *gorm.DB, oldName, newName string, schemas []string) error {
	renamed := oldName != newName

	for _, schema := range schemas {
		oldViewMenu := models.ViewMenuName(oldName, schema)
		newViewMenu := models.ViewMenuName(newName, schema)

		entry, err := p.permissionRepo.FindByViewMenu(tx, models.PermissionSchemaAccess, oldViewMenu)
		if err != nil {
			return fmt.Errorf("failed to look up schema permission %s: %w", oldViewMenu, err)
		}

		if entry != nil && renamed {
			// Rename in place so dataset/chart references stay valid and no
			// duplicate entry appears for a schema that already had one.
			if err := p.permissionRepo.RenameViewMenu(tx, entry.ID, newViewMenu); err != nil {
				return fmt.Errorf("failed to rename schema permission %s: %w", oldViewMenu, err)
			}
			if err := p.cascade(tx, oldViewMenu, newViewMenu); err != nil {
				return err
			}
			logger.Infof("Renamed schema permission %s -> %s", oldViewMenu, newViewMenu)
			continue
		}

		if entry == nil {
			if err := p.ensurePermission(tx, newViewMenu); err != nil {
				return err
			}
		}
	}
	return nil
}

// cascade rewrites schema_perm on every dataset carrying the old identifier
// and on each such dataset's table-backed charts.
func (p *propagator) cascade(tx *gorm.DB, oldViewMenu, newViewMenu string) error {
	datasets, err := p.datasetRepo.GetBySchemaPerm(tx, oldViewMenu)
	if err != nil {
		return fmt.Errorf("failed to find datasets for %s: %w", oldViewMenu, err)
	}

	for _, dataset := range datasets {
		if err := p.datasetRepo.UpdateSchemaPerm(tx, dataset.ID, newViewMenu); err != nil {
			return fmt.Errorf("failed to update dataset id=%d schema perm: %w", dataset.ID, err)
		}

		charts, err := p.chartRepo.GetByDatasetAndType(tx, dataset.ID, models.DatasourceTypeTable)
		if err != nil {
			return fmt.Errorf("failed to find charts for dataset id=%d: %w", dataset.ID, err)
		}
		for _, chart := range charts {
			if err := p.chartRepo.UpdateSchemaPerm(tx, chart.ID, newViewMenu); err != nil {
				return fmt.Errorf("failed to update chart id=%d schema perm: %w", chart.ID, err)
			}
		}
	}

	logger.Debugf("Cascaded schema perm %s -> %s across %d datasets", oldViewMenu, newViewMenu, len(datasets))
	return nil
}

// ensurePermission lazily creates the entry for a newly discovered schema.
func (p *propagator) ensurePermission(tx *gorm.DB, viewMenu string) error {
	existing, err := p.permissionRepo.FindByViewMenu(tx, models.PermissionSchemaAccess, viewMenu)
	if err != nil {
		return fmt.Errorf("failed to look up schema permission %s: %w", viewMenu, err)
	}
	if existing != nil {
		return nil
	}
	entry := &models.SchemaPermission{
		Permission:   models.PermissionSchemaAccess,
		ViewMenuName: viewMenu,
	}
	if err := p.permissionRepo.Create(tx, entry); err != nil {
		return fmt.Errorf("failed to create schema permission %s: %w", viewMenu, err)
	}
	logger.Infof("Created schema permission %s", viewMenu)
	return nil
}
