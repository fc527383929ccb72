package services

import (
	"context"
	"errors"
	"fmt"

	"datasourceapi/config"
	"datasourceapi/models"
	"datasourceapi/pkg/dberr"
	"datasourceapi/pkg/logger"
	"datasourceapi/repository"
	"datasourceapi/services/discovery"
	"datasourceapi/services/dto"
	"datasourceapi/services/permission"
	"datasourceapi/services/secrets"
	"datasourceapi/services/tunnel"

	"gorm.io/gorm"
)

// DatabaseUpdateService orchestrates the update of a database connection
// record and everything that hangs off it: secret unmasking, the SSH tunnel
// credential, live schema discovery and the permission rename cascade. The
// whole call is one transaction; every failure path rolls back before the
// error surfaces, so no other transaction ever observes a partial update.
type DatabaseUpdateService interface {
	// Update applies the sparse changeset to the record with the given id and
	// returns the committed record. Errors come from the dberr taxonomy;
	// tunnel domain errors pass through verbatim.
	Update(ctx context.Context, id uint, payload dto.DatabaseUpdate) (*models.Database, error)
}

type databaseUpdateService struct {
	baseRepo       repository.BaseRepository
	databaseRepo   repository.DatabaseRepository
	tunnelRepo     repository.SSHTunnelRepository
	tunnelManager  tunnel.LifecycleService
	discoverer     discovery.SchemaDiscoverer
	propagator     permission.Propagator
	featureEnabled func(string) bool
}

// NewDatabaseUpdateService creates a new database update service instance.
func NewDatabaseUpdateService() DatabaseUpdateService {
	return &databaseUpdateService{
		baseRepo:       repository.NewBaseRepository(),
		databaseRepo:   repository.NewDatabaseRepository(),
		tunnelRepo:     repository.NewSSHTunnelRepository(),
		tunnelManager:  tunnel.NewLifecycleService(),
		discoverer:     discovery.NewSchemaDiscoverer(),
		propagator:     permission.NewPropagator(),
		featureEnabled: config.IsFeatureEnabled,
	}
}

// NewDatabaseUpdateServiceWithDeps creates a service instance with injected dependencies.
// Used for testing to provide mock implementations of collaborators.
func NewDatabaseUpdateServiceWithDeps(
	baseRepo repository.BaseRepository,
	databaseRepo repository.DatabaseRepository,
	tunnelRepo repository.SSHTunnelRepository,
	tunnelManager tunnel.LifecycleService,
	discoverer discovery.SchemaDiscoverer,
	propagator permission.Propagator,
	featureEnabled func(string) bool,
) DatabaseUpdateService {
	return &databaseUpdateService{
		baseRepo:       baseRepo,
		databaseRepo:   databaseRepo,
		tunnelRepo:     tunnelRepo,
		tunnelManager:  tunnelManager,
		discoverer:     discoverer,
		propagator:     propagator,
		featureEnabled: featureEnabled,
	}
}

func (s *databaseUpdateService) Update(ctx context.Context, id uint, payload dto.DatabaseUpdate) (*models.Database, error) {
	tx := s.baseRepo.Begin()

	record, err := s.databaseRepo.GetByID(tx, id)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dberr.ErrDatabaseNotFound
		}
		return nil, fmt.Errorf("failed to load database id=%d: %w", id, err)
	}

	// Validation runs before any mutation is staged: a rejected changeset
	// must leave zero side effects.
	if err := s.validate(tx, record, payload); err != nil {
		tx.Rollback()
		return nil, err
	}

	oldName := record.DatabaseName

	record.EncryptedExtra = secrets.UnmaskEncryptedExtra(record.EncryptedExtra, payload.MaskedEncryptedExtra)
	if payload.DatabaseName != nil {
		record.DatabaseName = *payload.DatabaseName
	}
	if payload.ConnectionURI != nil {
		record.ConnectionURI = *payload.ConnectionURI
	}
	record.SetConnectionURI(record.ConnectionURI)

	if err := s.databaseRepo.Update(tx, record); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %v", dberr.ErrDatabaseUpdateFailed, err)
	}

	liveTunnel, err := s.tunnelRepo.GetByDatabaseID(tx, record.ID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %v", dberr.ErrDatabaseUpdateFailed, err)
	}

	if payload.SSHTunnel.Set {
		if !s.featureEnabled("SSH_TUNNELING") {
			tx.Rollback()
			return nil, dberr.ErrSSHTunnelingDisabled
		}

		change, err := s.tunnelManager.Apply(tx, record, liveTunnel, payload.SSHTunnel.Value)
		if err != nil {
			tx.Rollback()
			if dberr.IsTunnelError(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", dberr.ErrDatabaseUpdateFailed, err)
		}
		logger.Infof("SSH tunnel %s for database id=%d", change.Action, record.ID)
		// Discovery must probe through the credential as it will be committed.
		liveTunnel = change.Tunnel
	}

	schemas, err := s.discoverSchemas(ctx, record, liveTunnel)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %v", dberr.ErrDatabaseConnectionFailed, err)
	}
	logger.Infof("Discovered %d schemas for database %s", len(schemas), record.DatabaseName)

	if err := s.propagator.Propagate(tx, oldName, record.DatabaseName, schemas); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %v", dberr.ErrDatabaseUpdateFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%w: %v", dberr.ErrDatabaseUpdateFailed, err)
	}

	logger.Infof("Updated database id=%d (%s -> %s)", record.ID, oldName, record.DatabaseName)
	return record, nil
}

// validate accumulates structured validation failures. Only name uniqueness
// exists today; the list shape leaves room for more checks.
func (s *databaseUpdateService) validate(tx *gorm.DB, record *models.Database, payload dto.DatabaseUpdate) error {
	var failures []string

	if payload.DatabaseName != nil {
		count, err := s.databaseRepo.CountByNameExcludingID(tx, *payload.DatabaseName, record.ID)
		if err != nil {
			return fmt.Errorf("failed to check database name uniqueness: %w", err)
		}
		if count > 0 {
			failures = append(failures, dberr.ValidationNameExists)
		}
	}

	if len(failures) > 0 {
		return dberr.NewInvalidError(failures...)
	}
	return nil
}

// discoverSchemas bounds the only blocking network call of the flow.
func (s *databaseUpdateService) discoverSchemas(ctx context.Context, record *models.Database, liveTunnel *models.SSHTunnel) ([]string, error) {
	if config.Cfg.DiscoveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Cfg.DiscoveryTimeout)
		defer cancel()
	}
	return s.discoverer.ListSchemas(ctx, record, liveTunnel)
}
