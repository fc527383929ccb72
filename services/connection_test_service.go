package services

import (
	"context"
	"errors"
	"fmt"

	"datasourceapi/config"
	"datasourceapi/pkg/dberr"
	"datasourceapi/pkg/logger"
	"datasourceapi/repository"
	"datasourceapi/services/discovery"

	"gorm.io/gorm"
)

// ConnectionTestService probes a registered database connection without
// mutating any registry state.
type ConnectionTestService interface {
	// TestConnection runs schema discovery against the stored record and
	// returns the schema names it exposes.
	TestConnection(ctx context.Context, id uint) ([]string, error)
}

type connectionTestService struct {
	databaseRepo repository.DatabaseRepository
	tunnelRepo   repository.SSHTunnelRepository
	discoverer   discovery.SchemaDiscoverer
}

// NewConnectionTestService creates a new connection test service instance.
func NewConnectionTestService() ConnectionTestService {
	return &connectionTestService{
		databaseRepo: repository.NewDatabaseRepository(),
		tunnelRepo:   repository.NewSSHTunnelRepository(),
		discoverer:   discovery.NewSchemaDiscoverer(),
	}
}

// NewConnectionTestServiceWithDeps creates a service instance with injected dependencies.
// Used for testing to provide mock implementations of collaborators.
func NewConnectionTestServiceWithDeps(
	databaseRepo repository.DatabaseRepository,
	tunnelRepo repository.SSHTunnelRepository,
	discoverer discovery.SchemaDiscoverer,
) ConnectionTestService {
	return &connectionTestService{
		databaseRepo: databaseRepo,
		tunnelRepo:   tunnelRepo,
		discoverer:   discoverer,
	}
}

func (s *connectionTestService) TestConnection(ctx context.Context, id uint) ([]string, error) {
	record, err := s.databaseRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dberr.ErrDatabaseNotFound
		}
		return nil, fmt.Errorf("failed to load database id=%d: %w", id, err)
	}

	liveTunnel, err := s.tunnelRepo.GetByDatabaseID(nil, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tunnel for database id=%d: %w", id, err)
	}

	if config.Cfg.DiscoveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Cfg.DiscoveryTimeout)
		defer cancel()
	}

	schemas, err := s.discoverer.ListSchemas(ctx, record, liveTunnel)
	if err != nil {
		logger.Warnf("Connection test failed for database %s: %v", record.DatabaseName, err)
		return nil, fmt.Errorf("%w: %v", dberr.ErrDatabaseConnectionFailed, err)
	}

	logger.Infof("Connection test succeeded for database %s (%d schemas)", record.DatabaseName, len(schemas))
	return schemas, nil
}
