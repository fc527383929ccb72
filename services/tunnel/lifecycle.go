// Package tunnel owns the lifecycle of the SSH tunnel credential attached to
// a database connection record. All writes run on the caller's transaction;
// the caller decides when the surrounding update commits.
package tunnel

import (
	"fmt"

	"datasourceapi/models"
	"datasourceapi/pkg/dberr"
	"datasourceapi/pkg/logger"
	"datasourceapi/repository"
	"datasourceapi/services/dto"
	"datasourceapi/utils"

	"gorm.io/gorm"
)

// Action tags the outcome of a lifecycle evaluation.
type Action int

// Lifecycle outcomes, one per branch of the (existing, requested) table.
const (
	NoChange Action = iota
	Created
	Updated
	Deleted
)

// String renders the action for logs.
func (a Action) String() string {
	switch a {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "no change"
	}
}

// Change is the tagged result of applying a tunnel changeset: what happened,
// and the live credential the schema discovery probe must use afterwards
// (nil after a deletion or when none ever existed).
type Change struct {
	Action Action
	Tunnel *models.SSHTunnel
}

// LifecycleService applies the tunnel portion of a database update changeset.
type LifecycleService interface {
	// Apply evaluates (existing tunnel, requested payload) and performs the
	// matching create, update or delete on tx. Tunnel domain errors
	// (dberr.ErrSSHTunnel*) surface verbatim; any other failure is wrapped
	// into the matching create/update/delete-failed error.
	Apply(tx *gorm.DB, database *models.Database, existing *models.SSHTunnel, requested *dto.SSHTunnelPayload) (Change, error)
}

type lifecycleService struct {
	tunnelRepo repository.SSHTunnelRepository
}

// NewLifecycleService creates a new tunnel lifecycle service instance.
func NewLifecycleService() LifecycleService {
	return &lifecycleService{
		tunnelRepo: repository.NewSSHTunnelRepository(),
	}
}

// NewLifecycleServiceWithDeps creates a service instance with injected dependencies.
// Used for testing to provide mock implementations of repositories.
func NewLifecycleServiceWithDeps(tunnelRepo repository.SSHTunnelRepository) LifecycleService {
	return &lifecycleService{tunnelRepo: tunnelRepo}
}

func (s *lifecycleService) Apply(tx *gorm.DB, database *models.Database, existing *models.SSHTunnel, requested *dto.SSHTunnelPayload) (Change, error) {
	switch {
	case requested == nil && existing != nil:
		if err := s.tunnelRepo.DeleteByID(tx, existing.ID); err != nil {
			return Change{}, fmt.Errorf("%w: %v", dberr.ErrSSHTunnelDeleteFailed, err)
		}
		logger.Infof("Deleted SSH tunnel id=%d for database id=%d", existing.ID, database.ID)
		return Change{Action: Deleted, Tunnel: nil}, nil

	case requested != nil && existing == nil:
		if err := s.validate(database, requested); err != nil {
			return Change{}, err
		}
		created := payloadToModel(database.ID, requested)
		if err := s.tunnelRepo.Create(tx, created); err != nil {
			return Change{}, fmt.Errorf("%w: %v", dberr.ErrSSHTunnelCreateFailed, err)
		}
		logger.Infof("Created SSH tunnel id=%d for database id=%d", created.ID, database.ID)
		return Change{Action: Created, Tunnel: created}, nil

	case requested != nil && existing != nil:
		if err := s.validate(database, requested); err != nil {
			return Change{}, err
		}
		updated := payloadToModel(database.ID, requested)
		updated.ID = existing.ID
		if err := s.tunnelRepo.Update(tx, updated); err != nil {
			return Change{}, fmt.Errorf("%w: %v", dberr.ErrSSHTunnelUpdateFailed, err)
		}
		logger.Infof("Updated SSH tunnel id=%d for database id=%d", updated.ID, database.ID)
		return Change{Action: Updated, Tunnel: updated}, nil

	default:
		return Change{Action: NoChange, Tunnel: nil}, nil
	}
}

// validate checks the payload shape and that the database URI exposes an
// explicit port for the tunnel to bind to.
func (s *lifecycleService) validate(database *models.Database, payload *dto.SSHTunnelPayload) error {
	if err := utils.ValidateStruct(payload); err != nil {
		return fmt.Errorf("%w: %v", dberr.ErrSSHTunnelInvalid, err)
	}
	if !utils.IsValidHost(payload.ServerAddress) {
		return fmt.Errorf("%w: invalid tunnel server address %q", dberr.ErrSSHTunnelInvalid, payload.ServerAddress)
	}
	if payload.Password == "" && payload.PrivateKey == "" {
		return fmt.Errorf("%w: either password or private key is required", dberr.ErrSSHTunnelInvalid)
	}
	_, port, err := database.HostPort()
	if err != nil || port == "" {
		return dberr.ErrSSHTunnelPortConflict
	}
	return nil
}

func payloadToModel(databaseID uint, payload *dto.SSHTunnelPayload) *models.SSHTunnel {
	return &models.SSHTunnel{
		DatabaseID:         databaseID,
		ServerAddress:      payload.ServerAddress,
		ServerPort:         payload.ServerPort,
		Username:           payload.Username,
		Password:           payload.Password,
		PrivateKey:         payload.PrivateKey,
		PrivateKeyPassword: payload.PrivateKeyPassword,
	}
}
