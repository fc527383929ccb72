package tunnel

import (
	"testing"

	"datasourceapi/models"
	"datasourceapi/pkg/dberr"
	"datasourceapi/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"
)

type fakeTunnelRepo struct {
	tunnels map[uint]*models.SSHTunnel // keyed by tunnel id
	nextID  uint
	fail    error
}

func newFakeTunnelRepo() *fakeTunnelRepo {
	return &fakeTunnelRepo{tunnels: map[uint]*models.SSHTunnel{}, nextID: 1}
}

func (r *fakeTunnelRepo) GetByDatabaseID(tx *gorm.DB, databaseID uint) (*models.SSHTunnel, error) {
	for _, tun := range r.tunnels {
		if tun.DatabaseID == databaseID {
			return tun, nil
		}
	}
	return nil, nil
}

func (r *fakeTunnelRepo) Create(tx *gorm.DB, tunnel *models.SSHTunnel) error {
	if r.fail != nil {
		return r.fail
	}
	tunnel.ID = r.nextID
	r.nextID++
	r.tunnels[tunnel.ID] = tunnel
	return nil
}

func (r *fakeTunnelRepo) Update(tx *gorm.DB, tunnel *models.SSHTunnel) error {
	if r.fail != nil {
		return r.fail
	}
	r.tunnels[tunnel.ID] = tunnel
	return nil
}

func (r *fakeTunnelRepo) DeleteByID(tx *gorm.DB, id uint) error {
	if r.fail != nil {
		return r.fail
	}
	delete(r.tunnels, id)
	return nil
}

func testDatabase() *models.Database {
	return &models.Database{ID: 7, DatabaseName: "sales", ConnectionURI: "mysql://app@db.internal:3306/sales"}
}

func testPayload() *dto.SSHTunnelPayload {
	return &dto.SSHTunnelPayload{
		ServerAddress: "bastion",
		ServerPort:    22,
		Username:      "svc",
		Password:      "pw",
	}
}

func TestApply_NoTunnelAndNoPayloadIsNoop(t *testing.T) {
	repo := newFakeTunnelRepo()
	svc := NewLifecycleServiceWithDeps(repo)

	change, err := svc.Apply(nil, testDatabase(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, NoChange, change.Action)
	assert.Nil(t, change.Tunnel)
}

func TestApply_CreatesTunnelWhenNoneExists(t *testing.T) {
	repo := newFakeTunnelRepo()
	svc := NewLifecycleServiceWithDeps(repo)

	change, err := svc.Apply(nil, testDatabase(), nil, testPayload())
	require.NoError(t, err)
	assert.Equal(t, Created, change.Action)
	require.NotNil(t, change.Tunnel)
	assert.Equal(t, uint(7), change.Tunnel.DatabaseID)
	assert.Len(t, repo.tunnels, 1)
}

func TestApply_UpdatesExistingTunnelInPlace(t *testing.T) {
	repo := newFakeTunnelRepo()
	existing := &models.SSHTunnel{ID: 3, DatabaseID: 7, ServerAddress: "old-bastion"}
	repo.tunnels[3] = existing
	svc := NewLifecycleServiceWithDeps(repo)

	change, err := svc.Apply(nil, testDatabase(), existing, testPayload())
	require.NoError(t, err)
	assert.Equal(t, Updated, change.Action)
	assert.Equal(t, uint(3), change.Tunnel.ID)
	assert.Equal(t, "bastion", repo.tunnels[3].ServerAddress)
}

func TestApply_DeletesTunnelOnNilPayload(t *testing.T) {
	repo := newFakeTunnelRepo()
	existing := &models.SSHTunnel{ID: 3, DatabaseID: 7}
	repo.tunnels[3] = existing
	svc := NewLifecycleServiceWithDeps(repo)

	change, err := svc.Apply(nil, testDatabase(), existing, nil)
	require.NoError(t, err)
	assert.Equal(t, Deleted, change.Action)
	assert.Nil(t, change.Tunnel)
	assert.Empty(t, repo.tunnels)
}

func TestApply_RejectsPayloadWithoutCredential(t *testing.T) {
	svc := NewLifecycleServiceWithDeps(newFakeTunnelRepo())
	payload := testPayload()
	payload.Password = ""

	_, err := svc.Apply(nil, testDatabase(), nil, payload)
	assert.ErrorIs(t, err, dberr.ErrSSHTunnelInvalid)
}

func TestApply_RejectsPayloadMissingRequiredFields(t *testing.T) {
	svc := NewLifecycleServiceWithDeps(newFakeTunnelRepo())
	payload := testPayload()
	payload.ServerAddress = ""

	_, err := svc.Apply(nil, testDatabase(), nil, payload)
	assert.ErrorIs(t, err, dberr.ErrSSHTunnelInvalid)
}

func TestApply_RejectsMalformedServerAddress(t *testing.T) {
	repo := newFakeTunnelRepo()
	svc := NewLifecycleServiceWithDeps(repo)
	payload := testPayload()
	payload.ServerAddress = "bad bastion host"

	_, err := svc.Apply(nil, testDatabase(), nil, payload)
	assert.ErrorIs(t, err, dberr.ErrSSHTunnelInvalid)
	assert.Empty(t, repo.tunnels)
}

func TestApply_RejectsDatabaseURIWithoutPort(t *testing.T) {
	svc := NewLifecycleServiceWithDeps(newFakeTunnelRepo())
	database := testDatabase()
	database.ConnectionURI = "mysql://app@db.internal/sales"

	_, err := svc.Apply(nil, database, nil, testPayload())
	assert.ErrorIs(t, err, dberr.ErrSSHTunnelPortConflict)
}

func TestApply_WrapsRepositoryFailuresPerBranch(t *testing.T) {
	repo := newFakeTunnelRepo()
	repo.fail = assert.AnError
	svc := NewLifecycleServiceWithDeps(repo)

	_, err := svc.Apply(nil, testDatabase(), nil, testPayload())
	assert.ErrorIs(t, err, dberr.ErrSSHTunnelCreateFailed)

	existing := &models.SSHTunnel{ID: 3, DatabaseID: 7}
	_, err = svc.Apply(nil, testDatabase(), existing, testPayload())
	assert.ErrorIs(t, err, dberr.ErrSSHTunnelUpdateFailed)

	_, err = svc.Apply(nil, testDatabase(), existing, nil)
	assert.ErrorIs(t, err, dberr.ErrSSHTunnelDeleteFailed)
}
