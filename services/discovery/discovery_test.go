package discovery

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"net"
	"testing"
	"time"

	"datasourceapi/models"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/server"
	"github.com/dolthub/go-mysql-server/sql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getFreePort(t *testing.T) int {
	t.Helper()
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	require.NoError(t, err)
	l, err := net.ListenTCP("tcp", addr)
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// startTestServer runs an in-memory MySQL server exposing the given schemas
// and returns its port.
func startTestServer(t *testing.T, schemas ...string) int {
	t.Helper()
	port := getFreePort(t)

	dbs := make([]sql.Database, 0, len(schemas))
	for _, name := range schemas {
		dbs = append(dbs, memory.NewDatabase(name))
	}
	provider := memory.NewDBProvider(dbs...)
	engine := sqle.NewDefault(provider)

	config := server.Config{
		Protocol: "tcp",
		Address:  fmt.Sprintf("localhost:%d", port),
	}
	s, err := server.NewServer(config, engine, sql.NewContext, memory.NewSessionBuilder(provider), nil)
	require.NoError(t, err)

	go func() {
		_ = s.Start()
	}()
	t.Cleanup(func() { _ = s.Close() })

	// Poll server readiness with timeout to prevent indefinite blocking
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return port
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("test MySQL server failed to start on port %d", port)
	return 0
}

func TestListSchemas_ReturnsRemoteSchemaNames(t *testing.T) {
	port := startTestServer(t, "app", "analytics")

	record := &models.Database{
		ID:            1,
		DatabaseName:  "sales",
		ConnectionURI: fmt.Sprintf("mysql://root@localhost:%d/", port),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schemas, err := NewSchemaDiscoverer().ListSchemas(ctx, record, nil)
	require.NoError(t, err)

	assert.Contains(t, schemas, "app")
	assert.Contains(t, schemas, "analytics")
}

func TestListSchemas_UnreachableTargetFails(t *testing.T) {
	// A freshly released port: nothing is listening there.
	port := getFreePort(t)
	record := &models.Database{
		ID:            1,
		DatabaseName:  "sales",
		ConnectionURI: fmt.Sprintf("mysql://root@localhost:%d/", port),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewSchemaDiscoverer().ListSchemas(ctx, record, nil)
	assert.Error(t, err)
}

func TestListSchemas_InvalidURIFails(t *testing.T) {
	record := &models.Database{ID: 1, ConnectionURI: "://not-a-uri"}

	_, err := NewSchemaDiscoverer().ListSchemas(context.Background(), record, nil)
	assert.Error(t, err)
}

func TestRegisterTunnelNetwork_CleanupRemovesRegistryEntry(t *testing.T) {
	var dials int
	network, cleanup := registerTunnelNetwork(func(ctx context.Context, addr string) (net.Conn, error) {
		dials++
		return nil, assert.AnError
	})

	conn, err := stdsql.Open("mysql", fmt.Sprintf("root@%s(target:3306)/", network))
	require.NoError(t, err)
	defer conn.Close()

	// While registered, connection attempts route through the tunnel dialer.
	require.Error(t, conn.PingContext(context.Background()))
	assert.Equal(t, 1, dials)

	// After cleanup the driver no longer knows the network name, so the
	// dialer is never reached again.
	cleanup()
	require.Error(t, conn.PingContext(context.Background()))
	assert.Equal(t, 1, dials)
}
