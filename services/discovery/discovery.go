// Package discovery enumerates the schemas a live data source currently
// exposes. It is the only network-facing step of the update flow: it reads
// the target over the wire (optionally through an SSH tunnel) and never
// mutates registry state.
package discovery

import (
	"context"
	"database/sql"
	"fmt"
	"net"

	"datasourceapi/models"
	"datasourceapi/pkg/logger"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
)

// SchemaDiscoverer lists the remote schema names a database record exposes.
type SchemaDiscoverer interface {
	// ListSchemas opens a (possibly tunneled) connection using the record's
	// current parameters and returns the schema names in target order.
	// Callers bound the call through ctx; any transport, authentication or
	// protocol failure is returned as-is.
	ListSchemas(ctx context.Context, database *models.Database, tunnel *models.SSHTunnel) ([]string, error)
}

type schemaDiscoverer struct{}

// NewSchemaDiscoverer creates a new schema discoverer instance.
func NewSchemaDiscoverer() SchemaDiscoverer {
	return &schemaDiscoverer{}
}

func (d *schemaDiscoverer) ListSchemas(ctx context.Context, database *models.Database, tunnel *models.SSHTunnel) ([]string, error) {
	network := "tcp"

	if tunnel != nil {
		client, err := dialTunnel(ctx, tunnel)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel dial failed: %w", err)
		}
		defer client.Close()

		var cleanup func()
		network, cleanup = registerTunnelNetwork(func(ctx context.Context, addr string) (net.Conn, error) {
			return client.DialContext(ctx, "tcp", addr)
		})
		defer cleanup()
	}

	dsn, err := database.DSN(network, "")
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open connection failed: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("schema listing failed: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("schema listing failed: %w", err)
		}
		schemas = append(schemas, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema listing failed: %w", err)
	}

	logger.Debugf("Discovered %d schemas for database id=%d", len(schemas), database.ID)
	return schemas, nil
}

// registerTunnelNetwork binds a one-off network name in the driver's dialer
// registry to the tunnel's dial function. The registry is process global, so
// the returned cleanup must run as soon as the probe finishes; every probe
// gets its own name to keep concurrent probes apart.
func registerTunnelNetwork(dial func(ctx context.Context, addr string) (net.Conn, error)) (network string, cleanup func()) {
	network = "ssh-" + uuid.NewString()
	mysql.RegisterDialContext(network, dial)
	return network, func() { mysql.DeregisterDialContext(network) }
}

// dialTunnel opens the SSH client session the probe routes through.
func dialTunnel(ctx context.Context, tunnel *models.SSHTunnel) (*ssh.Client, error) {
	auth, err := tunnelAuth(tunnel)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User: tunnel.Username,
		Auth: auth,
		// Bastion identity is managed out of band; the credential itself is
		// the trust anchor here.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := fmt.Sprintf("%s:%d", tunnel.ServerAddress, tunnel.ServerPort)
	dialer := net.Dialer{}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		netConn.Close()
		return nil, err
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func tunnelAuth(tunnel *models.SSHTunnel) ([]ssh.AuthMethod, error) {
	if tunnel.PrivateKey != "" {
		var signer ssh.Signer
		var err error
		if tunnel.PrivateKeyPassword != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(tunnel.PrivateKey), []byte(tunnel.PrivateKeyPassword))
		} else {
			signer, err = ssh.ParsePrivateKey([]byte(tunnel.PrivateKey))
		}
		if err != nil {
			return nil, fmt.Errorf("invalid tunnel private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	return []ssh.AuthMethod{ssh.Password(tunnel.Password)}, nil
}
