package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_DSN(t *testing.T) {
	db := Database{ConnectionURI: "mysql://app:pw@db.internal:3306/sales"}

	dsn, err := db.DSN("tcp", "")
	require.NoError(t, err)
	assert.Equal(t, "app:pw@tcp(db.internal:3306)/sales", dsn)
}

func TestDatabase_DSNWithCustomNetworkAndAddr(t *testing.T) {
	db := Database{ConnectionURI: "mysql://app@db.internal:3306/sales"}

	dsn, err := db.DSN("ssh-abc", "db.internal:3306")
	require.NoError(t, err)
	assert.Equal(t, "app@ssh-abc(db.internal:3306)/sales", dsn)
}

func TestDatabase_HostPort(t *testing.T) {
	db := Database{ConnectionURI: "mysql://app@db.internal:3306/sales"}

	host, port, err := db.HostPort()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", host)
	assert.Equal(t, "3306", port)
}

func TestDatabase_HostPortWithoutExplicitPort(t *testing.T) {
	db := Database{ConnectionURI: "mysql://app@db.internal/sales"}

	_, port, err := db.HostPort()
	require.NoError(t, err)
	assert.Empty(t, port)
}

func TestDatabase_SetConnectionURIDerivesDriver(t *testing.T) {
	db := Database{}
	db.SetConnectionURI("mysql://app@db.internal:3306/sales")

	assert.Equal(t, "mysql", db.Driver)
	assert.Equal(t, "mysql://app@db.internal:3306/sales", db.ConnectionURI)
}

func TestViewMenuName(t *testing.T) {
	assert.Equal(t, "[sales].[public]", ViewMenuName("sales", "public"))
}
