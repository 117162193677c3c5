// Package database tests cover connection state handling without a real
// PostgreSQL instance; integration tests with a live database belong to
// a separate suite.
package database

import (
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConnect_RequiresURL verifies an unconfigured URL fails fast.
func TestConnect_RequiresURL(t *testing.T) {
	err := Connect(Config{})
	assert.Error(t, err)
}

// TestIsConnected reflects the state of the global handle.
func TestIsConnected(t *testing.T) {
	oldDB := DB
	t.Cleanup(func() { DB = oldDB })

	DB = nil
	assert.False(t, IsConnected())

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing()
	DB = mock
	assert.True(t, IsConnected())
}

// TestClose_IsIdempotent verifies Close can be called repeatedly and
// with no pool at all.
func TestClose_IsIdempotent(t *testing.T) {
	oldDB := DB
	t.Cleanup(func() { DB = oldDB })

	DB = nil
	Close()
	Close()
	assert.Nil(t, DB)
}
