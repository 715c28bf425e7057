package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnviron(t *testing.T) {
	t.Setenv("WHATSAPP_COUNTRY_CODE", "61")
	t.Setenv("RESERVATION_STRICT_STATUS", "true")

	require.NoError(t, Load(""))
	assert.Equal(t, "61", Get().WhatsAppCountryCode)
	assert.True(t, Get().ReservationStrictStatus)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("POSTGRES_WRITE_HOST=db.internal\nPOSTGRES_WRITE_DBNAME=hub\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("POSTGRES_WRITE_HOST")
		os.Unsetenv("POSTGRES_WRITE_DBNAME")
	})

	require.NoError(t, Load(path))
	w := Get().PostgresWrite()
	assert.Equal(t, "db.internal", w.Host)
	assert.Equal(t, "hub", w.Database)
}

func TestLoad_MissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
