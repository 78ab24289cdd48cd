package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/config"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBUser:     "shop",
		DBPassword: "p@ss",
		DBHost:     "db",
		DBPort:     "3306",
		DBName:     "marketplace",
	}

	mc, err := mysql.ParseDSN(DSN(cfg))
	require.NoError(t, err)

	assert.Equal(t, "shop", mc.User)
	assert.Equal(t, "p@ss", mc.Passwd)
	assert.Equal(t, "db:3306", mc.Addr)
	assert.Equal(t, "marketplace", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.True(t, mc.ClientFoundRows, "no-op updates must count matched rows")
}
