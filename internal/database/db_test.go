package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLConfigDSN(t *testing.T) {
	dsn := MySQLConfig("movie", "p@ss:word", "db.internal", "3306", "moviefan").FormatDSN()
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "parseTime=true")

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "movie", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.internal:3306", parsed.Addr)
	assert.Equal(t, "moviefan", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
}

func TestMySQLConfigWithoutPassword(t *testing.T) {
	dsn := MySQLConfig("root", "", "localhost", "3306", "moviefan").FormatDSN()
	assert.Contains(t, dsn, "root@tcp(localhost:3306)/moviefan?")
}

func TestMySQLConfigIPv6Host(t *testing.T) {
	cfg := MySQLConfig("root", "", "::1", "3307", "moviefan")
	assert.Equal(t, "[::1]:3307", cfg.Addr)

	parsed, err := mysql.ParseDSN(cfg.FormatDSN())
	require.NoError(t, err)
	assert.Equal(t, "[::1]:3307", parsed.Addr)
}
