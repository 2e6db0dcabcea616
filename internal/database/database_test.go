package database

import (
	"path/filepath"
	"testing"

	"miplata/internal/config"
	"miplata/internal/logger"
)

func init() {
	logger.Init("test")
}

func TestNewConfigRejectsUnknownDriver(t *testing.T) {
	if _, err := NewConfig(&config.Config{DBDriver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestConfigURLs(t *testing.T) {
	c, err := NewConfig(&config.Config{
		DBDriver:   DriverPostgres,
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "n",
		DBSSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := c.DSN(), "host=db port=5432 user=u password=p dbname=n sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if got, want := c.MigrateURL(), "postgres://u:p@db:5432/n?sslmode=disable"; got != want {
		t.Errorf("MigrateURL() = %q, want %q", got, want)
	}
}

func TestSQLiteManagerMigrates(t *testing.T) {
	c, err := NewConfig(&config.Config{
		DBDriver:   DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := NewManager(c)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer m.Close()

	if err := m.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"users", "accounts", "transactions", "installments"} {
		if !m.DB().Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}
}
