package config

import (
	"fmt"
	"strings"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// StoreConfig selects the product store backend.
type StoreConfig struct {
	Driver  string `koanf:"driver"`
	Seed    string `koanf:"seed"`
	Migrate bool   `koanf:"migrate"`
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  store.driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  store.seed: %s\n", c.Seed))
	b.WriteString(fmt.Sprintf("  store.migrate: %t\n", c.Migrate))
	return b.String()
}

// Validate defaults an empty driver to the in-memory store.
func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case "":
		c.Driver = StoreDriverMemory
	case StoreDriverMemory, StoreDriverPostgres, StoreDriverMongo:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Driver)
	}
	if c.Migrate && c.Driver != StoreDriverPostgres {
		return fmt.Errorf("store.migrate requires the %s driver", StoreDriverPostgres)
	}
	return nil
}

// UsesDatabase reports whether the configured store needs a postgres connection.
func (c *StoreConfig) UsesDatabase() bool {
	return c.Driver == StoreDriverPostgres
}

// UsesMongo reports whether the configured store needs a MongoDB connection.
func (c *StoreConfig) UsesMongo() bool {
	return c.Driver == StoreDriverMongo
}
