// Package config defines the configuration of the catalog service and its CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
)

var (
	_ configloader.Validator = (*Config)(nil)
	_ configloader.Validator = (*CtlConfig)(nil)
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Store      config.StoreConfig      `koanf:"store"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Mongo      config.MongoConfig      `koanf:"mongo"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	NATS       config.NATSConfig       `koanf:"nats"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Store.String())
	if c.Store.UsesDatabase() {
		b.WriteString(c.Database.String())
	}
	if c.Store.UsesMongo() {
		b.WriteString(c.Mongo.String())
	}
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.NATS.String())
	return b.String()
}

// Validate checks if the configuration values are valid.
// The database and mongo sections are only checked when their store driver is selected.
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.GRPC,
		&c.Store,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.Telemetry,
		&c.NATS,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if c.Store.UsesDatabase() {
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("store driver %s: %w", c.Store.Driver, err)
		}
	}
	if c.Store.UsesMongo() {
		if err := c.Mongo.Validate(); err != nil {
			return fmt.Errorf("store driver %s: %w", c.Store.Driver, err)
		}
	}
	return nil
}

// CtlConfig configures the catalogctl command line client.
type CtlConfig struct {
	GRPC       config.GrpcClientConfig `koanf:"grpc"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Subscriber config.SubscriberConfig `koanf:"subscriber"`
}

func (c *CtlConfig) String() string {
	var b strings.Builder
	b.WriteString(c.GRPC.String())
	b.WriteString(c.NATS.String())
	if c.NATS.Enabled {
		b.WriteString(c.Subscriber.String())
	}
	return b.String()
}

func (c *CtlConfig) Validate() error {
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	// the subscriber is only used by watch, which needs NATS
	if c.NATS.Enabled {
		return c.Subscriber.Validate()
	}
	return nil
}
