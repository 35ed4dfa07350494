package config

import (
	"fmt"
	"strings"
	"time"
)

// MongoConfig is only required when the catalog runs on the mongo store.
type MongoConfig struct {
	URI          string        `koanf:"uri"`
	Database     string        `koanf:"database"`
	Timeout      time.Duration `koanf:"timeout"`
	ConnectRetry time.Duration `koanf:"connectRetry"`
}

// String returns a string representation of the MongoDB configuration with credentials masked.
func (c *MongoConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- MongoDB ---\n")
	b.WriteString(fmt.Sprintf("  mongo.uri: %s\n", MaskURL(c.URI)))
	b.WriteString(fmt.Sprintf("  mongo.database: %s\n", c.Database))
	b.WriteString(fmt.Sprintf("  mongo.timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  mongo.connectRetry: %s\n", c.ConnectRetry))
	return b.String()
}

func (c *MongoConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("mongo URI is not configured")
	}
	if !strings.HasPrefix(c.URI, "mongodb://") && !strings.HasPrefix(c.URI, "mongodb+srv://") {
		return fmt.Errorf("mongo URI must start with 'mongodb://': %s", MaskURL(c.URI))
	}
	if c.Database == "" {
		return fmt.Errorf("mongo database is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("mongo connect timeout is not configured")
	}
	if c.ConnectRetry < 0 {
		return fmt.Errorf("mongo connect retry must not be negative")
	}
	return nil
}
