package config_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/dairydock/catalog-service/config"
)

func TestLoadEnvDefaults(t *testing.T) {
	c := qt.New(t)

	cfg := config.LoadEnv()

	c.Assert(cfg.Server.HTTPPort, qt.Equals, ":8080")
	c.Assert(cfg.Mongo.Database, qt.Equals, "dairy_catalog")
	c.Assert(cfg.Mongo.MaxPoolSize, qt.Equals, 50)
	c.Assert(cfg.Redis.Addr, qt.Equals, "localhost:6379")
	c.Assert(cfg.Kafka.Brokers, qt.DeepEquals, []string{"localhost:9092"})
	c.Assert(cfg.Storage.Backend, qt.Equals, "local")
}

func TestLoadEnvOverrides(t *testing.T) {
	c := qt.New(t)

	t.Setenv("HTTP_PORT", ":9999")
	t.Setenv("MONGODB_MAX_POOL_SIZE", "10")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("STORAGE_S3_USE_SSL", "true")

	cfg := config.LoadEnv()

	c.Assert(cfg.Server.HTTPPort, qt.Equals, ":9999")
	c.Assert(cfg.Mongo.MaxPoolSize, qt.Equals, 10)
	c.Assert(cfg.Kafka.Brokers, qt.DeepEquals, []string{"a:9092", "b:9092"})
	c.Assert(cfg.Storage.Backend, qt.Equals, "s3")
	c.Assert(cfg.Storage.UseSSL, qt.IsTrue)
}

func TestLoadEnvIgnoresMalformedNumbers(t *testing.T) {
	c := qt.New(t)

	t.Setenv("MONGODB_MAX_POOL_SIZE", "lots")
	t.Setenv("STORAGE_S3_USE_SSL", "maybe")

	cfg := config.LoadEnv()

	c.Assert(cfg.Mongo.MaxPoolSize, qt.Equals, 50)
	c.Assert(cfg.Storage.UseSSL, qt.IsFalse)
}
