package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Elastic ElasticsearchConfig
	Storage StorageConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout int // seconds
	MaxPoolSize    int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type StorageConfig struct {
	// Backend selects the asset provider: "local" or "s3".
	Backend   string
	BasePath  string
	BaseURL   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "development"),
			HTTPPort: getEnv("HTTP_PORT", ":8080"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "dairy_catalog"),
			ConnectTimeout: getEnvInt("MONGODB_CONNECT_TIMEOUT", 10),
			MaxPoolSize:    getEnvInt("MONGODB_MAX_POOL_SIZE", 50),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
			GroupID: getEnv("KAFKA_GROUP_CATALOG", "catalog"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "local"),
			BasePath:  getEnv("STORAGE_BASE_PATH", "./uploads"),
			BaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
			Endpoint:  getEnv("STORAGE_S3_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("STORAGE_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_S3_SECRET_KEY", ""),
			Bucket:    getEnv("STORAGE_S3_BUCKET", "catalog-images"),
			Region:    getEnv("STORAGE_S3_REGION", ""),
			UseSSL:    getEnvBool("STORAGE_S3_USE_SSL", false),
			PublicURL: getEnv("STORAGE_S3_PUBLIC_URL", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
