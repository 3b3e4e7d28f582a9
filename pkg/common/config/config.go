package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Datasets
	USDatasetPath       string
	EUDatasetPath       string
	DatasetFetchTimeout time.Duration
	DatasetFetchTries   int
	LoadOnStart         bool
	TerminologyPath     string

	// Layouts
	LayoutStore        string
	LayoutDefaultsPath string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Preferences
	PreferencesStore string
	PreferencesTTL   time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaGroupID     string
	KafkaEventsTopic string
	KafkaFilterTopic string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8090"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),

		USDatasetPath:       getEnv("US_DATASET_PATH", "data/clinical-trials-gov-dataset.csv"),
		EUDatasetPath:       getEnv("EU_DATASET_PATH", "data/eudra-ct-dataset.csv"),
		DatasetFetchTimeout: getDuration("DATASET_FETCH_TIMEOUT", 30*time.Second),
		DatasetFetchTries:   getIntEnv("DATASET_FETCH_ATTEMPTS", 3),
		LoadOnStart:         getBoolEnv("DATASET_LOAD_ON_START", true),
		TerminologyPath:     getEnv("TERMINOLOGY_CATALOG_PATH", ""),

		LayoutStore:        getEnv("LAYOUT_STORE", "memory"),
		LayoutDefaultsPath: getEnv("LAYOUT_DEFAULTS_PATH", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "trialscope"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "trialscope"),
		PostgresDB:       getEnv("POSTGRES_DB", "trialscope"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		PreferencesStore: getEnv("PREFERENCES_STORE", "memory"),
		PreferencesTTL:   getDuration("PREFERENCES_TTL", 30*24*time.Hour),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaEnabled:     getBoolEnv("KAFKA_ENABLED", false),
		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "trialscope-dashboard"),
		KafkaEventsTopic: getEnv("KAFKA_EVENTS_TOPIC", "trialscope.dataset.events"),
		KafkaFilterTopic: getEnv("KAFKA_FILTER_TOPIC", "trialscope.filter.commands"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getStringSliceEnv splits a comma separated list, dropping blank entries.
func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
