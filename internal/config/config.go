package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	MaxRequestBytes int64

	// Retrieval defaults, overridable per request.
	MinRangeKm   float64
	MaxRangeKm   float64
	MeshMethod   domain.MeshMethod
	CorrectCBand bool
	Workers      int

	// Product summary publishing.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	minRange, err := parseFloat("HAIL_MIN_RANGE_KM", "10")
	if err != nil {
		return nil, err
	}
	maxRange, err := parseFloat("HAIL_MAX_RANGE_KM", "150")
	if err != nil {
		return nil, err
	}
	if minRange < 0 || maxRange <= minRange {
		return nil, fmt.Errorf("invalid HAIL_MIN_RANGE_KM/HAIL_MAX_RANGE_KM: window [%g, %g] is empty", minRange, maxRange)
	}

	method := domain.MeshMethod(sharedcfg.EnvOrDefault("HAIL_MESH_METHOD", string(domain.MeshMH2019P75)))
	if !method.Valid() {
		return nil, fmt.Errorf("invalid HAIL_MESH_METHOD %q", method)
	}

	correct, err := strconv.ParseBool(sharedcfg.EnvOrDefault("HAIL_CORRECT_CBAND", "true"))
	if err != nil {
		return nil, errors.New("invalid HAIL_CORRECT_CBAND")
	}

	workers, err := strconv.Atoi(sharedcfg.EnvOrDefault("HAIL_WORKERS", "0"))
	if err != nil || workers < 0 {
		return nil, errors.New("invalid HAIL_WORKERS")
	}

	maxBytes, err := strconv.ParseInt(sharedcfg.EnvOrDefault("MAX_REQUEST_BYTES", "67108864"), 10, 64)
	if err != nil || maxBytes <= 0 {
		return nil, errors.New("invalid MAX_REQUEST_BYTES")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		MaxRequestBytes: maxBytes,

		MinRangeKm:   minRange,
		MaxRangeKm:   maxRange,
		MeshMethod:   method,
		CorrectCBand: correct,
		Workers:      workers,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "hail-products"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parseFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
