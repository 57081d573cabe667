package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/plume-impact-service/internal/domain"
)

// Plume geometry strategies selectable via PLUME_GEOMETRY.
const (
	GeometryGaussian = domain.GeometryGaussian
	GeometryWedge    = domain.GeometryWedge
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Plume model configuration.
	PlumeLengthMeters    float64
	PlumeSamples         int
	PlumeWidthMultiplier float64
	PlumeGeometry        string

	// National Weather Service lookup.
	NWSEnabled       bool
	NWSBaseURL       string
	NWSUserAgent     string
	NWSTimeout       time.Duration
	WeatherCacheTTL  time.Duration
	WeatherCacheSize int

	// Overpass receptor lookup.
	OverpassEnabled            bool
	OverpassURL                string
	OverpassTimeout            time.Duration
	ReceptorCacheSize          int
	ReceptorSearchRadiusMeters float64

	ChemicalCatalogPath string
	CORSAllowedOrigins  []string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "release-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "plume-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "plume-impact"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		PlumeGeometry: strings.ToLower(sharedcfg.EnvOrDefault("PLUME_GEOMETRY", GeometryGaussian)),

		NWSBaseURL:   strings.TrimRight(sharedcfg.EnvOrDefault("NWS_BASE_URL", "https://api.weather.gov"), "/"),
		NWSUserAgent: sharedcfg.EnvOrDefault("NWS_USER_AGENT", "plume-impact-service"),
		OverpassURL:  sharedcfg.EnvOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),

		ChemicalCatalogPath: os.Getenv("CHEMICAL_CATALOG_PATH"),
		CORSAllowedOrigins:  splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.PlumeLengthMeters, err = parsePositiveFloat("PLUME_LENGTH_METERS", "4000"); err != nil {
		return nil, err
	}
	if cfg.PlumeSamples, err = parseIntInRange("PLUME_SAMPLES", "20", 2, 200); err != nil {
		return nil, err
	}
	if cfg.PlumeWidthMultiplier, err = parsePositiveFloat("PLUME_WIDTH_MULTIPLIER", "3"); err != nil {
		return nil, err
	}
	if cfg.PlumeWidthMultiplier > 10 {
		return nil, errors.New("invalid PLUME_WIDTH_MULTIPLIER: must be at most 10")
	}
	if cfg.PlumeGeometry != GeometryGaussian && cfg.PlumeGeometry != GeometryWedge {
		return nil, fmt.Errorf("invalid PLUME_GEOMETRY %q: want %s or %s", cfg.PlumeGeometry, GeometryGaussian, GeometryWedge)
	}

	if cfg.NWSEnabled, err = parseBool("NWS_ENABLED"); err != nil {
		return nil, err
	}
	if cfg.NWSTimeout, err = parseDuration("NWS_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.WeatherCacheTTL, err = parseDuration("WEATHER_CACHE_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.WeatherCacheSize, err = parseIntInRange("WEATHER_CACHE_SIZE", "256", 1, 1<<20); err != nil {
		return nil, err
	}

	if cfg.OverpassEnabled, err = parseBool("OVERPASS_ENABLED"); err != nil {
		return nil, err
	}
	if cfg.OverpassTimeout, err = parseDuration("OVERPASS_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ReceptorCacheSize, err = parseIntInRange("RECEPTOR_CACHE_SIZE", "256", 1, 1<<20); err != nil {
		return nil, err
	}
	radius := sharedcfg.EnvOrDefault("RECEPTOR_SEARCH_RADIUS_METERS", "0")
	if cfg.ReceptorSearchRadiusMeters, err = strconv.ParseFloat(radius, 64); err != nil || cfg.ReceptorSearchRadiusMeters < 0 {
		return nil, errors.New("invalid RECEPTOR_SEARCH_RADIUS_METERS")
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.NWSEnabled && cfg.NWSUserAgent == "" {
		return nil, errors.New("NWS_ENABLED is true but NWS_USER_AGENT is empty")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}

func parsePositiveFloat(key, def string) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil || !(f > 0) {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return f, nil
}

func parseIntInRange(key, def string, minVal, maxVal int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n < minVal || n > maxVal {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", key, minVal, maxVal)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
