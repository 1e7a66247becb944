package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/overlay-backend/internal/data/db"
	"github.com/yungbote/overlay-backend/internal/observability"
	"github.com/yungbote/overlay-backend/internal/platform/envutil"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

// Config is read from defaults, then the optional YAML file named by
// OVERLAY_CONFIG_PATH, then the environment. Later sources win.
type Config struct {
	LogMode     string `yaml:"log_mode"`
	Environment string `yaml:"environment"`
	HTTPAddr    string `yaml:"http_addr"`

	DBDriver         string `yaml:"db_driver"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`
	SQLitePath       string `yaml:"sqlite_path"`

	// Empty RedisAddr keeps live events in-process.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisChannel  string `yaml:"redis_channel"`

	CORSOrigins []string `yaml:"cors_origins"`
	// Empty ControlJWTSecret leaves the control API open.
	ControlJWTSecret string `yaml:"control_jwt_secret"`

	OtelEnabled     bool    `yaml:"otel_enabled"`
	OtelExporter    string  `yaml:"otel_exporter"`
	OtelEndpoint    string  `yaml:"otel_endpoint"`
	OtelHeaders     string  `yaml:"otel_headers"`
	OtelInsecure    bool    `yaml:"otel_insecure"`
	OtelSampleRatio float64 `yaml:"otel_sample_ratio"`

	MetricsEnabled bool `yaml:"metrics_enabled"`

	MediaDir       string `yaml:"media_dir"`
	OverlayWidthPx int    `yaml:"overlay_width_px"`
}

func defaultConfig() Config {
	return Config{
		LogMode:         "development",
		Environment:     "development",
		HTTPAddr:        ":8080",
		DBDriver:        "postgres",
		PostgresHost:    "localhost",
		PostgresPort:    "5432",
		PostgresUser:    "postgres",
		PostgresName:    "overlay",
		SQLitePath:      "overlay.db",
		RedisChannel:    "overlay:live",
		OtelSampleRatio: 0.1,
		MetricsEnabled:  true,
		MediaDir:        "uploads",
		OverlayWidthPx:  1920,
	}
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv("OVERLAY_CONFIG_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("config file loaded", "path", path)
	}

	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode, log)
	cfg.Environment = envutil.String("ENVIRONMENT", cfg.Environment, log)
	cfg.HTTPAddr = envutil.String("HTTP_ADDR", cfg.HTTPAddr, log)

	cfg.DBDriver = envutil.String("DB_DRIVER", cfg.DBDriver, log)
	cfg.PostgresHost = envutil.String("POSTGRES_HOST", cfg.PostgresHost, log)
	cfg.PostgresPort = envutil.String("POSTGRES_PORT", cfg.PostgresPort, log)
	cfg.PostgresUser = envutil.String("POSTGRES_USER", cfg.PostgresUser, log)
	cfg.PostgresPassword = envutil.String("POSTGRES_PASSWORD", cfg.PostgresPassword, log)
	cfg.PostgresName = envutil.String("POSTGRES_NAME", cfg.PostgresName, log)
	cfg.SQLitePath = envutil.String("SQLITE_PATH", cfg.SQLitePath, log)

	cfg.RedisAddr = envutil.String("REDIS_ADDR", cfg.RedisAddr, log)
	cfg.RedisPassword = envutil.String("REDIS_PASSWORD", cfg.RedisPassword, log)
	cfg.RedisChannel = envutil.String("REDIS_CHANNEL", cfg.RedisChannel, log)

	cfg.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.CORSOrigins, log)
	cfg.ControlJWTSecret = envutil.String("CONTROL_JWT_SECRET", cfg.ControlJWTSecret, log)

	cfg.OtelEnabled = envutil.Bool("OTEL_ENABLED", cfg.OtelEnabled, log)
	cfg.OtelExporter = envutil.String("OTEL_EXPORTER", cfg.OtelExporter, log)
	cfg.OtelEndpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OtelEndpoint, log)
	cfg.OtelHeaders = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.OtelHeaders, log)
	cfg.OtelInsecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.OtelInsecure, log)
	cfg.OtelSampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", cfg.OtelSampleRatio, log)

	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled, log)

	cfg.MediaDir = envutil.String("MEDIA_DIR", cfg.MediaDir, log)
	cfg.OverlayWidthPx = envutil.Int("OVERLAY_WIDTH_PX", cfg.OverlayWidthPx, log)

	if cfg.OverlayWidthPx <= 0 {
		return cfg, fmt.Errorf("OVERLAY_WIDTH_PX must be positive, got %d", cfg.OverlayWidthPx)
	}
	return cfg, nil
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver:           c.DBDriver,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		SQLitePath:       c.SQLitePath,
	}
}

func (c Config) Otel(version string) observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: "overlay-backend",
		Environment: c.Environment,
		Version:     version,
		Exporter:    c.OtelExporter,
		Endpoint:    c.OtelEndpoint,
		Headers:     observability.ParseHeaders(c.OtelHeaders),
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}
