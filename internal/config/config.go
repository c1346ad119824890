package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Sites     SitesConfig     `yaml:"sites" mapstructure:"sites"`
	Matcher   MatcherConfig   `yaml:"matcher" mapstructure:"matcher"`
	Valuation ValuationConfig `yaml:"valuation" mapstructure:"valuation"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the cache backend. Driver is memory, sqlite or
// postgres; for sqlite DatabaseURL is the file path.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CacheConfig configures valuation result caching.
type CacheConfig struct {
	TTLHours int  `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
}

// FetchConfig configures marketplace HTTP fetching.
type FetchConfig struct {
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts       int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs  int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs      int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	AcceptLanguage    string  `yaml:"accept_language" mapstructure:"accept_language"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	BreakerFailures   int     `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerResetSecs  int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
	MaxBodyBytes      int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// SiteConfig holds one marketplace's endpoints.
type SiteConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SitesConfig holds the marketplace endpoints.
type SitesConfig struct {
	Leboncoin  SiteConfig `yaml:"leboncoin" mapstructure:"leboncoin"`
	Lacentrale SiteConfig `yaml:"lacentrale" mapstructure:"lacentrale"`
}

// MatcherConfig holds the candidate scoring rules.
type MatcherConfig struct {
	MinScore         int      `yaml:"min_score" mapstructure:"min_score"`
	BaseScore        int      `yaml:"base_score" mapstructure:"base_score"`
	FuelMatch        int      `yaml:"fuel_match" mapstructure:"fuel_match"`
	FuelMismatch     int      `yaml:"fuel_mismatch" mapstructure:"fuel_mismatch"`
	FuelLiteralBonus int      `yaml:"fuel_literal_bonus" mapstructure:"fuel_literal_bonus"`
	YearExact        int      `yaml:"year_exact" mapstructure:"year_exact"`
	YearOff1         int      `yaml:"year_off1" mapstructure:"year_off1"`
	YearOff2         int      `yaml:"year_off2" mapstructure:"year_off2"`
	MileageNear      int      `yaml:"mileage_near" mapstructure:"mileage_near"`
	MileageMid       int      `yaml:"mileage_mid" mapstructure:"mileage_mid"`
	MileageFar       int      `yaml:"mileage_far" mapstructure:"mileage_far"`
	MileageNearKm    int      `yaml:"mileage_near_km" mapstructure:"mileage_near_km"`
	MileageMidKm     int      `yaml:"mileage_mid_km" mapstructure:"mileage_mid_km"`
	MileageFarKm     int      `yaml:"mileage_far_km" mapstructure:"mileage_far_km"`
	GenericWords     []string `yaml:"generic_words" mapstructure:"generic_words"`
}

// FeeConfig is the auction buyer fee schedule.
type FeeConfig struct {
	CommissionRate  float64 `yaml:"commission_rate" mapstructure:"commission_rate"`
	CommissionFloor float64 `yaml:"commission_floor" mapstructure:"commission_floor"`
	FixedFee        float64 `yaml:"fixed_fee" mapstructure:"fixed_fee"`
	PlatformFee     float64 `yaml:"platform_fee" mapstructure:"platform_fee"`
}

// ValuationConfig configures price aggregation.
type ValuationConfig struct {
	TopN int       `yaml:"top_n" mapstructure:"top_n"`
	Fees FeeConfig `yaml:"fees" mapstructure:"fees"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESALE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "resale-cache.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"chrome-extension://*", "https://www.alcopa-auction.fr"})
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.initial_backoff_ms", 500)
	v.SetDefault("fetch.max_backoff_ms", 5000)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("fetch.accept_language", "fr-FR,fr;q=0.9,en;q=0.8")
	v.SetDefault("fetch.requests_per_second", 1.0)
	v.SetDefault("fetch.burst", 2)
	v.SetDefault("fetch.breaker_failures", 5)
	v.SetDefault("fetch.breaker_reset_secs", 60)
	v.SetDefault("fetch.max_body_bytes", 10<<20)
	v.SetDefault("sites.leboncoin.base_url", "https://www.leboncoin.fr")
	v.SetDefault("sites.lacentrale.base_url", "https://www.lacentrale.fr")
	v.SetDefault("matcher.min_score", 60)
	v.SetDefault("matcher.base_score", 40)
	v.SetDefault("matcher.fuel_match", 10)
	v.SetDefault("matcher.fuel_mismatch", -10)
	v.SetDefault("matcher.fuel_literal_bonus", 10)
	v.SetDefault("matcher.year_exact", 30)
	v.SetDefault("matcher.year_off1", 20)
	v.SetDefault("matcher.year_off2", 10)
	v.SetDefault("matcher.mileage_near", 20)
	v.SetDefault("matcher.mileage_mid", 15)
	v.SetDefault("matcher.mileage_far", 10)
	v.SetDefault("matcher.mileage_near_km", 10000)
	v.SetDefault("matcher.mileage_mid_km", 20000)
	v.SetDefault("matcher.mileage_far_km", 30000)
	v.SetDefault("matcher.generic_words", []string{"fourgon", "societe", "utilitaire", "van", "chassis", "cabine"})
	v.SetDefault("valuation.top_n", 5)
	v.SetDefault("valuation.fees.commission_rate", 0.144)
	v.SetDefault("valuation.fees.commission_floor", 360)
	v.SetDefault("valuation.fees.fixed_fee", 140)
	v.SetDefault("valuation.fees.platform_fee", 40)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is one of compare,
// margin, serve or purge; every mode checks the shared settings.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for driver "+c.Store.Driver)
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be memory, sqlite or postgres", c.Store.Driver))
	}
	if c.Cache.TTLHours <= 0 {
		errs = append(errs, "cache.ttl_hours must be > 0")
	}
	if c.Valuation.TopN <= 0 {
		errs = append(errs, "valuation.top_n must be > 0")
	}
	f := c.Valuation.Fees
	if f.CommissionRate < 0 || f.CommissionFloor < 0 || f.FixedFee < 0 || f.PlatformFee < 0 {
		errs = append(errs, "valuation.fees must be >= 0")
	}

	switch mode {
	case "compare", "margin", "serve":
		if c.Fetch.MaxAttempts < 1 {
			errs = append(errs, "fetch.max_attempts must be >= 1")
		}
		if c.Fetch.TimeoutSecs <= 0 {
			errs = append(errs, "fetch.timeout_secs must be > 0")
		}
		if c.Fetch.UserAgent == "" {
			errs = append(errs, "fetch.user_agent is required")
		}
		if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
			errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
		}
	case "purge":
		if c.Store.Driver == "memory" {
			errs = append(errs, "cache purge needs a durable store.driver (sqlite or postgres)")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}

	zap.ReplaceGlobals(logger)
	return nil
}
