package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CatalogConfig holds listing defaults for the catalog read endpoints.
type CatalogConfig struct {
	DefaultPageSize int      `mapstructure:"defaultPageSize"`
	MaxPageSize     int      `mapstructure:"maxPageSize"`
	DefaultSortBy   string   `mapstructure:"defaultSortBy"`
	DefaultOrderBy  string   `mapstructure:"defaultOrderBy"`
	SortFields      []string `mapstructure:"sortFields"`
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		DefaultPageSize: 50,
		MaxPageSize:     200,
		DefaultSortBy:   "name",
		DefaultOrderBy:  "asc",
		SortFields:      []string{"name", "created_at", "updated_at", "cost", "total_cost"},
	}
}

// CatalogConfigHolder serves the current catalog config and hot-reloads it
// when catalog.yml changes on disk.
type CatalogConfigHolder struct {
	current atomic.Value // holds CatalogConfig
}

func NewCatalogConfigHolder() (*CatalogConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/wardrobe/config")
	v.AddConfigPath("/etc/wardrobe")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WARDROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultCatalogConfig()
		v.SetDefault("catalog.defaultPageSize", defaults.DefaultPageSize)
		v.SetDefault("catalog.maxPageSize", defaults.MaxPageSize)
		v.SetDefault("catalog.defaultSortBy", defaults.DefaultSortBy)
		v.SetDefault("catalog.defaultOrderBy", defaults.DefaultOrderBy)
		v.SetDefault("catalog.sortFields", defaults.SortFields)
	}

	var cfg CatalogConfig
	if err := v.UnmarshalKey("catalog", &cfg); err != nil {
		return nil, err
	}
	if err := validateCatalogConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CatalogConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CatalogConfig
		if err := v.UnmarshalKey("catalog", &updated); err != nil {
			log.Printf("[catalog-config] reload failed: %v", err)
			return
		}
		if err := validateCatalogConfig(updated); err != nil {
			log.Printf("[catalog-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[catalog-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *CatalogConfigHolder) Get() CatalogConfig {
	return h.current.Load().(CatalogConfig)
}

func (h *CatalogConfigHolder) SortField(requested string) string {
	cfg := h.Get()
	requested = strings.TrimSpace(requested)
	for _, field := range cfg.SortFields {
		if field == requested {
			return requested
		}
	}
	return cfg.DefaultSortBy
}

func validateCatalogConfig(cfg CatalogConfig) error {
	if cfg.DefaultPageSize <= 0 {
		return errors.New("catalog.defaultPageSize must be positive")
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		return errors.New("catalog.maxPageSize must be >= defaultPageSize")
	}
	if len(cfg.SortFields) == 0 {
		return errors.New("catalog.sortFields cannot be empty")
	}
	return nil
}
