package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/invoicer/internal/money"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InvoicingConfig holds document defaults that operators may change
// without a restart.
type InvoicingConfig struct {
	// DefaultCurrency applies when an organization has no billing
	// preference.
	DefaultCurrency string `mapstructure:"defaultCurrency"`
	// DefaultDueDays sets due_at relative to issued_at when a draft
	// document has an issue date but no due date. Zero disables it.
	DefaultDueDays int `mapstructure:"defaultDueDays"`
	// NumberRetryAttempts is how many times numbering is retried after a
	// unique-index collision.
	NumberRetryAttempts int    `mapstructure:"numberRetryAttempts"`
	AccentColor         string `mapstructure:"accentColor"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		DefaultCurrency:     money.DefaultCurrency,
		DefaultDueDays:      30,
		NumberRetryAttempts: 1,
		AccentColor:         "#111827",
	}
}

// InvoicingConfigSource is satisfied by the hot-reloading holder and by
// static configs in tests.
type InvoicingConfigSource interface {
	Get() InvoicingConfig
}

// Static returns a fixed config source.
func Static(cfg InvoicingConfig) InvoicingConfigSource {
	return staticSource(cfg)
}

type staticSource InvoicingConfig

func (s staticSource) Get() InvoicingConfig { return InvoicingConfig(s) }

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
	log     *zap.Logger
}

// NewInvoicingConfigHolder reads invoicing.yml from the configured paths,
// falling back to defaults, and reloads it on change.
func NewInvoicingConfigHolder(cfg Config, log *zap.Logger) (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	for _, path := range cfg.ConfigPaths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("INVOICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder, found, err := newInvoicingConfigHolder(v, log)
	if err != nil {
		return nil, err
	}
	if found {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.reload(v, e.Name)
		})
	}
	return holder, nil
}

func newInvoicingConfigHolder(v *viper.Viper, log *zap.Logger) (*InvoicingConfigHolder, bool, error) {
	setInvoicingDefaults(v)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, false, err
		}
		found = false
	}

	cfg, err := decodeInvoicingConfig(v)
	if err != nil {
		return nil, false, err
	}

	holder := &InvoicingConfigHolder{log: log.Named("config.invoicing")}
	holder.current.Store(cfg)
	return holder, found, nil
}

func (h *InvoicingConfigHolder) reload(v *viper.Viper, source string) {
	updated, err := decodeInvoicingConfig(v)
	if err != nil {
		h.log.Warn("invalid invoicing config ignored", zap.String("file", source), zap.Error(err))
		return
	}
	h.current.Store(updated)
	h.log.Info("invoicing config reloaded", zap.String("file", source))
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func setInvoicingDefaults(v *viper.Viper) {
	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("invoicing.defaultDueDays", defaults.DefaultDueDays)
	v.SetDefault("invoicing.numberRetryAttempts", defaults.NumberRetryAttempts)
	v.SetDefault("invoicing.accentColor", defaults.AccentColor)
}

func decodeInvoicingConfig(v *viper.Viper) (InvoicingConfig, error) {
	// Unmarshal rather than UnmarshalKey so per-field defaults are merged
	// with a partial file.
	var file struct {
		Invoicing InvoicingConfig `mapstructure:"invoicing"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return InvoicingConfig{}, err
	}
	cfg := file.Invoicing
	cfg.DefaultCurrency = strings.ToUpper(strings.TrimSpace(cfg.DefaultCurrency))
	if err := validateInvoicingConfig(cfg); err != nil {
		return InvoicingConfig{}, err
	}
	return cfg, nil
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if !money.IsSupported(cfg.DefaultCurrency) {
		return fmt.Errorf("invoicing.defaultCurrency %q is not supported", cfg.DefaultCurrency)
	}
	if cfg.DefaultDueDays < 0 {
		return errors.New("invoicing.defaultDueDays cannot be negative")
	}
	if cfg.NumberRetryAttempts < 0 || cfg.NumberRetryAttempts > 10 {
		return errors.New("invoicing.numberRetryAttempts must be between 0 and 10")
	}
	return nil
}
