package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInvoicingDefaultsWhenFileMissing(t *testing.T) {
	holder, err := NewInvoicingConfigHolder(Config{ConfigPaths: []string{t.TempDir()}}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultInvoicingConfig(), holder.Get())
}

func TestInvoicingReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := "invoicing:\n  defaultCurrency: usd\n  defaultDueDays: 14\n  numberRetryAttempts: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoicing.yml"), []byte(content), 0o600))

	v := viper.New()
	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	holder, found, err := newInvoicingConfigHolder(v, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, found)

	cfg := holder.Get()
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 14, cfg.DefaultDueDays)
	assert.Equal(t, 2, cfg.NumberRetryAttempts)
	assert.Equal(t, "#111827", cfg.AccentColor)
}

func TestInvoicingRejectsInvalidFile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yml")
	setInvoicingDefaults(v)
	require.NoError(t, v.ReadConfig(strings.NewReader("invoicing:\n  defaultCurrency: XYZ\n")))

	_, err := decodeInvoicingConfig(v)
	assert.Error(t, err)
}

func TestReloadKeepsPreviousOnInvalid(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yml")
	setInvoicingDefaults(v)
	holder := &InvoicingConfigHolder{log: zap.NewNop()}
	holder.current.Store(DefaultInvoicingConfig())

	require.NoError(t, v.ReadConfig(strings.NewReader("invoicing:\n  defaultDueDays: -3\n")))
	holder.reload(v, "invoicing.yml")
	assert.Equal(t, 30, holder.Get().DefaultDueDays)

	require.NoError(t, v.ReadConfig(strings.NewReader("invoicing:\n  defaultDueDays: 45\n")))
	holder.reload(v, "invoicing.yml")
	assert.Equal(t, 45, holder.Get().DefaultDueDays)
}

func TestStatic(t *testing.T) {
	cfg := DefaultInvoicingConfig()
	cfg.DefaultCurrency = "EUR"
	assert.Equal(t, "EUR", Static(cfg).Get().DefaultCurrency)
}
