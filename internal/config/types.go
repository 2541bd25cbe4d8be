package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	MarketData MarketDataConfig `mapstructure:"marketdata"`
	Precision  PrecisionConfig  `mapstructure:"precision"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// ProviderConfig 描述所选券商后端的连接信息。
type ProviderConfig struct {
	Name       string      `mapstructure:"name"`
	Market     string      `mapstructure:"market"`
	APIKey     string      `mapstructure:"api_key"`
	APISecret  string      `mapstructure:"api_secret"`
	APIPass    string      `mapstructure:"api_password"`
	UseSandbox bool        `mapstructure:"use_sandbox"`
	Retry      RetryConfig `mapstructure:"retry"`
}

// RetryConfig 统一控制适配器内部的重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// MarketDataConfig 控制行情服务与K线缓存。
type MarketDataConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries"`
	DefaultLimit    int           `mapstructure:"default_limit"`
}

// PrecisionConfig 控制归一化时各类字段的量化位数。
type PrecisionConfig struct {
	QtyPlaces     int `mapstructure:"qty_places"`
	PricePlaces   int `mapstructure:"price_places"`
	PercentPlaces int `mapstructure:"percent_places"`
	MoneyPlaces   int `mapstructure:"money_places"`
}

// DatabaseConfig 管理快照流水库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出，Service 会附加在每条日志的 service 字段上。
type LoggingConfig struct {
	Service          string   `mapstructure:"service"`
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Provider.Name == "" {
		err = multierr.Append(err, errors.New("provider.name 不能为空"))
	}
	if c.Provider.Market == "" {
		err = multierr.Append(err, errors.New("provider.market 不能为空"))
	}
	if c.Provider.Retry.MaxAttempts <= 0 {
		err = multierr.Append(err, errors.New("provider.retry.max_attempts 必须大于0"))
	}
	if c.Provider.Retry.MinDelay <= 0 || c.Provider.Retry.MaxDelay <= 0 {
		err = multierr.Append(err, errors.New("provider.retry.delay 必须为正"))
	}
	if c.Provider.Retry.MinDelay > c.Provider.Retry.MaxDelay {
		err = multierr.Append(err, errors.New("provider.retry.min_delay 不能大于 max_delay"))
	}
	if c.MarketData.CacheTTL < 0 {
		err = multierr.Append(err, errors.New("marketdata.cache_ttl 不能为负"))
	}
	if c.MarketData.CacheTTL > 0 && c.MarketData.CacheMaxEntries <= 0 {
		err = multierr.Append(err, errors.New("marketdata.cache_max_entries 必须大于0"))
	}
	if c.MarketData.DefaultLimit <= 0 {
		err = multierr.Append(err, errors.New("marketdata.default_limit 必须大于0"))
	}
	if c.Precision.QtyPlaces < 0 || c.Precision.PricePlaces < 0 ||
		c.Precision.PercentPlaces < 0 || c.Precision.MoneyPlaces < 0 {
		err = multierr.Append(err, errors.New("precision 各项位数不能为负"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Service == "" {
		err = multierr.Append(err, errors.New("logging.service 不能为空"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
