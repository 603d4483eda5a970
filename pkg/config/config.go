// Package config 基于 viper 的配置加载
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 MODELCHECK_LOG_LEVEL
const EnvPrefix = "MODELCHECK"

// ErrInvalidConfig 配置值不合法
var ErrInvalidConfig = errors.New("invalid config")

// Config 根配置
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Validation ValidationConfig `mapstructure:"validation"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // debug/info/warn/error
	Format     string `mapstructure:"format"`       // console/json
	File       string `mapstructure:"file"`         // 为空时只输出到 stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个日志文件大小上限
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的旧文件数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 旧文件保留天数
	Compress   bool   `mapstructure:"compress"`     // 是否压缩旧文件
}

// ValidationConfig 验证配置
type ValidationConfig struct {
	TagName  string `mapstructure:"tag_name"`  // 约束标签名
	FailFast bool   `mapstructure:"fail_fast"` // 遇到第一个违规即停止
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
		Validation: ValidationConfig{
			TagName: "check",
		},
	}
}

// Load 读取配置文件并叠加环境变量
// path 为空时只使用默认值与环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置值
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("%w: log rotation values must not be negative", ErrInvalidConfig)
	}

	if c.Validation.TagName == "" || strings.ContainsAny(c.Validation.TagName, " \t:\"") {
		return fmt.Errorf("%w: validation.tag_name %q", ErrInvalidConfig, c.Validation.TagName)
	}
	return nil
}

// setDefaults 注册所有键的默认值，AutomaticEnv 只对已知键生效
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("validation.tag_name", d.Validation.TagName)
	v.SetDefault("validation.fail_fast", d.Validation.FailFast)
}
