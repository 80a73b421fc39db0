// Package config 提供 TOML 配置加载、环境变量覆盖与校验
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 服务配置
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// Redis 配置 (分布式限流)
	Redis RedisConfig `mapstructure:"redis"`
	// Kafka 配置 (领域事件)
	Kafka KafkaConfig `mapstructure:"kafka"`
	// 日志配置
	Logger LoggerConfig `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 限流配置
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// 定价配置
	Pricing PricingConfig `mapstructure:"pricing"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	// 监听地址
	Host string `mapstructure:"host" default:"0.0.0.0"`
	// 监听端口
	Port int `mapstructure:"port" default:"8080"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout" default:"30"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout" default:"30"`
	// 优雅关闭超时（秒）
	ShutdownTimeout int `mapstructure:"shutdown_timeout" default:"10"`
}

// Addr 监听地址
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 是否启用；关闭时使用进程内限流
	Enabled bool `mapstructure:"enabled" default:"false"`
	// 主机地址
	Host string `mapstructure:"host" default:"localhost"`
	// 端口
	Port int `mapstructure:"port" default:"6379"`
	// 密码
	Password string `mapstructure:"password"`
	// 数据库编号
	DB int `mapstructure:"db" default:"0"`
	// 最大连接数
	MaxPoolSize int `mapstructure:"max_pool_size" default:"10"`
	// 连接超时（秒）
	ConnTimeout int `mapstructure:"conn_timeout" default:"5"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout" default:"3"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout" default:"3"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	// 是否启用事件发布
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Broker 地址列表
	Brokers []string `mapstructure:"brokers"`
	// 事件 Topic
	Topic string `mapstructure:"topic" default:"pricing.events"`
	// 最大重试次数
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// 重试退避（毫秒）
	RetryBackoff int `mapstructure:"retry_backoff" default:"100"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	// 日志级别
	Level string `mapstructure:"level" default:"info"`
	// 输出格式
	Format string `mapstructure:"format" default:"json"`
	// 输出目标
	Output string `mapstructure:"output" default:"stdout"`
	// 文件路径
	FilePath string `mapstructure:"file_path" default:"logs/app.log"`
	// 最大文件大小（MB）
	MaxSize int `mapstructure:"max_size" default:"100"`
	// 最大备份文件数
	MaxBackups int `mapstructure:"max_backups" default:"10"`
	// 最大保留天数
	MaxAge int `mapstructure:"max_age" default:"30"`
	// 是否压缩
	Compress bool `mapstructure:"compress" default:"true"`
	// 是否输出调用者信息
	WithCaller bool `mapstructure:"with_caller" default:"true"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled" default:"true"`
	// 指标命名空间
	Namespace string `mapstructure:"namespace" default:"options"`
	// 指标路径，挂在 HTTP 服务上
	Path string `mapstructure:"path" default:"/metrics"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled" default:"true"`
	QPS     int  `mapstructure:"qps" default:"50"`
	Burst   int  `mapstructure:"burst" default:"100"`
}

// PricingConfig 定价与曲面配置
type PricingConfig struct {
	// 曲面标的价格轴点数
	SpotPoints int `mapstructure:"spot_points" default:"10"`
	// 曲面波动率轴点数
	VolPoints int `mapstructure:"vol_points" default:"10"`
	// 轴下限倍数
	LowFactor float64 `mapstructure:"low_factor" default:"0.5"`
	// 轴上限倍数
	HighFactor float64 `mapstructure:"high_factor" default:"1.5"`
	// 曲面并发行数，0 表示顺序计算
	ParallelWorkers int `mapstructure:"parallel_workers" default:"0"`
	// 单次请求允许的最大轴点数
	MaxPoints int `mapstructure:"max_points" default:"50"`
	// HTTP 层是否按参考界面的滑块范围校验输入
	EnforceBounds bool `mapstructure:"enforce_bounds" default:"true"`
	// 参考界面的输入范围与默认值
	Bounds InputBounds `mapstructure:"bounds"`
}

// Range 闭区间
type Range struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
	// 默认值
	Default float64 `mapstructure:"default" json:"default"`
}

// Contains 判断 v 是否落在区间内
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// InputBounds 五个市场参数的输入范围
type InputBounds struct {
	Spot       Range `mapstructure:"spot" json:"spot"`
	Strike     Range `mapstructure:"strike" json:"strike"`
	Expiry     Range `mapstructure:"expiry" json:"expiry"`
	Volatility Range `mapstructure:"volatility" json:"volatility"`
	Rate       Range `mapstructure:"rate" json:"rate"`
}

// Load 从 TOML 文件加载配置，支持环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return unmarshal(v)
}

// LoadWithDefaults 从 TOML 文件加载配置，文件不存在时只使用默认值
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		// 文件不存在时忽略，其余错误 (语法错误、权限) 直接返回
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return unmarshal(v)
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	// 环境变量覆盖：APP_HTTP_PORT 覆盖 http.port
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka enabled but no brokers configured")
	}
	if c.RateLimit.Enabled && (c.RateLimit.QPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid rate limit: qps=%d burst=%d", c.RateLimit.QPS, c.RateLimit.Burst)
	}

	p := c.Pricing
	if p.SpotPoints < 1 || p.VolPoints < 1 {
		return fmt.Errorf("invalid surface points: spot=%d vol=%d", p.SpotPoints, p.VolPoints)
	}
	if p.LowFactor <= 0 || p.LowFactor > p.HighFactor {
		return fmt.Errorf("invalid surface factors: low=%v high=%v", p.LowFactor, p.HighFactor)
	}
	if p.MaxPoints < p.SpotPoints || p.MaxPoints < p.VolPoints {
		return fmt.Errorf("max_points %d is below configured surface points", p.MaxPoints)
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "pricing")
	v.SetDefault("version", "dev")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)
	v.SetDefault("http.shutdown_timeout", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "pricing.events")
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/app.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "options")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.qps", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("pricing.spot_points", 10)
	v.SetDefault("pricing.vol_points", 10)
	v.SetDefault("pricing.low_factor", 0.5)
	v.SetDefault("pricing.high_factor", 1.5)
	v.SetDefault("pricing.parallel_workers", 0)
	v.SetDefault("pricing.max_points", 50)
	v.SetDefault("pricing.enforce_bounds", true)

	// 参考界面的滑块范围
	v.SetDefault("pricing.bounds.spot.min", 50.0)
	v.SetDefault("pricing.bounds.spot.max", 200.0)
	v.SetDefault("pricing.bounds.spot.default", 100.0)
	v.SetDefault("pricing.bounds.strike.min", 50.0)
	v.SetDefault("pricing.bounds.strike.max", 200.0)
	v.SetDefault("pricing.bounds.strike.default", 100.0)
	v.SetDefault("pricing.bounds.expiry.min", 0.01)
	v.SetDefault("pricing.bounds.expiry.max", 2.0)
	v.SetDefault("pricing.bounds.expiry.default", 1.0)
	v.SetDefault("pricing.bounds.volatility.min", 0.01)
	v.SetDefault("pricing.bounds.volatility.max", 1.0)
	v.SetDefault("pricing.bounds.volatility.default", 0.2)
	v.SetDefault("pricing.bounds.rate.min", 0.0)
	v.SetDefault("pricing.bounds.rate.max", 0.2)
	v.SetDefault("pricing.bounds.rate.default", 0.05)
}

// GetEnv 获取环境变量，支持默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
