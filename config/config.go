package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 存储所有配置信息
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	// 数据库配置
	DBDriver   string `mapstructure:"DB_DRIVER"` // mysql 或 sqlite
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	// Redis配置，REDIS_HOST 为空时不启用
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// JWT配置
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// 内部接口
	InternalAuthToken string `mapstructure:"INTERNAL_AUTH_TOKEN"`
	SeedDemoData      bool   `mapstructure:"SEED_DEMO_DATA"`

	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`
	LogDir           string `mapstructure:"LOG_DIR"`
}

var defaults = map[string]interface{}{
	"ENVIRONMENT":          "development",
	"SERVER_PORT":          "8080",
	"DB_DRIVER":            "mysql",
	"DB_HOST":              "127.0.0.1",
	"DB_PORT":              "3306",
	"DB_USER":              "root",
	"DB_PASSWORD":          "",
	"DB_NAME":              "todo",
	"SQLITE_PATH":          "todo.db",
	"REDIS_HOST":           "",
	"REDIS_PORT":           "6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"JWT_SECRET":           "",
	"JWT_EXPIRATION_HOURS": 24,
	"INTERNAL_AUTH_TOKEN":  "",
	"SEED_DEMO_DATA":       false,
	"CORS_ALLOW_ORIGINS":   "*",
	"LOG_DIR":              "logs",
}

// LoadConfig 从环境变量或配置文件加载配置
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// 设置默认值后 AutomaticEnv 才能覆盖到 Unmarshal 的所有键
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		// 允许配置文件不存在，此时会从环境变量中读取
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	err = config.Validate()
	return
}

// Validate 检查必填配置
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET 未配置")
	}
	if c.JWTExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS 必须为正数: %d", c.JWTExpirationHours)
	}
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.DBDriver)
	}
	return nil
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedisEnabled 是否配置了Redis
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// AllowOrigins 解析逗号分隔的 CORS 来源
func (c *Config) AllowOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// GetDBConnString 返回数据库连接字符串
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// GetRedisConnString 返回Redis连接字符串
func (c *Config) GetRedisConnString() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
