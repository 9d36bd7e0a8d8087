package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置结构体
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
	ErrorLog   ErrorLogConfig   `yaml:"errorLog"`
	Redis      RedisConfig      `yaml:"redis"`
	LLM        LLMConfig        `yaml:"llm"`
	Blob       BlobConfig       `yaml:"blob"`
	Membership MembershipConfig `yaml:"membership"`
	Password   PasswordConfig   `yaml:"password"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`         // 服务器监听端口
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读取超时时间
	WriteTimeout time.Duration `yaml:"writeTimeout"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idleTimeout"`  // 空闲超时时间
}

// StorageConfig 文档存储配置
// Backend: file 为本地JSON文件，sql 为数据库文档表
type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	DataDir  string         `yaml:"dataDir"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig 数据库配置（仅 storage.backend=sql 时使用）
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`   // mysql / postgres / sqlite
	Host     string `yaml:"host"`     // 数据库主机地址
	Port     int    `yaml:"port"`     // 数据库端口
	Username string `yaml:"username"` // 数据库用户名
	Password string `yaml:"password"` // 数据库密码
	Database string `yaml:"database"` // 数据库名称，sqlite 时为文件路径
	Charset  string `yaml:"charset"`  // 字符集
	MaxIdle  int    `yaml:"maxIdle"`  // 最大空闲连接数
	MaxOpen  int    `yaml:"maxOpen"`  // 最大打开连接数
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `yaml:"secret"`     // JWT密钥
	ExpireTime time.Duration `yaml:"expireTime"` // JWT过期时间
	Issuer     string        `yaml:"issuer"`     // JWT签发者
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // 日志级别
	Filename   string `yaml:"filename"`   // 日志文件名
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`   // 是否压缩
}

// ErrorLogConfig 错误日志（一行一条，追加写入）
type ErrorLogConfig struct {
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
}

// RedisConfig Redis配置，未启用时在线状态镜像关闭
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`     // Redis主机地址
	Port     int    `yaml:"port"`     // Redis端口
	Password string `yaml:"password"` // Redis密码
	DB       int    `yaml:"db"`       // Redis数据库编号
}

// LLMConfig 文本生成服务配置
type LLMConfig struct {
	APIKey     string        `yaml:"apiKey"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`    // 单次调用超时
	MaxRetries int           `yaml:"maxRetries"` // 失败重试次数
}

// BlobConfig 头像存储配置
// Backend: local 为本地目录，s3 为对象存储
type BlobConfig struct {
	Backend   string `yaml:"backend"`
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// MembershipConfig 成员校验配置
// Strict 为 true 时，创建群组/聊天室的成员必须是已注册用户
type MembershipConfig struct {
	Strict bool `yaml:"strict"`
}

// PasswordConfig 密码摘要配置，scheme: sha256 / bcrypt
type PasswordConfig struct {
	Scheme string `yaml:"scheme"`
}

// LoadConfig 加载配置（混合方式：YAML文件 + .env + 环境变量）
func LoadConfig() *Config {
	// 1. .env 中的变量注入进程环境（已存在的环境变量不会被覆盖）
	_ = godotenv.Load()

	// 2. 从YAML文件加载默认配置
	config := loadFromYAML(getEnv("CONFIG_FILE", "config/config.yaml"))

	// 3. 用环境变量覆盖配置（环境变量优先级更高）
	overrideWithEnvVars(config)

	return config
}

// loadFromYAML 从YAML文件加载配置
func loadFromYAML(filePath string) *Config {
	config := getDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		// 如果文件不存在，返回默认配置
		return config
	}

	// 解析到默认值之上，未出现的字段保持默认
	if err := yaml.Unmarshal(data, config); err != nil {
		return getDefaultConfig()
	}

	return config
}

// overrideWithEnvVars 用环境变量覆盖配置
func overrideWithEnvVars(config *Config) {
	// 服务器配置
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}

	// 存储配置
	if backend := getEnv("STORAGE_BACKEND", ""); backend != "" {
		config.Storage.Backend = backend
	}
	if dir := getEnv("DATA_DIR", ""); dir != "" {
		config.Storage.DataDir = dir
	}
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Storage.Database.Driver = driver
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Storage.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Storage.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Storage.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Storage.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Storage.Database.Database = database
	}

	// JWT配置
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if expireTime := getEnvDuration("JWT_EXPIRE_TIME", 0); expireTime > 0 {
		config.JWT.ExpireTime = expireTime
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// 日志配置
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if filename := getEnv("ERROR_LOG_FILENAME", ""); filename != "" {
		config.ErrorLog.Filename = filename
	}

	// Redis配置
	config.Redis.Enabled = getEnvBool("REDIS_ENABLED", config.Redis.Enabled)
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	// 文本生成配置
	if key := getEnv("GEMINI_API_KEY", ""); key != "" {
		config.LLM.APIKey = key
	}
	if model := getEnv("GEN_MODEL", ""); model != "" {
		config.LLM.Model = model
	}
	if d := getEnvDuration("LLM_TIMEOUT", 0); d > 0 {
		config.LLM.Timeout = d
	}
	if n := getEnvInt("LLM_MAX_RETRIES", -1); n >= 0 {
		config.LLM.MaxRetries = n
	}

	// 头像存储配置
	if backend := getEnv("BLOB_BACKEND", ""); backend != "" {
		config.Blob.Backend = backend
	}
	if dir := getEnv("PROFILE_IMAGES_DIR", ""); dir != "" {
		config.Blob.Dir = dir
	}
	if bucket := getEnv("BUCKET_NAME", ""); bucket != "" {
		config.Blob.Bucket = bucket
	}
	if region := getEnv("AWS_REGION", ""); region != "" {
		config.Blob.Region = region
	}
	if key := getEnv("AWS_ACCESS_KEY", ""); key != "" {
		config.Blob.AccessKey = key
	}
	if secret := getEnv("AWS_SECRET_KEY", ""); secret != "" {
		config.Blob.SecretKey = secret
	}

	config.Membership.Strict = getEnvBool("MEMBERSHIP_STRICT", config.Membership.Strict)
	if scheme := getEnv("PASSWORD_SCHEME", ""); scheme != "" {
		config.Password.Scheme = scheme
	}
}

// getDefaultConfig 获取默认配置
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Storage: StorageConfig{
			Backend: "file",
			DataDir: "data",
			Database: DatabaseConfig{
				Driver:   "sqlite",
				Host:     "localhost",
				Port:     3306,
				Username: "study",
				Database: "data/study.db",
				Charset:  "utf8mb4",
				MaxIdle:  5,
				MaxOpen:  20,
			},
		},
		JWT: JWTConfig{
			Secret:     "change-me-study-assistant",
			ExpireTime: 24 * time.Hour,
			Issuer:     "study-assistant",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		ErrorLog: ErrorLogConfig{
			Filename:   "logs/error_log.txt",
			MaxSize:    10,
			MaxBackups: 5,
		},
		Redis: RedisConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    6379,
			DB:      0,
		},
		LLM: LLMConfig{
			Model:      "gemini-1.5-flash",
			Timeout:    30 * time.Second,
			MaxRetries: 2,
		},
		Blob: BlobConfig{
			Backend: "local",
			Dir:     "profile_images",
			Region:  "us-east-2",
		},
		Membership: MembershipConfig{Strict: true},
		Password:   PasswordConfig{Scheme: "sha256"},
	}
}

// 辅助函数：获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// 辅助函数：获取时间环境变量
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
