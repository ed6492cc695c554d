// internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Log           LogConfig
	Dataset       DatasetConfig
	Drive         DriveConfig
	ObjectStorage ObjectStorageConfig
	Database      DatabaseConfig
	Reporting     ReportingConfig
	Cache         CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DatasetConfig selects where the order sheet is read from.
type DatasetConfig struct {
	Source string // file, drive, s3 or postgres
	Path   string
	Sheet  string
}

type DriveConfig struct {
	CredentialsJSON string
	FileID          string
	FolderID        string
}

type ObjectStorageConfig struct {
	Client    string // minio or sevalla
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	ObjectKey string
	Region    string
	UseSSL    bool
}

type DatabaseConfig struct {
	Driver      string // postgres (lib/pq) or pgx
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	OrdersTable string
}

type ReportingConfig struct {
	Year          int // 0 derives the year from the data
	TopN          int
	UpdateWorkers int
}

type CacheConfig struct {
	Enabled       bool
	Backend       string // memory or redis
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env and the environment once and returns the shared config.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		v.AutomaticEnv()
		instance = New(v)
	})

	return instance
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("DATASET_SOURCE", "file")
	v.SetDefault("DATASET_PATH", "./data/Daten I.xlsx")
	v.SetDefault("DATASET_SHEET", "")
	v.SetDefault("S3_CLIENT", "minio")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "procurement")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_ORDERS_TABLE", "purchase_orders")
	v.SetDefault("REPORTING_YEAR", 0)
	v.SetDefault("TOP_N", 10)
	v.SetDefault("UPDATE_WORKERS", 4)
	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 180)
}

// New builds a Config from v after applying the defaults.
func New(v *viper.Viper) *Config {
	SetDefaults(v)

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Dataset: DatasetConfig{
			Source: strings.ToLower(v.GetString("DATASET_SOURCE")),
			Path:   v.GetString("DATASET_PATH"),
			Sheet:  v.GetString("DATASET_SHEET"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("DRIVE_CREDENTIALS_JSON"),
			FileID:          v.GetString("DRIVE_FILE_ID"),
			FolderID:        v.GetString("DRIVE_FOLDER_ID"),
		},
		ObjectStorage: ObjectStorageConfig{
			Client:    v.GetString("S3_CLIENT"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			ObjectKey: v.GetString("S3_OBJECT_KEY"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
		Database: DatabaseConfig{
			Driver:      v.GetString("DB_DRIVER"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			OrdersTable: v.GetString("DB_ORDERS_TABLE"),
		},
		Reporting: ReportingConfig{
			Year:          v.GetInt("REPORTING_YEAR"),
			TopN:          v.GetInt("TOP_N"),
			UpdateWorkers: v.GetInt("UPDATE_WORKERS"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			Backend:       strings.ToLower(v.GetString("CACHE_BACKEND")),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
	}
}
