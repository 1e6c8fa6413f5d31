package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"

	UploadDriverLocal = "local"
	UploadDriverAzure = "azure"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	MongoURI string
	MongoDB  string

	// Empty RedisAddr disables the token denylist and the activity queue.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ActivityQueueName string

	CORSOrigin string

	UploadDriver         string
	UploadDir            string
	UploadPublicPath     string
	MaxUploadBytes       int64
	AzureConnString      string
	AzureContainer       string
	AzurePublicURLPrefix string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:     getEnv("API_PORT", "5000"),
		JWTKey:      []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:      time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 120)) * time.Hour,
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "lexora"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "lexora"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "lexora"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		ActivityQueueName: getEnv("ACTIVITY_QUEUE_NAME", "lexora_activity_queue"),

		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),

		UploadDriver:         strings.ToLower(getEnv("UPLOAD_DRIVER", UploadDriverLocal)),
		UploadDir:            getEnv("UPLOAD_DIR", "uploads"),
		UploadPublicPath:     publicPath(getEnv("UPLOAD_PUBLIC_PATH", "/uploads")),
		MaxUploadBytes:       int64(getEnvAsInt("MAX_UPLOAD_MB", 5)) << 20,
		AzureConnString:      getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),
		AzureContainer:       getEnv("AZURE_STORAGE_CONTAINER", "lexora-images"),
		AzurePublicURLPrefix: getEnv("AZURE_PUBLIC_URL_PREFIX", ""),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// publicPath returns p with exactly one leading slash and no trailing one.
func publicPath(p string) string {
	p = strings.Trim(p, "/ ")
	if p == "" {
		p = "uploads"
	}
	return "/" + p
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
