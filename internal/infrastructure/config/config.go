package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs session tokens; PasswordHash is the bcrypt hash of the
	// shared password; AdminKey authorizes the full-board wipe endpoint.
	JWTSecret    string        `env:"JWT_SECRET"`
	PasswordHash string        `env:"PASSWORD_HASH"`
	AdminKey     string        `env:"ADMIN_KEY"`
	SessionTTL   time.Duration `env:"SESSION_TTL, default=24h"`

	// PublicBoard exposes GET /api/stamps without a session, matching the
	// original unauthenticated deployment variant.
	PublicBoard    bool     `env:"PUBLIC_BOARD, default=false"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:5173"`

	Board BoardConfig
	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type BoardConfig struct {
	GlobalCeiling   int    `env:"BOARD_GLOBAL_CEILING,   default=300"`
	PerUserCeiling  int    `env:"BOARD_PER_USER_CEILING, default=10"`
	FullBoardPolicy string `env:"BOARD_FULL_POLICY,      default=wipe"`
}

type StoreConfig struct {
	// Backend selects the board persistence: file, sqlite, or mongo.
	Backend    string `env:"STORE_BACKEND, default=file"`
	FilePath   string `env:"STAMPS_FILE,   default=stamps.json"`
	SQLitePath string `env:"SQLITE_PATH,   default=stamps.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=stampboard"`
}

type RedisConfig struct {
	// Addr left empty disables Redis (and with it duplicate suppression).
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
