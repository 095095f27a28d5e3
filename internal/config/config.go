package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the loaded configuration to the fx graph.
var Module = fx.Provide(Load)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string

	// Lark application credentials and webhook secrets.
	AppID             string
	AppSecret         string
	VerificationToken string
	EncryptKey        string
	BaseURL           string

	// Bitable identifiers and field names.
	BaseToken    string
	TableID      string
	ManagerField string
	StatusField  string

	// Report recency window in days.
	WindowDays int

	// ConsistencyPolicy selects how record mutations are combined with the
	// webhook response: "strong" awaits the write, "eventual" hands it to
	// the background runner.
	ConsistencyPolicy string

	// RedisAddr, when set, backs the event dedup store with Redis instead
	// of process memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

const (
	PolicyStrong   = "strong"
	PolicyEventual = "eventual"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "reportweek"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		Port:              getenv("PORT", "8080"),
		AppID:             strings.TrimSpace(getenv("LARK_APP_ID", "")),
		AppSecret:         strings.TrimSpace(getenv("LARK_APP_SECRET", "")),
		VerificationToken: strings.TrimSpace(getenv("LARK_VERIFICATION_TOKEN", "")),
		EncryptKey:        strings.TrimSpace(getenv("LARK_ENCRYPT_KEY", "")),
		BaseURL:           strings.TrimRight(getenv("LARK_BASE_URL", "https://open.larksuite.com"), "/"),
		BaseToken:         strings.TrimSpace(getenv("LARK_BASE_TOKEN", "")),
		TableID:           strings.TrimSpace(getenv("LARK_TABLE_ID", "")),
		ManagerField:      getenv("LARK_MANAGER_FIELD", "SM test"),
		StatusField:       getenv("LARK_STATUS_FIELD", "Approver SM"),
		WindowDays:        getenvInt("REPORT_WINDOW_DAYS", 14),
		ConsistencyPolicy: normalizePolicy(getenv("CONSISTENCY_POLICY", PolicyStrong)),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("REDIS_DB", 0),
	}

	return cfg
}

func normalizePolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PolicyEventual:
		return PolicyEventual
	default:
		return PolicyStrong
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
