package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	GinMode       string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	OpenAIAPIKey  string

	LogLevel  string
	LogFormat string

	ImageStore         ImageStoreConfig
	ImageUploadTimeout time.Duration

	AuditQueueSize    int
	AuditWorkers      int
	AuditWriteTimeout time.Duration

	OverdueReportSchedule string

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// ImageStoreConfig holds the media store credentials injected into the image store.
type ImageStoreConfig struct {
	Provider      string
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PublicBaseURL string
}

var defaults = map[string]any{
	"PORT":                    "8080",
	"GIN_MODE":                "debug",
	"DB_DRIVER":               "mysql",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "3306",
	"DB_USER":                 "taskuser",
	"DB_PASSWORD":             "taskpassword",
	"DB_NAME":                 "task_tracker",
	"DB_PATH":                 "task_tracker.db",
	"REDIS_HOST":              "localhost",
	"REDIS_PORT":              "6379",
	"SESSION_SECRET":          "default-secret-key-change-me",
	"OPENAI_API_KEY":          "",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "text",
	"IMAGE_STORE_PROVIDER":    "",
	"IMAGE_STORE_BUCKET":      "",
	"IMAGE_STORE_REGION":      "us-east-1",
	"IMAGE_STORE_ENDPOINT":    "",
	"IMAGE_STORE_ACCESS_KEY":  "",
	"IMAGE_STORE_SECRET_KEY":  "",
	"IMAGE_STORE_USE_SSL":     true,
	"IMAGE_PUBLIC_BASE_URL":   "",
	"IMAGE_UPLOAD_TIMEOUT":    "5s",
	"AUDIT_QUEUE_SIZE":        256,
	"AUDIT_WORKERS":           1,
	"AUDIT_WRITE_TIMEOUT":     "5s",
	"OVERDUE_REPORT_SCHEDULE": "@every 1h",
	"ADMIN_USERNAME":          "",
	"ADMIN_EMAIL":             "",
	"ADMIN_PASSWORD":          "",
}

// Load reads the configuration from environment variables, falling back to defaults.
func Load() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Port:          v.GetString("PORT"),
		GinMode:       v.GetString("GIN_MODE"),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBPath:        v.GetString("DB_PATH"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		ImageStore: ImageStoreConfig{
			Provider:      strings.ToLower(v.GetString("IMAGE_STORE_PROVIDER")),
			Bucket:        v.GetString("IMAGE_STORE_BUCKET"),
			Region:        v.GetString("IMAGE_STORE_REGION"),
			Endpoint:      v.GetString("IMAGE_STORE_ENDPOINT"),
			AccessKey:     v.GetString("IMAGE_STORE_ACCESS_KEY"),
			SecretKey:     v.GetString("IMAGE_STORE_SECRET_KEY"),
			UseSSL:        v.GetBool("IMAGE_STORE_USE_SSL"),
			PublicBaseURL: strings.TrimRight(v.GetString("IMAGE_PUBLIC_BASE_URL"), "/"),
		},
		ImageUploadTimeout:    v.GetDuration("IMAGE_UPLOAD_TIMEOUT"),
		AuditQueueSize:        v.GetInt("AUDIT_QUEUE_SIZE"),
		AuditWorkers:          v.GetInt("AUDIT_WORKERS"),
		AuditWriteTimeout:     v.GetDuration("AUDIT_WRITE_TIMEOUT"),
		OverdueReportSchedule: schedule(v.GetString("OVERDUE_REPORT_SCHEDULE")),
		AdminUsername:         v.GetString("ADMIN_USERNAME"),
		AdminEmail:            v.GetString("ADMIN_EMAIL"),
		AdminPassword:         v.GetString("ADMIN_PASSWORD"),
	}
}

// schedule maps "off" to an empty spec, which disables the job.
func schedule(spec string) string {
	spec = strings.TrimSpace(spec)
	if strings.EqualFold(spec, "off") {
		return ""
	}
	return spec
}

// HasBootstrapAdmin reports whether an admin account should be ensured at startup.
func (c *Config) HasBootstrapAdmin() bool {
	return c.AdminUsername != "" && c.AdminEmail != "" && c.AdminPassword != ""
}
