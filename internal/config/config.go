package config

import (
	"errors"  // Validation errors
	"fmt"     // Error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // List parsing
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Blob backends selectable with BLOB_BACKEND
const (
	BackendAzure = "azure" // Azure Blob Storage with SAS read URLs
	BackendS3    = "s3"    // S3 compatible storage with presigned GET URLs
	BackendLocal = "local" // Local directory, URLs signed and served by this app
)

// Config holds the application configuration
type Config struct {
	AppPort     string // Application port
	IsProd      bool   // Is production environment
	MetricsAddr string // Prometheus listener address, empty disables it

	TrustedProxies []string // Proxies allowed to set client IP headers

	DBUser         string // Database user
	DBPassword     string // Database password
	DBHost         string // Database host
	DBPort         string // Database port
	DBName         string // Database name
	DBMaxOpenConns int    // Connection pool bound

	RedisAddr string // Redis server address
	RedisPass string // Redis password
	RedisDB   int    // Redis database number

	SessionTTL                     time.Duration // Session lifetime
	SessionCookie                  string        // Session cookie name
	RedirectAuthenticatedFromLogin bool          // Send logged-in users from /login to /

	BlobBackend      string        // azure, s3 or local
	AzureAccountName string        // Azure storage account
	AzureAccountKey  string        // Azure shared key
	AzureEndpoint    string        // Optional service URL override
	S3Bucket         string        // Bucket holding client prefixes
	S3Region         string        // Bucket region
	S3Endpoint       string        // Optional endpoint (MinIO etc.)
	S3AccessKey      string        // Static access key, falls back to default chain
	S3SecretKey      string        // Static secret key
	LocalBlobDir     string        // Root directory for the local backend
	BlobURLSecret    string        // HMAC secret for local signed URLs
	PublicBaseURL    string        // Base URL local signed URLs point at
	SignedURLTTL     time.Duration // Read URL validity

	SMTPHost string // Mail server host
	SMTPPort int    // Mail server port
	MailUser string // SMTP username
	MailPass string // SMTP password
	MailFrom string // Sender address

	MaxUploadBytes int64 // Multipart size limit
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	appPort := getEnv("APP_PORT", "8080")
	return &Config{
		AppPort:     appPort,                        // Application port
		IsProd:      os.Getenv("IS_PROD") == "true", // Is production environment
		MetricsAddr: os.Getenv("METRICS_ADDR"),      // Metrics listener

		TrustedProxies: getList("TRUSTED_PROXIES", []string{"127.0.0.1"}), // Reverse proxies

		DBUser:         os.Getenv("DB_USER"),            // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),        // Database password
		DBHost:         os.Getenv("DB_HOST"),            // Database host
		DBPort:         getEnv("DB_PORT", "3306"),       // Database port
		DBName:         os.Getenv("DB_NAME"),            // Database name
		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 10), // Pool bound

		RedisAddr: os.Getenv("REDIS_ADDR"), // Redis server address
		RedisPass: os.Getenv("REDIS_PASS"), // Redis password
		RedisDB:   redisDB,                 // Redis database number

		SessionTTL:                     getDuration("SESSION_TTL", 24*time.Hour),
		SessionCookie:                  getEnv("SESSION_COOKIE", "report_session"),
		RedirectAuthenticatedFromLogin: getEnv("AUTH_REDIRECT_FROM_LOGIN", "true") == "true",

		BlobBackend:      getEnv("BLOB_BACKEND", BackendAzure),
		AzureAccountName: os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_STORAGE_ACCOUNT_KEY"),
		AzureEndpoint:    os.Getenv("AZURE_STORAGE_ENDPOINT"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		LocalBlobDir:     os.Getenv("LOCAL_BLOB_DIR"),
		BlobURLSecret:    os.Getenv("BLOB_URL_SECRET"),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:"+appPort),
		SignedURLTTL:     getDuration("SIGNED_URL_TTL", 15*time.Minute),

		SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"), // Gmail by default
		SMTPPort: getInt("SMTP_PORT", 587),              // STARTTLS port
		MailUser: os.Getenv("GMAIL_USER"),               // SMTP username
		MailPass: os.Getenv("GMAIL_PASS"),               // SMTP password
		MailFrom: getEnv("MAIL_FROM", os.Getenv("GMAIL_USER")),

		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 32<<20)), // 32 MiB
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.DBHost == "" || c.DBName == "" {
		errs = append(errs, errors.New("DB_HOST and DB_NAME are required"))
	}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required"))
	}
	switch c.BlobBackend {
	case BackendAzure:
		if c.AzureAccountName == "" || c.AzureAccountKey == "" {
			errs = append(errs, errors.New("AZURE_STORAGE_ACCOUNT_NAME and AZURE_STORAGE_ACCOUNT_KEY are required"))
		}
	case BackendS3:
		if c.S3Bucket == "" || c.S3Region == "" {
			errs = append(errs, errors.New("S3_BUCKET and S3_REGION are required"))
		}
	case BackendLocal:
		if c.LocalBlobDir == "" || c.BlobURLSecret == "" {
			errs = append(errs, errors.New("LOCAL_BLOB_DIR and BLOB_URL_SECRET are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend))
	}
	if c.SignedURLTTL <= 0 {
		errs = append(errs, errors.New("SIGNED_URL_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// MailEnabled reports whether SMTP credentials were supplied
func (c *Config) MailEnabled() bool {
	return c.MailUser != "" && c.MailPass != ""
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// getList splits a comma separated value; "none" trusts nothing
func getList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	if strings.TrimSpace(v) == "none" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
