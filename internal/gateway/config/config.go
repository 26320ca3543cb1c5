package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	Router      RouterConfig
	Blob        BlobConfig
	Defaults    DefaultsConfig
}

type RouterConfig struct {
	APIKey       string
	BaseURL      string
	AppURL       string
	AppTitle     string
	DefaultModel string
	SummaryModel string
	GeminiKey    string
}

type BlobConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// DefaultsConfig supplies the tenant ids used when a request omits its own.
type DefaultsConfig struct {
	OrgID     string
	ProjectID string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:        *port,
		Env:         env,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Router: RouterConfig{
			APIKey:       strings.TrimSpace(os.Getenv("OPENROUTER_KEY")),
			BaseURL:      strings.TrimSpace(os.Getenv("ROUTER_BASE_URL")),
			AppURL:       firstNonEmpty(strings.TrimSpace(os.Getenv("APP_URL")), "http://localhost:3000"),
			AppTitle:     firstNonEmpty(strings.TrimSpace(os.Getenv("APP_TITLE")), "AI Workbench"),
			DefaultModel: firstNonEmpty(strings.TrimSpace(os.Getenv("DEFAULT_MODEL")), "openai/gpt-4.1-mini"),
			SummaryModel: firstNonEmpty(strings.TrimSpace(os.Getenv("SUMMARY_MODEL")), "openai/gpt-4.1-mini"),
			GeminiKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		},
		Blob: loadBlobConfig(env),
		Defaults: DefaultsConfig{
			OrgID:     firstNonEmpty(strings.TrimSpace(os.Getenv("DEFAULT_ORG_ID")), "demo"),
			ProjectID: firstNonEmpty(strings.TrimSpace(os.Getenv("DEFAULT_PROJECT_ID")), "proj"),
		},
	}, nil
}

func loadBlobConfig(env string) BlobConfig {
	endpoint := resolveBlobEndpoint(env)
	return BlobConfig{
		Enabled:   strings.EqualFold(strings.TrimSpace(env), "local") || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("BLOB_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("BLOB_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("BLOB_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("BLOB_S3_BUCKET")), "workbench-artifacts"),
		UseSSL:    resolveBlobUseSSL(env),
	}
}

func resolveBlobEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("BLOB_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("BLOB_S3_ENDPOINT"))
}

func resolveBlobUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("BLOB_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
