package config

import (
	"os"
	"strings"
)

// Config agrupa todo lo que la API lee de env.
// main llama godotenv.Load antes de FromEnv, así un .env local alcanza para dev.
type Config struct {
	Addr string

	// Storage: si DBDSN viene vacío, la API corre con repos in-memory.
	DBDSN       string
	AutoMigrate bool

	// Blob: memory | fs | s3
	BlobDriver string
	BlobFSDir  string
	BlobFSBase string // prefijo URL para archivos locales (default /uploads/animals)

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	// Authenticator externo (si BaseURL viene vacío => modo dev con X-Debug-User-ID)
	AuthBaseURL string
	AuthAPIKey  string
}

func FromEnv() Config {
	cfg := Config{
		Addr:        ":8080",
		DBDSN:       strings.TrimSpace(os.Getenv("DB_DSN")),
		AutoMigrate: boolEnv("AUTO_MIGRATE"),
		BlobDriver:  strings.TrimSpace(os.Getenv("BLOB_DRIVER")),
		BlobFSDir:   strings.TrimSpace(os.Getenv("BLOB_FS_DIR")),
		BlobFSBase:  strings.TrimSpace(os.Getenv("BLOB_FS_BASE_URL")),
		S3Bucket:    strings.TrimSpace(os.Getenv("BLOB_S3_BUCKET")),
		S3Region:    strings.TrimSpace(os.Getenv("BLOB_S3_REGION")),
		S3Endpoint:  strings.TrimSpace(os.Getenv("BLOB_S3_ENDPOINT")),
		S3PathStyle: boolEnv("BLOB_S3_PATH_STYLE"),
		AuthBaseURL: strings.TrimSpace(os.Getenv("AUTH_BASE_URL")),
		AuthAPIKey:  strings.TrimSpace(os.Getenv("AUTH_API_KEY")),
	}

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Addr = ":" + v
	}

	if cfg.BlobDriver == "" {
		cfg.BlobDriver = "memory"
	}
	if cfg.BlobFSDir == "" {
		cfg.BlobFSDir = "uploads/animals"
	}
	if cfg.BlobFSBase == "" {
		cfg.BlobFSBase = "/uploads/animals"
	}

	return cfg
}

func boolEnv(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}
