package main

import (
	"context"
	"net/http"
	"time"

	blobfs "pet-adoption-api/internal/adapters/blob/fs"
	blobmem "pet-adoption-api/internal/adapters/blob/memory"
	blobs3 "pet-adoption-api/internal/adapters/blob/s3"
	"pet-adoption-api/internal/adapters/auth/idp"
	pg "pet-adoption-api/internal/adapters/storage/postgres"
	"pet-adoption-api/internal/platform/config"
	"pet-adoption-api/internal/platform/logger"
	"pet-adoption-api/internal/ports/auth"
	"pet-adoption-api/internal/ports/blob"
	"pet-adoption-api/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env local para dev; en prod las vars ya están en el entorno
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.NewFromEnv()

	opts := router.Options{Log: log}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("db open failed", map[string]any{"error": err.Error()})
			return
		}
		defer db.Close()

		if cfg.AutoMigrate {
			if err := pg.Migrate(db); err != nil {
				log.Error("db migrate failed", map[string]any{"error": err.Error()})
				return
			}
		}
		opts.DB = db
		log.Info("storage: postgres", nil)
	} else {
		log.Warn("storage: in-memory (set DB_DSN for postgres)", nil)
	}

	blobs, err := openBlobStore(cfg)
	if err != nil {
		log.Error("blob store init failed", map[string]any{"driver": cfg.BlobDriver, "error": err.Error()})
		return
	}
	opts.Blobs = blobs
	log.Info("blob store ready", map[string]any{"driver": cfg.BlobDriver})

	if cfg.BlobDriver == "fs" {
		opts.UploadsDir = cfg.BlobFSDir
		opts.UploadsPath = cfg.BlobFSBase
	}

	var verifier auth.AuthVerifier
	if cfg.AuthBaseURL != "" {
		idpClient, err := idp.NewClient(idp.Config{
			BaseURL: cfg.AuthBaseURL,
			APIKey:  cfg.AuthAPIKey,
		})
		if err != nil {
			log.Error("idp client init failed", map[string]any{"error": err.Error()})
			return
		}
		verifier = idp.NewVerifier(idpClient)
		log.Info("auth: external verifier", nil)
	} else {
		log.Warn("auth: dev mode (X-Debug-User-ID)", nil)
	}
	opts.AuthVerifier = verifier

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
	}
}

func openBlobStore(cfg config.Config) (blob.Store, error) {
	switch cfg.BlobDriver {
	case "s3":
		return blobs3.New(context.Background(), blobs3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	case "fs":
		return blobfs.New(cfg.BlobFSDir, cfg.BlobFSBase)
	default:
		return blobmem.New(), nil
	}
}
