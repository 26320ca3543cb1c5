package app

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"workbench/internal/gateway/config"
	artifactrepo "workbench/internal/gateway/repository/artifact"
	"workbench/internal/gateway/repository/blob"
	kbrepo "workbench/internal/gateway/repository/kb"
	playbookrepo "workbench/internal/gateway/repository/playbook"
	runrepo "workbench/internal/gateway/repository/run"
	stylerepo "workbench/internal/gateway/repository/style"
	tenantrepo "workbench/internal/gateway/repository/tenant"
)

type gatewayStores struct {
	artifacts     artifactrepo.Store
	runs          runrepo.Store
	styles        stylerepo.Store
	conversations stylerepo.ConversationStore
	kb            kbrepo.Store
	playbooks     playbookrepo.Store
	tenants       tenantrepo.Store
	blobs         blob.Store
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	blobStore := chooseBlobStore(cfg)

	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		return initPostgresStores(dsn, blobStore)
	}
	log.Printf("stores: in-memory (DATABASE_URL not set)")
	return initInMemoryStores(blobStore), nil
}

func initPostgresStores(dsn string, blobStore blob.Store) (*gatewayStores, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	styleStore := stylerepo.NewPostgresStore(db)
	return &gatewayStores{
		artifacts:     artifactrepo.NewPostgresStore(db),
		runs:          runrepo.NewPostgresStore(db),
		styles:        styleStore,
		conversations: styleStore,
		kb:            kbrepo.NewPostgresStore(db),
		playbooks:     playbookrepo.NewPostgresStore(db),
		tenants:       tenantrepo.NewPostgresStore(db),
		blobs:         blobStore,
	}, nil
}

func initInMemoryStores(blobStore blob.Store) *gatewayStores {
	styleStore := stylerepo.NewMemoryStore()
	return &gatewayStores{
		artifacts:     artifactrepo.NewMemoryStore(),
		runs:          runrepo.NewMemoryStore(),
		styles:        styleStore,
		conversations: styleStore,
		kb:            kbrepo.NewMemoryStore(),
		playbooks:     playbookrepo.NewMemoryStore(),
		tenants:       tenantrepo.NewMemoryStore(),
		blobs:         blobStore,
	}
}

func chooseBlobStore(cfg *config.Config) blob.Store {
	s3Cfg := blob.S3Config{
		Endpoint:  cfg.Blob.Endpoint,
		Region:    cfg.Blob.Region,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		Bucket:    cfg.Blob.Bucket,
		UseSSL:    cfg.Blob.UseSSL,
	}
	if s3Cfg.Complete() {
		s3Store, err := blob.NewS3Store(s3Cfg)
		if err == nil {
			log.Printf("blob store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
			return s3Store
		}
		log.Printf("blob store: s3 init failed, falling back to memory: %v", err)
	} else if cfg.Blob.Enabled {
		log.Printf("blob store: using memory fallback (s3 config incomplete)")
	}
	return blob.NewMemoryStore()
}
