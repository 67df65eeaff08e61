package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // CRM_DATABASE_URL (required)
	HTTPAddr    string // CRM_HTTP_ADDR (default ":8080")
	NATSURL     string // CRM_NATS_URL (optional, empty = no events)
	AuthToken   string // CRM_AUTH_TOKEN (optional, empty = auth disabled)

	// Sync settings
	SyncInterval   time.Duration // CRM_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // CRM_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // CRM_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // CRM_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // CRM_SYNC_S3_KEY (default "crm/backup.jsonl")
	SyncGitRepo    string        // CRM_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // CRM_SYNC_GIT_FILE (default "crm.jsonl")
	SyncGitBranch  string        // CRM_SYNC_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("CRM_DATABASE_URL"),
		HTTPAddr:       envOrDefault("CRM_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("CRM_NATS_URL"),
		AuthToken:      os.Getenv("CRM_AUTH_TOKEN"),
		SyncS3Bucket:   os.Getenv("CRM_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("CRM_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("CRM_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("CRM_SYNC_S3_KEY", "crm/backup.jsonl"),
		SyncGitRepo:    os.Getenv("CRM_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("CRM_SYNC_GIT_FILE", "crm.jsonl"),
		SyncGitBranch:  envOrDefault("CRM_SYNC_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("CRM_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("CRM_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("CRM_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
