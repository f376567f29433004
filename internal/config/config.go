package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	DBDSN         string
	ServerPort    string
	SessionSecret string

	CORSOrigins []string

	// object storage: when GCSBucket is empty, files go to StorageDir on disk
	GCSBucket  string
	StorageDir string

	ExtractBaseURL string
	ExtractAPIKey  string

	InviteJWTSecret string

	// optional dashboard cache; empty disables it
	RedisAddr string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env:             os.Getenv("APP_ENV"),
		DBDSN:           os.Getenv("DB_DSN"),
		ServerPort:      os.Getenv("SERVER_PORT"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
		StorageDir:      os.Getenv("STORAGE_DIR"),
		ExtractBaseURL:  os.Getenv("EXTRACT_API_URL"),
		ExtractAPIKey:   os.Getenv("EXTRACT_API_KEY"),
		InviteJWTSecret: os.Getenv("INVITE_JWT_SECRET"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	if cfg.InviteJWTSecret == "" {
		log.Fatal("INVITE_JWT_SECRET is not set")
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = "./uploads"
	}

	return cfg
}
