package config

import (
	"log"
	"os"
)

type Config struct {
	Port          string
	DBDSN         string
	MediaDir      string
	LogFile       string
	JWTSecret     string
	GatewayKeyID  string
	GatewaySecret string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "campusbay.db" // sqlite file in project root
	}
	media := os.Getenv("MEDIA_DIR")
	if media == "" {
		media = "./uploads"
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./campusbay.log"
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-only-secret-change-me"
		log.Println("[config] JWT_SECRET not set; using insecure dev default")
	}

	cfg := Config{
		Port:          port,
		DBDSN:         dsn,
		MediaDir:      media,
		LogFile:       logFile,
		JWTSecret:     jwtSecret,
		GatewayKeyID:  os.Getenv("GATEWAY_KEY_ID"),
		GatewaySecret: os.Getenv("GATEWAY_SECRET"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile)
	return cfg
}
