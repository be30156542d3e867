package config

import (
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	Minio struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		UseSSL    bool
	}
	Storage struct {
		Bucket                 string // permanent attachment container
		StagingBucket          string // container for staged (uncommitted) uploads
		SignedURLExpireMinutes int    // lifetime of presigned read URLs
		CacheMaxAgeMinutes     int    // client cache-control max-age for served blobs
		MaxUploadBytes         int64
	}
	Thumbnail struct {
		PrewarmSizes string // comma-separated WxHxA triples, e.g. "64x64x1,256x256x0"
	}
	JWT struct {
		SecretKey string
		Algorithm string
		Expire    int
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode  string
		Group string
	}
	DomainName string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// MinIO
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	config.Minio.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	config.Minio.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	// Storage
	config.Storage.Bucket = os.Getenv("ATTACHMENT_BUCKET")
	if config.Storage.Bucket == "" {
		config.Storage.Bucket = "attachments"
	}
	config.Storage.StagingBucket = os.Getenv("ATTACHMENT_STAGING_BUCKET")
	if config.Storage.StagingBucket == "" {
		config.Storage.StagingBucket = "attachment-staging"
	}
	if val := os.Getenv("SIGNED_URL_EXPIRE_MINUTES"); val != "" {
		if minutes, err := strconv.Atoi(val); err == nil && minutes > 0 {
			config.Storage.SignedURLExpireMinutes = minutes
		}
	}
	if config.Storage.SignedURLExpireMinutes == 0 {
		config.Storage.SignedURLExpireMinutes = 60
	}
	if val := os.Getenv("CACHE_MAX_AGE_MINUTES"); val != "" {
		if minutes, err := strconv.Atoi(val); err == nil && minutes > 0 {
			config.Storage.CacheMaxAgeMinutes = minutes
		}
	}
	if config.Storage.CacheMaxAgeMinutes == 0 {
		config.Storage.CacheMaxAgeMinutes = 1440
	}
	if val := os.Getenv("MAX_UPLOAD_BYTES"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil && size > 0 {
			config.Storage.MaxUploadBytes = size
		}
	}
	if config.Storage.MaxUploadBytes == 0 {
		config.Storage.MaxUploadBytes = 52428800 // Default 50MB
	}

	// Thumbnail prewarm
	config.Thumbnail.PrewarmSizes = os.Getenv("THUMBNAIL_PREWARM_SIZES")
	if config.Thumbnail.PrewarmSizes == "" {
		config.Thumbnail.PrewarmSizes = "64x64x1,256x256x0"
	}

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	config.JWT.Algorithm = os.Getenv("JWT_ALGORITHM")
	if val := os.Getenv("JWT_EXPIRE"); val != "" {
		if expire, err := strconv.Atoi(val); err == nil {
			config.JWT.Expire = expire
		}
	}
	if config.JWT.Expire == 0 {
		config.JWT.Expire = 3600 * 24 * 7
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	if grafanaEndpoint == "" {
		grafanaEndpoint = "https://grafana.gauas.online"
	}
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-attachment-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.Environment.Group = os.Getenv("GROUP_NAME")
	if config.Environment.Group == "" {
		config.Environment.Group = "local"
	}

	config.DomainName = os.Getenv("DOMAIN_NAME")
	if config.DomainName == "" {
		config.DomainName = "localhost:8080"
	}

	return &config
}
