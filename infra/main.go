package infra

import (
	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/infra/produce"
)

type Infra struct {
	Telemetry *TelemetryClient
	Logger    *LoggerClient
	Redis     *RedisClient
	RabbitMQ  *RabbitMQClient
	Storage   *StorageClient
	Produce   *produce.Produce
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	telemetry := InitTelemetryClient(cfg.EnvConfig)
	if telemetry == nil {
		panic("Failed to initialize Telemetry service")
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
	if rabbitMQ == nil {
		panic("Failed to initialize RabbitMQ service")
	}

	storage := InitStorageClient(cfg.EnvConfig)
	if storage == nil {
		panic("Failed to initialize Storage service")
	}

	produceService := produce.InitProduce(rabbitMQ.Channel)
	if produceService == nil {
		panic("Failed to initialize Produce service")
	}

	infraInstance = &Infra{
		Telemetry: telemetry,
		Logger:    logger,
		Redis:     redis,
		RabbitMQ:  rabbitMQ,
		Storage:   storage,
		Produce:   produceService,
	}

	return infraInstance
}

func GetClient() *Infra {
	if infraInstance == nil {
		panic("Infra not initialized. Call InitInfra() first.")
	}
	return infraInstance
}
