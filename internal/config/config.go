package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`

	RoomParticipantCapacity int `env:"ROOM_PARTICIPANT_CAPACITY" envDefault:"100"  validate:"min=1"`
	RoomMessageCapacity     int `env:"ROOM_MESSAGE_CAPACITY"     envDefault:"1000" validate:"min=1"`

	// Per-session inbound chat throttle.
	WsMessageRate  float64 `env:"WS_MESSAGE_RATE"  envDefault:"10" validate:"gt=0"`
	WsMessageBurst int     `env:"WS_MESSAGE_BURST" envDefault:"20" validate:"min=1"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
