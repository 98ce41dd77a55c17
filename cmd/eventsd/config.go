package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lomoval/eventstore/internal/logger"
	"github.com/lomoval/eventstore/internal/rabbit"
	internalhttp "github.com/lomoval/eventstore/internal/server/http"
	"github.com/lomoval/eventstore/internal/storagebuilder"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type Config struct {
	HTTPServer internalhttp.Config
	Logger     logger.Config
	Storage    storagebuilder.Config
	Rabbit     rabbit.Config
}

func NewConfig(configFile string) (Config, error) {
	config := Config{}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("httpServer.host", "127.0.0.1")
	v.SetDefault("httpServer.port", "8005")
	v.SetDefault("logger.level", "WARN")
	v.SetDefault("logger.format", "text")
	v.SetDefault("storage.storageType", "memory")
	v.SetDefault("storage.database.driver", "postgres")
	v.SetDefault("storage.database.path", "./events.db")
	v.SetDefault("rabbit.enabled", false)
	v.SetDefault("rabbit.host", "127.0.0.1")
	v.SetDefault("rabbit.port", "5672")
	v.SetDefault("rabbit.user", "user")
	v.SetDefault("rabbit.password", "pass")
	v.SetDefault("rabbit.queue", "events.changes")

	if configFile != "" {
		v.SetConfigFile(configFile)
		err := v.ReadInConfig()
		if err != nil {
			return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
		}
	}
	keys := v.AllKeys()
	for _, key := range keys {
		env := v.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			err := v.BindEnv(key, env[len(envConfigPrefix):])
			if err != nil {
				return Config{}, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	err := v.Unmarshal(&config)
	if err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return config, nil
}
