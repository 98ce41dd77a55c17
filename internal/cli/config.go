package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lomoval/eventstore/internal/identity"
	"github.com/lomoval/eventstore/internal/logger"
	"github.com/lomoval/eventstore/internal/remote"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type IdentityConfig struct {
	Name   string
	Token  string
	Secret string
}

type Config struct {
	Remote   remote.Config
	Identity IdentityConfig
	Logger   logger.Config
}

// NewConfig merges defaults with an optional config file. Values written as "$env:NAME"
// are read from the environment, which may be filled from a .env file.
func NewConfig(configFile string) (Config, error) {
	config := Config{}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("remote.url", "http://127.0.0.1:8005/")
	v.SetDefault("remote.timeout", "30s")
	v.SetDefault("identity.name", "")
	v.SetDefault("identity.token", "")
	v.SetDefault("identity.secret", "")
	v.SetDefault("logger.level", "WARN")
	v.SetDefault("logger.format", "text")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
		}
	}
	for _, key := range v.AllKeys() {
		env := v.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			if err := v.BindEnv(key, env[len(envConfigPrefix):]); err != nil {
				return config, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return config, nil
}

// Provider picks the token when one is configured, the plain name otherwise.
func (c IdentityConfig) Provider() identity.Provider {
	if c.Token != "" {
		return identity.NewToken(c.Token, c.Secret)
	}
	return identity.Static(c.Name)
}
