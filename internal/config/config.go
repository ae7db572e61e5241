package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	ListingConfig
}

type EnvConfig interface {
	GetListenAddr() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	Listing
}

var loadDotEnv sync.Once

// New returns the environment backed configuration. A .env file in the working
// directory, when present, is loaded first and never overrides variables that
// are already set.
func New() Config {
	loadDotEnv.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded")
		}
	})
	return mainConfig{}
}
