package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// config holds settings read from the environment and an optional .env file
type config struct {
	DB      string
	Base    string
	Metrics bool
}

func loadConfig() (config, error) {
	envfile := ".env"
	if env := os.Getenv("TURTLE_ENV"); env != "" {
		envfile = ".env." + env
	}
	if err := godotenv.Load(envfile); err != nil && !os.IsNotExist(err) {
		return config{}, errors.Wrapf(err, "loading %s", envfile)
	}

	cfg := config{
		DB:   os.Getenv("TURTLE_DB"),
		Base: os.Getenv("TURTLE_BASE"),
	}
	if v := os.Getenv("TURTLE_METRICS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return config{}, errors.Wrap(err, "parsing TURTLE_METRICS")
		}
		cfg.Metrics = enabled
	}
	return cfg, nil
}

// database splits the database path off args unless TURTLE_DB supplies it
func (c config) database(args []string) (string, []string) {
	if c.DB != "" {
		return c.DB, args
	}
	if len(args) == 0 {
		return "", nil
	}
	return args[0], args[1:]
}
