package main

import (
	"errors"

	"github.com/joeshaw/envdecode"
)

// env holds fallbacks for flags that were not given on the command line.
type env struct {
	Token string `env:"OEMCERT_TOKEN"`
	URL   string `env:"OEMCERT_URL"`
}

func loadEnv() (*env, error) {
	var e env
	if err := envdecode.Decode(&e); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, err
	}
	return &e, nil
}
