// Package config loads typed configuration structs from environment
// variables, with .env autoloading and per-type caching so every component
// observes the same parsed values.
//
// It wraps `github.com/caarlos0/env/v11` and `github.com/joho/godotenv`;
// each package that needs configuration declares its own struct with `env`
// tags and calls Load or MustLoad.
package config
