package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.RWMutex
	loaded = make(map[string]any)

	defaultEnvLoaded sync.Once
)

// Load populates the provided configuration struct from environment
// variables. Each unique configuration type is parsed at most once per
// process; subsequent calls for the same type return the cached value.
//
// A .env file in the working directory is loaded on first use. A missing
// .env file is not an error.
//
// Example:
//
//	type MailerConfig struct {
//		SenderEmail string `env:"SENDER_EMAIL,required"`
//	}
//
//	var cfg MailerConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// The .env file might not exist and that's ok.
		_ = godotenv.Load()
	})

	typeName := typeNameOf[T]()

	mu.RLock()
	if cached, ok := loaded[typeName]; ok {
		*v = cached.(T)
		mu.RUnlock()
		return nil
	}
	mu.RUnlock()

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	mu.Lock()
	// Another goroutine may have won the race; keep the first parsed value
	// so every caller observes the same configuration.
	if cached, ok := loaded[typeName]; ok {
		*v = cached.(T)
	} else {
		loaded[typeName] = *v
	}
	mu.Unlock()

	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Useful for configurations required for the application to start.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeNameOf[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
