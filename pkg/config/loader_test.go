package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notikit/notikit/pkg/config"
)

type testConfigSuccess struct {
	Value string `env:"TEST_VALUE_SUCCESS" envDefault:"fallback"`
	Count int    `env:"TEST_COUNT_SUCCESS" envDefault:"5"`
}

type testConfigDefault struct {
	Value string `env:"TEST_VALUE_DEFAULT" envDefault:"fallback"`
	Count int    `env:"TEST_COUNT_DEFAULT" envDefault:"5"`
}

type testConfigSingleton struct {
	Value string `env:"TEST_VALUE_SINGLETON" envDefault:"fallback"`
}

type testConfigRequired struct {
	Value string `env:"TEST_VALUE_REQUIRED,required"`
}

func TestLoad_Success(t *testing.T) {
	t.Setenv("TEST_VALUE_SUCCESS", "from_env")
	t.Setenv("TEST_COUNT_SUCCESS", "10")

	var cfg testConfigSuccess
	err := config.Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Value)
	assert.Equal(t, 10, cfg.Count)
}

func TestLoad_DefaultValues(t *testing.T) {
	os.Unsetenv("TEST_VALUE_DEFAULT")
	os.Unsetenv("TEST_COUNT_DEFAULT")

	var cfg testConfigDefault
	err := config.Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "fallback", cfg.Value)
	assert.Equal(t, 5, cfg.Count)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("TEST_VALUE_REQUIRED")

	var cfg testConfigRequired
	err := config.Load(&cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_CachesPerType(t *testing.T) {
	t.Setenv("TEST_VALUE_SINGLETON", "first")

	var first testConfigSingleton
	require.NoError(t, config.Load(&first))

	// A later change must not be observed; the first parse wins.
	t.Setenv("TEST_VALUE_SINGLETON", "second")

	var second testConfigSingleton
	require.NoError(t, config.Load(&second))

	assert.Equal(t, "first", second.Value)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *testConfigSuccess
	err := config.Load(cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}
