package main

import (
	"testing"

	"kisansarathi/pkg/types"

	"github.com/stretchr/testify/assert"
)

func configFromEnv(t *testing.T, env map[string]string) (*types.Config, error) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
	return loadConfig()
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	_, err := configFromEnv(t, map[string]string{"DATABASE_URL": ""})
	assert.ErrorContains(t, err, "DATABASE_URL")
}
