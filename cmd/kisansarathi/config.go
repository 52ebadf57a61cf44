package main

import (
	"context"
	"fmt"

	"kisansarathi/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

const (
	storageBackendS3       = "s3"
	storageBackendSupabase = "supabase"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8000
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 30
	}

	return c, nil
}

// validateServeConfig checks the settings only the HTTP server needs.
func validateServeConfig(c *types.Config) error {
	if c.CognitoIssuerURL == "" || c.CognitoClientID == "" {
		return fmt.Errorf("set COGNITO_ISSUER_URL and COGNITO_CLIENT_ID")
	}

	if c.CookieHashKey == "" || c.CookieBlockKey == "" {
		return fmt.Errorf("set COOKIE_HASH_KEY and COOKIE_BLOCK_KEY")
	}

	switch c.StorageBackend {
	case storageBackendS3:
	case storageBackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("set SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY for the supabase storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q: want %q or %q", c.StorageBackend, storageBackendS3, storageBackendSupabase)
	}

	return nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
