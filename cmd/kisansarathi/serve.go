package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kisansarathi/internal/advisory"
	"kisansarathi/internal/auth"
	"kisansarathi/internal/cache"
	"kisansarathi/internal/db"
	"kisansarathi/internal/eligibility"
	"kisansarathi/internal/server"
	"kisansarathi/internal/storage"
	"kisansarathi/internal/store"
	"kisansarathi/internal/weather"
	"kisansarathi/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if err := validateServeConfig(config); err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	documentRepo := store.NewDocumentRepository(pool)
	schemeRepo := store.NewSchemeRepository(pool)
	soilReportRepo := store.NewSoilReportRepository(pool)
	cropRepo := store.NewCropRequirementRepository(pool)
	userRepo := store.NewUserRepository(pool)

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	err = jwkCache.Register(ctx, auth.JWKSURL(config.CognitoIssuerURL))
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	documentBucket, videoBucket := buildBuckets(config, awsConfig)

	var weatherSource advisory.WeatherSource
	if config.OpenWeatherAPIKey != "" {
		client := weather.NewClient(config.OpenWeatherAPIKey, time.Duration(config.WeatherTimeoutSec)*time.Second)
		weatherSource = client

		if config.RedisURL != "" {
			redisClient, err := cache.Connect(ctx, config.RedisURL)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			ttl := time.Duration(config.WeatherCacheTTLSec) * time.Second
			weatherSource = weather.NewCached(logger, client, cache.NewRedisCache(redisClient, "kisansarathi"), ttl)
		}
	} else {
		logger.Warn("OPENWEATHER_API_KEY not set, recommendations will not include weather")
	}

	var analyzer server.SoilAnalyzer
	if config.GoogleAPIKey != "" {
		generator, err := advisory.NewGeminiGenerator(ctx, config.GoogleAPIKey, config.GeminiModel)
		if err != nil {
			return err
		}
		analyzer = advisory.NewSoilAnalyzer(generator)
	} else {
		logger.Warn("GOOGLE_API_KEY not set, soil analysis is disabled")
	}

	srv, err := server.New(config, logger, server.Dependencies{
		Documents:   documentRepo,
		Schemes:     schemeRepo,
		SoilReports: soilReportRepo,
		Users:       userRepo,
		Eligibility: eligibility.NewService(documentRepo, schemeRepo),
		Advisor:     advisory.NewService(logger, soilReportRepo, cropRepo, weatherSource),
		Analyzer:    analyzer,

		Authenticator: auth.NewCognito(cognitoidentityprovider.NewFromConfig(awsConfig), config.CognitoClientID),
		Verifier:      auth.NewVerifier(jwkCache, config.CognitoIssuerURL, config.CognitoClientID),

		DocumentBucket: documentBucket,
		VideoBucket:    videoBucket,
	})
	if err != nil {
		return err
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":    config.ServerPort,
			"storage": config.StorageBackend,
		}).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func buildBuckets(config *types.Config, awsConfig aws.Config) (storage.Bucket, storage.Bucket) {
	if config.StorageBackend == storageBackendSupabase {
		httpClient := &http.Client{Timeout: 60 * time.Second}
		return storage.NewSupabaseBucket(config.SupabaseURL, config.SupabaseServiceRoleKey, config.DocumentsBucket, httpClient),
			storage.NewSupabaseBucket(config.SupabaseURL, config.SupabaseServiceRoleKey, config.VideosBucket, httpClient)
	}

	s3Client := s3.NewFromConfig(awsConfig)
	return storage.NewS3Bucket(s3Client, config.DocumentsBucket), storage.NewS3Bucket(s3Client, config.VideosBucket)
}
