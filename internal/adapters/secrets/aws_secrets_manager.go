package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/fortepay/goemerchant-gateway/internal/adapters/ports"
	"go.uber.org/zap"
)

// AWSSecretsManagerConfig contains configuration for the AWS Secrets Manager adapter
type AWSSecretsManagerConfig struct {
	// AWS Region (e.g., "us-east-1")
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: Custom endpoint (for LocalStack testing)
	Endpoint string

	// Cache TTL for secrets (default: 5 minutes)
	CacheTTL time.Duration

	// Enable caching
	EnableCache bool
}

// DefaultAWSSecretsManagerConfig returns default configuration
func DefaultAWSSecretsManagerConfig(region string) *AWSSecretsManagerConfig {
	return &AWSSecretsManagerConfig{
		Region:      region,
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// awsSecretsManagerAdapter implements the SecretManagerAdapter port for AWS Secrets Manager
type awsSecretsManagerAdapter struct {
	client *secretsmanager.Client
	config *AWSSecretsManagerConfig
	logger *zap.Logger
	cache  *secretCache
}

// secretCache is a small in-memory TTL cache for secrets. Gateway
// credentials are read on every adapter construction, so repeated lookups
// should not hit the backend.
type secretCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	enabled bool
	ttl     time.Duration
}

type cacheEntry struct {
	secret    *ports.Secret
	expiresAt time.Time
}

// NewAWSSecretsManagerAdapter creates a new AWS Secrets Manager adapter
func NewAWSSecretsManagerAdapter(ctx context.Context, cfg *AWSSecretsManagerConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	var awsConfig aws.Config
	var err error

	if cfg.Profile != "" {
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithSharedConfigProfile(cfg.Profile),
		)
	} else {
		// Default credentials chain (IAM role in production)
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOptions := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := secretsmanager.NewFromConfig(awsConfig, clientOptions...)

	logger.Info("AWS Secrets Manager adapter initialized",
		zap.String("region", cfg.Region),
		zap.Bool("cache_enabled", cfg.EnableCache),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	return &awsSecretsManagerAdapter{
		client: client,
		config: cfg,
		logger: logger,
		cache: &secretCache{
			entries: make(map[string]*cacheEntry),
			enabled: cfg.EnableCache,
			ttl:     cfg.CacheTTL,
		},
	}, nil
}

// GetSecret retrieves a secret by its path
// Path format: "goemerchant/{environment}/gateway_id" or a full ARN
func (a *awsSecretsManagerAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		a.logger.Debug("secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	}

	startTime := time.Now()
	result, err := a.client.GetSecretValue(ctx, input)
	if err != nil {
		a.logger.Error("failed to retrieve secret",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	a.logger.Info("secret retrieved",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	secret := &ports.Secret{
		Value:    aws.ToString(result.SecretString),
		Version:  aws.ToString(result.VersionId),
		Metadata: make(map[string]string),
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.Format(time.RFC3339)
	}
	if result.ARN != nil {
		secret.Metadata["arn"] = *result.ARN
	}
	if result.Name != nil {
		secret.Metadata["name"] = *result.Name
	}

	a.cache.set(path, secret)
	return secret, nil
}

// PutSecret creates or updates a secret
func (a *awsSecretsManagerAdapter) PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (string, error) {
	updateInput := &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(path),
		SecretString: aws.String(value),
	}

	result, err := a.client.PutSecretValue(ctx, updateInput)
	if err != nil {
		// Secret may not exist yet; create it
		createInput := &secretsmanager.CreateSecretInput{
			Name:         aws.String(path),
			SecretString: aws.String(value),
			Description:  aws.String("GoEmerchant gateway credential"),
		}
		if len(metadata) > 0 {
			tags := make([]secretsmanagertypes.Tag, 0, len(metadata))
			for key, val := range metadata {
				tags = append(tags, secretsmanagertypes.Tag{
					Key:   aws.String(key),
					Value: aws.String(val),
				})
			}
			createInput.Tags = tags
		}

		createResult, createErr := a.client.CreateSecret(ctx, createInput)
		if createErr != nil {
			a.logger.Error("failed to create secret",
				zap.String("path", path),
				zap.Error(createErr),
			)
			return "", fmt.Errorf("failed to create secret: %w", createErr)
		}

		a.cache.invalidate(path)
		return aws.ToString(createResult.VersionId), nil
	}

	a.cache.invalidate(path)
	return aws.ToString(result.VersionId), nil
}

// DeleteSecret permanently deletes a secret
func (a *awsSecretsManagerAdapter) DeleteSecret(ctx context.Context, path string) error {
	a.logger.Warn("deleting secret",
		zap.String("path", path),
	)

	input := &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(path),
		ForceDeleteWithoutRecovery: aws.Bool(false),
		RecoveryWindowInDays:       aws.Int64(30),
	}

	if _, err := a.client.DeleteSecret(ctx, input); err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	a.cache.invalidate(path)
	return nil
}

// secretCache methods

func (c *secretCache) get(key string) *ports.Secret {
	if !c.enabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	return entry.secret
}

func (c *secretCache) set(key string, secret *ports.Secret) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{
		secret:    secret,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *secretCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
