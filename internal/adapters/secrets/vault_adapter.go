package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/fortepay/goemerchant-gateway/internal/adapters/ports"
	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// VaultConfig contains configuration for the HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string

	// Token for token authentication
	Token string

	// AppRole credentials (if using AppRole auth)
	RoleID   string
	SecretID string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// Cache TTL
	CacheTTL time.Duration

	// Enable caching
	EnableCache bool

	// TLS configuration
	TLSSkipVerify bool
}

// DefaultVaultConfig returns default configuration for the Vault adapter
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		AuthMethod:  "token",
		MountPath:   "secret",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// vaultAdapter implements the SecretManagerAdapter port for HashiCorp Vault (KV v2)
type vaultAdapter struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultAdapter creates a new HashiCorp Vault adapter
func NewVaultAdapter(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		tlsConfig := &vault.TLSConfig{Insecure: true}
		if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
	)

	return &vaultAdapter{
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

// authenticateVault handles authentication with Vault
func authenticateVault(ctx context.Context, client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		data := map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		}
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", data)
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret retrieves a secret from the KV v2 engine.
// The stored secret data must carry the credential under a "value" key.
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		a.logger.Debug("secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	kv := a.client.KVv2(a.config.MountPath)

	startTime := time.Now()
	kvSecret, err := kv.Get(ctx, path)
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

	value, ok := kvSecret.Data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("secret %s has no string \"value\" key", path)
	}

	secret := &ports.Secret{
		Value:    value,
		Version:  fmt.Sprintf("%d", kvSecret.VersionMetadata.Version),
		Metadata: make(map[string]string),
	}
	if !kvSecret.VersionMetadata.CreatedTime.IsZero() {
		secret.CreatedAt = kvSecret.VersionMetadata.CreatedTime.Format(time.RFC3339)
	}

	a.cache.set(path, secret)
	return secret, nil
}

// PutSecret creates or updates a secret in the KV v2 engine
func (a *vaultAdapter) PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (string, error) {
	kv := a.client.KVv2(a.config.MountPath)

	data := map[string]interface{}{"value": value}
	for key, val := range metadata {
		data[key] = val
	}

	kvSecret, err := kv.Put(ctx, path, data)
	if err != nil {
		a.logger.Error("failed to put secret",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to put secret %s: %w", path, err)
	}

	a.cache.invalidate(path)
	return fmt.Sprintf("%d", kvSecret.VersionMetadata.Version), nil
}

// DeleteSecret removes all versions of a secret
func (a *vaultAdapter) DeleteSecret(ctx context.Context, path string) error {
	a.logger.Warn("deleting secret", zap.String("path", path))

	kv := a.client.KVv2(a.config.MountPath)
	if err := kv.DeleteMetadata(ctx, path); err != nil {
		return fmt.Errorf("failed to delete secret %s: %w", path, err)
	}

	a.cache.invalidate(path)
	return nil
}
