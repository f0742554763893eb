package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fortepay/goemerchant-gateway/internal/adapters/ports"
	"go.uber.org/zap"
)

// localSecretManager implements SecretManagerAdapter using the local filesystem.
// WARNING: development only. Use AWS Secrets Manager or Vault in production.
type localSecretManager struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalSecretManager creates a new local filesystem secret manager
func NewLocalSecretManager(basePath string, logger *zap.Logger) ports.SecretManagerAdapter {
	return &localSecretManager{
		basePath: basePath,
		logger:   logger,
	}
}

// GetSecret retrieves a secret from the local filesystem. Files may hold
// either plain text or a JSON document with value/tags/created_at.
func (m *localSecretManager) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	filePath := filepath.Join(m.basePath, secretPath)

	m.logger.Debug("reading secret from filesystem",
		zap.String("path", secretPath),
	)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	var secretData struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &secretData); err == nil && secretData.Value != "" {
		return &ports.Secret{
			Value:     secretData.Value,
			Version:   "v1",
			Metadata:  secretData.Tags,
			CreatedAt: secretData.CreatedAt,
		}, nil
	}

	return &ports.Secret{
		Value:   strings.TrimSpace(string(data)),
		Version: "v1",
	}, nil
}

// PutSecret stores a secret on the local filesystem as JSON with metadata
func (m *localSecretManager) PutSecret(ctx context.Context, secretPath, secretValue string, tags map[string]string) (string, error) {
	filePath := filepath.Join(m.basePath, secretPath)

	m.logger.Info("storing secret to filesystem",
		zap.String("path", secretPath),
	)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	secretData := map[string]interface{}{
		"value":      secretValue,
		"tags":       tags,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(secretData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal secret: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write secret: %w", err)
	}

	return "v1", nil
}

// DeleteSecret removes a secret from the local filesystem
func (m *localSecretManager) DeleteSecret(ctx context.Context, secretPath string) error {
	filePath := filepath.Join(m.basePath, secretPath)

	m.logger.Info("deleting secret from filesystem",
		zap.String("path", secretPath),
	)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("secret not found: %s", secretPath)
		}
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	return nil
}
