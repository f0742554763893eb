package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., gateway transaction key)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for retrieving gateway credentials
// from a secret management service.
// Supports multiple backends: AWS Secrets Manager, HashiCorp Vault, local files.
// Implementations are responsible for authentication with the backend and for
// caching secrets appropriately (with TTL).
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - AWS: "goemerchant/{environment}/gateway_id"
	//   - Vault: "secret/data/goemerchant/{environment}"
	//   - Local: relative file path under the configured base directory
	// Returns error if the secret does not exist, permissions are
	// insufficient, or the backend is unavailable.
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret (provisioning/rotation operations)
	// and returns the new version identifier.
	PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (version string, err error)

	// DeleteSecret permanently deletes a secret (admin operations only)
	DeleteSecret(ctx context.Context, path string) error
}
