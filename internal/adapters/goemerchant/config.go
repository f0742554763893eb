package goemerchant

import (
	"github.com/fortepay/goemerchant-gateway/internal/domain"
)

// Endpoint defaults for the production gateway. Callers override both for
// the sandbox environment.
const (
	DefaultEndpoint      = "https://secure.goemerchant.com/secure/gateway/xmlgateway.aspx"
	DefaultBatchEndpoint = "https://secure.goemerchant.com/secure/gateway/batchgateway.aspx"
)

// Routing selects which merchant account/processor a transaction runs
// against. Either the MID/TID/Processor trio or ProcessorID may be set,
// never both. The zero value means "use the gateway's account default".
type Routing struct {
	MID       string
	TID       string
	Processor string

	ProcessorID string
}

// IsZero reports whether no routing choice is present
func (r Routing) IsZero() bool {
	return r.MID == "" && r.TID == "" && r.Processor == "" && r.ProcessorID == ""
}

// Validate enforces the routing invariants: MID requires TID and Processor,
// and MID is mutually exclusive with ProcessorID.
func (r Routing) Validate() error {
	if r.MID != "" {
		if r.TID == "" {
			return domain.NewValidationError("tid", "tid must be provided if using mid")
		}
		if r.Processor == "" {
			return domain.NewValidationError("processor", "processor must be provided if using mid")
		}
	}
	if r.MID != "" && r.ProcessorID != "" {
		return domain.NewValidationError("processor_id", "mid and processor_id can not be used at the same time")
	}
	return nil
}

// Config is the immutable per-adapter gateway configuration. It is created
// once at adapter construction and never mutated; every operation is a pure
// function of (config, inputs) plus one transport effect.
type Config struct {
	// TransactionCenterID is the gateway API login id (transaction_center_id
	// on the wire). Required.
	TransactionCenterID string

	// GatewayID is the gateway transaction key (gateway_id on the wire). Required.
	GatewayID string

	// Routing holds the adapter-level default merchant routing
	Routing Routing

	// Endpoint is the single-transaction XML gateway URL
	Endpoint string

	// BatchEndpoint is the multipart batch upload URL
	BatchEndpoint string
}

// Validate checks the required credentials and routing invariants
func (c Config) Validate() error {
	if c.TransactionCenterID == "" {
		return domain.NewValidationError("transaction_center_id", "api login id must be provided")
	}
	if c.GatewayID == "" {
		return domain.NewValidationError("gateway_id", "transaction key must be provided")
	}
	return c.Routing.Validate()
}

// withDefaults fills in the production endpoints when unset
func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.BatchEndpoint == "" {
		c.BatchEndpoint = DefaultBatchEndpoint
	}
	return c
}
