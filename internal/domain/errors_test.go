package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayError_MessageRendering(t *testing.T) {
	err := NewGatewayError(KindBusinessFailure, "Declined")
	assert.Equal(t, "BUSINESS_FAILURE: Declined", err.Error())

	wrapped := WrapGatewayError(KindTransportFailure, "failed to reach gateway", errors.New("dial tcp: timeout"))
	assert.Equal(t, "TRANSPORT_FAILURE: failed to reach gateway: dial tcp: timeout", wrapped.Error())
}

func TestGatewayError_UnwrapChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapGatewayError(KindTransportFailure, "failed to reach gateway", cause)

	assert.True(t, errors.Is(err, cause))

	outer := fmt.Errorf("charging order 42: %w", err)
	gwErr, ok := AsGatewayError(outer)
	require.True(t, ok)
	assert.Equal(t, KindTransportFailure, gwErr.Kind)
	assert.True(t, errors.Is(outer, cause))
}

func TestGatewayError_WithOriginal(t *testing.T) {
	record := map[string]string{"status": "0", "error": "Declined"}
	err := NewGatewayError(KindBusinessFailure, "Declined").WithOriginal(record)

	original, ok := err.Original.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "0", original["status"])
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("order.id", "must be provided")

	assert.Equal(t, KindValidationFailure, err.Kind)
	assert.Equal(t, "order.id: must be provided", err.Message)
	assert.True(t, IsKind(err, KindValidationFailure))
}

func TestIsKind_NonGatewayErrors(t *testing.T) {
	assert.False(t, IsKind(errors.New("plain"), KindTransportFailure))
	assert.False(t, IsKind(nil, KindTransportFailure))
}

func TestFailureClassification(t *testing.T) {
	assert.True(t, IsBusinessFailure(NewGatewayError(KindBusinessFailure, "Declined")))
	assert.False(t, IsBusinessFailure(NewGatewayError(KindTransportFailure, "down")))

	assert.True(t, IsInfrastructureFailure(NewGatewayError(KindTransportFailure, "down")))
	assert.True(t, IsInfrastructureFailure(NewGatewayError(KindMalformedResponse, "garbage")))
	assert.False(t, IsInfrastructureFailure(NewGatewayError(KindBusinessFailure, "Declined")))
	assert.False(t, IsInfrastructureFailure(NewGatewayError(KindValidationFailure, "bad arg")))
}
