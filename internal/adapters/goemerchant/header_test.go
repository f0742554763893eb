package goemerchant

import (
	"testing"

	"github.com/fortepay/goemerchant-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRouting_NoRoutingAnywhere(t *testing.T) {
	fields, err := resolveRouting(Routing{}, Routing{})
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestResolveRouting_InstanceTripleUsedByDefault(t *testing.T) {
	instance := Routing{MID: "m-1", TID: "t-1", Processor: "p-1"}

	fields, err := resolveRouting(instance, Routing{})
	require.NoError(t, err)

	assert.Equal(t, []Field{
		{Key: "mid", Value: "m-1"},
		{Key: "tid", Value: "t-1"},
		{Key: "processor", Value: "p-1"},
	}, fields)
}

func TestResolveRouting_OverrideProcessorIDWinsOutright(t *testing.T) {
	instance := Routing{MID: "m-1", TID: "t-1", Processor: "p-1"}
	override := Routing{ProcessorID: "proc-9"}

	fields, err := resolveRouting(instance, override)
	require.NoError(t, err)

	assert.Equal(t, []Field{{Key: "processor_id", Value: "proc-9"}}, fields)
}

func TestResolveRouting_OverrideTripleReplacesInstanceTriple(t *testing.T) {
	instance := Routing{MID: "m-1", TID: "t-1", Processor: "p-1"}
	override := Routing{MID: "m-2", TID: "t-2", Processor: "p-2"}

	fields, err := resolveRouting(instance, override)
	require.NoError(t, err)

	assert.Equal(t, []Field{
		{Key: "mid", Value: "m-2"},
		{Key: "tid", Value: "t-2"},
		{Key: "processor", Value: "p-2"},
	}, fields)
}

func TestResolveRouting_OverrideTripleKeepsStaleProcessorID(t *testing.T) {
	// When the adapter default is processor_id routing and a call overrides
	// with a MID triple, both end up on the wire. This matches the production
	// adapter's merge order and is intentionally not re-validated.
	instance := Routing{ProcessorID: "proc-1"}
	override := Routing{MID: "m-2", TID: "t-2", Processor: "p-2"}

	fields, err := resolveRouting(instance, override)
	require.NoError(t, err)

	assert.Equal(t, []Field{
		{Key: "processor_id", Value: "proc-1"},
		{Key: "mid", Value: "m-2"},
		{Key: "tid", Value: "t-2"},
		{Key: "processor", Value: "p-2"},
	}, fields)
}

func TestResolveRouting_InstanceProcessorIDAlone(t *testing.T) {
	fields, err := resolveRouting(Routing{ProcessorID: "proc-1"}, Routing{})
	require.NoError(t, err)

	assert.Equal(t, []Field{{Key: "processor_id", Value: "proc-1"}}, fields)
}

func TestResolveRouting_OverrideValidationFailures(t *testing.T) {
	cases := []struct {
		name     string
		override Routing
	}{
		{"mid without tid", Routing{MID: "m-1", Processor: "p-1"}},
		{"mid without processor", Routing{MID: "m-1", TID: "t-1"}},
		{"mid and processor_id together", Routing{MID: "m-1", TID: "t-1", Processor: "p-1", ProcessorID: "proc-1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolveRouting(Routing{}, tc.override)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindValidationFailure))
		})
	}
}
