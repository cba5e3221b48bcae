package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
	assert.Contains(t, Sampler(0).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
}

func TestSetupRequiresEndpoint(t *testing.T) {
	shutdown, err := Setup(Config{ServiceName: "pos-core"})
	require.Error(t, err)
	assert.Nil(t, shutdown)
}
