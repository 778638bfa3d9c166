package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerRequiresEndpoint(t *testing.T) {
	tp, err := InitTracer(context.Background(), "", "v2f-test")
	assert.Error(t, err)
	assert.Nil(t, tp)
}

func TestInitTracer(t *testing.T) {
	tp, err := InitTracer(context.Background(), "http://127.0.0.1:4318", "v2f-test")
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
