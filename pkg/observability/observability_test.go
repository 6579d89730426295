package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterOptions(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     int
	}{
		{"http collector", "http://otel-collector:4318", 2},
		{"https with path", "https://collector.example.com:443/v1/traces", 2},
		{"http with path", "http://localhost:4318/custom/traces/", 3},
		{"bare host", "localhost:4318", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := exporterOptions(tt.endpoint)
			require.NoError(t, err)
			assert.Len(t, opts, tt.want)
		})
	}

	_, err := exporterOptions("http://bad host:4318")
	assert.Error(t, err)
}

func TestInitWithoutEndpoint(t *testing.T) {
	shutdown := Init("qps", "")
	assert.NotNil(t, shutdown)
	shutdown()
}
