package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"smartinventory/internal/config"
)

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(config.MinIOConfig{}))
	assert.False(t, Enabled(config.MinIOConfig{Endpoint: "localhost:9000"}))
	assert.True(t, Enabled(config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "exports"}))
}

func TestNewMinIO_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MinIOConfig
		wantErr string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{}, wantErr: "minio endpoint is required"},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, wantErr: "minio credentials are required"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, wantErr: "minio bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(context.Background(), tt.cfg)
			assert.Nil(t, s)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="inventory-20260301.csv"`, contentDisposition("inventory-20260301.csv"))
}
