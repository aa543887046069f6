package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "AWS_REGION",
	"DYNAMODB_TABLE", "DYNAMODB_INDEX", "DYNAMODB_ENDPOINT",
	"SCALER_PATH", "MODEL_PATH", "MODEL_BACKEND", "SAGEMAKER_ENDPOINT_NAME",
	"TIMEZONE", "SHUTDOWN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DYNAMODB_TABLE", "groundwater")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "groundwater", cfg.DynamoDBTable)
	assert.Equal(t, "kode_pos-timestamp-index", cfg.DynamoDBIndex)
	assert.Equal(t, BackendLocal, cfg.ModelBackend)
	assert.Equal(t, "model/scaler.json", cfg.ScalerPath)
	assert.Equal(t, "model/classifier.json", cfg.ModelPath)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_RequiresTable(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DYNAMODB_TABLE")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "app env", env: map[string]string{"APP_ENV": "staging"}},
		{name: "log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "model backend", env: map[string]string{"MODEL_BACKEND": "onnx"}},
		{name: "sagemaker without endpoint", env: map[string]string{"MODEL_BACKEND": "sagemaker"}},
		{name: "shutdown timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{name: "timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus_Mons"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DYNAMODB_TABLE", "groundwater")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_SageMakerBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("DYNAMODB_TABLE", "groundwater")
	t.Setenv("MODEL_BACKEND", "sagemaker")
	t.Setenv("SAGEMAKER_ENDPOINT_NAME", "potability-mlp")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSageMaker, cfg.ModelBackend)
	assert.Equal(t, "potability-mlp", cfg.SageMakerEndpointName)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
app_env: prod
log_level: debug
http_addr: ":9090"
dynamodb_table: from-file
timezone: Asia/Jakarta
shutdown_timeout: 3s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", "  :7070 ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "from-file", cfg.DynamoDBTable)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "  WARN ", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "nope", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
