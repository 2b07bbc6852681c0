package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Defaults(), s)
}

func TestLoad_File(t *testing.T) {
	s, err := Load("testdata/regioncore.hcl")
	require.NoError(t, err)

	want := Settings{
		SaveDir:           "saves",
		LogLevel:          "debug",
		LogFormat:         "text",
		AllowScripts:      true,
		DamageFloorAmount: 4,
		Seed:              7,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("REGIONCORE_LOG_LEVEL", "error")
	t.Setenv("REGIONCORE_DAMAGE_FLOOR_AMOUNT", "0")
	t.Setenv("REGIONCORE_PLAIN", "true")

	s, err := Load("testdata/regioncore.hcl")
	require.NoError(t, err)
	require.Equal(t, "error", s.LogLevel)
	require.Equal(t, 0, s.DamageFloorAmount)
	require.True(t, s.Plain)
	require.Equal(t, "saves", s.SaveDir, "file value survives when env is unset")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", "testdata/nope.hcl"},
		{"syntax error", "testdata/bad.hcl"},
		{"unknown attribute", "testdata/unknown.hcl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
		})
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("REGIONCORE_SEED", "not-a-number")
	_, err := Load("")
	require.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	s := Defaults()
	s.LogLevel = "loud"
	require.Error(t, s.Validate())

	s = Defaults()
	s.LogFormat = "xml"
	require.Error(t, s.Validate())

	s = Defaults()
	s.DamageFloorAmount = -1
	require.Error(t, s.Validate())
}

func TestFileExists(t *testing.T) {
	require.True(t, FileExists("testdata/regioncore.hcl"))
	require.False(t, FileExists("testdata"))
	require.False(t, FileExists("testdata/nope.hcl"))
}

func TestNewLogger_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("warn", "json", &buf)

	require.False(t, l.Enabled(context.Background(), slog.LevelInfo))
	l.Warn("careful", "x", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "careful", rec["msg"])
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("chatty", "text", &buf)
	require.True(t, l.Enabled(context.Background(), slog.LevelInfo))
	require.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}
