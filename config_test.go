package subscribeon

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
log_level: debug
methods:
  FetchUsers: io
  Score: Computation
  Tick: new_thread
`))
	require.NoError(t, err)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
	assert.Equal(t, map[string]Strategy{
		"FetchUsers": IO,
		"Score":      Computation,
		"Tick":       NewThread,
	}, cfg.Methods)

	registry := cfg.Registry()
	assert.Equal(t, 3, registry.Len())
	ann, ok := registry.Lookup("Score")
	require.True(t, ok)
	assert.Equal(t, Computation, ann.Value)

	names := registry.Names()
	sort.Strings(names)
	assert.Equal(t, []string{"FetchUsers", "Score", "Tick"}, names)
}

func TestParseConfig_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{name: "unknown_strategy", input: "methods:\n  Fetch: fibers\n", is: ErrUnknownStrategy},
		{name: "null_strategy", input: "methods:\n  Fetch: ~\n", is: ErrUnknownStrategy},
		{name: "empty_strategy", input: "methods:\n  Fetch: io\n  Other:\n", is: ErrUnknownStrategy},
		{name: "unknown_field", input: "method:\n  Fetch: io\n"},
		{name: "bad_level", input: "log_level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
	assert.Equal(t, 0, cfg.Registry().Len())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribeon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("methods:\n  Fetch: trampoline\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Trampoline, cfg.Methods["Fetch"])

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRegistry_ExtractPrefersExplicitAnnotation(t *testing.T) {
	registry := NewRegistry()
	registry.Annotate("Fetch", IO)

	meta := registry.Extract(Method{Name: "Fetch"})
	assert.True(t, meta.Present)
	assert.Equal(t, IO, meta.Annotation.Value)

	meta = registry.Extract(Method{Name: "Fetch", Annotation: &SubscribeOn{Value: Immediate}})
	assert.True(t, meta.Present)
	assert.Equal(t, Immediate, meta.Annotation.Value)

	registry.Remove("Fetch")
	meta = registry.Extract(Method{Name: "Fetch"})
	assert.False(t, meta.Present)

	var zero Registry
	zero.Annotate("Lazy", Computation)
	_, ok := zero.Lookup("Lazy")
	assert.True(t, ok)
}
