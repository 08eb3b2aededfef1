package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func parse(t *testing.T, args ...string) (*ProbeOptions, error) {
	t.Helper()
	o, _, err := Parse("glprobe", args)
	return o, err
}

func TestDefaults(t *testing.T) {
	o, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, "", *o.Platform)
	assert.Equal(t, 256, *o.Width)
	assert.Equal(t, 256, *o.Height)
	assert.Equal(t, SurfaceSharedMemory, *o.Surface)
	assert.Equal(t, "probe.png", *o.Output)
	assert.Equal(t, 1.0, *o.Scale)
	assert.False(t, *o.Verbose)
}

func TestConfigFillsUnsetFlags(t *testing.T) {
	path := writeConfig(t, `
platform: egl
width: 640
height: 480
surface: EGLImage
output: frame.png
scale: 0.5
verbose: true
`)
	o, err := parse(t, "-config", path, "-width", "320")
	require.NoError(t, err)
	assert.Equal(t, "egl", *o.Platform)
	assert.Equal(t, 320, *o.Width, "flags win over the file")
	assert.Equal(t, 480, *o.Height)
	assert.Equal(t, SurfaceEGLImage, *o.Surface)
	assert.Equal(t, "frame.png", *o.Output)
	assert.Equal(t, 0.5, *o.Scale)
	assert.True(t, *o.Verbose)
}

func TestEmptyConfig(t *testing.T) {
	o, err := parse(t, "-config", writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 256, *o.Width)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "widht: 10\n"))
	assert.ErrorContains(t, err, "failed to parse")

	_, err = Load(writeConfig(t, "width: [1, 2]\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-width", "0"}, "invalid size"},
		{[]string{"-height", "-4"}, "invalid size"},
		{[]string{"-scale", "0"}, "invalid scale"},
		{[]string{"-surface", "pixmap"}, "unknown surface"},
		{[]string{"-shm", ""}, "segment name"},
		{[]string{"-output", ""}, "no output"},
	}
	for _, tt := range tests {
		_, err := parse(t, tt.args...)
		assert.ErrorContains(t, err, tt.want, "%v", tt.args)
	}
}

func TestHelpSkipsValidation(t *testing.T) {
	o, err := parse(t, "-help", "-width", "0")
	require.NoError(t, err)
	assert.True(t, *o.Help)
}
