package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/imagepicker/pkg/platform"
)

// run executes the CLI in dir and returns stdout and stderr.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(platform.ResetForTest)
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--dir", dir}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSimulatePickFromLibrary(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, `show actionSheet "" [Camera Photo Library Cancel]`)
	assert.Contains(t, out, "present picker source=photoLibrary")
	assert.Contains(t, out, "result: succeeded")
	assert.Contains(t, out, "path: /simulated/IMG_0001.PNG")
	assert.Contains(t, out, "type: image/png")
	assert.Contains(t, out, "size: 64x48")
}

func TestSimulateDelete(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "simulate", "--allow-delete", "--choice", "Delete", "--title", "Avatar")
	require.NoError(t, err)
	assert.Contains(t, out, `show actionSheet "Avatar" [Camera Photo Library Delete Cancel]`)
	assert.Contains(t, out, "result: deleted")
	assert.NotContains(t, out, "present picker")
}

func TestSimulateEverythingDenied(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "simulate", "--camera", "denied", "--photos", "restricted", "--prompt", "Open Settings")
	require.NoError(t, err)
	assert.Contains(t, out, `show alert "Open Settings" [Cancel Open Settings]`)
	assert.Contains(t, out, "result: cancelled")
	assert.NotContains(t, out, "actionSheet")
}

func TestSimulateFirstRunPrompt(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "simulate",
		"--camera", "not_determined", "--answer-camera", "denied",
		"--photos", "not_determined", "--answer-photos", "limited")
	require.NoError(t, err)
	assert.Contains(t, out, "os prompt camera: denied")
	assert.Contains(t, out, "os prompt photos: limited")
	assert.Contains(t, out, `[Photo Library Cancel]`)
	assert.Contains(t, out, "result: succeeded")
}

func TestSimulateCancelFromEnv(t *testing.T) {
	t.Setenv("IMAGEPICKER_SIMULATE_RESULT", "cancel")
	t.Setenv("IMAGEPICKER_SIMULATE_CHOICE", "Camera")
	out, _, err := run(t, t.TempDir(), "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "present picker source=camera")
	assert.Contains(t, out, "user cancels the picker")
	assert.Contains(t, out, "result: cancelled")
}

func TestSimulateConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "imagepicker.yaml"), []byte(`
app:
  name: Snapshot
buttons:
  camera: Kamera
  photo_library: Fotos
  cancel: Abbrechen
simulate:
  choice: Kamera
  allow_editing: true
`), 0o644))

	out, _, err := run(t, dir, "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot: simulating image picker")
	assert.Contains(t, out, "[Kamera Fotos Abbrechen]")
	assert.Contains(t, out, "present picker source=camera editing=true")
	assert.Contains(t, out, "result: succeeded")
}

func TestSimulateImageFile(t *testing.T) {
	dir := t.TempDir()
	data, err := samplePNG()
	require.NoError(t, err)
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, _, err := run(t, dir, "simulate", "--image", path)
	require.NoError(t, err)
	assert.Contains(t, out, "path: "+path)
	assert.Contains(t, out, "bytes: ")
}

func TestSimulateInvalidFlags(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "simulate", "--camera", "maybe")
	assert.ErrorContains(t, err, `invalid simulate.camera "maybe"`)

	_, _, err = run(t, t.TempDir(), "simulate", "--result", "explode")
	assert.ErrorContains(t, err, "invalid simulate.result")

	_, _, err = run(t, t.TempDir(), "simulate", "--image", "/does/not/exist.png")
	assert.ErrorContains(t, err, "read image")
}

func TestSimulateTimeout(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "simulate", "--result", "none", "--timeout", "50ms")
	assert.ErrorContains(t, err, "no result within 50ms")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "protocol: "+platform.ProtocolVersion)

	out, _, err = run(t, t.TempDir(), "version", "--bridge-version", "1.2.3")
	require.NoError(t, err)
	assert.Contains(t, out, "bridge 1.2.3: supported")

	_, _, err = run(t, t.TempDir(), "version", "--bridge-version", "v1.0.9")
	assert.ErrorIs(t, err, platform.ErrUnsupportedBridge)
}
