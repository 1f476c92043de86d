package workdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// realPath resolves symlinks so /tmp and /private/tmp compare equal.
func realPath(t *testing.T, p string) string {
	t.Helper()
	r, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return r
}

func TestProcess_Change(t *testing.T) {
	start := t.TempDir()
	chdir(t, start)

	sub := filepath.Join(start, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	var d Process
	got, err := d.Change("sub")
	require.NoError(t, err)
	assert.Equal(t, realPath(t, sub), realPath(t, got))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, realPath(t, sub), realPath(t, wd), "process cwd must follow Change")
}

func TestProcess_ChangeMissing(t *testing.T) {
	start := t.TempDir()
	chdir(t, start)

	var d Process
	_, err := d.Change("does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	wd, err := d.Path()
	require.NoError(t, err)
	assert.Equal(t, realPath(t, start), realPath(t, wd), "cwd must be unchanged on error")
}

// TestProcess_SharedAcrossValues documents the shared scope: two
// independent Process values observe each other's changes.
func TestProcess_SharedAcrossValues(t *testing.T) {
	start := t.TempDir()
	chdir(t, start)
	other := t.TempDir()

	var a, b Process
	_, err := a.Change(other)
	require.NoError(t, err)

	got, err := b.Path()
	require.NoError(t, err)
	assert.Equal(t, realPath(t, other), realPath(t, got))
}

func TestIsolated_Change(t *testing.T) {
	start := realPath(t, t.TempDir())
	sub := filepath.Join(start, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	d, err := NewIsolated(start)
	require.NoError(t, err)

	got, err := d.Change("a/b")
	require.NoError(t, err)
	assert.Equal(t, sub, got)

	got, err = d.Change("..")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(start, "a"), got)

	got, err = d.Change(start)
	require.NoError(t, err)
	assert.Equal(t, start, got)
}

func TestIsolated_DoesNotTouchProcess(t *testing.T) {
	start := t.TempDir()
	chdir(t, start)
	other := t.TempDir()

	d, err := NewIsolated("")
	require.NoError(t, err)
	_, err = d.Change(other)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, realPath(t, start), realPath(t, wd))
}

func TestIsolated_Errors(t *testing.T) {
	start := realPath(t, t.TempDir())
	file := filepath.Join(start, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	d, err := NewIsolated(start)
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		check  func(t *testing.T, err error)
	}{
		{"missing", "nope", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, os.ErrNotExist)
		}},
		{"not a directory", "plain.txt", func(t *testing.T, err error) {
			assert.Contains(t, err.Error(), "not a directory")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Change(tt.target)
			require.Error(t, err)
			var pe *os.PathError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "chdir", pe.Op)
			tt.check(t, err)

			cur, _ := d.Path()
			assert.Equal(t, start, cur, "directory must be unchanged on error")
		})
	}
}

func TestHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	got, err := Home()
	require.NoError(t, err)
	assert.Equal(t, home, got)
}
