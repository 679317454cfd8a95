package ftp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteBaseName(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"/pub/file.txt":     "file.txt",
		"file.txt":          "file.txt",
		`C:\dir\report.csv`: "report.csv",
		"/pub/dir/":         "",
		"":                  "",
		"/a/b\\c":           "c",
	}
	for in, want := range tests {
		assert.Equal(t, want, RemoteBaseName(in), "RemoteBaseName(%q)", in)
	}
}

func TestResolveLocalPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(existing, nil, 0o644))

	tests := []struct {
		name   string
		remote string
		local  string
		want   string
	}{
		{"empty local", "/pub/file.txt", "", "." + string(filepath.Separator) + "file.txt"},
		{"existing directory", "/pub/file.txt", dir, filepath.Join(dir, "file.txt")},
		{"trailing separator", "/pub/file.txt", filepath.Join(dir, "new") + "/", filepath.Join(dir, "new", "file.txt")},
		{"plain file name", "/pub/file.txt", filepath.Join(dir, "renamed.txt"), filepath.Join(dir, "renamed.txt")},
		{"existing file is overwritten", "/pub/file.txt", existing, existing},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolveLocalPath(tt.remote, tt.local))
		})
	}
}
