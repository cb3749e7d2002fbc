package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, p, content string) {
	t.Helper()

	diskPath := filepath.Join(root, filepath.FromSlash(p))
	require.NoError(t, os.MkdirAll(filepath.Dir(diskPath), 0o755))
	require.NoError(t, os.WriteFile(diskPath, []byte(content), 0o644))
}

func TestLocalStore_Save(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		dir      string
		filename string
		want     string
		wantErr  error
	}{
		{name: "new file", dir: "documents", filename: "specs.txt", want: "documents/specs.txt"},
		{name: "nested dir", dir: "/documents/2030/", filename: "specs.txt", want: "documents/2030/specs.txt"},
		{name: "name clash", existing: []string{"documents/specs.txt"}, dir: "documents", filename: "specs.txt", want: "documents/specs_1.txt"},
		{
			name:     "second name clash",
			existing: []string{"documents/specs.txt", "documents/specs_1.txt"},
			dir:      "documents",
			filename: "specs.txt",
			want:     "documents/specs_2.txt",
		},
		{name: "clash without extension", existing: []string{"documents/README"}, dir: "documents", filename: "README", want: "documents/README_1"},
		{name: "same name in another dir", existing: []string{"other/specs.txt"}, dir: "documents", filename: "specs.txt", want: "documents/specs.txt"},
		{name: "directories of the filename are dropped", dir: "documents", filename: "../../x.txt", want: "documents/x.txt"},
		{name: "escaping dir", dir: "../../x", filename: "specs.txt", wantErr: ErrInvalidPath},
		{name: "inner escaping dir", dir: "documents/../../x", filename: "specs.txt", wantErr: ErrInvalidPath},
		{name: "parent dir", dir: "..", filename: "specs.txt", wantErr: ErrInvalidPath},
		{name: "root dir", dir: "/", filename: "specs.txt", wantErr: ErrInvalidPath},
		{name: "empty dir", dir: "", filename: "specs.txt", wantErr: ErrInvalidPath},
		{name: "parent filename", dir: "documents", filename: "..", wantErr: ErrInvalidPath},
		{name: "root filename", dir: "documents", filename: "/", wantErr: ErrInvalidPath},
		{name: "empty filename", dir: "documents", filename: "", wantErr: ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), "media")
			require.NoError(t, os.Mkdir(root, 0o755))
			for _, p := range tt.existing {
				writeFile(t, root, p, "old")
			}
			store := NewLocalStore(root)

			got, err := store.Save(context.Background(), tt.dir, tt.filename, strings.NewReader("new"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				entries, err := os.ReadDir(filepath.Dir(root))
				require.NoError(t, err)
				assert.Len(t, entries, 1, "nothing is written next to the root")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(got)))
			require.NoError(t, err)
			assert.Equal(t, "new", string(data))
			for _, p := range tt.existing {
				data, err = os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
				require.NoError(t, err)
				assert.Equal(t, "old", string(data), "existing files are kept")
			}
		})
	}

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLocalStore(t.TempDir()).Save(ctx, "documents", "specs.txt", strings.NewReader("new"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalStore_OpenAndDelete(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "documents/specs.txt", "content")
	store := NewLocalStore(root)

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "escaping path", path: "../../x", wantErr: ErrInvalidPath},
		{name: "inner escaping path", path: "documents/../../x", wantErr: ErrInvalidPath},
		{name: "parent", path: "..", wantErr: ErrInvalidPath},
		{name: "root", path: "/", wantErr: ErrInvalidPath},
		{name: "empty", path: "", wantErr: ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Open(tt.path)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, store.Delete(tt.path), tt.wantErr)
		})
	}

	t.Run("open", func(t *testing.T) {
		f, err := store.Open("/documents/specs.txt")
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "content", string(data))

		_, err = store.Open("documents/missing.txt")
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete("documents/specs.txt"))
		_, err := os.Stat(filepath.Join(root, "documents", "specs.txt"))
		assert.True(t, os.IsNotExist(err))
		assert.NoError(t, store.Delete("documents/specs.txt"), "a missing file is not an error")
	})
}
