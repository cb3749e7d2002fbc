// Package filestore keeps uploaded files on the local disk, under the media root.
package filestore

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

var ErrInvalidPath = errors.New("invalid file path")

type LocalStore struct {
	root string
}

var _ core.FileStore = (*LocalStore)(nil)

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// resolve maps a store path to the disk, refusing the root itself and any `..` segment.
func (s *LocalStore) resolve(p string) (string, error) {
	p = filepath.ToSlash(p)
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean[1:])), nil
}

// Save writes content to dir/filename, adding a `_<n>` suffix to the name when the file already exists.
func (s *LocalStore) Save(ctx context.Context, dir, filename string, content io.Reader) (string, error) {
	name := path.Base(filepath.ToSlash(filename))
	if name == "." || name == "/" || name == ".." {
		return "", ErrInvalidPath
	}
	diskDir, err := s.resolve(dir)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(diskDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating directory")
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 0; ; n++ {
		if err = ctx.Err(); err != nil {
			return "", err
		}
		candidate := name
		if n > 0 {
			candidate = stem + "_" + strconv.Itoa(n) + ext
		}
		f, err := os.OpenFile(filepath.Join(diskDir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", errors.Wrap(err, "creating file")
		}
		if _, err = io.Copy(f, content); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return "", errors.Wrap(err, "writing file")
		}
		if err = f.Close(); err != nil {
			return "", errors.Wrap(err, "closing file")
		}
		return path.Join(strings.Trim(path.Clean("/"+dir), "/"), candidate), nil
	}
}

func (s *LocalStore) Open(p string) (io.ReadCloser, error) {
	diskPath, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(diskPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	return f, nil
}

// Delete removes the file at p; a missing file is not an error.
func (s *LocalStore) Delete(p string) error {
	diskPath, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err = os.Remove(diskPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting file")
	}
	return nil
}
