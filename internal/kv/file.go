package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dropDatabas3/userdash/internal/util/atomicwrite"
)

// fileStore guarda cada key en <root>/<key escapada>.json.
type fileStore struct {
	root   string
	prefix string
}

// NewFile crea un Store en el filesystem. Crea root si no existe.
func NewFile(root, prefix string) (Store, error) {
	if root == "" {
		root = "data"
	}
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("kv/file: create root %s: %w", root, err)
		}
	case err != nil:
		return nil, fmt.Errorf("kv/file: root path error: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("kv/file: root path is not a directory: %s", root)
	}
	return &fileStore{root: root, prefix: prefix}, nil
}

func (f *fileStore) path(key string) string {
	return filepath.Join(f.root, url.PathEscape(prefixed(f.prefix, key))+".json")
}

func (f *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv/file: read %s: %w", key, err)
	}
	return b, nil
}

func (f *fileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := atomicwrite.WriteFile(f.path(key), value, 0o600); err != nil {
		return fmt.Errorf("kv/file: write %s: %w", key, err)
	}
	return nil
}

func (f *fileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("kv/file: delete %s: %w", key, err)
	}
	return nil
}

func (f *fileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(f.root)
	return err
}

func (f *fileStore) Close() error   { return nil }
func (f *fileStore) Driver() string { return "file" }
