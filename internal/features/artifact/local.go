package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	common_models "go-analytics/internal/common/models"
)

// LocalStore writes artifacts into a directory on disk.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Type() string { return StorageLocal }

// Put creates the file exclusively so concurrent writers never share a name.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", ErrExists
		}
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *LocalStore) Get(ctx context.Context, name string) ([]byte, string, error) {
	if err := ValidateName(name); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", common_models.NewError(common_models.KindNotFound, "artifact %s not found", name)
		}
		return nil, "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}
