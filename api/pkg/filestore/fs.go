package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalFS stores files under a base directory on local disk.
type LocalFS struct {
	basePath string
}

func NewLocalFS(basePath string) (*LocalFS, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create filestore directory: %w", err)
	}
	return &LocalFS{basePath: basePath}, nil
}

// resolve maps a store path onto disk, rejecting anything that escapes
// the base directory.
func (s *LocalFS) resolve(path string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(path))
	if full != s.basePath && !strings.HasPrefix(full, s.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes filestore root: %s", path)
	}
	return full, nil
}

func (s *LocalFS) Get(ctx context.Context, path string) (FileStoreItem, error) {
	full, err := s.resolve(path)
	if err != nil {
		return FileStoreItem{}, err
	}

	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return FileStoreItem{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return FileStoreItem{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return FileStoreItem{
		Created:   info.ModTime().Unix(),
		Size:      info.Size(),
		Directory: info.IsDir(),
		Name:      info.Name(),
		Path:      path,
	}, nil
}

func (s *LocalFS) List(ctx context.Context, prefix string) ([]FileStoreItem, error) {
	full, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if os.IsNotExist(err) {
		return []FileStoreItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	items := []FileStoreItem{}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, FileStoreItem{
			Created:   info.ModTime().Unix(),
			Size:      info.Size(),
			Directory: entry.IsDir(),
			Name:      entry.Name(),
			Path:      strings.TrimSuffix(prefix, "/") + "/" + entry.Name(),
		})
	}

	return items, nil
}

func (s *LocalFS) UploadFile(ctx context.Context, path string, r io.Reader) (FileStoreItem, error) {
	full, err := s.resolve(path)
	if err != nil {
		return FileStoreItem{}, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return FileStoreItem{}, fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return FileStoreItem{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return FileStoreItem{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return FileStoreItem{}, fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	return s.Get(ctx, path)
}

func (s *LocalFS) DownloadFile(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func (s *LocalFS) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if strings.HasSuffix(path, "/") {
		if err := os.RemoveAll(full); err != nil {
			return fmt.Errorf("failed to delete folder %s: %w", path, err)
		}
		return nil
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// Compile-time interface check:
var _ FileStore = (*LocalFS)(nil)
