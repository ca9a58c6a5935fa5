package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GCSStorage struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func NewGCSStorage(ctx context.Context, bucketName, serviceAccountKeyFile string) (*GCSStorage, error) {
	var opts []option.ClientOption
	if serviceAccountKeyFile != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountKeyFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func itemFromAttrs(attrs *storage.ObjectAttrs) FileStoreItem {
	return FileStoreItem{
		Created:   attrs.Created.Unix(),
		Size:      attrs.Size,
		Directory: strings.HasSuffix(attrs.Name, "/"),
		Name:      attrs.Name,
		Path:      attrs.Name,
	}
}

func (s *GCSStorage) Get(ctx context.Context, path string) (FileStoreItem, error) {
	attrs, err := s.bucket.Object(path).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return FileStoreItem{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return FileStoreItem{}, fmt.Errorf("error fetching GCS object attributes: %w", err)
	}
	return itemFromAttrs(attrs), nil
}

func (s *GCSStorage) List(ctx context.Context, prefix string) ([]FileStoreItem, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	items := []FileStoreItem{}

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating over GCS objects: %w", err)
		}
		items = append(items, itemFromAttrs(attrs))
	}

	return items, nil
}

func (s *GCSStorage) UploadFile(ctx context.Context, path string, r io.Reader) (FileStoreItem, error) {
	obj := s.bucket.Object(path)
	writer := obj.NewWriter(ctx)
	if _, err := io.Copy(writer, r); err != nil {
		return FileStoreItem{}, fmt.Errorf("failed to copy content to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return FileStoreItem{}, fmt.Errorf("failed to finalize GCS object upload: %w", err)
	}

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return FileStoreItem{}, fmt.Errorf("error fetching GCS object attributes after upload: %w", err)
	}
	return itemFromAttrs(attrs), nil
}

func (s *GCSStorage) DownloadFile(ctx context.Context, path string) (io.ReadCloser, error) {
	reader, err := s.bucket.Object(path).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS object reader: %w", err)
	}
	return reader, nil
}

func (s *GCSStorage) Delete(ctx context.Context, path string) error {
	if strings.HasSuffix(path, "/") {
		it := s.bucket.Objects(ctx, &storage.Query{Prefix: path})
		for {
			attrs, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("error iterating over GCS objects during delete: %w", err)
			}
			err = s.bucket.Object(attrs.Name).Delete(ctx)
			if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
				return fmt.Errorf("error deleting GCS object: %w", err)
			}
		}
		return nil
	}

	err := s.bucket.Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object: %w", err)
	}
	return nil
}

// Compile-time interface check:
var _ FileStore = (*GCSStorage)(nil)
