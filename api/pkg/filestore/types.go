package filestore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned for paths that do not exist in the store.
var ErrNotFound = errors.New("file not found")

type FileStoreItem struct {
	// timestamp
	Created int64 `json:"created"`
	// bytes
	Size int64 `json:"size"`
	// is this thing a folder or not?
	Directory bool `json:"directory"`
	// the filename
	Name string `json:"name"`
	// the relative path to the file from the base path of the storage instance
	Path string `json:"path"`
}

// FileStore persists workspace data that outlives session containers:
// the saved workspace archive and the workspace context files. Paths are
// relative to the store root; a trailing slash addresses a folder.
type FileStore interface {
	Get(ctx context.Context, path string) (FileStoreItem, error)
	List(ctx context.Context, prefix string) ([]FileStoreItem, error)
	UploadFile(ctx context.Context, path string, r io.Reader) (FileStoreItem, error)
	DownloadFile(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes a file, or a whole folder when the path has a
	// trailing slash. Deleting something already gone is not an error.
	Delete(ctx context.Context, path string) error
}

// WorkspaceArchivePath is where a workspace's saved archive lives.
func WorkspaceArchivePath(workspaceID string) string {
	return "workspaces/" + workspaceID + "/archive.tar.gz"
}

// WorkspaceContextPrefix is the folder holding a workspace's context
// data (conversation history, indexes).
func WorkspaceContextPrefix(workspaceID string) string {
	return "workspaces/" + workspaceID + "/context/"
}

// WorkspacePrefix is the whole per-workspace folder.
func WorkspacePrefix(workspaceID string) string {
	return "workspaces/" + workspaceID + "/"
}
