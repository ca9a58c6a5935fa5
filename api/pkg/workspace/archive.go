package workspace

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atelierhq/atelier/api/pkg/filestore"
	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
)

const (
	// containerWorkspaceDir is where the session image keeps the user's
	// project files.
	containerWorkspaceDir = "/workspace"

	// restoreDropDir is where restored archives land before the tool
	// server unpacks them.
	restoreDropDir = "/tmp"

	restoreArchiveName = "archive.tar.gz"
)

// archiveExcludes are paths the tool server leaves out of saved archives.
// Dependencies are reinstalled on restore instead of being stored.
var archiveExcludes = []string{"node_modules"}

// SaveSession archives the session's workspace files and stores them
// under the workspace archive path, replacing any previous save.
func (m *Manager) SaveSession(ctx context.Context, userID, sessionID string) (*types.WorkspaceSession, error) {
	session, err := m.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.WorkspaceID == "" {
		return nil, fmt.Errorf("session %s: %w", sessionID, types.ErrNoWorkspace)
	}
	if session.Status != types.SessionStatusRunning || !session.IsReady {
		return nil, types.ErrSessionNotReady
	}
	conn, ok := m.registry.Lookup(sessionID)
	if !ok {
		return nil, types.ErrSessionNotReady
	}

	archive, err := m.toolServer.CreateArchive(ctx, conn, &toolserver.CreateArchiveRequest{
		SourcePath: containerWorkspaceDir,
		Exclude:    archiveExcludes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive in session %s: %w", sessionID, err)
	}

	rc, err := m.runtime.CopyFromContainer(ctx, session.ContainerID, archive.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to copy archive out of container: %w", err)
	}
	defer rc.Close()

	// Docker wraps the copied file in a tar stream, the stored object is
	// the bare gzipped archive.
	tr := tar.NewReader(rc)
	hdr, err := firstTarFile(tr)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive stream: %w", err)
	}

	archivePath := filestore.WorkspaceArchivePath(session.WorkspaceID)
	item, err := m.filestore.UploadFile(ctx, archivePath, tr)
	if err != nil {
		return nil, fmt.Errorf("failed to store workspace archive: %w", err)
	}

	savedAt := time.Now()
	if err := m.store.MarkSessionSaved(ctx, sessionID, savedAt); err != nil {
		return nil, fmt.Errorf("failed to record save: %w", err)
	}

	log.Info().
		Str("session_id", sessionID).
		Str("workspace_id", session.WorkspaceID).
		Str("archive", hdr.Name).
		Int64("size_bytes", item.Size).
		Msg("saved workspace archive")

	return m.store.GetSession(ctx, sessionID)
}

// restoreArchive copies the saved workspace archive into a fresh
// container and has the tool server unpack it. A workspace with no saved
// archive is not an error.
func (m *Manager) restoreArchive(ctx context.Context, session *types.WorkspaceSession) error {
	archivePath := filestore.WorkspaceArchivePath(session.WorkspaceID)

	rc, err := m.filestore.DownloadFile(ctx, archivePath)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			log.Debug().
				Str("session_id", session.ID).
				Str("workspace_id", session.WorkspaceID).
				Msg("no saved archive to restore")
			return nil
		}
		return fmt.Errorf("failed to download workspace archive: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("failed to read workspace archive: %w", err)
	}

	wrapped, err := tarWrapFile(restoreArchiveName, data)
	if err != nil {
		return fmt.Errorf("failed to wrap archive for copy: %w", err)
	}
	if err := m.runtime.CopyToContainer(ctx, session.ContainerID, restoreDropDir, wrapped); err != nil {
		return fmt.Errorf("failed to copy archive into container: %w", err)
	}

	result, err := m.toolServer.ExtractArchive(ctx, session.Connection(), &toolserver.ExtractArchiveRequest{
		ArchivePath: path.Join(restoreDropDir, restoreArchiveName),
		DestPath:    containerWorkspaceDir,
	})
	if err != nil {
		return fmt.Errorf("failed to extract archive in container: %w", err)
	}

	log.Info().
		Str("session_id", session.ID).
		Str("workspace_id", session.WorkspaceID).
		Int("file_count", result.FileCount).
		Int("size_bytes", len(data)).
		Msg("restored workspace archive")

	return nil
}

// UploadToSession pushes an archive provided by the caller into the
// session workspace via the tool server's upload endpoint.
func (m *Manager) UploadToSession(ctx context.Context, userID, sessionID string, data []byte, destPath string) (*toolserver.ArchiveResponse, error) {
	conn, err := m.Connection(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if destPath == "" {
		destPath = containerWorkspaceDir
	}
	return m.toolServer.UploadArchive(ctx, conn, data, destPath)
}

// tarWrapFile packs a single file into an uncompressed tar stream, the
// shape Docker's copy-in API expects.
func tarWrapFile(name string, data []byte) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, err
	}
	if _, err := tw.Write(data); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

// firstTarFile advances the stream to the first regular file entry.
func firstTarFile(tr *tar.Reader) (*tar.Header, error) {
	for {
		hdr, err := tr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("archive stream contained no file")
			}
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg {
			return hdr, nil
		}
	}
}
