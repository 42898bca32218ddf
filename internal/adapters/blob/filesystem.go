// Package blob archives inbound payloads. The filesystem store lays content
// out as <root>/<container>/<path>, mirroring the container/path split of
// object storage so the layout survives a move to a hosted backend.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type FilesystemStore struct {
	root string
}

func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("blob root must not be empty")
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", root, err)
	}
	return &FilesystemStore{root: root}, nil
}

// Upload writes content under container/path and returns the absolute
// location. Existing content at the same path is overwritten; callers embed
// a per-request transaction id in the path, so collisions only happen on
// replays of the same transaction.
func (s *FilesystemStore) Upload(ctx context.Context, content []byte, path, container string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := filepath.Join(container, filepath.FromSlash(path))
	full := filepath.Join(s.root, rel)
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("blob path %q escapes the store root", path)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create blob directory: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", rel, err)
	}
	return full, nil
}
