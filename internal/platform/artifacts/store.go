package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yungbote/pylearn-backend/internal/platform/gcp"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

var ErrNotFound = errors.New("artifact not found")

// Store keeps published media under slash-separated keys.
type Store interface {
	// Put copies the local file at src under key.
	Put(ctx context.Context, key string, src string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("artifact key required")
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}
	return cleaned, nil
}

// ---------- local ----------

type localStore struct {
	log  *logger.Logger
	root string
}

func NewLocalStore(log *logger.Logger, root string) (Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("artifact root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &localStore{log: log.With("service", "LocalArtifactStore"), root: root}, nil
}

func (s *localStore) pathFor(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *localStore) Put(ctx context.Context, key string, src string) error {
	dst, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir artifact dir: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp := dst + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("copy artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}
	s.log.Debug("Artifact stored", "key", key)
	return nil
}

func (s *localStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ---------- gcs ----------

type gcsStore struct {
	bucket gcp.BucketService
}

func NewGCSStore(bucket gcp.BucketService) Store {
	return &gcsStore{bucket: bucket}
}

func (s *gcsStore) Put(ctx context.Context, key string, src string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer f.Close()
	return s.bucket.UploadFile(ctx, k, f)
}

func (s *gcsStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	rc, err := s.bucket.DownloadFile(ctx, k)
	if errors.Is(err, gcp.ErrObjectNotFound) {
		return nil, ErrNotFound
	}
	return rc, err
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	return s.bucket.DeleteFile(ctx, k)
}
