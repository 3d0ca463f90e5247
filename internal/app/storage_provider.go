package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/yungbote/pylearn-backend/internal/platform/artifacts"
	"github.com/yungbote/pylearn-backend/internal/platform/gcp"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

var (
	newBucketServiceWithConfig  = gcp.NewBucketServiceWithConfig
	resolveObjectStorageFromEnv = gcp.ResolveObjectStorageConfigFromEnv
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode   StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorInvalidConfig StorageProviderBootstrapErrorCode = "invalid_config"
	StorageProviderBootstrapErrorConnectFailed StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code  StorageProviderBootstrapErrorCode
	Mode  string
	Cause error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "artifact storage bootstrap failed"
	}
	return fmt.Sprintf("artifact storage bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveArtifactStore picks where finished tutorials are published. The returned close
// func is never nil.
func resolveArtifactStore(ctx context.Context, log *logger.Logger, cfg Config) (artifacts.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.ArtifactStore {
	case ArtifactStoreLocal:
		root := filepath.Join(cfg.MediaRoot, "artifacts")
		store, err := artifacts.NewLocalStore(log, root)
		if err != nil {
			return nil, noop, &StorageProviderBootstrapError{Code: StorageProviderBootstrapErrorConnectFailed, Mode: cfg.ArtifactStore, Cause: err}
		}
		log.Info("Artifact store ready", "mode", cfg.ArtifactStore, "root", root)
		return store, noop, nil

	case ArtifactStoreGCS:
		storageCfg, err := resolveObjectStorageFromEnv()
		if err != nil {
			bootErr := &StorageProviderBootstrapError{Code: StorageProviderBootstrapErrorInvalidConfig, Mode: cfg.ArtifactStore, Cause: err}
			log.Error("Artifact storage provider selection failed", "error_code", bootErr.Code, "error", err)
			return nil, noop, bootErr
		}
		bucket, err := newBucketServiceWithConfig(ctx, log, storageCfg)
		if err != nil {
			bootErr := &StorageProviderBootstrapError{Code: StorageProviderBootstrapErrorConnectFailed, Mode: string(storageCfg.Mode), Cause: err}
			log.Error("Artifact storage provider bootstrap failed",
				"mode", storageCfg.Mode,
				"emulator_host", storageCfg.EmulatorHost,
				"error_code", bootErr.Code,
				"error", err,
			)
			return nil, noop, bootErr
		}
		log.Info("Artifact store ready", "mode", storageCfg.Mode, "bucket", bucket.Bucket())
		return artifacts.NewGCSStore(bucket), bucket.Close, nil

	default:
		return nil, noop, &StorageProviderBootstrapError{
			Code:  StorageProviderBootstrapErrorInvalidMode,
			Mode:  cfg.ArtifactStore,
			Cause: fmt.Errorf("unsupported artifact store %q", cfg.ArtifactStore),
		}
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
