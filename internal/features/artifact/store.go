package artifact

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"

	ContentTypePNG  = "image/png"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrExists is returned by Put when name is already taken. Artifacts are
// never overwritten.
var ErrExists = errors.New("artifact already exists")

// ArtifactStore keeps rendered files. Put must fail with ErrExists instead of
// replacing an existing artifact.
type ArtifactStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, name string) ([]byte, string, error)
	Type() string
}

func NewArtifactStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (ArtifactStore, error) {
	switch cfg.ArtifactStore {
	case StorageMinio:
		log.Info("Using MinIO artifact store", zap.String("endpoint", cfg.MinioEndpoint), zap.String("bucket", cfg.MinioBucket))
		store, err := NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageLocal, "":
		log.Info("Using local artifact store", zap.String("dir", cfg.ChartsDir))
		store, err := NewLocalStore(cfg.ChartsDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown artifact store %q", cfg.ArtifactStore)
	}
}

// NewName builds "<prefix>_<YYYYMMDD_HHMMSS UTC>_<8 hex><ext>".
func NewName(prefix, ext string, now time.Time) string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s%s", prefix, now.UTC().Format("20060102_150405"), short, ext)
}

const maxNameAttempts = 5

// PutUnique stores data under a fresh name, drawing a new one on collision.
func PutUnique(ctx context.Context, store ArtifactStore, prefix, ext string, data []byte, contentType string, now time.Time) (string, string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := NewName(prefix, ext, now)
		path, err := store.Put(ctx, name, data, contentType)
		if errors.Is(err, ErrExists) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		return name, path, nil
	}
	return "", "", fmt.Errorf("no free artifact name after %d attempts: %w", maxNameAttempts, ErrExists)
}

// ValidateName accepts plain file names only.
func ValidateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return common_models.NewError(common_models.KindInvalidRequest, "invalid artifact name %q", name)
	}
	return nil
}
