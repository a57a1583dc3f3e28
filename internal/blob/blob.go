// Package blob archives uploaded resume documents in object storage.
package blob

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/careercoach/internal/config"
)

// Store persists an object under key and returns its location.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// New selects the backend named by cfg.Provider.
func New(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch cfg.Provider {
	case "", "none":
		return Noop{}, nil
	case "minio":
		return NewMinio(ctx, cfg)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown blob provider %q", cfg.Provider)
	}
}

// ResumeKey is the object key for an uploaded resume. The content hash keeps
// re-uploads of the same file idempotent.
func ResumeKey(ownerID, hash, name string) string {
	if name == "" {
		name = "resume"
	}
	return fmt.Sprintf("resumes/%s/%s/%s", ownerID, hash, name)
}

// Noop discards objects. Used when archiving is disabled.
type Noop struct{}

func (Noop) Put(context.Context, string, string, []byte) (string, error) { return "", nil }
