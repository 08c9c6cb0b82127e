// Package storage uploads generated files and returns their public URL.
package storage

import (
	"context"
	"fmt"

	"carcool-backend/config"
)

type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// New picks the provider named in the configuration.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Provider {
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("supabase storage needs SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
		return NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil), nil
	case "firebase":
		return NewFirebaseStorage(ctx, cfg.FirebaseCredentials, cfg.FirebaseBucket)
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL+"/files")
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
