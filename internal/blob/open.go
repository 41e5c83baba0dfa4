package blob

import (
	"context" // SDK setup
	"fmt"     // Error formatting

	"report_portal/internal/config" // Backend selection
)

// Open builds the configured backend. The second result is non-nil only for
// the local backend, whose signed URLs this app serves itself.
func Open(ctx context.Context, cfg *config.Config) (Store, *LocalStore, error) {
	switch cfg.BlobBackend {
	case config.BackendAzure:
		s, err := NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureEndpoint)
		return s, nil, err
	case config.BackendS3:
		s, err := NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,    // Bucket
			Region:    cfg.S3Region,    // Region
			Endpoint:  cfg.S3Endpoint,  // Optional endpoint
			AccessKey: cfg.S3AccessKey, // Static credentials
			SecretKey: cfg.S3SecretKey, // Static credentials
		})
		return s, nil, err
	case config.BackendLocal:
		s, err := NewLocalStore(cfg.LocalBlobDir, cfg.BlobURLSecret, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
}
