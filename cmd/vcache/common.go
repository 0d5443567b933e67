package main

import (
	"os"

	"github.com/vango-dev/vcache/internal/config"
	"github.com/vango-dev/vcache/pkg/snapshot"
)

// loadConfig loads path, or ./vcache.json when path is empty and the file
// exists, or the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.ConfigFileName); err == nil {
			path = config.ConfigFileName
		}
	}
	return config.LoadOrDefault(path)
}

// openBackend returns the snapshot backend selected by cfg.
func openBackend(cfg *config.Config) (snapshot.Backend, error) {
	if cfg.Snapshot.Backend == config.BackendS3 {
		client := snapshot.NewS3Client(snapshot.S3ClientOptions{
			Region:       cfg.Snapshot.Region,
			Endpoint:     cfg.Snapshot.Endpoint,
			UsePathStyle: cfg.Snapshot.UsePathStyle,
		})
		return snapshot.NewS3Backend(client, cfg.Snapshot.Bucket, cfg.Snapshot.Prefix), nil
	}
	return snapshot.NewDiskBackend(cfg.SnapshotDir())
}
