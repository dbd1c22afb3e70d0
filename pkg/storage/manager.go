package storage

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/config"
)

// Options selects and configures a driver.
type Options struct {
	Driver    string // "local" | "s3"
	LocalRoot string
	LocalURL  string
	S3        S3Options
}

func OptionsFromConfig() Options {
	return Options{
		Driver:    config.StorageDisk(),
		LocalRoot: config.StorageLocalRoot(),
		LocalURL:  config.StorageURL(),
		S3: S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		},
	}
}

// Open builds the disk named by opts.Driver.
func Open(ctx context.Context, opts Options) (Disk, error) {
	switch opts.Driver {
	case "", "local":
		return NewLocal(opts.LocalRoot, opts.LocalURL)
	case "s3":
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DISK %q (supported: local, s3)", opts.Driver)
	}
}
