package blob

import (
	"context"
	"fmt"
)

// Config selects and configures a blob store driver.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open builds a Store from config. An empty driver defaults to the
// filesystem store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
