package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the local disk and, when S3_BUCKET is set, the s3 disk.
// STORAGE_DISK picks the default. An unusable s3 configuration is logged
// and the default falls back to local.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	disks["local"] = newLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	defaultDisk = config.StorageDefault()

	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk(context.Background())
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}

	if _, ok := disks[defaultDisk]; !ok {
		logger.Warn("storage: default disk not configured, using local", "disk", defaultDisk)
		defaultDisk = "local"
	}
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// RegisterDisk plugs in a Disk under name. Tests use it to point the default
// disk at a temporary directory.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// SetDefault changes which disk the package-level helpers use.
func SetDefault(name string) {
	managerMu.Lock()
	defaultDisk = name
	managerMu.Unlock()
}

// Default returns the default disk, booting the local one on first use.
func Default() Disk {
	managerMu.RLock()
	d, ok := disks[defaultDisk]
	managerMu.RUnlock()
	if ok {
		return d
	}
	Connect()
	managerMu.RLock()
	defer managerMu.RUnlock()
	return disks[defaultDisk]
}

// LocalRoot reports the directory backing the local disk, for the static
// file handler. ok is false when the default disk is not local.
func LocalRoot() (root string, ok bool) {
	if l, isLocal := Default().(*localDisk); isLocal {
		return l.root, true
	}
	return "", false
}

func Put(ctx context.Context, path string, content []byte, contentType string) error {
	return Default().Put(ctx, path, content, contentType)
}

func Get(ctx context.Context, path string) ([]byte, error) { return Default().Get(ctx, path) }

func Exists(ctx context.Context, path string) bool { return Default().Exists(ctx, path) }

func Delete(ctx context.Context, path string) error { return Default().Delete(ctx, path) }

func URL(path string) string { return Default().URL(path) }
