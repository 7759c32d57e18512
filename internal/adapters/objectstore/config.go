// Package objectstore stores grid and tile images on local disk or in a MinIO bucket.
package objectstore

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Config configures the MinIO backend.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New("bucket is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}

// Key joins parts into a clean object key.
func Key(parts ...string) string {
	return strings.TrimPrefix(path.Join(parts...), "/")
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	slashed := strings.ReplaceAll(key, "\\", "/")
	cleaned := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if cleaned == "" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return "", fmt.Errorf("invalid object key %q", key)
		}
	}
	return cleaned, nil
}
