// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage manages buckets and objects. The primary path shells
// out to gsutil; an API fallback covers hosts without the CLI installed.
package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/newsdesk-engine/internal/cli"
)

// URIPrefix is the scheme prefix for bucket and object addresses.
const URIPrefix = "gs://"

// ValidateURI checks that uri carries the storage scheme and a plausible
// bucket name. Object paths after the bucket are not validated; the
// provider rejects bad ones.
func ValidateURI(uri string) error {
	if !strings.HasPrefix(uri, URIPrefix) {
		return fmt.Errorf("invalid storage URI %q: must start with %s", uri, URIPrefix)
	}
	rest := strings.TrimPrefix(uri, URIPrefix)
	bucket := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		bucket = rest[:i]
	}
	return validateBucketName(bucket)
}

// validateBucketName enforces the provider's documented bucket charset:
// 3-63 characters of lowercase letters, digits, dashes, underscores, and
// dots, beginning and ending with a letter or digit.
func validateBucketName(name string) error {
	if len(name) < 3 || len(name) > 63 {
		return fmt.Errorf("invalid bucket name %q: must be 3-63 characters", name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("invalid bucket name %q: character %q not allowed", name, r)
		}
	}
	if !isAlnum(name[0]) || !isAlnum(name[len(name)-1]) {
		return fmt.Errorf("invalid bucket name %q: must start and end with a letter or digit", name)
	}
	return nil
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// RandomBucketURI returns a bucket URI with a random suffix, e.g.
// "gs://newsdesk-staging-1a2b3c4d". Bucket names are globally unique on
// the provider side; the suffix makes collisions unlikely.
func RandomBucketURI(prefix string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return URIPrefix + strings.ToLower(prefix) + "-" + suffix
}

// MakeBucket creates the bucket at uri.
func MakeBucket(t *cli.Tool, uri string) error {
	if err := ValidateURI(uri); err != nil {
		return err
	}
	if err := t.Run("mb", uri); err != nil {
		return fmt.Errorf("creating bucket %s: %w", uri, err)
	}
	return nil
}

// List returns the entries under uri, one URI per line of tool output.
// An empty uri lists the buckets of the active project.
func List(t *cli.Tool, uri string) ([]string, error) {
	args := []string{"ls"}
	if uri != "" {
		if err := ValidateURI(uri); err != nil {
			return nil, err
		}
		args = append(args, uri)
	}
	out, err := t.Output(args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", displayURI(uri), err)
	}

	var entries []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}

// Copy transfers one object. Either side may be a local path or a
// storage URI; at least one side must be a storage URI.
func Copy(t *cli.Tool, src, dst string) error {
	srcRemote := strings.HasPrefix(src, URIPrefix)
	dstRemote := strings.HasPrefix(dst, URIPrefix)
	if !srcRemote && !dstRemote {
		return fmt.Errorf("copy %s -> %s: at least one side must be a %s URI", src, dst, URIPrefix)
	}
	if srcRemote {
		if err := ValidateURI(src); err != nil {
			return err
		}
	}
	if dstRemote {
		if err := ValidateURI(dst); err != nil {
			return err
		}
	}
	if err := t.Run("cp", src, dst); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return nil
}

// Remove deletes the object at uri.
func Remove(t *cli.Tool, uri string) error {
	if err := ValidateURI(uri); err != nil {
		return err
	}
	if err := t.Run("rm", uri); err != nil {
		return fmt.Errorf("removing %s: %w", uri, err)
	}
	return nil
}

// RemoveBucket deletes the bucket at uri. The provider refuses to delete
// non-empty buckets; that error is surfaced as-is.
func RemoveBucket(t *cli.Tool, uri string) error {
	if err := ValidateURI(uri); err != nil {
		return err
	}
	if err := t.Run("rb", uri); err != nil {
		return fmt.Errorf("removing bucket %s: %w", uri, err)
	}
	return nil
}

func displayURI(uri string) string {
	if uri == "" {
		return "buckets"
	}
	return uri
}
