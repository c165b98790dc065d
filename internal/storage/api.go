// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	storageapi "google.golang.org/api/storage/v1"
	"google.golang.org/api/option"
)

// APIClient talks to the storage JSON API directly. It is the fallback
// path for hosts where the gsutil binary is not installed.
type APIClient struct {
	svc *storageapi.Service
}

// NewAPIClient builds a client using application-default credentials.
func NewAPIClient(ctx context.Context) (*APIClient, error) {
	ts, err := google.DefaultTokenSource(ctx, storageapi.DevstorageReadWriteScope)
	if err != nil {
		return nil, fmt.Errorf("loading default credentials: %w", err)
	}
	return NewAPIClientWithTokenSource(ctx, ts)
}

// NewAPIClientWithTokenSource builds a client around an explicit token
// source. Tests use this with a static token against a fake endpoint.
func NewAPIClientWithTokenSource(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*APIClient, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := storageapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("building storage service: %w", err)
	}
	return &APIClient{svc: svc}, nil
}

// ListBuckets returns the bucket URIs owned by project.
func (c *APIClient) ListBuckets(ctx context.Context, project string) ([]string, error) {
	buckets, err := c.svc.Buckets.List(project).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing buckets for %s: %w", project, err)
	}
	uris := make([]string, 0, len(buckets.Items))
	for _, b := range buckets.Items {
		uris = append(uris, URIPrefix+b.Name+"/")
	}
	return uris, nil
}

// ListObjects returns the object URIs in the bucket at uri.
func (c *APIClient) ListObjects(ctx context.Context, uri string) ([]string, error) {
	if err := ValidateURI(uri); err != nil {
		return nil, err
	}
	bucket := strings.TrimSuffix(strings.TrimPrefix(uri, URIPrefix), "/")

	var uris []string
	call := c.svc.Objects.List(bucket).Context(ctx)
	err := call.Pages(ctx, func(objects *storageapi.Objects) error {
		for _, o := range objects.Items {
			uris = append(uris, URIPrefix+bucket+"/"+o.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing objects in %s: %w", uri, err)
	}
	return uris, nil
}

// InsertBucket creates the bucket at uri under project.
func (c *APIClient) InsertBucket(ctx context.Context, project, uri string) error {
	if err := ValidateURI(uri); err != nil {
		return err
	}
	name := strings.TrimSuffix(strings.TrimPrefix(uri, URIPrefix), "/")
	_, err := c.svc.Buckets.Insert(project, &storageapi.Bucket{Name: name}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", uri, err)
	}
	return nil
}

// DeleteBucket removes the bucket at uri.
func (c *APIClient) DeleteBucket(ctx context.Context, uri string) error {
	if err := ValidateURI(uri); err != nil {
		return err
	}
	name := strings.TrimSuffix(strings.TrimPrefix(uri, URIPrefix), "/")
	if err := c.svc.Buckets.Delete(name).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting bucket %s: %w", uri, err)
	}
	return nil
}
