package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/config"
	"github.com/Goh0809/Eventora-Backend/pkg/retry"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ObjectStore stores binary objects and serves them from public URLs
type ObjectStore interface {
	// Upload writes data to bucket/objectPath, replacing any existing object
	Upload(ctx context.Context, bucket, objectPath, contentType string, data []byte) error
	// Remove deletes objects by path
	Remove(ctx context.Context, bucket string, paths ...string) error
	// PublicURL returns the public URL of an object
	PublicURL(bucket, objectPath string) string
}

// Config holds object store connection settings
type Config struct {
	BaseURL    string
	ServiceKey string
	Retry      *retry.Config
}

// ConfigFrom maps application settings onto a client configuration
func ConfigFrom(sc config.SupabaseConfig) *Config {
	key := sc.ServiceRoleKey
	if key == "" {
		key = sc.AnonKey
	}
	return &Config{BaseURL: sc.URL, ServiceKey: key}
}

// Client wraps the Supabase storage SDK with retries and tracing
type Client struct {
	config  *Config
	baseURL string
	retrier *retry.Retrier
}

// NewClient creates a new storage client
func NewClient(cfg *Config) *Client {
	retryCfg := cfg.Retry
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	rc := *retryCfg
	rc.ShouldRetry = isTransient

	return &Client{
		config:  cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + "/storage/v1",
		retrier: retry.New(&rc),
	}
}

// sdk builds a fresh SDK client. Uploads set per-request headers on the client, so instances are never shared.
func (c *Client) sdk() *storage_go.Client {
	return storage_go.NewClient(c.baseURL, c.config.ServiceKey, map[string]string{"apikey": c.config.ServiceKey})
}

// PublicURL implements ObjectStore
func (c *Client) PublicURL(bucket, objectPath string) string {
	return c.sdk().GetPublicUrl(bucket, objectPath).SignedURL
}

// Upload implements ObjectStore
func (c *Client) Upload(ctx context.Context, bucket, objectPath, contentType string, data []byte) error {
	ctx, span := telemetry.StartSpan(ctx, "storage.upload")
	defer span.End()

	span.SetAttributes(
		attribute.String("bucket", bucket),
		attribute.String("path", objectPath),
		attribute.Int("size", len(data)),
	)

	upsert := true
	result := c.retrier.Do(ctx, func(ctx context.Context) error {
		_, err := c.sdk().UploadFile(bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		return err
	})
	if result.Err != nil {
		err := classify(lastError(result))
		telemetry.FailSpan(span, err, "upload failed")
		return err
	}

	span.SetAttributes(attribute.Int("attempts", result.Attempts))
	span.SetStatus(codes.Ok, "")
	return nil
}

// Remove implements ObjectStore
func (c *Client) Remove(ctx context.Context, bucket string, paths ...string) error {
	ctx, span := telemetry.StartSpan(ctx, "storage.remove")
	defer span.End()

	span.SetAttributes(attribute.String("bucket", bucket), attribute.StringSlice("paths", paths))

	if len(paths) == 0 {
		span.SetStatus(codes.Ok, "nothing to remove")
		return nil
	}

	result := c.retrier.Do(ctx, func(ctx context.Context) error {
		_, err := c.sdk().RemoveFile(bucket, paths)
		return err
	})
	if result.Err != nil {
		err := classify(lastError(result))
		telemetry.FailSpan(span, err, "remove failed")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func lastError(result *retry.Result) error {
	if result.LastError != nil {
		return result.LastError
	}
	return result.Err
}

// isTransient retries transport failures, 5xx, 429 and error answers without a body
func isTransient(err error) bool {
	var storageErr *storage_go.StorageError
	if !errors.As(err, &storageErr) {
		return true
	}
	if storageErr.Status >= 500 || storageErr.Status == 429 {
		return true
	}
	return storageErr.Status == 0 && storageErr.Message == ""
}

// classify maps storage failures onto the domain taxonomy
func classify(err error) error {
	var storageErr *storage_go.StorageError
	if !errors.As(err, &storageErr) || isTransient(storageErr) {
		return domain.Upstream("Storage Service Unavailable", err)
	}

	msg := strings.ToLower(storageErr.Message)
	switch {
	case strings.Contains(msg, "mime") || strings.Contains(msg, "content type"):
		return fmt.Errorf("%w: %v", domain.ErrInvalidImageType, err)
	case strings.Contains(msg, "bucket not found"):
		return &domain.AppError{Kind: domain.KindConfiguration, Message: "Storage Bucket Not Found", Err: err}
	case strings.Contains(msg, "not found") || storageErr.Status == 404:
		return &domain.AppError{Kind: domain.KindNotFound, Message: "Object Not Found", Err: err}
	}
	return &domain.AppError{Kind: domain.KindValidation, Message: "Storage Rejected the Request: " + storageErr.Message, Err: err}
}

// File is an uploaded image
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ValidateImage rejects anything that is not image/*
func ValidateImage(f *File) error {
	if f == nil || !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return domain.ErrInvalidImageType
	}
	return nil
}

// ObjectName builds "{folder}/{uuid}.{ext}", skipping empty folder segments
func ObjectName(filename string, folders ...string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = "bin"
	}
	name := uuid.New().String() + "." + ext

	segments := make([]string, 0, len(folders)+1)
	for _, f := range folders {
		if f = strings.Trim(f, "/"); f != "" {
			segments = append(segments, f)
		}
	}
	return strings.Join(append(segments, name), "/")
}

// PathFromURL returns the object path after "/{bucket}/" in a public URL, or "" if the URL is in another bucket
func PathFromURL(publicURL, bucket string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return ""
	}
	p := publicURL[idx+len(marker):]
	if q := strings.IndexAny(p, "?#"); q >= 0 {
		p = p[:q]
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	return p
}
