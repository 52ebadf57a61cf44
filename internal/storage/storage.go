// Package storage puts farmer documents and scheme videos into object
// storage and hands out short-lived signed URLs for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// Signed URL lifetimes handed to the browser.
const (
	DocumentURLTTL = 120 * time.Second
	VideoURLTTL    = 300 * time.Second
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// Bucket is a single object-storage bucket.
type Bucket interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// DocumentKey is where a farmer's document of docType lives. Re-uploading
// the same type with the same extension overwrites the object.
func DocumentKey(farmerID, docType, filename string) string {
	ext := slug(path.Ext(filename))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s.%s", farmerID, slug(docType), ext)
}

// VideoKey derives the object key of a scheme's explainer video from its name.
func VideoKey(schemeName string) string {
	name := slug(schemeName)
	if name == "" {
		name = "video"
	}
	return name + ".mp4"
}

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

// slug keeps [a-z0-9] and joins everything else into single underscores.
func slug(s string) string {
	return strings.Trim(unsafeKeyChars.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// escapeKey path-escapes each segment of key. Empty, "." and ".." segments
// are rejected so a key can never leave its prefix.
func escapeKey(key string) (string, error) {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/"), nil
}
