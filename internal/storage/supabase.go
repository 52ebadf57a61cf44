package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseBucket handles objects in a Supabase Storage bucket
type SupabaseBucket struct {
	baseURL    string
	apiKey     string
	bucketName string
	httpClient *http.Client
}

// NewSupabaseBucket creates a client for one bucket. baseURL is the project
// URL, e.g. https://abc.supabase.co
func NewSupabaseBucket(baseURL, apiKey, bucketName string, httpClient *http.Client) *SupabaseBucket {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &SupabaseBucket{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		bucketName: bucketName,
		httpClient: httpClient,
	}
}

func (s *SupabaseBucket) objectURL(kind, key string) (string, error) {
	escaped, err := escapeKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/storage/v1/object/%s%s/%s", s.baseURL, kind, url.PathEscape(s.bucketName), escaped), nil
}

// Put uploads an object, overwriting any existing object at key
func (s *SupabaseBucket) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	target, err := s.objectURL("", key)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.ContentLength = size
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Delete removes an object
func (s *SupabaseBucket) Delete(ctx context.Context, key string) error {
	target, err := s.objectURL("", key)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// SignedURL asks Supabase to sign a time-limited download URL
func (s *SupabaseBucket) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	payload, err := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	if err != nil {
		return "", fmt.Errorf("failed to encode sign request: %w", err)
	}

	target, err := s.objectURL("sign/", key)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		// Supabase reports a missing object as 400 with "Object not found"
		return "", ErrObjectNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sign failed with status %d: %s", resp.StatusCode, string(body))
	}

	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("failed to decode sign response: %w", err)
	}

	if signed.SignedURL == "" {
		return "", fmt.Errorf("sign response missing signedURL")
	}

	return s.baseURL + "/storage/v1" + signed.SignedURL, nil
}
