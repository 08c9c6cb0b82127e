package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseStorage writes to a Supabase storage bucket over its REST API. The first
// path segment is the bucket.
type SupabaseStorage struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewSupabaseStorage(baseURL, serviceKey string, client *http.Client) *SupabaseStorage {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SupabaseStorage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     client,
	}
}

// Upload overwrites any existing object at path.
func (s *SupabaseStorage) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	path = strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/storage/v1/object/"+path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return s.baseURL + "/storage/v1/object/public/" + path, nil
}
