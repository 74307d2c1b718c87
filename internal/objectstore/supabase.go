package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseStore keeps attachments in a Supabase Storage bucket.
// The storage client has no context support; ctx is checked before each call only.
type SupabaseStore struct {
	client *supabase.Client
	bucket string
}

var _ Store = (*SupabaseStore)(nil)

func NewSupabaseStore(projectURL, apiKey, bucket string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(projectURL, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseStore{client: client, bucket: bucket}, nil
}

func (s *SupabaseStore) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upsert := false
	opts := storage_go.FileOptions{ContentType: &contentType, Upsert: &upsert}
	if _, err := s.client.Storage.UploadFile(s.bucket, objectPath, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return s.PublicURL(objectPath), nil
}

func (s *SupabaseStore) Download(ctx context.Context, objectPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.client.Storage.DownloadFile(s.bucket, objectPath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", objectPath, err)
	}
	return data, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, objectPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	removed, err := s.client.Storage.RemoveFile(s.bucket, []string{objectPath})
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return len(removed) > 0, nil
}

// List walks prefix recursively. Supabase lists one folder level per call; entries
// without an id are folders.
func (s *SupabaseStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	var out []Entry
	queue := []string{strings.TrimSuffix(prefix, "/")}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := queue[0]
		queue = queue[1:]

		objects, err := s.client.Storage.ListFiles(s.bucket, dir, storage_go.FileSearchOptions{Limit: 1000})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		for _, o := range objects {
			full := path.Join(dir, o.Name)
			if o.Id == "" {
				queue = append(queue, full)
				continue
			}
			e := Entry{Path: full, Name: o.Name}
			if t, err := time.Parse(time.RFC3339, o.UpdatedAt); err == nil {
				e.UpdatedAt = t
			}
			if md, ok := o.Metadata.(map[string]interface{}); ok {
				if size, ok := md["size"].(float64); ok {
					e.Size = int64(size)
				}
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *SupabaseStore) PublicURL(objectPath string) string {
	return s.client.Storage.GetPublicUrl(s.bucket, objectPath).SignedURL
}
