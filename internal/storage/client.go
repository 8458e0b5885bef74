// Package storage wraps the Supabase Storage bucket used as the external
// document store for per-project folders, uploaded-file copies and
// database backups.
package storage

import (
	"bytes"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
)

type Client struct {
	client  *storage_go.Client
	bucket  string
	baseURL string
}

func NewClient(supabaseURL, serviceKey, bucket string) (*Client, error) {
	baseURL := supabaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage_go.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &Client{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadFile stores data at objectPath in the bucket, overwriting any
// previous object, and returns the public URL.
func (c *Client) UploadFile(objectPath string, data []byte, contentType string) (string, error) {
	upsert := true
	_, err := c.client.UploadFile(c.bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return c.PublicURL(objectPath), nil
}

func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, objectPath)
}

func (c *Client) DeleteFile(objectPath string) error {
	_, err := c.client.RemoveFile(c.bucket, []string{objectPath})
	return err
}

// EnsureFolder materializes a folder prefix. Supabase Storage has no real
// directories, so an empty placeholder object is written under the prefix,
// the same trick its own dashboard uses.
func (c *Client) EnsureFolder(prefix string) error {
	if len(prefix) > 0 && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	contentType := "application/octet-stream"
	upsert := true
	_, err := c.client.UploadFile(c.bucket, prefix+".emptyFolderPlaceholder",
		bytes.NewReader(nil), storage_go.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
	if err != nil {
		return fmt.Errorf("failed to create folder placeholder: %w", err)
	}
	return nil
}
