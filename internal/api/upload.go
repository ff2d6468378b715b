package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"
)

const uploadPath = "files/upload"

// Upload sends one file as the multipart field "file" and returns the
// storage path the API answers with.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}

	target := c.endpoint(uploadPath, nil)
	resp, err := c.send(ctx, fhttp.MethodPost, target, &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", &SubmitError{Method: fhttp.MethodPost, URL: target, StatusCode: resp.status, Body: snippet(resp.body)}
	}
	return uploadedPath(resp.body), nil
}

// uploadedPath accepts both a bare text body and a JSON string.
func uploadedPath(body []byte) string {
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal([]byte(text), &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return text
}
