package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "github.com/cha-revelacao/guest-sync/pkg/errors"
	"github.com/cha-revelacao/guest-sync/pkg/retry"
)

func (c *HttpImpl) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	return c.upload(ctx, "/api/media/upload-image", filename, data)
}

// Video is uploaded as-is; the client never transcodes it.
func (c *HttpImpl) UploadVideo(ctx context.Context, filename string, data []byte) (string, error) {
	return c.upload(ctx, "/api/media/upload-video", filename, data)
}

func (c *HttpImpl) upload(ctx context.Context, path, filename string, data []byte) (string, error) {
	var uploaded string
	err := retry.DoFixed(ctx, c.logger, "upload media", func() error {
		url, err := c.uploadOnce(ctx, path, filename, data)
		if err != nil {
			if !apperrors.IsTransient(err) {
				return retry.Permanent(err)
			}
			return err
		}
		uploaded = url
		return nil
	}, writeRetryAttempts, writeRetryInterval)
	if err != nil {
		return "", err
	}
	return uploaded, nil
}

func (c *HttpImpl) uploadOnce(ctx context.Context, path, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUnreachable, fmt.Sprintf("POST %s", path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError(resp)
	}

	return parseUploadResponse(resp.Body)
}

// parseUploadResponse accepts either a bare URL string or a small JSON
// envelope, both of which the backend has produced over time.
func parseUploadResponse(body io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", apperrors.New("empty upload response")
	}

	var quoted string
	if err := json.Unmarshal([]byte(trimmed), &quoted); err == nil {
		return quoted, nil
	}

	var envelope struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil && envelope.URL != "" {
		return envelope.URL, nil
	}

	return trimmed, nil
}
