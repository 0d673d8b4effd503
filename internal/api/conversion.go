package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// Scan uploads the archive at archivePath and returns the scan result. The
// file is reopened per attempt so the 401 retry path can resend it.
func (c *Client) Scan(ctx context.Context, archivePath string) (*ScanResponse, error) {
	if _, err := os.Stat(archivePath); err != nil {
		return nil, fmt.Errorf("inspect archive %q: %w", archivePath, err)
	}

	spec := requestSpec{
		method: http.MethodPost,
		path:   "/conversion/scan",
		auth:   true,
		upload: true,
		body:   multipartFileBody("file", archivePath),
	}

	var payload ScanResponse
	if err := c.doJSON(ctx, spec, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Convert submits the conversion request for every scanned group.
func (c *Client) Convert(ctx context.Context, sessionID, outputFormat string, groups []string) (*ConvertResponse, error) {
	fields := url.Values{}
	fields.Set("session_id", sessionID)
	fields.Set("output_format", outputFormat)
	for _, group := range groups {
		fields.Add("groups", group)
	}

	spec := requestSpec{
		method: http.MethodPost,
		path:   "/conversion/convert",
		auth:   true,
		body:   multipartFieldBody(fields),
	}

	var payload ConvertResponse
	if err := c.doJSON(ctx, spec, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ListFiles fetches the group and file listing for the session.
func (c *Client) ListFiles(ctx context.Context, sessionID string) (*FileListing, error) {
	spec := requestSpec{
		method: http.MethodGet,
		path:   "/conversion/files/" + escapeSegment(sessionID),
		auth:   true,
	}
	var payload FileListing
	if err := c.doJSON(ctx, spec, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Preview fetches the row-capped rendering of one converted file.
func (c *Client) Preview(ctx context.Context, sessionID, filename string, maxRows int) (*PreviewPayload, error) {
	if maxRows <= 0 {
		maxRows = 100
	}
	spec := requestSpec{
		method: http.MethodGet,
		path:   "/conversion/preview/" + escapeSegment(sessionID) + "/" + escapeSegment(filename),
		query:  url.Values{"max_rows": []string{strconv.Itoa(maxRows)}},
		auth:   true,
	}

	var buf bytes.Buffer
	if _, err := c.doStream(ctx, spec, &buf); err != nil {
		return nil, err
	}
	return decodePreview(filename, buf.Bytes()), nil
}

// DownloadAll streams the archive of every converted file into w.
func (c *Client) DownloadAll(ctx context.Context, sessionID string, w io.Writer) (int64, error) {
	return c.download(ctx, "/conversion/download/"+escapeSegment(sessionID), w)
}

// DownloadModified streams the archive of edited files into w.
func (c *Client) DownloadModified(ctx context.Context, sessionID string, w io.Writer) (int64, error) {
	return c.download(ctx, "/conversion/download-modified/"+escapeSegment(sessionID), w)
}

// DownloadFile streams one converted file into w.
func (c *Client) DownloadFile(ctx context.Context, sessionID, filename string, w io.Writer) (int64, error) {
	return c.download(ctx, "/conversion/download-file/"+escapeSegment(sessionID)+"/"+escapeSegment(filename), w)
}

// DownloadGroup streams the archive of one group into w.
func (c *Client) DownloadGroup(ctx context.Context, sessionID, group string, w io.Writer) (int64, error) {
	return c.download(ctx, "/conversion/download-group/"+escapeSegment(sessionID)+"/"+escapeSegment(group), w)
}

func (c *Client) download(ctx context.Context, path string, w io.Writer) (int64, error) {
	return c.doStream(ctx, requestSpec{method: http.MethodGet, path: path, auth: true}, w)
}

// Cleanup tears down the backend's session-scoped conversion artifacts.
func (c *Client) Cleanup(ctx context.Context, sessionID string) error {
	spec := requestSpec{
		method: http.MethodPost,
		path:   "/conversion/cleanup/" + escapeSegment(sessionID),
		auth:   true,
	}
	return c.doJSON(ctx, spec, nil)
}

func escapeSegment(segment string) string {
	return url.PathEscape(segment)
}

// multipartFileBody streams the named file as a multipart upload without
// buffering it in memory.
func multipartFileBody(field, path string) func() (io.ReadCloser, string, error) {
	return func() (io.ReadCloser, string, error) {
		file, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open upload %q: %w", path, err)
		}

		pr, pw := io.Pipe()
		writer := multipart.NewWriter(pw)
		go func() {
			defer file.Close()
			part, err := writer.CreateFormFile(field, filepath.Base(path))
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, file); err != nil {
				pw.CloseWithError(err)
				return
			}
			pw.CloseWithError(writer.Close())
		}()
		return pr, writer.FormDataContentType(), nil
	}
}

// multipartFieldBody encodes plain form fields as a multipart body.
func multipartFieldBody(fields url.Values) func() (io.ReadCloser, string, error) {
	return func() (io.ReadCloser, string, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, values := range fields {
			for _, value := range values {
				if err := writer.WriteField(key, value); err != nil {
					return nil, "", fmt.Errorf("encode form field %q: %w", key, err)
				}
			}
		}
		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("finalize form body: %w", err)
		}
		return io.NopCloser(bytes.NewReader(buf.Bytes())), writer.FormDataContentType(), nil
	}
}
