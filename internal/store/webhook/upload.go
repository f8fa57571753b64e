package webhook

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/hay-kot/ragdesk/internal/core/upload"
)

var _ upload.Uploader = (*Client)(nil)

// Upload posts one file as multipart form data with a "data" file part and a
// "topic" field. The payload is streamed, not buffered.
func (c *Client) Upload(ctx context.Context, topicName string, f upload.File) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("upload %q: %w", f.Name, err)
	}

	pr, pw := io.Pipe()
	defer func() { _ = pr.Close() }()
	mw := multipart.NewWriter(pw)

	go func() {
		defer func() { _ = src.Close() }()
		pw.CloseWithError(writeUploadForm(mw, f.Name, src, topicName))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.endpoints.Upload), pr)
	if err != nil {
		return fmt.Errorf("upload %q: create request: %w", f.Name, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if _, err := c.do("upload "+f.Name, req); err != nil {
		return err
	}

	c.log.Info().Str("file", f.Name).Str("topic", topicName).Int64("size", f.Size).Msg("uploaded document")
	return nil
}

func writeUploadForm(mw *multipart.Writer, name string, src io.Reader, topicName string) error {
	part, err := mw.CreateFormFile("data", name)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := mw.WriteField("topic", topicName); err != nil {
		return fmt.Errorf("write topic field: %w", err)
	}
	return mw.Close()
}
