package coursedex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sync"
)

// ProgressFunc receives upload progress as a 0-100 percentage.
type ProgressFunc func(percent int)

// ContentService stores and retrieves uploaded files.
type ContentService struct {
	client *Client
}

// Content returns the upload service.
func (c *Client) Content() *ContentService {
	return &ContentService{client: c}
}

// Upload stores a file and indexes it as a searchable content entity.
// progress may be nil.
func (s *ContentService) Upload(
	ctx context.Context, name, contentType string, data []byte, progress ProgressFunc,
) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return UploadResult{}, fmt.Errorf("coursedex: build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return UploadResult{}, fmt.Errorf("coursedex: build multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("coursedex: build multipart: %w", err)
	}

	payload := buf.Bytes()
	newBody := func() io.Reader {
		return &progressReader{
			r:        bytes.NewReader(payload),
			total:    int64(len(payload)),
			progress: progress,
		}
	}

	resp, err := s.client.do(ctx, "content_upload", http.MethodPost,
		"/content", mw.FormDataContentType(), newBody)
	if err != nil {
		return UploadResult{}, err
	}

	var out UploadResult
	if err := decodeJSON(resp.body, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}

// Get downloads a stored upload.
func (s *ContentService) Get(ctx context.Context, id string) (Download, error) {
	resp, err := s.client.do(ctx, "content_get", http.MethodGet,
		"/content/"+url.PathEscape(id), "", nil)
	if err != nil {
		return Download{}, err
	}

	d := Download{
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil {
		d.Name = params["filename"]
	}
	return d, nil
}

// Delete removes an upload and its index entry.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	return s.client.doJSON(ctx, "content_delete", http.MethodDelete,
		"/content/"+url.PathEscape(id), nil, nil)
}

// progressReader reports read progress in whole percents, at most once per
// step.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	progress ProgressFunc
	mu       sync.Mutex
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.progress != nil && p.total > 0 {
		p.mu.Lock()
		p.read += int64(n)
		percent := int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		if percent != p.last {
			p.last = percent
			p.progress(percent)
		}
		p.mu.Unlock()
	}
	return n, err
}
