package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/kurochkinivan/stego_portal/internal/domain"
)

const (
	fileField          = "file"
	errorBodyLimit     = 4 << 10
	defaultContentType = "text/csv"
)

var _ Sender = (*Client)(nil)

// Client posts files to the stego backend.
type Client struct {
	log        *slog.Logger
	baseURL    *url.URL
	httpClient *http.Client
}

func NewClient(log *slog.Logger, baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		log:        log,
		baseURL:    u,
		httpClient: httpClient,
	}, nil
}

func (c *Client) Send(ctx context.Context, endpointPath string, file *domain.SelectedFile) (*domain.Payload, error) {
	body, contentType, err := c.multipartBody(file)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	endpoint := c.baseURL.JoinPath(endpointPath).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)

	c.log.DebugContext(ctx, "sending file to backend",
		slog.String("endpoint", endpoint),
		slog.String("filename", file.Name),
		slog.Int64("size", file.Size),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TransportError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(resp.Body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read body: %w", err),
		}
	}

	if len(data) == 0 {
		return nil, &domain.TransportError{StatusCode: resp.StatusCode, Err: domain.ErrEmptyPayload}
	}

	contentType = resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	c.log.DebugContext(ctx, "received payload from backend",
		slog.String("endpoint", endpoint),
		slog.Int("size", len(data)),
	)

	return &domain.Payload{Data: data, ContentType: contentType}, nil
}

func (c *Client) multipartBody(file *domain.SelectedFile) (_ io.Reader, _ string, err error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %q: %w", file.Name, err)
	}
	defer func() { err = errors.Join(err, src.Close()) }()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fileField, file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to copy %q: %w", file.Name, err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// errorDetail extracts the message of a {"error": "..."} body, falling back
// to the raw text.
func errorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}

	return strings.TrimSpace(string(raw))
}
