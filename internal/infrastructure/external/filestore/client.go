// Package filestore implements the client for the document storage
// service. The portal stores only metadata; file bytes live behind this
// client and are addressed by the reference it returns on upload.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/campus-hub/admissions-hub/pkg/circuitbreaker"
	"github.com/campus-hub/admissions-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the file storage client.
type ClientConfig struct {
	// BaseURL is the storage service base URL
	BaseURL string

	// APIKey authenticates the portal against the storage service
	APIKey string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// MaxFileSize is the largest accepted upload in bytes
	MaxFileSize int64

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:     baseURL,
		Timeout:     30 * time.Second,
		MaxFileSize: 10 << 20, // 10 MiB
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrFileTooLarge is returned when an upload exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("filestore: file exceeds maximum size")

	// ErrNotFound is returned when the reference does not exist.
	ErrNotFound = errors.New("filestore: file not found")

	// ErrUnavailable is returned when the storage service cannot be reached
	// or the circuit breaker is open.
	ErrUnavailable = errors.New("filestore: service unavailable")
)

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client talks to the file storage service. Calls are retried with
// backoff and guarded by a circuit breaker so a degraded storage
// service cannot stall the whole portal.
type Client struct {
	config  ClientConfig
	http    *http.Client
	logger  *slog.Logger
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewClient creates a new file storage client.
func NewClient(config ClientConfig) *Client {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		config: config,
		http: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  logger,
		retrier: retry.FileStoreRetrier(),
	}

	c.breaker = circuitbreaker.FileStoreBreaker(func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state change",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	})

	return c
}

// UploadInput describes a file to store.
type UploadInput struct {
	StudentID   string
	FileName    string
	ContentType string
	Data        io.Reader
}

// uploadResponse is the storage service's reply to an upload.
type uploadResponse struct {
	Ref string `json:"ref"`
}

// Upload stores a file and returns its storage reference.
func (c *Client) Upload(ctx context.Context, in UploadInput) (string, error) {
	data, err := io.ReadAll(io.LimitReader(in.Data, c.config.MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("filestore: read upload: %w", err)
	}
	if int64(len(data)) > c.config.MaxFileSize {
		return "", ErrFileTooLarge
	}

	var ref string
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			r, err := c.doUpload(ctx, in, data)
			if err != nil {
				return err
			}
			ref = r
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return "", ErrUnavailable
		}
		return "", err
	}

	c.logger.Debug("file uploaded",
		"student_id", in.StudentID,
		"file_name", in.FileName,
		"size", len(data),
	)
	return ref, nil
}

func (c *Client) doUpload(ctx context.Context, in UploadInput, data []byte) (string, error) {
	fullURL := c.config.BaseURL + "/v1/files"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(data))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", in.ContentType)
	req.Header.Set("X-Owner-ID", in.StudentID)
	req.Header.Set("X-File-Name", in.FileName)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= 500:
		return "", retry.Retryable(fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", retry.Permanent(fmt.Errorf("filestore: upload rejected: status %d: %s", resp.StatusCode, body))
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", retry.Permanent(fmt.Errorf("filestore: decode response: %w", err))
	}
	if parsed.Ref == "" {
		return "", retry.Permanent(errors.New("filestore: empty reference in response"))
	}

	return parsed.Ref, nil
}

// Delete removes a stored file by reference. Deleting a missing
// reference is not an error; the metadata row is already gone.
func (c *Client) Delete(ctx context.Context, ref string) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			return c.doDelete(ctx, ref)
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return ErrUnavailable
		}
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) doDelete(ctx context.Context, ref string) error {
	fullURL := c.config.BaseURL + "/v1/files/" + url.PathEscape(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fullURL, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return retry.Permanent(ErrNotFound)
	case resp.StatusCode >= 500:
		return retry.Retryable(fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode))
	default:
		return retry.Permanent(fmt.Errorf("filestore: delete rejected: status %d", resp.StatusCode))
	}
}

// SignedURL returns a short-lived download URL for a stored file.
func (c *Client) SignedURL(ctx context.Context, ref string) (string, error) {
	fullURL := c.config.BaseURL + "/v1/files/" + url.PathEscape(ref) + "/url"

	var signed string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("filestore: signed url: status %d", resp.StatusCode)
		}

		var parsed struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("filestore: decode response: %w", err)
		}
		signed = parsed.URL
		return nil
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return "", ErrUnavailable
		}
		return "", err
	}

	return signed, nil
}
