package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

const (
	workAttendancePath  = "/api/v1/attendance/work/today"
	classAttendancePath = "/api/v1/attendance/class/today"
	submitActionPath    = "/api/v1/attendance/actions"
)

// Client talks to the remote attendance ledger. Both reads normalize the
// drifting wire shapes in envelope.go; the write is sent exactly once per
// call, with the caller owning the no-retry policy.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials ports.CredentialStore
}

type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Credentials ports.CredentialStore
}

func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: ledger base url is required", domain.ErrInvalidInput)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     base,
		httpClient:  httpClient,
		credentials: cfg.Credentials,
	}, nil
}

func (c *Client) FetchWorkAttendance(ctx context.Context) (ports.WorkAttendanceSnapshot, error) {
	raw, err := c.do(ctx, http.MethodGet, workAttendancePath, nil, "")
	if err != nil {
		return ports.WorkAttendanceSnapshot{}, fmt.Errorf("fetch work attendance: %w", err)
	}
	return decodeWorkSnapshot(raw), nil
}

func (c *Client) FetchClassAttendance(ctx context.Context) (ports.ClassAttendanceSnapshot, error) {
	raw, err := c.do(ctx, http.MethodGet, classAttendancePath, nil, "")
	if err != nil {
		return ports.ClassAttendanceSnapshot{}, fmt.Errorf("fetch class attendance: %w", err)
	}
	return decodeClassSnapshot(raw), nil
}

func (c *Client) SubmitAction(ctx context.Context, submission domain.AttendanceSubmission) (ports.SubmissionReceipt, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return ports.SubmissionReceipt{}, fmt.Errorf("%w: encode submission: %v", domain.ErrSubmissionFailed, err)
	}
	raw, err := c.do(ctx, http.MethodPost, submitActionPath, bytes.NewReader(body), submission.IdempotencyKey)
	if err != nil {
		return ports.SubmissionReceipt{}, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	if msg, ok := rejectionMessage(raw); ok {
		return ports.SubmissionReceipt{}, fmt.Errorf("%w: %s", domain.ErrSubmissionFailed, msg)
	}
	return decodeReceipt(raw), nil
}

// rejectionMessage detects the {success:false} and {status:"error"} envelope
// generations, which arrive with HTTP 200 on two server versions.
func rejectionMessage(raw []byte) (string, bool) {
	var envelope struct {
		Success *bool  `json:"success"`
		Status  string `json:"status"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", false
	}
	rejected := (envelope.Success != nil && !*envelope.Success) || strings.EqualFold(envelope.Status, "error")
	if !rejected {
		return "", false
	}
	if envelope.Error != "" {
		return envelope.Error, true
	}
	if envelope.Message != "" {
		return envelope.Message, true
	}
	return "submission rejected", true
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, idempotencyKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	if c.credentials != nil {
		token, err := c.credentials.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("ledger returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

var _ ports.AttendanceLedger = (*Client)(nil)
