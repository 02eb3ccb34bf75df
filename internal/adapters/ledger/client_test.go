package ledger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

type staticCredentials struct {
	token string
	err   error
}

func (s *staticCredentials) Token(context.Context) (string, error) {
	return s.token, s.err
}

func newTestClient(t *testing.T, handler http.Handler, creds *staticCredentials) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		BaseURL:     server.URL,
		Timeout:     2 * time.Second,
		Credentials: creds,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestFetchWorkAttendanceSendsBearer(t *testing.T) {
	t.Parallel()

	var gotAuth atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		if r.URL.Path != "/api/v1/attendance/work/today" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data": {"today": {"record": {"id": 1, "employee_id": 2, "date": "2026-09-01"}}}}`))
	})
	client := newTestClient(t, handler, &staticCredentials{token: "session-abc"})

	snap, err := client.FetchWorkAttendance(context.Background())
	if err != nil {
		t.Fatalf("FetchWorkAttendance: %v", err)
	}
	if snap.Today == nil || snap.Today.ID != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if gotAuth.Load() != "Bearer session-abc" {
		t.Fatalf("auth header = %q", gotAuth.Load())
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := newTestClient(t, handler, &staticCredentials{token: "stale"})

	_, err := client.FetchWorkAttendance(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestExpiredTokenShortCircuitsBeforeNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	})
	client := newTestClient(t, handler, &staticCredentials{err: domain.ErrSessionExpired})

	_, err := client.FetchClassAttendance(context.Background())
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if hits.Load() != 0 {
		t.Fatal("request must not reach the server with a dead token")
	}
}

func TestSubmitActionCarriesIdempotencyKey(t *testing.T) {
	t.Parallel()

	var gotKey atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/attendance/actions" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		gotKey.Store(r.Header.Get("Idempotency-Key"))
		_, _ = w.Write([]byte(`{"success": true, "data": {"record": {"id": 9, "employee_id": 2, "date": "2026-09-01", "check_in_time": "2026-09-01T08:00:00Z"}}}`))
	})
	client := newTestClient(t, handler, &staticCredentials{token: "session-abc"})

	receipt, err := client.SubmitAction(context.Background(), domain.AttendanceSubmission{
		Kind:           domain.ActionWorkCheckIn,
		IdempotencyKey: "key-123",
		SubmittedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SubmitAction: %v", err)
	}
	if gotKey.Load() != "key-123" {
		t.Fatalf("idempotency key = %q", gotKey.Load())
	}
	if receipt.WorkRecord == nil || receipt.WorkRecord.ID != 9 {
		t.Fatalf("receipt = %+v", receipt)
	}
}

func TestSubmitActionSoftRejection(t *testing.T) {
	t.Parallel()

	// Two server generations reply 200 with an error envelope.
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "already checked in today"}`))
	})
	client := newTestClient(t, handler, &staticCredentials{token: "session-abc"})

	_, err := client.SubmitAction(context.Background(), domain.AttendanceSubmission{Kind: domain.ActionWorkCheckIn})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("err = %v, want ErrSubmissionFailed", err)
	}
}

func TestSubmitActionHTTPFailure(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	client := newTestClient(t, handler, &staticCredentials{token: "session-abc"})

	_, err := client.SubmitAction(context.Background(), domain.AttendanceSubmission{Kind: domain.ActionWorkCheckIn})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("err = %v, want ErrSubmissionFailed", err)
	}
}
