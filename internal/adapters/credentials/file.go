package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

// FileTokenStore reads the session token the host app's login flow writes to
// a file in the agent's data directory. The token is re-read on every call so
// a re-login takes effect without restarting the agent.
type FileTokenStore struct {
	path  string
	nowFn func() time.Time

	mu sync.Mutex
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{
		path:  path,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Token returns the stored bearer token after checking its expiry claim. The
// signature is the server's concern; the agent only avoids sending a token it
// can already tell is dead.
func (s *FileTokenStore) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no session token at %s", domain.ErrUnauthorized, s.path)
		}
		return "", fmt.Errorf("read session token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("%w: empty session token", domain.ErrUnauthorized)
	}

	if expiresAt, ok := tokenExpiry(token); ok && !expiresAt.After(s.nowFn()) {
		return "", fmt.Errorf("%w: expired at %s", domain.ErrSessionExpired, expiresAt.Format(time.RFC3339))
	}
	return token, nil
}

// tokenExpiry extracts the exp claim without verifying the signature. Opaque
// non-JWT tokens pass through and let the server decide.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return time.Time{}, false
	}
	return expiresAt.Time, true
}

var _ ports.CredentialStore = (*FileTokenStore)(nil)
