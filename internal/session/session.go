package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stayfront/internal/models"

	"github.com/rs/zerolog"
)

// ErrNoSession is returned when the auth service found no active session.
var ErrNoSession = errors.New("no active session")

// Checker resolves the current authenticated user. Injected into the views
// so tests can substitute a double instead of reaching into ambient state.
type Checker interface {
	Check(ctx context.Context, token string) (*models.User, error)
}

// HTTPChecker calls the external auth service's session-check endpoint.
type HTTPChecker struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewHTTPChecker(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPChecker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Check verifies the session token. Returns ErrNoSession for a missing or
// rejected session; any other error means the check itself failed.
func (c *HTTPChecker) Check(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/check", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("session check failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrNoSession
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth service returned http %d", resp.StatusCode)
	}

	var body struct {
		User *models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	if body.User == nil || body.User.UserID == 0 {
		return nil, ErrNoSession
	}

	return body.User, nil
}
