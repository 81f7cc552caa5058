package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"stayfront/internal/config"

	"golang.org/x/time/rate"
)

var errPermissionDenied = fmt.Errorf("permission denied")

// AdminAuth provides API-key auth and per-key rate limiting for the admin
// console endpoints.
type AdminAuth struct {
	cfg       config.AdminConfig
	rateLimit config.RateLimitConfig
	clients   map[string]config.AdminAPIKey
	limiters  sync.Map // map[string]*rate.Limiter
}

func NewAdminAuth(cfg config.AdminConfig, rateLimit config.RateLimitConfig) *AdminAuth {
	m := make(map[string]config.AdminAPIKey, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		m[k.Key] = k
	}
	return &AdminAuth{cfg: cfg, rateLimit: rateLimit, clients: m}
}

func (a *AdminAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.checkAuth(r); err != nil {
			statusCode := http.StatusUnauthorized
			if err == errPermissionDenied {
				statusCode = http.StatusForbidden
			}
			writeError(w, statusCode, err.Error())
			return
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader()))
	extra := strings.TrimSpace(r.Header.Get(a.extraHeader()))
	if apiKey == "" || extra == "" {
		return fmt.Errorf("missing api key headers")
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return fmt.Errorf("invalid api key")
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return fmt.Errorf("invalid extra header")
	}

	return a.checkPermissions(client, r)
}

func (a *AdminAuth) checkPermissions(client config.AdminAPIKey, r *http.Request) error {
	required := requiredPermission(r)
	if required == "" {
		return nil
	}
	// Ключ без списка прав имеет полный доступ
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermission(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/admin/owners"):
		return "read:owners"
	case strings.HasPrefix(path, "/admin/payments"):
		return "read:payments"
	case strings.HasPrefix(path, "/admin/sync"):
		return "write:sync"
	}
	return ""
}

func (a *AdminAuth) checkRateLimit(r *http.Request) error {
	if a.rateLimit.RPS <= 0 {
		return nil
	}

	key := strings.TrimSpace(r.Header.Get(a.apiKeyHeader()))
	if key == "" {
		key = "unknown"
	}
	if !a.getLimiter(key).Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *AdminAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.rateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.rateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (a *AdminAuth) apiKeyHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.HeaderAPIKey))
	if h == "" {
		h = "x-api-key"
	}
	return h
}

func (a *AdminAuth) extraHeader() string {
	h := strings.TrimSpace(strings.ToLower(a.cfg.HeaderExtra))
	if h == "" {
		h = "x-api-extra"
	}
	return h
}
