package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stayfront/internal/metrics"
	"stayfront/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client is a typed HTTP client for the booking backend. All business state
// lives behind it; this side only reads, issues commands and refetches.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for the given backend base URL.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// UseRedisCache configures optional Redis read-through caching for GET
// endpoints that tolerate staleness (reviews, admin listings). Owner booking
// lists are never cached: the table must reflect the last successful fetch.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// OwnerBookings fetches the owner's booking list. The payload's data array
// replaces the raw view list wholesale; a missing array means empty.
func (c *Client) OwnerBookings(ctx context.Context, userID int64) ([]models.Booking, error) {
	endpoint := fmt.Sprintf("%s/owner/bookings/%d", c.baseURL, userID)
	var wrap struct {
		Data []models.Booking `json:"data"`
	}
	if err := c.doGet(ctx, endpoint, "owner_bookings", &wrap); err != nil {
		return nil, err
	}
	if wrap.Data == nil {
		return []models.Booking{}, nil
	}
	return wrap.Data, nil
}

// ConfirmBooking issues the PENDING -> CONFIRMED command.
func (c *Client) ConfirmBooking(ctx context.Context, userID, bookingID int64) error {
	endpoint := fmt.Sprintf("%s/owner/bookings/%d/%d/confirm", c.baseURL, userID, bookingID)
	return c.doPut(ctx, endpoint, "confirm_booking", nil, nil)
}

// CancelBooking issues the PENDING -> CANCELLED command with a reason.
// A refund object is returned when the backend issued one.
func (c *Client) CancelBooking(ctx context.Context, userID, bookingID int64, reason string) (*models.Refund, error) {
	endpoint := fmt.Sprintf("%s/owner/bookings/%d/%d/cancel", c.baseURL, userID, bookingID)
	body := map[string]string{"reason": reason}
	var wrap struct {
		Refund *models.Refund `json:"refund"`
	}
	if err := c.doPut(ctx, endpoint, "cancel_booking", body, &wrap); err != nil {
		return nil, err
	}
	return wrap.Refund, nil
}

// PayoutStatus fetches the owner's payment processor account state.
func (c *Client) PayoutStatus(ctx context.Context, userID int64) (*models.PayoutStatus, error) {
	endpoint := fmt.Sprintf("%s/ownerstripestatus/status?userid=%d", c.baseURL, userID)
	var status models.PayoutStatus
	if err := c.doGet(ctx, endpoint, "payout_status", &status); err != nil {
		return nil, err
	}
	if status.BalanceAvailable == nil {
		status.BalanceAvailable = []models.Balance{}
	}
	if status.BalancePending == nil {
		status.BalancePending = []models.Balance{}
	}
	return &status, nil
}

// Owners lists property owners for the admin console.
func (c *Client) Owners(ctx context.Context) ([]models.Owner, error) {
	endpoint := fmt.Sprintf("%s/admin/owners", c.baseURL)
	cacheKey := "admin:owners"
	var wrap struct {
		Data []models.Owner `json:"data"`
	}

	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.Data, nil
	}

	if err := c.doGet(ctx, endpoint, "admin_owners", &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.Data, nil
}

// Payments lists subscription invoices for the admin console.
func (c *Client) Payments(ctx context.Context) ([]models.Invoice, error) {
	endpoint := fmt.Sprintf("%s/admin/payments", c.baseURL)
	var wrap struct {
		Data []models.Invoice `json:"data"`
	}
	if err := c.doGet(ctx, endpoint, "admin_payments", &wrap); err != nil {
		return nil, err
	}
	return wrap.Data, nil
}

// PropertyReviews fetches the reviews page payload for one property.
func (c *Client) PropertyReviews(ctx context.Context, propertyID int64) (*models.PropertyReviews, error) {
	endpoint := fmt.Sprintf("%s/properties/%d/reviews", c.baseURL, propertyID)
	cacheKey := fmt.Sprintf("reviews:%d", propertyID)
	var page models.PropertyReviews

	if c.readCache(ctx, cacheKey, &page) {
		return &page, nil
	}

	if err := c.doGet(ctx, endpoint, "property_reviews", &page); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, page)
	return &page, nil
}

// PendingReviews lists the customer's completed stays still awaiting a review.
func (c *Client) PendingReviews(ctx context.Context, userID int64) ([]models.PendingReview, error) {
	endpoint := fmt.Sprintf("%s/customer/bookings/%d/unreviewed", c.baseURL, userID)
	var wrap struct {
		Data []models.PendingReview `json:"data"`
	}
	if err := c.doGet(ctx, endpoint, "pending_reviews", &wrap); err != nil {
		return nil, err
	}
	return wrap.Data, nil
}

// SubmitReview posts a guest review for a completed stay.
func (c *Client) SubmitReview(ctx context.Context, review models.ReviewSubmission) error {
	endpoint := fmt.Sprintf("%s/reviews", c.baseURL)
	if err := c.doPost(ctx, endpoint, "submit_review", review, nil); err != nil {
		return err
	}
	// The cached reviews page for this property is now stale.
	c.dropCache(ctx, fmt.Sprintf("reviews:%d", review.PropertyID))
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) dropCache(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, key).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint, name string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, name, out)
}

func (c *Client) doPut(ctx context.Context, endpoint, name string, body, out any) error {
	return c.doWithBody(ctx, http.MethodPut, endpoint, name, body, out)
}

func (c *Client) doPost(ctx context.Context, endpoint, name string, body, out any) error {
	return c.doWithBody(ctx, http.MethodPost, endpoint, name, body, out)
}

func (c *Client) doWithBody(ctx context.Context, method, endpoint, name string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = strings.NewReader(string(data))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, name, out)
}

func (c *Client) do(req *http.Request, name string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncBackend(name, "transport_error")
		c.logger.Error().Err(err).Str("endpoint", name).Msg("backend request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.IncBackend(name, "rejected")
		return c.decodeError(resp, name)
	}

	metrics.IncBackend(name, "ok")
	c.logger.Debug().
		Str("endpoint", name).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError turns a non-2xx response into a typed APIError, surfacing the
// server's `{"error": ...}` text when present.
func (c *Client) decodeError(resp *http.Response, name string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = strings.TrimSpace(body.Error)
	}

	c.logger.Warn().
		Str("endpoint", name).
		Int("status", resp.StatusCode).
		Str("error", apiErr.Message).
		Msg("backend rejected request")

	return apiErr
}
