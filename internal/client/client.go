// Package client talks to the fitcoach REST API: recommendation requests,
// routine add/delete, the paginated history, routine and catalog lists, and
// the staff management endpoints.
package client

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
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mithrel/fitcoach/pkg/models"
)

const (
	csrfCookie     = "csrftoken"
	csrfHeader     = "X-CSRFToken"
	defaultTimeout = 10 * time.Second
)

// Sentinels matched by APIError via errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

// Config is fixed at construction; the client holds no other state.
type Config struct {
	BaseURL      string
	CSRFToken    string
	SessionToken string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

type Client struct {
	base *url.URL
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("client: base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{base: base, cfg: cfg, http: hc, log: logger}, nil
}

// AddResult reports whether a routine was newly created.
type AddResult struct {
	Created  bool
	Message  string
	Exercise *models.Exercise
}

// Recommend submits a condition report.
func (c *Client) Recommend(ctx context.Context, in models.ConditionInput) (models.Recommendation, error) {
	if err := in.Validate(); err != nil {
		return models.Recommendation{}, err
	}
	body, _, err := c.do(ctx, http.MethodPost, "/api/recommend/", nil, in)
	if err != nil {
		return models.Recommendation{}, err
	}
	return decodeRecommendation(body)
}

// decodeRecommendation accepts either an exercise array or a rest object.
func decodeRecommendation(body []byte) (models.Recommendation, error) {
	res := gjson.ParseBytes(body)
	switch {
	case res.IsArray():
		var picks []models.Exercise
		if err := json.Unmarshal(body, &picks); err != nil {
			return models.Recommendation{}, fmt.Errorf("decode recommendations: %w", err)
		}
		return models.Recommendation{Exercises: picks}, nil
	case res.IsObject():
		return models.Recommendation{
			RestSuggestion: res.Get("rest_suggestion").Bool(),
			Message:        res.Get("message").String(),
		}, nil
	default:
		return models.Recommendation{}, fmt.Errorf("decode recommendations: unexpected body %q", truncate(body))
	}
}

func (c *Client) AddRoutine(ctx context.Context, exerciseID int64) (AddResult, error) {
	body, status, err := c.do(ctx, http.MethodPost, routinePath(exerciseID), nil, nil)
	if err != nil {
		return AddResult{}, err
	}
	var out struct {
		Message  string           `json:"message"`
		Exercise *models.Exercise `json:"exercise"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return AddResult{}, fmt.Errorf("decode routine: %w", err)
		}
	}
	return AddResult{Created: status == http.StatusCreated, Message: out.Message, Exercise: out.Exercise}, nil
}

func (c *Client) DeleteRoutine(ctx context.Context, exerciseID int64) error {
	_, _, err := c.do(ctx, http.MethodDelete, routinePath(exerciseID), nil, nil)
	return err
}

func (c *Client) History(ctx context.Context, page int) (models.Page[models.ConditionLog], error) {
	return getPage[models.ConditionLog](ctx, c, "/api/history/", nil, page)
}

func (c *Client) Routines(ctx context.Context, page int) (models.Page[models.Routine], error) {
	return getPage[models.Routine](ctx, c, "/api/routines/", nil, page)
}

func (c *Client) Exercises(ctx context.Context, page int) (models.Page[models.Exercise], error) {
	return getPage[models.Exercise](ctx, c, "/api/exercises/", nil, page)
}

func (c *Client) Exercise(ctx context.Context, id int64) (models.Exercise, error) {
	body, _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/exercises/%d/", id), nil, nil)
	if err != nil {
		return models.Exercise{}, err
	}
	var ex models.Exercise
	if err := json.Unmarshal(body, &ex); err != nil {
		return models.Exercise{}, fmt.Errorf("decode exercise: %w", err)
	}
	return ex, nil
}

// getPage fetches one page of a list endpoint; q carries extra filters.
func getPage[T any](ctx context.Context, c *Client, path string, q url.Values, page int) (models.Page[T], error) {
	if q == nil {
		q = url.Values{}
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	body, _, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return models.Page[T]{}, err
	}
	var out models.Page[T]
	if err := json.Unmarshal(body, &out); err != nil {
		return models.Page[T]{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func routinePath(id int64) string {
	return fmt.Sprintf("/api/routines/%d/", id)
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload any) ([]byte, int, error) {
	u := c.base.JoinPath(path)
	// JoinPath drops the trailing slash the API routes require.
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = q.Encode()

	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.SessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.SessionToken)
	}
	if method != http.MethodGet && method != http.MethodHead && c.cfg.CSRFToken != "" {
		req.Header.Set(csrfHeader, c.cfg.CSRFToken)
		req.AddCookie(&http.Cookie{Name: csrfCookie, Value: c.cfg.CSRFToken})
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	c.log.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, apiError(resp.StatusCode, body)
	}
	return body, resp.StatusCode, nil
}

func apiError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		if m := res.Get("error"); m.Exists() {
			e.Message = m.String()
		} else if m := res.Get("message"); m.Exists() {
			e.Message = m.String()
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(truncate(body))
	}
	return e
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
