package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mithrel/fitcoach/pkg/models"
)

// call sends a request and decodes a JSON response into T.
func call[T any](ctx context.Context, c *Client, method, path string, payload any) (T, error) {
	var out T
	body, _, err := c.do(ctx, method, path, nil, payload)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func searchQuery(q string) url.Values {
	v := url.Values{}
	if q = strings.TrimSpace(q); q != "" {
		v.Set("q", q)
	}
	return v
}

// Stats returns the staff dashboard summary.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	return call[models.Stats](ctx, c, http.MethodGet, "/api/admin/stats/", nil)
}

func (c *Client) Users(ctx context.Context, query string, page int) (models.Page[models.User], error) {
	return getPage[models.User](ctx, c, "/api/admin/users/", searchQuery(query), page)
}

func (c *Client) User(ctx context.Context, id int64) (models.UserDetail, error) {
	return call[models.UserDetail](ctx, c, http.MethodGet, fmt.Sprintf("/api/admin/users/%d/", id), nil)
}

func (c *Client) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	return call[models.User](ctx, c, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/", id), patch)
}

// AdminExercises lists the catalog filtered by name.
func (c *Client) AdminExercises(ctx context.Context, query string, page int) (models.Page[models.Exercise], error) {
	return getPage[models.Exercise](ctx, c, "/api/admin/exercises/", searchQuery(query), page)
}

func (c *Client) CreateExercise(ctx context.Context, ex models.Exercise) (models.Exercise, error) {
	if err := ex.Validate(); err != nil {
		return models.Exercise{}, err
	}
	return call[models.Exercise](ctx, c, http.MethodPost, "/api/admin/exercises/", ex)
}

func (c *Client) UpdateExercise(ctx context.Context, ex models.Exercise) (models.Exercise, error) {
	if err := ex.Validate(); err != nil {
		return models.Exercise{}, err
	}
	return call[models.Exercise](ctx, c, http.MethodPut, fmt.Sprintf("/api/admin/exercises/%d/", ex.ID), ex)
}

func (c *Client) DeleteExercise(ctx context.Context, id int64) error {
	_, _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/exercises/%d/", id), nil, nil)
	return err
}

func (c *Client) Tags(ctx context.Context, page int) (models.Page[models.TagRecord], error) {
	return getPage[models.TagRecord](ctx, c, "/api/admin/tags/", nil, page)
}

func (c *Client) CreateTag(ctx context.Context, name string) (models.TagRecord, error) {
	return call[models.TagRecord](ctx, c, http.MethodPost, "/api/admin/tags/", models.TagRecord{Name: name})
}

func (c *Client) RenameTag(ctx context.Context, id int64, name string) (models.TagRecord, error) {
	return call[models.TagRecord](ctx, c, http.MethodPut, fmt.Sprintf("/api/admin/tags/%d/", id), models.TagRecord{Name: name})
}

func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	_, _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/tags/%d/", id), nil, nil)
	return err
}
