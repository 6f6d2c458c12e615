package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/fitcoach/internal/db"
	"github.com/mithrel/fitcoach/internal/guide"
	"github.com/mithrel/fitcoach/internal/present/format"
	"github.com/mithrel/fitcoach/pkg/models"
)

const (
	testToken = "viewer-token"
	testCSRF  = "csrf-123"
)

type fixture struct {
	srv      *httptest.Server
	store    *db.Store
	user     models.User
	shoulder models.Exercise
	running  models.Exercise
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store, closer, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { closer.Close() })

	u, err := store.Users.CreateUser(ctx, models.User{Username: "viewer", Token: testToken})
	require.NoError(t, err)
	shoulder, err := store.Catalog.CreateExercise(ctx, models.Exercise{
		Name:          "肩ストレッチ",
		Description:   "肩周りをほぐす",
		BeginnerGuide: "### Steps\n1. Sit down\n2. Roll <shoulders>",
		Category:      models.CategoryStretch,
		TargetArea:    "肩",
		Tags:          []models.Tag{{Name: "肩こり解消"}},
	})
	require.NoError(t, err)
	running, err := store.Catalog.CreateExercise(ctx, models.Exercise{
		Name:        "ランニング",
		Description: "有酸素運動",
		Category:    models.CategoryCardio,
		TargetArea:  "脚",
	})
	require.NoError(t, err)

	cfg := viper.New()
	s := New(cfg, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, store: store, user: u, shoulder: shoulder, running: running}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	return f.doAs(t, testToken, method, path, body)
}

func (f *fixture) doAs(t *testing.T, token, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(csrfHeader, testCSRF)
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testCSRF})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/api/history/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/api/history/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestCSRFRequiredForUnsafeMethods(t *testing.T) {
	f := newFixture(t)
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/api/routines/%d/", f.srv.URL, f.shoulder.ID), nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set(csrfHeader, "forged")
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testCSRF})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRecommendShoulder(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/api/recommend/", `{"fatigue_level":3,"mood_level":3,"body_concern":"肩がつらい"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	picks := decode[[]models.Exercise](t, resp)
	require.Len(t, picks, 1)
	assert.Equal(t, f.shoulder.ID, picks[0].ID)
	assert.Equal(t, []models.Tag{{Name: "肩こり解消"}}, picks[0].Tags)

	// the request is recorded in history
	hist := decode[models.Page[models.ConditionLog]](t, f.do(t, http.MethodGet, "/api/history/", ""))
	require.Equal(t, 1, hist.Count)
	assert.Equal(t, "肩がつらい", hist.Results[0].BodyConcern)
}

func TestRecommendRest(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/api/recommend/", `{"fatigue_level":1,"mood_level":1,"body_concern":"頭が痛い"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, resp)
	assert.Equal(t, true, got["rest_suggestion"])
	assert.NotEmpty(t, got["message"])
}

func TestRecommendValidation(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/api/recommend/", `{"fatigue_level":0,"mood_level":6}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/api/recommend/", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoutineAddDelete(t *testing.T) {
	f := newFixture(t)
	path := fmt.Sprintf("/api/routines/%d/", f.shoulder.ID)

	resp := f.do(t, http.MethodPost, path, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[routineResponse](t, resp)
	require.NotNil(t, body.Exercise)
	assert.Equal(t, "肩ストレッチ", body.Exercise.Name)

	resp = f.do(t, http.MethodPost, path, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	page := decode[models.Page[models.Routine]](t, f.do(t, http.MethodGet, "/api/routines/", ""))
	require.Len(t, page.Results, 1)
	assert.Equal(t, f.shoulder.ID, page.Results[0].Exercise.ID)

	resp = f.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["error"], "not in your routine")

	resp = f.do(t, http.MethodPost, "/api/routines/999/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = f.do(t, http.MethodDelete, "/api/routines/abc/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryPaginationCapsAtTwenty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 23; i++ {
		_, err := f.store.Journal.AddConditionLog(ctx, models.ConditionLog{User: f.user.ID, FatigueLevel: 2, MoodLevel: 3})
		require.NoError(t, err)
	}
	page := decode[models.Page[models.ConditionLog]](t, f.do(t, http.MethodGet, "/api/history/?page=2", ""))
	assert.Equal(t, 20, page.Count)
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Results, 5)

	page = decode[models.Page[models.ConditionLog]](t, f.do(t, http.MethodGet, "/api/history/?page=99", ""))
	assert.Equal(t, 4, page.CurrentPage)

	page = decode[models.Page[models.ConditionLog]](t, f.do(t, http.MethodGet, "/api/history/?page=x", ""))
	assert.Equal(t, 1, page.CurrentPage)
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/api/routines/", "")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"total_pages":1,"current_page":1,"results":[]}`, string(raw))
}

func TestExerciseDetailAndCatalog(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/exercises/%d/", f.shoulder.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ex := decode[models.Exercise](t, resp)
	assert.Equal(t, f.shoulder, ex)

	resp = f.do(t, http.MethodGet, "/api/exercises/42/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	page := decode[models.Page[models.Exercise]](t, f.do(t, http.MethodGet, "/api/exercises/", ""))
	assert.Equal(t, 2, page.Count)
	assert.Len(t, page.Results, 2)
}

func TestExerciseViewBumpsRoutineOrder(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, fmt.Sprintf("/api/routines/%d/", f.shoulder.ID), "")
	f.do(t, http.MethodPost, fmt.Sprintf("/api/routines/%d/", f.running.ID), "")
	f.do(t, http.MethodGet, fmt.Sprintf("/api/exercises/%d/", f.shoulder.ID), "")

	page := decode[models.Page[models.Routine]](t, f.do(t, http.MethodGet, "/api/routines/", ""))
	require.Len(t, page.Results, 2)
	assert.Equal(t, f.shoulder.ID, page.Results[0].Exercise.ID)
	assert.Equal(t, 1, page.Results[0].ViewCount)
}

func TestExercisePageRendersGuide(t *testing.T) {
	f := newFixture(t)
	url := fmt.Sprintf("%s/exercises/%d/", f.srv.URL, f.shoulder.ID)
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), guide.Render(f.shoulder.BeginnerGuide))
	assert.Contains(t, string(raw), "<li>Roll <shoulders></li>")

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		total, max, per int
		page            string
		want            window
	}{
		{0, 20, 5, "", window{Count: 0, TotalPages: 1, Page: 1, Offset: 0, Limit: 0}},
		{7, 20, 5, "2", window{Count: 7, TotalPages: 2, Page: 2, Offset: 5, Limit: 2}},
		{30, 20, 5, "4", window{Count: 20, TotalPages: 4, Page: 4, Offset: 15, Limit: 5}},
		{30, 20, 5, "0", window{Count: 20, TotalPages: 4, Page: 4, Offset: 15, Limit: 5}},
		{30, 0, 10, "abc", window{Count: 30, TotalPages: 3, Page: 1, Offset: 0, Limit: 10}},
	}
	for i, tc := range tests {
		assert.Equal(t, tc.want, paginate(tc.total, tc.max, tc.per, tc.page), "case %d", i)
	}
}

func TestExercisePageConditionalForms(t *testing.T) {
	f := newFixture(t)
	url := fmt.Sprintf("%s/exercises/%d/", f.srv.URL, f.shoulder.ID)
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	tests := []struct {
		header string
		want   int
	}{
		{"*", http.StatusNotModified},
		{"W/" + etag, http.StatusNotModified},
		{`"stale", ` + etag, http.StatusNotModified},
		{`"stale",W/` + etag, http.StatusNotModified},
		{`"stale"`, http.StatusOK},
	}
	for _, tc := range tests {
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("If-None-Match", tc.header)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.want, resp.StatusCode, "If-None-Match %q", tc.header)
	}
}

func TestETagMatch(t *testing.T) {
	assert.False(t, etagMatch("", `"a"`))
	assert.True(t, etagMatch(`"a"`, `"a"`))
	assert.True(t, etagMatch(` W/"a" `, `"a"`))
	assert.True(t, etagMatch(`"b", "a"`, `"a"`))
	assert.False(t, etagMatch(`"b", "c"`, `"a"`))
}

func TestExercisePageUsesSharedFragment(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(fmt.Sprintf("%s/exercises/%d/", f.srv.URL, f.shoulder.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var frag strings.Builder
	require.NoError(t, format.WriteHTMLExercise(&frag, f.shoulder, guide.Options{}))
	assert.Contains(t, string(raw), frag.String())
	assert.Contains(t, string(raw), `<button class="add-routine-btn"`)
}
