package server

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zeebo/blake3"

	"github.com/mithrel/fitcoach/internal/db"
	"github.com/mithrel/fitcoach/internal/guide"
	"github.com/mithrel/fitcoach/internal/present/format"
	"github.com/mithrel/fitcoach/internal/recommend"
	"github.com/mithrel/fitcoach/pkg/models"
)

const (
	// History and routine lists paginate at most listCap rows, listPerPage per page.
	listCap         = 20
	listPerPage     = 5
	catalogPerPage  = 10
	csrfCookie      = "csrftoken"
	csrfHeader      = "X-CSRFToken"
	msgAdded        = "Added to your routine."
	msgAlreadyAdded = "This exercise is already in your routine."
)

// Server serves the fitness REST API backed by a Store.
type Server struct {
	cfg   *viper.Viper
	store *db.Store
	log   *slog.Logger
}

func New(cfg *viper.Viper, store *db.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, store: store, log: logger}
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/recommend/{$}", s.auth(s.handleRecommend))
	mux.HandleFunc("GET /api/history/{$}", s.auth(s.handleHistory))
	mux.HandleFunc("GET /api/routines/{$}", s.auth(s.handleRoutines))
	mux.HandleFunc("POST /api/routines/{id}/{$}", s.auth(s.handleAddRoutine))
	mux.HandleFunc("DELETE /api/routines/{id}/{$}", s.auth(s.handleDeleteRoutine))
	mux.HandleFunc("GET /api/exercises/{$}", s.auth(s.handleExercises))
	mux.HandleFunc("GET /api/exercises/{id}/{$}", s.auth(s.handleExercise))
	mux.HandleFunc("GET /exercises/{id}/{$}", s.handleExercisePage)
	s.adminRoutes(mux)
	return s.logRequests(mux)
}

type userKey struct{}

func userFrom(ctx context.Context) models.User {
	u, _ := ctx.Value(userKey{}).(models.User)
	return u
}

// auth resolves the bearer token to a user and, for unsafe methods, checks
// the CSRF header against the csrftoken cookie.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("Authorization")
		tok := strings.TrimSpace(strings.TrimPrefix(got, "Bearer "))
		if !strings.HasPrefix(got, "Bearer ") || tok == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		u, err := s.store.Users.UserByToken(r.Context(), tok)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				s.log.Error("auth lookup failed", "err", err)
			}
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !u.IsActive {
			writeError(w, http.StatusUnauthorized, "account is disabled")
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !csrfOK(r) {
			writeError(w, http.StatusForbidden, "CSRF verification failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	}
}

func csrfOK(r *http.Request) bool {
	c, err := r.Cookie(csrfCookie)
	if err != nil || c.Value == "" {
		return false
	}
	return r.Header.Get(csrfHeader) == c.Value
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) internal(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var in models.ConditionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u := userFrom(r.Context())
	if _, err := s.store.Journal.AddConditionLog(r.Context(), models.ConditionLog{
		User:         u.ID,
		FatigueLevel: in.FatigueLevel,
		MoodLevel:    in.MoodLevel,
		BodyConcern:  in.BodyConcern,
	}); err != nil {
		s.internal(w, "save condition", err)
		return
	}
	catalog, err := s.store.Catalog.AllExercises(r.Context())
	if err != nil {
		s.internal(w, "load catalog", err)
		return
	}
	picks, rest := recommend.Rank(catalog, in, s.cfg.GetInt("recommend.limit"))
	if rest {
		writeJSON(w, http.StatusOK, models.Recommendation{RestSuggestion: true, Message: recommend.RestMessage})
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	total, err := s.store.Journal.CountConditionLogs(r.Context(), u.ID)
	if err != nil {
		s.internal(w, "count history", err)
		return
	}
	win := paginate(total, listCap, listPerPage, r.URL.Query().Get("page"))
	logs := []models.ConditionLog{}
	if win.Limit > 0 {
		got, err := s.store.Journal.ListConditionLogs(r.Context(), u.ID, win.Limit, win.Offset)
		if err != nil {
			s.internal(w, "list history", err)
			return
		}
		logs = append(logs, got...)
	}
	writeJSON(w, http.StatusOK, models.Page[models.ConditionLog]{
		Count: win.Count, TotalPages: win.TotalPages, CurrentPage: win.Page, Results: logs,
	})
}

func (s *Server) handleRoutines(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	total, err := s.store.Routines.CountRoutines(r.Context(), u.ID)
	if err != nil {
		s.internal(w, "count routines", err)
		return
	}
	win := paginate(total, listCap, listPerPage, r.URL.Query().Get("page"))
	out := []models.Routine{}
	if win.Limit > 0 {
		got, err := s.store.Routines.ListRoutines(r.Context(), u.ID, win.Limit, win.Offset)
		if err != nil {
			s.internal(w, "list routines", err)
			return
		}
		out = append(out, got...)
	}
	writeJSON(w, http.StatusOK, models.Page[models.Routine]{
		Count: win.Count, TotalPages: win.TotalPages, CurrentPage: win.Page, Results: out,
	})
}

type routineResponse struct {
	Message  string           `json:"message"`
	Exercise *models.Exercise `json:"exercise,omitempty"`
}

func (s *Server) handleAddRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %q not found", r.PathValue("id")))
		return
	}
	u := userFrom(r.Context())
	rt, created, err := s.store.Routines.AddRoutine(r.Context(), u.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %d not found", id))
		return
	}
	if err != nil {
		s.internal(w, "add routine", err)
		return
	}
	if created {
		writeJSON(w, http.StatusCreated, routineResponse{Message: msgAdded, Exercise: &rt.Exercise})
		return
	}
	writeJSON(w, http.StatusOK, routineResponse{Message: msgAlreadyAdded, Exercise: &rt.Exercise})
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %q not found", r.PathValue("id")))
		return
	}
	if _, err := s.store.Catalog.GetExercise(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %d not found", id))
			return
		}
		s.internal(w, "load exercise", err)
		return
	}
	u := userFrom(r.Context())
	if err := s.store.Routines.DeleteRoutine(r.Context(), u.ID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %d is not in your routine", id))
			return
		}
		s.internal(w, "delete routine", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	total, err := s.store.Catalog.CountExercises(r.Context())
	if err != nil {
		s.internal(w, "count exercises", err)
		return
	}
	win := paginate(total, 0, catalogPerPage, r.URL.Query().Get("page"))
	out := []models.Exercise{}
	if win.Limit > 0 {
		got, err := s.store.Catalog.ListExercises(r.Context(), win.Limit, win.Offset)
		if err != nil {
			s.internal(w, "list exercises", err)
			return
		}
		out = append(out, got...)
	}
	writeJSON(w, http.StatusOK, models.Page[models.Exercise]{
		Count: win.Count, TotalPages: win.TotalPages, CurrentPage: win.Page, Results: out,
	})
}

func (s *Server) handleExercise(w http.ResponseWriter, r *http.Request) {
	ex, ok := s.loadExercise(w, r)
	if !ok {
		return
	}
	if err := s.store.Routines.TouchRoutine(r.Context(), userFrom(r.Context()).ID, ex.ID); err != nil {
		s.log.Warn("touch routine failed", "exercise", ex.ID, "err", err)
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) loadExercise(w http.ResponseWriter, r *http.Request) (models.Exercise, bool) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %q not found", r.PathValue("id")))
		return models.Exercise{}, false
	}
	ex, err := s.store.Catalog.GetExercise(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %d not found", id))
		return models.Exercise{}, false
	}
	if err != nil {
		s.internal(w, "load exercise", err)
		return models.Exercise{}, false
	}
	return ex, true
}

var detailPage = template.Must(template.New("detail").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Name}}</title></head>
<body>
{{.Fragment}}<button class="add-routine-btn" data-exercise-id="{{.ID}}">Add to routine</button>
</body>
</html>
`))

func (s *Server) handleExercisePage(w http.ResponseWriter, r *http.Request) {
	ex, ok := s.loadExercise(w, r)
	if !ok {
		return
	}
	var frag strings.Builder
	if err := format.WriteHTMLExercise(&frag, ex, guide.Options{Escape: s.cfg.GetBool("guide.escape")}); err != nil {
		s.internal(w, "render page", err)
		return
	}
	var b strings.Builder
	err := detailPage.Execute(&b, struct {
		ID       int64
		Name     string
		Fragment template.HTML
	}{ex.ID, ex.Name, template.HTML(frag.String())})
	if err != nil {
		s.internal(w, "render page", err)
		return
	}
	body := b.String()
	sum := blake3.Sum256([]byte(body))
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	w.Header().Set("ETag", etag)
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

// etagMatch applies the weak comparison If-None-Match uses: "*" matches any
// representation, W/ prefixes are ignored and the header may list several tags.
func etagMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(tag), "W/") == want {
			return true
		}
	}
	return false
}
