package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mithrel/fitcoach/internal/db"
	"github.com/mithrel/fitcoach/pkg/models"
)

const (
	adminPerPage     = 20
	userDetailLogs   = 10
	dashboardLogs    = 5
	newUserWindow    = 30 * 24 * time.Hour
	msgStaffRequired = "staff access required"
)

// adminRoutes registers the staff management API.
func (s *Server) adminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/admin/stats/{$}", s.staff(s.handleStats))
	mux.HandleFunc("GET /api/admin/users/{$}", s.staff(s.handleAdminUsers))
	mux.HandleFunc("GET /api/admin/users/{id}/{$}", s.staff(s.handleAdminUser))
	mux.HandleFunc("PATCH /api/admin/users/{id}/{$}", s.staff(s.handleAdminUpdateUser))
	mux.HandleFunc("GET /api/admin/exercises/{$}", s.staff(s.handleAdminExercises))
	mux.HandleFunc("POST /api/admin/exercises/{$}", s.staff(s.handleAdminCreateExercise))
	mux.HandleFunc("PUT /api/admin/exercises/{id}/{$}", s.staff(s.handleAdminUpdateExercise))
	mux.HandleFunc("DELETE /api/admin/exercises/{id}/{$}", s.staff(s.handleAdminDeleteExercise))
	mux.HandleFunc("GET /api/admin/tags/{$}", s.staff(s.handleAdminTags))
	mux.HandleFunc("POST /api/admin/tags/{$}", s.staff(s.handleAdminCreateTag))
	mux.HandleFunc("PUT /api/admin/tags/{id}/{$}", s.staff(s.handleAdminRenameTag))
	mux.HandleFunc("DELETE /api/admin/tags/{id}/{$}", s.staff(s.handleAdminDeleteTag))
}

// staff authenticates like auth and then requires is_staff.
func (s *Server) staff(next http.HandlerFunc) http.HandlerFunc {
	return s.auth(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r.Context()).IsStaff {
			writeError(w, http.StatusForbidden, msgStaffRequired)
			return
		}
		next(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var st models.Stats
	var err error
	if st.TotalUsers, err = s.store.Users.CountUsers(ctx, ""); err != nil {
		s.internal(w, "count users", err)
		return
	}
	if st.TotalLogs, err = s.store.Journal.CountAllConditionLogs(ctx); err != nil {
		s.internal(w, "count logs", err)
		return
	}
	if st.TotalExercises, err = s.store.Catalog.CountExercises(ctx); err != nil {
		s.internal(w, "count exercises", err)
		return
	}
	if st.NewUsers30d, err = s.store.Users.CountUsersSince(ctx, time.Now().Add(-newUserWindow)); err != nil {
		s.internal(w, "count new users", err)
		return
	}
	recent, err := s.store.Journal.RecentConditionLogs(ctx, 0, dashboardLogs)
	if err != nil {
		s.internal(w, "recent logs", err)
		return
	}
	st.RecentLogs = append([]models.ConditionLog{}, recent...)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	total, err := s.store.Users.CountUsers(r.Context(), q)
	if err != nil {
		s.internal(w, "count users", err)
		return
	}
	win := paginate(total, 0, adminPerPage, r.URL.Query().Get("page"))
	out := []models.User{}
	if win.Limit > 0 {
		got, err := s.store.Users.ListUsers(r.Context(), q, win.Limit, win.Offset)
		if err != nil {
			s.internal(w, "list users", err)
			return
		}
		out = append(out, got...)
	}
	writeJSON(w, http.StatusOK, models.Page[models.User]{
		Count: win.Count, TotalPages: win.TotalPages, CurrentPage: win.Page, Results: out,
	})
}

func (s *Server) handleAdminUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	logs, err := s.store.Journal.RecentConditionLogs(r.Context(), u.ID, userDetailLogs)
	if err != nil {
		s.internal(w, "recent logs", err)
		return
	}
	writeJSON(w, http.StatusOK, models.UserDetail{User: u, RecentLogs: append([]models.ConditionLog{}, logs...)})
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("user %q not found", r.PathValue("id")))
		return
	}
	var patch models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, err := s.store.Users.UpdateUser(r.Context(), id, patch)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("user %d not found", id))
		return
	}
	if err != nil {
		s.internal(w, "update user", err)
		return
	}
	s.log.Info("user updated", "user", u.ID, "staff", u.IsStaff, "active", u.IsActive, "by", userFrom(r.Context()).Username)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("user %q not found", r.PathValue("id")))
		return models.User{}, false
	}
	u, err := s.store.Users.GetUser(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("user %d not found", id))
		return models.User{}, false
	}
	if err != nil {
		s.internal(w, "load user", err)
		return models.User{}, false
	}
	return u, true
}

func (s *Server) handleAdminExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	total, err := s.store.Catalog.CountMatchingExercises(r.Context(), q)
	if err != nil {
		s.internal(w, "count exercises", err)
		return
	}
	win := paginate(total, 0, adminPerPage, r.URL.Query().Get("page"))
	out := []models.Exercise{}
	if win.Limit > 0 {
		got, err := s.store.Catalog.SearchExercises(r.Context(), q, win.Limit, win.Offset)
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

// decodeExercise reads and validates an exercise body.
func decodeExercise(w http.ResponseWriter, r *http.Request) (models.Exercise, bool) {
	var ex models.Exercise
	if err := json.NewDecoder(r.Body).Decode(&ex); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return models.Exercise{}, false
	}
	if err := ex.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return models.Exercise{}, false
	}
	return ex, true
}

func (s *Server) handleAdminCreateExercise(w http.ResponseWriter, r *http.Request) {
	ex, ok := decodeExercise(w, r)
	if !ok {
		return
	}
	ex.ID = 0
	out, err := s.store.Catalog.CreateExercise(r.Context(), ex)
	if errors.Is(err, db.ErrConflict) {
		writeError(w, http.StatusConflict, fmt.Sprintf("exercise %q already exists", ex.Name))
		return
	}
	if err != nil {
		s.internal(w, "create exercise", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleAdminUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %q not found", r.PathValue("id")))
		return
	}
	ex, ok := decodeExercise(w, r)
	if !ok {
		return
	}
	ex.ID = id
	out, err := s.store.Catalog.UpdateExercise(r.Context(), ex)
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("exercise %d not found", id))
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, fmt.Sprintf("exercise %q already exists", ex.Name))
	case err != nil:
		s.internal(w, "update exercise", err)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleAdminDeleteExercise(w http.ResponseWriter, r *http.Request) {
	s.deleteResource(w, r, "exercise", s.store.Catalog.DeleteExercise)
}

func (s *Server) handleAdminTags(w http.ResponseWriter, r *http.Request) {
	total, err := s.store.Catalog.CountTags(r.Context())
	if err != nil {
		s.internal(w, "count tags", err)
		return
	}
	win := paginate(total, 0, adminPerPage, r.URL.Query().Get("page"))
	out := []models.TagRecord{}
	if win.Limit > 0 {
		got, err := s.store.Catalog.ListTags(r.Context(), win.Limit, win.Offset)
		if err != nil {
			s.internal(w, "list tags", err)
			return
		}
		out = append(out, got...)
	}
	writeJSON(w, http.StatusOK, models.Page[models.TagRecord]{
		Count: win.Count, TotalPages: win.TotalPages, CurrentPage: win.Page, Results: out,
	})
}

func decodeTag(w http.ResponseWriter, r *http.Request) (models.TagRecord, bool) {
	var t models.TagRecord
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return models.TagRecord{}, false
	}
	if t.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return models.TagRecord{}, false
	}
	return t, true
}

func (s *Server) handleAdminCreateTag(w http.ResponseWriter, r *http.Request) {
	t, ok := decodeTag(w, r)
	if !ok {
		return
	}
	out, err := s.store.Catalog.CreateTag(r.Context(), t.Name)
	if errors.Is(err, db.ErrConflict) {
		writeError(w, http.StatusConflict, fmt.Sprintf("tag %q already exists", t.Name))
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleAdminRenameTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("tag %q not found", r.PathValue("id")))
		return
	}
	t, ok := decodeTag(w, r)
	if !ok {
		return
	}
	out, err := s.store.Catalog.RenameTag(r.Context(), id, t.Name)
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("tag %d not found", id))
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, fmt.Sprintf("tag %q already exists", t.Name))
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleAdminDeleteTag(w http.ResponseWriter, r *http.Request) {
	s.deleteResource(w, r, "tag", s.store.Catalog.DeleteTag)
}

func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request, kind string, del func(ctx context.Context, id int64) error) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s %q not found", kind, r.PathValue("id")))
		return
	}
	if err := del(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("%s %d not found", kind, id))
			return
		}
		s.internal(w, "delete "+kind, err)
		return
	}
	s.log.Info(kind+" deleted", "id", id, "by", userFrom(r.Context()).Username)
	w.WriteHeader(http.StatusNoContent)
}
