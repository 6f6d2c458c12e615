package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mithrel/fitcoach/pkg/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Users resolves API tokens to users and backs account management.
type Users interface {
	// CreateUser stores an active account; DateJoined defaults to now.
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UserByToken(ctx context.Context, token string) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	// ListUsers returns newest accounts first; query filters usernames
	// case-insensitively and may be empty.
	ListUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error)
	CountUsers(ctx context.Context, query string) (int, error)
	CountUsersSince(ctx context.Context, since time.Time) (int, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
}

// Catalog holds exercise menus and tags.
type Catalog interface {
	UpsertTag(ctx context.Context, name string) (int64, error)
	CreateExercise(ctx context.Context, ex models.Exercise) (models.Exercise, error)
	GetExercise(ctx context.Context, id int64) (models.Exercise, error)
	ListExercises(ctx context.Context, limit, offset int) ([]models.Exercise, error)
	CountExercises(ctx context.Context) (int, error)
	AllExercises(ctx context.Context) ([]models.Exercise, error)
	// SearchExercises filters names case-insensitively, ordered by id.
	SearchExercises(ctx context.Context, query string, limit, offset int) ([]models.Exercise, error)
	CountMatchingExercises(ctx context.Context, query string) (int, error)
	// UpdateExercise replaces every field and the tag set of ex.ID.
	UpdateExercise(ctx context.Context, ex models.Exercise) (models.Exercise, error)
	DeleteExercise(ctx context.Context, id int64) error

	ListTags(ctx context.Context, limit, offset int) ([]models.TagRecord, error)
	CountTags(ctx context.Context) (int, error)
	CreateTag(ctx context.Context, name string) (models.TagRecord, error)
	RenameTag(ctx context.Context, id int64, name string) (models.TagRecord, error)
	DeleteTag(ctx context.Context, id int64) error
}

// Journal stores condition logs.
type Journal interface {
	AddConditionLog(ctx context.Context, l models.ConditionLog) (models.ConditionLog, error)
	ListConditionLogs(ctx context.Context, userID int64, limit, offset int) ([]models.ConditionLog, error)
	CountConditionLogs(ctx context.Context, userID int64) (int, error)
	CountAllConditionLogs(ctx context.Context) (int, error)
	// RecentConditionLogs orders by creation time; userID 0 spans all users.
	RecentConditionLogs(ctx context.Context, userID int64, limit int) ([]models.ConditionLog, error)
}

// Routines stores the user/exercise routine pairs.
type Routines interface {
	// AddRoutine reports created=false when the pair already existed.
	AddRoutine(ctx context.Context, userID, exerciseID int64) (r models.Routine, created bool, err error)
	DeleteRoutine(ctx context.Context, userID, exerciseID int64) error
	ListRoutines(ctx context.Context, userID int64, limit, offset int) ([]models.Routine, error)
	CountRoutines(ctx context.Context, userID int64) (int, error)
	// TouchRoutine bumps the view counter; missing pairs are ignored.
	TouchRoutine(ctx context.Context, userID, exerciseID int64) error
}

// Store aggregates the repositories.
type Store struct {
	Users    Users
	Catalog  Catalog
	Journal  Journal
	Routines Routines
	Tx       TxProvider
}

// Open returns a Store based on a URL. Only sqlite:// is supported;
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, url string) (*Store, io.Closer, error) {
	switch {
	case url == ":memory:":
		return openMem(ctx)
	case strings.HasPrefix(url, "sqlite://"):
		return openSQLite(ctx, url)
	default:
		return nil, nil, fmt.Errorf("unsupported database url %q", url)
	}
}
