package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mithrel/fitcoach/pkg/models"
)

type sqliteStore struct{ db *sql.DB }

// q returns the transaction carried by ctx, or the pool.
func (s *sqliteStore) q(ctx context.Context) queryer {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *sqliteStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

func isUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}

// Users

const userColumns = `id, username, token, is_staff, is_active, date_joined`

func scanUser(sc interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	if err := sc.Scan(&u.ID, &u.Username, &u.Token, &u.IsStaff, &u.IsActive, &u.DateJoined); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *sqliteStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.Token) == "" {
		return models.User{}, fmt.Errorf("username and token are required")
	}
	u.IsActive = true
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	res, err := s.q(ctx).ExecContext(ctx, `INSERT INTO users(username, token, is_staff, is_active, date_joined) VALUES(?,?,?,?,?)`,
		u.Username, u.Token, u.IsStaff, u.IsActive, u.DateJoined.UTC())
	if err != nil {
		if isUnique(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, err
	}
	u.ID, err = res.LastInsertId()
	return u, err
}

func (s *sqliteStore) UserByToken(ctx context.Context, token string) (models.User, error) {
	return scanUser(s.q(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE token=?`, token))
}

func (s *sqliteStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.q(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
}

func (s *sqliteStore) ListUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+userColumns+` FROM users
WHERE username LIKE ? ESCAPE '\'
ORDER BY date_joined DESC, id DESC
LIMIT ? OFFSET ?`, likePattern(query), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *sqliteStore) CountUsers(ctx context.Context, query string) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username LIKE ? ESCAPE '\'`, likePattern(query)).Scan(&n)
	return n, err
}

func (s *sqliteStore) CountUsersSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE date_joined >= ?`, since.UTC()).Scan(&n)
	return n, err
}

func (s *sqliteStore) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	var out models.User
	err := InTx(ctx, s, func(ctx context.Context) error {
		u, err := s.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if patch.IsStaff != nil {
			u.IsStaff = *patch.IsStaff
		}
		if patch.IsActive != nil {
			u.IsActive = *patch.IsActive
		}
		if _, err := s.q(ctx).ExecContext(ctx, `UPDATE users SET is_staff=?, is_active=? WHERE id=?`, u.IsStaff, u.IsActive, id); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

// likePattern builds a substring LIKE pattern with '\' as the escape.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

// Catalog

func (s *sqliteStore) UpsertTag(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("tag name is required")
	}
	if _, err := s.q(ctx).ExecContext(ctx, `INSERT OR IGNORE INTO tags(name) VALUES(?)`, name); err != nil {
		return 0, err
	}
	var id int64
	err := s.q(ctx).QueryRowContext(ctx, `SELECT id FROM tags WHERE name=?`, name).Scan(&id)
	return id, err
}

func (s *sqliteStore) CreateExercise(ctx context.Context, ex models.Exercise) (models.Exercise, error) {
	if strings.TrimSpace(ex.Name) == "" {
		return models.Exercise{}, fmt.Errorf("exercise name is required")
	}
	cat, ok := models.ParseCategory(string(ex.Category))
	if !ok {
		return models.Exercise{}, fmt.Errorf("unknown category %q", ex.Category)
	}
	ex.Category = cat
	err := InTx(ctx, s, func(ctx context.Context) error {
		res, err := s.q(ctx).ExecContext(ctx,
			`INSERT INTO exercises(name, description, beginner_guide, category, target_area) VALUES(?,?,?,?,?)`,
			ex.Name, ex.Description, ex.BeginnerGuide, string(ex.Category), ex.TargetArea)
		if err != nil {
			if isUnique(err) {
				return ErrConflict
			}
			return err
		}
		if ex.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		return s.linkTags(ctx, ex.ID, ex.Tags)
	})
	if err != nil {
		return models.Exercise{}, err
	}
	return s.GetExercise(ctx, ex.ID)
}

const exerciseColumns = `e.id, e.name, e.description, e.beginner_guide, e.category, e.target_area`

func scanExercise(sc interface{ Scan(...any) error }, ex *models.Exercise) error {
	var cat string
	if err := sc.Scan(&ex.ID, &ex.Name, &ex.Description, &ex.BeginnerGuide, &cat, &ex.TargetArea); err != nil {
		return err
	}
	ex.Category = models.Category(cat)
	return nil
}

func (s *sqliteStore) GetExercise(ctx context.Context, id int64) (models.Exercise, error) {
	var ex models.Exercise
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+exerciseColumns+` FROM exercises e WHERE e.id=?`, id)
	if err := scanExercise(row, &ex); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Exercise{}, ErrNotFound
		}
		return models.Exercise{}, err
	}
	out := []models.Exercise{ex}
	if err := s.attachTags(ctx, out); err != nil {
		return models.Exercise{}, err
	}
	return out[0], nil
}

func (s *sqliteStore) ListExercises(ctx context.Context, limit, offset int) ([]models.Exercise, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryExercises(ctx, `SELECT `+exerciseColumns+` FROM exercises e ORDER BY e.id LIMIT ? OFFSET ?`, limit, offset)
}

func (s *sqliteStore) AllExercises(ctx context.Context) ([]models.Exercise, error) {
	return s.ListExercises(ctx, 0, 0)
}

func (s *sqliteStore) CountExercises(ctx context.Context) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&n)
	return n, err
}

func (s *sqliteStore) queryExercises(ctx context.Context, query string, args ...any) ([]models.Exercise, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		if err := scanExercise(rows, &ex); err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// Close before the tag lookups; the in-memory pool has one connection.
	_ = rows.Close()
	if err := s.attachTags(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachTags loads tag names for each exercise, sorted by name.
func (s *sqliteStore) attachTags(ctx context.Context, exs []models.Exercise) error {
	for i := range exs {
		rows, err := s.q(ctx).QueryContext(ctx, `SELECT t.name FROM tags t JOIN exercise_tags et ON et.tag_id = t.id WHERE et.exercise_id=? ORDER BY t.name`, exs[i].ID)
		if err != nil {
			return err
		}
		tags := []models.Tag{}
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				_ = rows.Close()
				return err
			}
			tags = append(tags, models.Tag{Name: name})
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return err
		}
		exs[i].Tags = tags
	}
	return nil
}

// Journal

func (s *sqliteStore) AddConditionLog(ctx context.Context, l models.ConditionLog) (models.ConditionLog, error) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if l.LogDate == "" {
		l.LogDate = l.CreatedAt.Format(time.DateOnly)
	}
	res, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO condition_logs(user_id, log_date, fatigue_level, mood_level, body_concern, created_at) VALUES(?,?,?,?,?,?)`,
		l.User, l.LogDate, l.FatigueLevel, l.MoodLevel, l.BodyConcern, l.CreatedAt.UTC())
	if err != nil {
		return models.ConditionLog{}, err
	}
	l.ID, err = res.LastInsertId()
	return l, err
}

func (s *sqliteStore) ListConditionLogs(ctx context.Context, userID int64, limit, offset int) ([]models.ConditionLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT id, user_id, log_date, fatigue_level, mood_level, body_concern, created_at
FROM condition_logs WHERE user_id=?
ORDER BY log_date DESC, created_at DESC, id DESC
LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.ConditionLog
	for rows.Next() {
		var l models.ConditionLog
		if err := rows.Scan(&l.ID, &l.User, &l.LogDate, &l.FatigueLevel, &l.MoodLevel, &l.BodyConcern, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *sqliteStore) CountConditionLogs(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM condition_logs WHERE user_id=?`, userID).Scan(&n)
	return n, err
}

// Routines

func (s *sqliteStore) AddRoutine(ctx context.Context, userID, exerciseID int64) (models.Routine, bool, error) {
	ex, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return models.Routine{}, false, err
	}
	res, err := s.q(ctx).ExecContext(ctx, `INSERT OR IGNORE INTO routines(user_id, exercise_id, added_at, view_count) VALUES(?,?,?,0)`,
		userID, exerciseID, time.Now().UTC())
	if err != nil {
		return models.Routine{}, false, err
	}
	n, _ := res.RowsAffected()
	r := models.Routine{User: userID, Exercise: ex}
	row := s.q(ctx).QueryRowContext(ctx, `SELECT id, added_at, view_count FROM routines WHERE user_id=? AND exercise_id=?`, userID, exerciseID)
	if err := row.Scan(&r.ID, &r.AddedAt, &r.ViewCount); err != nil {
		return models.Routine{}, false, err
	}
	return r, n > 0, nil
}

func (s *sqliteStore) DeleteRoutine(ctx context.Context, userID, exerciseID int64) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM routines WHERE user_id=? AND exercise_id=?`, userID, exerciseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) ListRoutines(ctx context.Context, userID int64, limit, offset int) ([]models.Routine, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT r.id, r.user_id, r.added_at, r.view_count, `+exerciseColumns+`
FROM routines r JOIN exercises e ON e.id = r.exercise_id
WHERE r.user_id=?
ORDER BY r.view_count DESC, r.added_at DESC, r.id DESC
LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	var out []models.Routine
	for rows.Next() {
		var r models.Routine
		var cat string
		ex := &r.Exercise
		if err := rows.Scan(&r.ID, &r.User, &r.AddedAt, &r.ViewCount,
			&ex.ID, &ex.Name, &ex.Description, &ex.BeginnerGuide, &cat, &ex.TargetArea); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ex.Category = models.Category(cat)
		out = append(out, r)
	}
	err = rows.Err()
	_ = rows.Close()
	if err != nil {
		return nil, err
	}
	exs := make([]models.Exercise, len(out))
	for i := range out {
		exs[i] = out[i].Exercise
	}
	if err := s.attachTags(ctx, exs); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Exercise = exs[i]
	}
	return out, nil
}

func (s *sqliteStore) CountRoutines(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM routines WHERE user_id=?`, userID).Scan(&n)
	return n, err
}

func (s *sqliteStore) TouchRoutine(ctx context.Context, userID, exerciseID int64) error {
	_, err := s.q(ctx).ExecContext(ctx, `UPDATE routines SET view_count = view_count + 1 WHERE user_id=? AND exercise_id=?`, userID, exerciseID)
	return err
}

func newStore(dbh *sql.DB) *Store {
	s := &sqliteStore{db: dbh}
	return &Store{Users: s, Catalog: s, Journal: s, Routines: s, Tx: s}
}

// openSQLite connects to a SQLite database using modernc.org/sqlite driver and ensures schema exists.
func openSQLite(ctx context.Context, dsn string) (*Store, io.Closer, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	dbh, err := sql.Open("sqlite", fileDSN(path))
	if err != nil {
		return nil, nil, err
	}
	if err := prepare(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	return newStore(dbh), dbh, nil
}

// connPragmas run on every pooled connection. Writers wait on the lock
// instead of failing with SQLITE_BUSY, and transactions take the write lock
// up front so a read-then-write never has to upgrade.
const connPragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_txlock=immediate"

func fileDSN(path string) string {
	return path + "?" + connPragmas
}

// openMem opens a private in-memory database. A single connection keeps
// every query on the same database.
func openMem(ctx context.Context) (*Store, io.Closer, error) {
	dbh, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, nil, err
	}
	dbh.SetMaxOpenConns(1)
	if err := prepare(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	return newStore(dbh), dbh, nil
}

func prepare(ctx context.Context, dbh *sql.DB) error {
	// enforce foreign keys
	if _, err := dbh.ExecContext(ctx, `PRAGMA foreign_keys=ON;`); err != nil {
		return err
	}
	return migrate(ctx, dbh)
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  token TEXT NOT NULL UNIQUE,
  is_staff INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  date_joined TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS tags (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS exercises (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  beginner_guide TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT 'stretch',
  target_area TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS exercise_tags (
  exercise_id INTEGER NOT NULL,
  tag_id INTEGER NOT NULL,
  PRIMARY KEY(exercise_id, tag_id),
  FOREIGN KEY(exercise_id) REFERENCES exercises(id) ON DELETE CASCADE,
  FOREIGN KEY(tag_id) REFERENCES tags(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS condition_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  log_date TEXT NOT NULL,
  fatigue_level INTEGER NOT NULL CHECK (fatigue_level BETWEEN 1 AND 5),
  mood_level INTEGER NOT NULL CHECK (mood_level BETWEEN 1 AND 5),
  body_concern TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_condition_logs_user_date ON condition_logs(user_id, log_date DESC, created_at DESC);
CREATE TABLE IF NOT EXISTS routines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  exercise_id INTEGER NOT NULL,
  added_at TIMESTAMP NOT NULL,
  view_count INTEGER NOT NULL DEFAULT 0,
  UNIQUE(user_id, exercise_id),
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
  FOREIGN KEY(exercise_id) REFERENCES exercises(id) ON DELETE CASCADE
);
`)
	return err
}
