package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/mithrel/fitcoach/pkg/models"
)

// linkTags upserts each tag and attaches it to the exercise.
func (s *sqliteStore) linkTags(ctx context.Context, exerciseID int64, tags []models.Tag) error {
	for _, t := range tags {
		tagID, err := s.UpsertTag(ctx, t.Name)
		if err != nil {
			return err
		}
		if _, err := s.q(ctx).ExecContext(ctx, `INSERT OR IGNORE INTO exercise_tags(exercise_id, tag_id) VALUES(?,?)`, exerciseID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) SearchExercises(ctx context.Context, query string, limit, offset int) ([]models.Exercise, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryExercises(ctx, `SELECT `+exerciseColumns+` FROM exercises e
WHERE e.name LIKE ? ESCAPE '\'
ORDER BY e.id LIMIT ? OFFSET ?`, likePattern(query), limit, offset)
}

func (s *sqliteStore) CountMatchingExercises(ctx context.Context, query string) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises WHERE name LIKE ? ESCAPE '\'`, likePattern(query)).Scan(&n)
	return n, err
}

func (s *sqliteStore) UpdateExercise(ctx context.Context, ex models.Exercise) (models.Exercise, error) {
	if err := ex.Validate(); err != nil {
		return models.Exercise{}, err
	}
	ex.Category, _ = models.ParseCategory(string(ex.Category))
	err := InTx(ctx, s, func(ctx context.Context) error {
		res, err := s.q(ctx).ExecContext(ctx,
			`UPDATE exercises SET name=?, description=?, beginner_guide=?, category=?, target_area=? WHERE id=?`,
			ex.Name, ex.Description, ex.BeginnerGuide, string(ex.Category), ex.TargetArea, ex.ID)
		if err != nil {
			if isUnique(err) {
				return ErrConflict
			}
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM exercise_tags WHERE exercise_id=?`, ex.ID); err != nil {
			return err
		}
		return s.linkTags(ctx, ex.ID, ex.Tags)
	})
	if err != nil {
		return models.Exercise{}, err
	}
	return s.GetExercise(ctx, ex.ID)
}

// DeleteExercise removes the exercise; its tag links and routines cascade.
func (s *sqliteStore) DeleteExercise(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, `DELETE FROM exercises WHERE id=?`, id)
}

func (s *sqliteStore) ListTags(ctx context.Context, limit, offset int) ([]models.TagRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT id, name FROM tags ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.TagRecord
	for rows.Next() {
		var t models.TagRecord
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) CountTags(ctx context.Context) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n)
	return n, err
}

func (s *sqliteStore) CreateTag(ctx context.Context, name string) (models.TagRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.TagRecord{}, fmt.Errorf("tag name is required")
	}
	res, err := s.q(ctx).ExecContext(ctx, `INSERT INTO tags(name) VALUES(?)`, name)
	if err != nil {
		if isUnique(err) {
			return models.TagRecord{}, ErrConflict
		}
		return models.TagRecord{}, err
	}
	id, err := res.LastInsertId()
	return models.TagRecord{ID: id, Name: name}, err
}

func (s *sqliteStore) RenameTag(ctx context.Context, id int64, name string) (models.TagRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.TagRecord{}, fmt.Errorf("tag name is required")
	}
	res, err := s.q(ctx).ExecContext(ctx, `UPDATE tags SET name=? WHERE id=?`, name, id)
	if err != nil {
		if isUnique(err) {
			return models.TagRecord{}, ErrConflict
		}
		return models.TagRecord{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.TagRecord{}, ErrNotFound
	}
	return models.TagRecord{ID: id, Name: name}, nil
}

// DeleteTag removes the tag and detaches it from every exercise.
func (s *sqliteStore) DeleteTag(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, `DELETE FROM tags WHERE id=?`, id)
}

func (s *sqliteStore) deleteByID(ctx context.Context, stmt string, id int64) error {
	res, err := s.q(ctx).ExecContext(ctx, stmt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) CountAllConditionLogs(ctx context.Context) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM condition_logs`).Scan(&n)
	return n, err
}

// RecentConditionLogs returns the newest logs by creation time. userID 0
// spans every user.
func (s *sqliteStore) RecentConditionLogs(ctx context.Context, userID int64, limit int) ([]models.ConditionLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT id, user_id, log_date, fatigue_level, mood_level, body_concern, created_at
FROM condition_logs WHERE (? = 0 OR user_id = ?)
ORDER BY created_at DESC, id DESC
LIMIT ?`, userID, userID, limit)
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
