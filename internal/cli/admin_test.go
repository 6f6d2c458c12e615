package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/fitcoach/internal/client"
	"github.com/mithrel/fitcoach/pkg/models"
)

// promoteTestUser makes the configured CLI user a staff member.
func promoteTestUser(t *testing.T, e *env) {
	t.Helper()
	u, err := e.store.Users.UserByToken(context.Background(), "tok")
	require.NoError(t, err)
	yes := true
	_, err = e.store.Users.UpdateUser(context.Background(), u.ID, models.UserPatch{IsStaff: &yes})
	require.NoError(t, err)
}

func TestAdminNeedsStaff(t *testing.T) {
	e := startTestServer(t)
	_, err := run(t, e.cfg, "", "admin", "stats")
	assert.ErrorIs(t, err, client.ErrForbidden)
}

func TestAdminStatsAndUsers(t *testing.T) {
	e := startTestServer(t)
	promoteTestUser(t, e)
	_, err := e.store.Users.CreateUser(context.Background(), models.User{Username: "ren", Token: "ren-tok"})
	require.NoError(t, err)

	out, err := run(t, e.cfg, "", "admin", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "users            2")
	assert.Contains(t, out, "exercises        1")

	out, err = run(t, e.cfg, "", "admin", "user", "list", "-q", "re", "--noheaders")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, out)
	assert.Contains(t, lines[0], "ren")

	out, err = run(t, e.cfg, "", "admin", "user", "set", "2", "--active=false")
	require.NoError(t, err)
	assert.Equal(t, "Updated ren (staff=false active=false)\n", out)

	_, err = run(t, e.cfg, "", "admin", "user", "set", "2")
	assert.Error(t, err)

	out, err = run(t, e.cfg, "", "-o", "json", "admin", "user", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"is_active":false`)
}

func TestAdminExerciseLifecycle(t *testing.T) {
	e := startTestServer(t)
	promoteTestUser(t, e)
	guideFile := filepath.Join(e.dir, "guide.md")
	require.NoError(t, os.WriteFile(guideFile, []byte("1. 壁に手をつく\n2. 肘を曲げる"), 0o600))

	out, err := run(t, e.cfg, "", "admin", "exercise", "add",
		"--name", "Wall push-up", "--category", "strength", "--target", "arms",
		"--tags", "arms, beginner", "--guide-file", guideFile)
	require.NoError(t, err)
	assert.Equal(t, "Created #2 Wall push-up\n", out)

	ex, err := e.store.Catalog.GetExercise(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "1. 壁に手をつく\n2. 肘を曲げる", ex.BeginnerGuide)
	assert.Equal(t, []string{"arms", "beginner"}, ex.TagNames())

	_, err = run(t, e.cfg, "", "admin", "exercise", "add", "--name", "Wall push-up")
	assert.ErrorIs(t, err, client.ErrConflict)
	_, err = run(t, e.cfg, "", "admin", "exercise", "add", "--name", "Bad", "--category", "yoga")
	assert.Error(t, err)

	out, err = run(t, e.cfg, "", "admin", "exercise", "edit", "2", "--description", "hands on the wall", "--tags", "arms")
	require.NoError(t, err)
	assert.Equal(t, "Updated #2 Wall push-up\n", out)
	ex, err = e.store.Catalog.GetExercise(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "hands on the wall", ex.Description)
	assert.Equal(t, models.CategoryStrength, ex.Category)
	assert.Equal(t, "1. 壁に手をつく\n2. 肘を曲げる", ex.BeginnerGuide)
	assert.Equal(t, []string{"arms"}, ex.TagNames())

	out, err = run(t, e.cfg, "", "admin", "exercise", "list", "-q", "wall")
	require.NoError(t, err)
	assert.Contains(t, out, "Wall push-up")
	assert.NotContains(t, out, "Shoulder rolls")

	out, err = run(t, e.cfg, "", "admin", "exercise", "delete", "2")
	require.NoError(t, err)
	assert.Equal(t, "Deleted exercise #2\n", out)
	_, err = run(t, e.cfg, "", "admin", "exercise", "delete", "2")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestAdminTagLifecycle(t *testing.T) {
	e := startTestServer(t)
	promoteTestUser(t, e)

	out, err := run(t, e.cfg, "", "admin", "tag", "add", "balance")
	require.NoError(t, err)
	assert.Equal(t, "Created tag #2 balance\n", out)

	out, err = run(t, e.cfg, "", "admin", "tag", "rename", "2", "posture")
	require.NoError(t, err)
	assert.Equal(t, "Renamed tag #2 to posture\n", out)

	out, err = run(t, e.cfg, "", "admin", "tag", "list", "--noheaders")
	require.NoError(t, err)
	assert.Equal(t, "1  shoulder\n2  posture\npage 1/1 (2 total)\n", out)

	out, err = run(t, e.cfg, "", "admin", "tag", "delete", "2")
	require.NoError(t, err)
	assert.Equal(t, "Deleted tag #2\n", out)
}
