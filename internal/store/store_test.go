package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/code-weaver/internal/deploy"
	"github.com/your-org/code-weaver/internal/fileset"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "weaver.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	require.NoError(t, s.TouchSession(ctx, sess.ID))

	_, err = s.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.TouchSession(ctx, "missing"), ErrNotFound)
}

func TestMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx)
	require.NoError(t, err)

	_, err = s.AddMessage(ctx, sess.ID, "user", "build me a gym site")
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, sess.ID, "assistant", "done")
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestWebsites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx)
	require.NoError(t, err)

	_, err = s.LatestWebsite(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	files := fileset.New()
	files[fileset.KeyHTML] = "<!DOCTYPE html><html><body>one</body></html>"

	first := &Website{SessionID: sess.ID, Prompt: "v1", Files: files, CreatedAt: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, s.SaveWebsite(ctx, first))

	second := &Website{SessionID: sess.ID, Prompt: "v2", Files: files.Clone(), UsedFallback: true}
	require.NoError(t, s.SaveWebsite(ctx, second))

	latest, err := s.LatestWebsite(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", latest.Prompt)
	assert.True(t, latest.UsedFallback)
	assert.Equal(t, files.HTML(), latest.Files.HTML())
	for _, k := range fileset.Keys {
		_, ok := latest.Files[k]
		assert.True(t, ok, "key %s must be present after load", k)
	}
}

func TestDeploymentRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"site-a", "site-b", "site-c"} {
		rec := deploy.DeploymentRecord{
			SiteID:    id,
			SiteName:  id + "-name",
			URL:       "https://" + id + ".netlify.app",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.AddDeployment(ctx, rec))
	}

	oldest, err := s.OldestDeployments(ctx, 2)
	require.NoError(t, err)
	require.Len(t, oldest, 2)
	assert.Equal(t, "site-a", oldest[0].SiteID)
	assert.Equal(t, "site-b", oldest[1].SiteID)

	require.NoError(t, s.DeleteDeployment(ctx, "site-a"))

	all, err := s.ListDeployments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "site-c", all[0].SiteID)
}
