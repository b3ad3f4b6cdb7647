package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sheet_lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObjects struct {
	putErr  error
	put     map[string]string
	removed []string
}

func (r *recordingObjects) Put(_ context.Context, key string, rd io.Reader, _ int64, _ string) error {
	if r.putErr != nil {
		return r.putErr
	}
	b, _ := io.ReadAll(rd)
	if r.put == nil {
		r.put = map[string]string{}
	}
	r.put[key] = string(b)
	return nil
}

func (r *recordingObjects) Remove(_ context.Context, key string) error {
	r.removed = append(r.removed, key)
	return nil
}

func (r *recordingObjects) URL(key string) string { return "https://cdn.test/" + key }

func TestThumbnailKey(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "thumbnails/c1_1700000000.png", ThumbnailKey("c1", ".PNG", at))
}

func TestLocalObjects(t *testing.T) {
	root := t.TempDir()
	l := &localObjects{root: root, publicURL: "/static/"}
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "thumbnails/a.png", strings.NewReader("img"), 3, "image/png"))
	data, err := os.ReadFile(filepath.Join(root, "thumbnails", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))
	assert.Equal(t, "/static/thumbnails/a.png", l.URL("thumbnails/a.png"))

	entries, err := os.ReadDir(filepath.Join(root, "thumbnails"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, l.Remove(ctx, "thumbnails/a.png"))
	require.NoError(t, l.Remove(ctx, "thumbnails/a.png"), "removing a missing object is not an error")

	assert.Equal(t, "/uploads/x", (&localObjects{root: root}).URL("x"))
}

func TestLocalObjects_CanceledContext(t *testing.T) {
	l := &localObjects{root: t.TempDir()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Put(ctx, "a", strings.NewReader("x"), 1, ""), context.Canceled)
}

func TestCourseService_UploadThumbnailWithObjectStore(t *testing.T) {
	f := newFixture(t)
	f.addCourse(t, "c1", "Go", "Programming")
	objects := &recordingObjects{}
	svc := NewCourseService(f.courses, f.lessons, f.progress, NewStorageServiceWith(objects, util.StorageMinio))

	c, err := svc.UploadThumbnail(context.Background(), "c1", ".jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.Thumbnail, "https://cdn.test/thumbnails/c1_"), c.Thumbnail)
	assert.Len(t, objects.put, 1)
	assert.Empty(t, objects.removed)

	objects.putErr = errors.New("bucket offline")
	_, err = svc.UploadThumbnail(context.Background(), "c1", ".jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket offline")

	stored, _, err := f.courses.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, c.Thumbnail, stored.Thumbnail, "failed upload leaves the row untouched")
}
