package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store *sheet.MemoryStore, def TableDef, rows ...[]string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.WriteHeader(ctx, def.Table, def.Columns))
	for _, r := range rows {
		require.NoError(t, store.Append(ctx, def.Table, r))
	}
}

func progressDef() TableDef {
	return TableDef{Table: ProgressSchema.Table, Columns: ProgressSchema.Columns}
}

func TestTable_FindOneMatchesExactly(t *testing.T) {
	store := sheet.NewMemoryStore()
	seed(t, store, progressDef(),
		[]string{"p1", "u1", "l1", "40", "ongoing", ""},
		[]string{"p2", "u1", "l2", "80", "completed", ""},
	)
	tbl := NewTable(store, cache.NewMemory(time.Minute), ProgressSchema)
	ctx := context.Background()

	p, found, err := tbl.FindOne(ctx, "lesson_id", "l2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "p2", p.ID)
	assert.Equal(t, 80, p.Score)
	assert.Equal(t, model.Completed, p.Status)

	_, found, err = tbl.FindOne(ctx, "lesson_id", "L2")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = tbl.FindOne(ctx, "lesson_id", "l")
	require.NoError(t, err)
	assert.False(t, found, "no prefix matching")
}

func TestTable_FilterKeepsTableOrder(t *testing.T) {
	store := sheet.NewMemoryStore()
	seed(t, store, progressDef(),
		[]string{"p3", "u1", "l3", "0", "ongoing", ""},
		[]string{"p1", "u2", "l1", "0", "ongoing", ""},
		[]string{"p2", "u1", "l1", "0", "ongoing", ""},
	)
	tbl := NewTable(store, nil, ProgressSchema)

	got, err := tbl.Filter(context.Background(), "user_id", "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p3", got[0].ID)
	assert.Equal(t, "p2", got[1].ID)

	none, err := tbl.Filter(context.Background(), "user_id", "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTable_CachedReadsHitStoreOnce(t *testing.T) {
	store := sheet.NewMemoryStore()
	seed(t, store, progressDef(), []string{"p1", "u1", "l1", "10", "ongoing", ""})
	tbl := NewTable(store, cache.NewMemory(time.Minute), ProgressSchema)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := tbl.All(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.Calls("read"))

	_, err := tbl.Fresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Calls("read"), "fresh bypasses the cache")
}

func TestTable_WriteInvalidatesCache(t *testing.T) {
	store := sheet.NewMemoryStore()
	seed(t, store, progressDef(), []string{"p1", "u1", "l1", "10", "ongoing", ""})
	tbl := NewTable(store, cache.NewMemory(time.Minute), ProgressSchema)
	ctx := context.Background()

	before, err := tbl.All(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)

	require.NoError(t, tbl.Insert(ctx, model.Progress{ID: "p2", UserID: "u2", LessonID: "l1", Score: 90, Status: model.Completed}))

	after, err := tbl.All(ctx)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, 90, after[1].Score)

	pos, found, err := tbl.FindPosition(ctx, "id", "p1")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, tbl.Replace(ctx, pos, model.Progress{ID: "p1", UserID: "u1", LessonID: "l1", Score: 100, Status: model.Completed}))

	after, err = tbl.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, after[0].Score)
}

func TestTable_FailedWriteKeepsCache(t *testing.T) {
	store := sheet.NewMemoryStore()
	seed(t, store, progressDef(), []string{"p1", "u1", "l1", "10", "ongoing", ""})
	tbl := NewTable(store, cache.NewMemory(time.Minute), ProgressSchema)
	ctx := context.Background()

	_, err := tbl.All(ctx)
	require.NoError(t, err)

	err = tbl.Replace(ctx, 1, model.Progress{ID: "p1"})
	assert.ErrorIs(t, err, sheet.ErrInvalidPosition)

	_, err = tbl.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Calls("read"))
}

func TestSchema_DecodeToleratesMissingCells(t *testing.T) {
	store := sheet.NewMemoryStore()
	seed(t, store, TableDef{Table: LessonSchema.Table, Columns: LessonSchema.Columns},
		[]string{"l1", "m1", "Intro"},
		[]string{"l2", "m1", "Next", "", "", "not-a-number"},
	)
	tbl := NewTable(store, nil, LessonSchema)

	lessons, err := tbl.All(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "", lessons[0].VideoURL)
	assert.Equal(t, 0, lessons[0].Order)
	assert.Equal(t, 0, lessons[1].Order)
}

func TestQuizSchema_EncodeNormalizesAnswer(t *testing.T) {
	row := QuizSchema.Encode(model.QuizQuestion{ID: "q1", LessonID: "l1", CorrectAnswer: " B "})
	assert.Equal(t, "b", row[QuizSchema.Column("correct_answer")])
	assert.Equal(t, -1, QuizSchema.Column("nope"))
}

func TestRegistry_ColumnsFitRange(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Registry() {
		assert.False(t, seen[def.Table], def.Table)
		seen[def.Table] = true
		assert.Equal(t, "id", def.Columns[0])
		assert.LessOrEqual(t, len(def.Columns), sheet.MaxColumns)
	}
	assert.Len(t, seen, 6)
}

// gatedStore 读取时阻塞直到 release 关闭
type gatedStore struct {
	*sheet.MemoryStore
	reads   atomic.Int32
	release chan struct{}
}

func (g *gatedStore) ReadAll(ctx context.Context, table string) ([]sheet.Record, error) {
	g.reads.Add(1)
	<-g.release
	return g.MemoryStore.ReadAll(ctx, table)
}

func TestTable_ConcurrentMissesShareOneRead(t *testing.T) {
	mem := sheet.NewMemoryStore()
	seed(t, mem, progressDef(), []string{"p1", "u1", "l1", "10", "ongoing", ""})
	store := &gatedStore{MemoryStore: mem, release: make(chan struct{})}
	tbl := NewTable(store, cache.NewMemory(time.Minute), ProgressSchema)

	const n = 8
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows, err := tbl.All(context.Background())
			if err == nil {
				results[i] = len(rows)
			}
		}(i)
	}

	require.Eventually(t, func() bool { return store.reads.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.Equal(t, int32(1), store.reads.Load())
	for _, r := range results {
		assert.Equal(t, 1, r)
	}
}

func TestTable_CanceledCallerDoesNotFailSharedRead(t *testing.T) {
	mem := sheet.NewMemoryStore()
	seed(t, mem, progressDef(), []string{"p1", "u1", "l1", "10", "ongoing", ""})
	store := &gatedStore{MemoryStore: mem, release: make(chan struct{})}
	tbl := NewTable(store, cache.NewMemory(time.Minute), ProgressSchema)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := tbl.All(leaderCtx)
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return store.reads.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		rows []model.Progress
		err  error
	}
	follower := make(chan result, 1)
	go func() {
		rows, err := tbl.All(context.Background())
		follower <- result{rows, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(store.release)
	res := <-follower
	require.NoError(t, res.err)
	require.Len(t, res.rows, 1)
	assert.Equal(t, "p1", res.rows[0].ID)
	assert.Equal(t, int32(1), store.reads.Load())
}

func TestUserRepository_NeverCachesRows(t *testing.T) {
	store := sheet.NewMemoryStore()
	seed(t, store, TableDef{Table: UserSchema.Table, Columns: UserSchema.Columns},
		[]string{"u1", "Ada", "ada@example.com", "$2a$10$hash", "student", ""},
	)
	repo := NewUserRepository(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		u, found, err := repo.FindByID(ctx, "u1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Ada", u.Name)
	}
	assert.Equal(t, 2, store.Calls("read"), "every lookup reads the sheet")
}
