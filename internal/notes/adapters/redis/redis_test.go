package redis_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesapi/internal/notes/adapters/redis"
	"notesapi/internal/notes/domain/entities"
)

func newRepo(t *testing.T) (*miniredis.Miniredis, *redis.NoteRepository) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, redis.NewNoteRepository(client, "test")
}

func fixedTime() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, repo *redis.NoteRepository, titles ...string) {
	t.Helper()
	for _, title := range titles {
		_, err := repo.Create(context.Background(), entities.NewNote(title, "", fixedTime()))
		require.NoError(t, err)
	}
}

func TestNoteRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	srv, repo := newRepo(t)

	first, err := repo.Create(ctx, entities.NewNote("one", "body", fixedTime()))
	require.NoError(t, err)
	second, err := repo.Create(ctx, entities.NewNote("two", "", fixedTime()))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, "one", srv.HGet("test:note:1", "title"))
	assert.Equal(t, "2024-05-01T12:00:00Z", srv.HGet("test:note:1", "created_at"))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	missing, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNoteRepository_IDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepo(t)
	seed(t, repo, "a", "b")

	deleted, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	note, err := repo.Create(ctx, entities.NewNote("c", "", fixedTime()))
	require.NoError(t, err)
	assert.Equal(t, int64(3), note.ID)
}

func TestNoteRepository_List(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepo(t)
	seed(t, repo, "a", "b", "c", "d", "e")

	tests := []struct {
		name   string
		limit  int
		offset int
		ids    []int64
	}{
		{name: "first page", limit: 2, offset: 0, ids: []int64{1, 2}},
		{name: "middle page", limit: 2, offset: 2, ids: []int64{3, 4}},
		{name: "tail", limit: 10, offset: 4, ids: []int64{5}},
		{name: "past end", limit: 10, offset: 100, ids: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, total, err := repo.List(ctx, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, 5, total)
			ids := make([]int64, 0, len(notes))
			for _, n := range notes {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestNoteRepository_Update(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepo(t)
	seed(t, repo, "a")

	later := fixedTime().Add(time.Minute)
	content := "fresh"
	note, err := repo.Update(ctx, 1, entities.NotePatch{Content: &content}, later)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "a", note.Title)
	assert.Equal(t, "fresh", note.Content)
	assert.Equal(t, fixedTime(), note.CreatedAt)
	assert.Equal(t, later, note.UpdatedAt)

	stored, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, note, stored)

	missing, err := repo.Update(ctx, 9, entities.NotePatch{Content: &content}, later)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNoteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	srv, repo := newRepo(t)
	seed(t, repo, "a")

	deleted, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, srv.Exists("test:note:1"))

	deleted, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestNoteRepository_Search(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepo(t)
	seed(t, repo, "Buy MILK", "Call mom")
	_, err := repo.Create(ctx, entities.NewNote("Groceries", "eggs, milk", fixedTime()))
	require.NoError(t, err)

	notes, err := repo.Search(ctx, "milk")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, int64(1), notes[0].ID)
	assert.Equal(t, int64(3), notes[1].ID)

	none, err := repo.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestNoteRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepo(t)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, entities.NewNote(fmt.Sprintf("n%d", i), "", fixedTime()))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	notes, total, err := repo.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, workers, total)
	seen := make(map[int64]bool, workers)
	for _, n := range notes {
		assert.False(t, seen[n.ID], "duplicate id %d", n.ID)
		seen[n.ID] = true
	}
}

func TestNoteRepository_ServerDown(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	repo := redis.NewNoteRepository(client, "test")
	srv.Close()

	_, err = repo.Create(context.Background(), entities.NewNote("a", "", fixedTime()))
	assert.Error(t, err)
}
