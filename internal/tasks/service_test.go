package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/Saatvik786/TaskSphere/internal/repo"
	"github.com/Saatvik786/TaskSphere/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	alice = primitive.NewObjectID().Hex()
	bob   = primitive.NewObjectID().Hex()
)

func strp(s string) *string { return &s }

func TestCreateDefaultsAndValidation(t *testing.T) {
	svc := tasks.NewService(repo.NewMemoryStore())
	ctx := context.Background()

	task, err := svc.Create(ctx, alice, tasks.CreateInput{Title: "  Write docs ", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.True(t, task.OwnedBy(alice))
	assert.False(t, task.ID.IsZero())

	_, err = svc.Create(ctx, alice, tasks.CreateInput{Title: "   "})
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	_, err = svc.Create(ctx, alice, tasks.CreateInput{Title: "x", Status: "done"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ctx, "garbage", tasks.CreateInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListScopedToOwnerNewestFirst(t *testing.T) {
	svc := tasks.NewService(repo.NewMemoryStore())
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, alice, tasks.CreateInput{Title: title})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := svc.Create(ctx, bob, tasks.CreateInput{Title: "bob's"})
	require.NoError(t, err)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)

	empty, err := svc.List(ctx, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGetOwnership(t *testing.T) {
	svc := tasks.NewService(repo.NewMemoryStore())
	ctx := context.Background()
	task, err := svc.Create(ctx, alice, tasks.CreateInput{Title: "mine"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, alice, task.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = svc.Get(ctx, bob, task.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(ctx, alice, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, alice, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePartial(t *testing.T) {
	svc := tasks.NewService(repo.NewMemoryStore())
	ctx := context.Background()
	task, err := svc.Create(ctx, alice, tasks.CreateInput{Title: "t", Description: "keep me"})
	require.NoError(t, err)

	up, err := svc.Update(ctx, alice, task.ID.Hex(), tasks.UpdateInput{Status: strp(domain.StatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, "t", up.Title)
	assert.Equal(t, "keep me", up.Description)
	assert.Equal(t, domain.StatusInProgress, up.Status)

	up, err = svc.Update(ctx, alice, task.ID.Hex(), tasks.UpdateInput{Title: strp(""), Description: strp("")})
	require.NoError(t, err)
	assert.Equal(t, "t", up.Title, "blank title keeps the old one")
	assert.Equal(t, "", up.Description, "present description replaces even when empty")

	_, err = svc.Update(ctx, alice, task.ID.Hex(), tasks.UpdateInput{Status: strp("archived")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Update(ctx, bob, task.ID.Hex(), tasks.UpdateInput{Title: strp("hijack")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := svc.Get(ctx, alice, task.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, domain.StatusInProgress, got.Status)
}

func TestDelete(t *testing.T) {
	svc := tasks.NewService(repo.NewMemoryStore())
	ctx := context.Background()
	task, err := svc.Create(ctx, alice, tasks.CreateInput{Title: "t"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bob, task.ID.Hex()), domain.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, alice, task.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, alice, task.ID.Hex()), domain.ErrNotFound)
}
