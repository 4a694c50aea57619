package repository

import (
	"context"
	"testing"

	"navega/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionStore_PostLifecycle(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	u := createUser(t, db, "A", "a@x.com", models.RoleUser)
	post := createPost(t, db, "hola", models.Registered{UserID: u.ID}, "")
	store := NewPostReactionStore(db)

	user := models.Registered{UserID: u.ID}
	device := models.Anonymous{DeviceID: "dev-1"}

	has, err := store.HasReacted(ctx, post.ID, user)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.AddReaction(ctx, post.ID, user))
	require.NoError(t, store.AddReaction(ctx, post.ID, device))

	has, err = store.HasReacted(ctx, post.ID, user)
	require.NoError(t, err)
	assert.True(t, has)

	n, err := store.CountReactions(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, store.RemoveReaction(ctx, post.ID, user))
	n, err = store.CountReactions(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	has, err = store.HasReacted(ctx, post.ID, device)
	require.NoError(t, err)
	assert.True(t, has, "removing the user row must keep the device row")
}

func TestReactionStore_DuplicateIsConflict(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	post := createPost(t, db, "hola", models.Anonymous{DeviceID: "d"}, "")
	store := NewPostReactionStore(db)

	require.NoError(t, store.AddReaction(ctx, post.ID, models.Anonymous{DeviceID: "dev-1"}))
	err := store.AddReaction(ctx, post.ID, models.Anonymous{DeviceID: "dev-1"})
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.Contains(t, err.Error(), DuplicatePostIdentifyMessage)

	comment := createComment(t, db, post.ID, "eco", models.Anonymous{DeviceID: "d"}, "")
	comments := NewCommentReactionStore(db)
	require.NoError(t, comments.AddReaction(ctx, comment.ID, models.Registered{UserID: 4}))
	err = comments.AddReaction(ctx, comment.ID, models.Registered{UserID: 4})
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.Contains(t, err.Error(), DuplicateCommentIdentifyMessage)
}

func TestReactionStore_CommentsAreIndependentOfPosts(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	post := createPost(t, db, "hola", models.Anonymous{DeviceID: "d"}, "")
	comment := createComment(t, db, post.ID, "eco", models.Anonymous{DeviceID: "d"}, "")

	who := models.Anonymous{DeviceID: "dev-1"}
	require.NoError(t, NewCommentReactionStore(db).AddReaction(ctx, comment.ID, who))

	has, err := NewPostReactionStore(db).HasReacted(ctx, post.ID, who)
	require.NoError(t, err)
	assert.False(t, has)

	n, err := NewCommentReactionStore(db).CountReactions(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
