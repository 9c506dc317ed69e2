package forum

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(gormsqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Post{}, &Comment{}, &Like{}))
	return db
}

func TestCanDelete(t *testing.T) {
	cases := []struct {
		name                 string
		actor, owner, parent uint64
		want                 bool
	}{
		{"owner", 1, 1, 0, true},
		{"stranger", 2, 1, 0, false},
		{"parent owner moderates", 3, 1, 3, true},
		{"anonymous", 0, 0, 0, false},
		{"no parent", 2, 1, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CanDelete(c.actor, c.owner, c.parent))
		})
	}
}

func TestPostLifecycle(t *testing.T) {
	svc := NewService(openTestDB(t))
	ctx := context.Background()
	const author, other = 10, 20

	p, err := svc.Create(ctx, author, "Exam stress", "How do you cope?", []string{" exams ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"exams"}, p.Tags)
	assert.True(t, p.CanEdit)

	asOther, err := svc.Get(ctx, p.ID, other)
	require.NoError(t, err)
	assert.False(t, asOther.CanEdit)
	assert.False(t, asOther.CanDelete)

	newTitle := "Exam season"
	_, err = svc.Update(ctx, other, p.ID, Update{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, author, p.ID, Update{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Exam season", updated.Title)
	assert.Equal(t, "How do you cope?", updated.Body)

	assert.ErrorIs(t, svc.Delete(ctx, other, p.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, author, p.ID))
	_, err = svc.Get(ctx, p.ID, author)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestComments_DeleteRule(t *testing.T) {
	svc := NewService(openTestDB(t))
	ctx := context.Background()
	const postOwner, commenter, stranger = 1, 2, 3

	p, err := svc.Create(ctx, postOwner, "t", "b", nil)
	require.NoError(t, err)

	v, err := svc.AddComment(ctx, commenter, p.ID, "me too")
	require.NoError(t, err)
	require.Len(t, v.Comments, 1)
	assert.True(t, v.Comments[0].CanDelete)
	c1 := v.Comments[0].ID

	v, err = svc.AddComment(ctx, commenter, p.ID, "second")
	require.NoError(t, err)
	c2 := v.Comments[1].ID

	asStranger, _ := svc.Get(ctx, p.ID, stranger)
	assert.False(t, asStranger.Comments[0].CanDelete)
	asOwner, _ := svc.Get(ctx, p.ID, postOwner)
	assert.True(t, asOwner.Comments[0].CanDelete)

	_, err = svc.DeleteComment(ctx, stranger, p.ID, c1)
	assert.ErrorIs(t, err, ErrForbidden)

	v, err = svc.DeleteComment(ctx, commenter, p.ID, c1)
	require.NoError(t, err)
	assert.Equal(t, 1, v.CommentsCount)

	v, err = svc.DeleteComment(ctx, postOwner, p.ID, c2)
	require.NoError(t, err)
	assert.Equal(t, 0, v.CommentsCount)

	_, err = svc.DeleteComment(ctx, postOwner, p.ID, c2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLike(t *testing.T) {
	svc := NewService(openTestDB(t))
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, "t", "b", nil)
	require.NoError(t, err)

	v, err := svc.ToggleLike(ctx, 2, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.LikesCount)
	assert.True(t, v.IsLikedByCurrentUser)

	v, err = svc.ToggleLike(ctx, 2, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, v.LikesCount)
	assert.False(t, v.IsLikedByCurrentUser)

	_, err = svc.ToggleLike(ctx, 2, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_Invalid(t *testing.T) {
	svc := NewService(openTestDB(t))
	_, err := svc.Create(context.Background(), 1, "  ", "body", nil)
	assert.ErrorIs(t, err, ErrInvalid)
}
