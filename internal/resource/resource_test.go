package resource

import (
	"context"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/mindease/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(gormsqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &Resource{}))
	return db
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"sleep", "anxiety"}, SplitTags("sleep, anxiety ,,"))
	assert.Equal(t, []string{}, SplitTags(""))
}

func TestCreateListDelete(t *testing.T) {
	db := openTestDB(t)
	admin := &models.User{Name: "Admin", Email: "admin@uni.edu", PasswordHash: "x", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, db.Create(admin).Error)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin.ID, Input{Title: "Sleep hygiene", FileURL: "not a url"})
	assert.ErrorIs(t, err, ErrInvalid)

	r, err := svc.Create(ctx, admin.ID, Input{Title: "Sleep hygiene", FileURL: "https://cdn.uni.edu/sleep.pdf", Tags: "sleep, rest"})
	require.NoError(t, err)
	assert.Equal(t, "General", r.Category)

	_, err = svc.Create(ctx, admin.ID, Input{Title: "Breathing", FileURL: "https://cdn.uni.edu/b.mp3", Category: "Anxiety"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Uploader)
	assert.Equal(t, "Admin", all[0].Uploader.Name)

	anx, err := svc.List(ctx, "Anxiety")
	require.NoError(t, err)
	assert.Len(t, anx, 1)

	require.NoError(t, svc.Delete(ctx, r.ID))
	assert.ErrorIs(t, svc.Delete(ctx, r.ID), ErrNotFound)
}
