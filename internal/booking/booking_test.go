package booking

import (
	"context"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/mindease/internal/models"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *models.User, *models.User) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(gormsqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &Booking{}))

	student := &models.User{Name: "Sam", Email: "sam@uni.edu", PasswordHash: "x", Role: models.RoleStudent, IsActive: true}
	counselor := &models.User{Name: "Dr Lee", Email: "lee@uni.edu", PasswordHash: "x", Role: models.RoleCounselor, IsActive: true}
	require.NoError(t, db.Create(student).Error)
	require.NoError(t, db.Create(counselor).Error)
	return NewService(db), student, counselor
}

func TestCreate_RequiresCounselor(t *testing.T) {
	svc, student, counselor := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, student.ID, student.ID, time.Now().Add(24*time.Hour), "")
	assert.ErrorIs(t, err, ErrInvalidCounselor)

	b, err := svc.Create(ctx, student.ID, counselor.ID, time.Now().Add(24*time.Hour), "first session")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	require.NotNil(t, b.Counselor)
	assert.Equal(t, "Dr Lee", b.Counselor.Name)
}

func TestUpdateStatus_Rules(t *testing.T) {
	svc, student, counselor := setup(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, student.ID, counselor.ID, time.Now().Add(time.Hour), "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, student.ID, b.ID, StatusConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	b, err = svc.UpdateStatus(ctx, counselor.ID, b.ID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)

	_, err = svc.UpdateStatus(ctx, 999, b.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrForbidden)

	b, err = svc.UpdateStatus(ctx, student.ID, b.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)

	_, err = svc.UpdateStatus(ctx, student.ID, 12345, StatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMine_ByRole(t *testing.T) {
	svc, student, counselor := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, student.ID, counselor.ID, time.Now().Add(48*time.Hour), "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, student.ID, counselor.ID, time.Now().Add(24*time.Hour), "")
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].Datetime.Before(mine[1].Datetime))

	theirs, err := svc.Mine(ctx, counselor)
	require.NoError(t, err)
	assert.Len(t, theirs, 2)

	all, total, err := svc.All(ctx, 0, 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, int64(2), total)
}

func TestParseStatus(t *testing.T) {
	_, ok := ParseStatus("Done")
	assert.False(t, ok)
	st, ok := ParseStatus("Completed")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, st)
}
