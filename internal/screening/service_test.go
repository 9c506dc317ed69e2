package screening

import (
	"context"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/mindease/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(gormsqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &Screening{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func phq9(answers ...int) []Response {
	out := make([]Response, len(answers))
	for i, a := range answers {
		out[i] = Response{Question: "q", Answer: a}
	}
	return out
}

func TestSubmit_StoresScoreAndTier(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))

	rec, err := svc.Submit(context.Background(), 7, "PHQ-9", phq9(3, 3, 3, 3, 3, 3, 2, 0, 0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Score != 20 || rec.RiskTier != TierHigh {
		t.Fatalf("unexpected result: score=%d tier=%s", rec.Score, rec.RiskTier)
	}

	var stored Screening
	if err := db.First(&stored, rec.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(stored.Responses) != 9 || stored.Responses[0].Answer != 3 {
		t.Fatalf("responses not persisted: %+v", stored.Responses)
	}
}

func TestSubmit_RejectsInvalid(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)))

	if _, err := svc.Submit(context.Background(), 1, "PHQ-10", phq9(1)); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), 1, "PHQ-9", phq9(9)); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLatest(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	got, err := repo.Latest(ctx, 5)
	if err != nil || got != nil {
		t.Fatalf("expected nil,nil for no history, got %v,%v", got, err)
	}

	base := time.Now().Add(-time.Hour)
	for i, tier := range []Tier{TierHigh, TierLow} {
		if err := repo.Create(ctx, &Screening{
			UserID: 5, Type: PHQ9, Score: 20 - i*15, RiskTier: tier,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Create(ctx, &Screening{UserID: 6, Type: PHQ9, Score: 25, RiskTier: TierHigh, CreatedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	got, err = repo.Latest(ctx, 5)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.RiskTier != TierLow {
		t.Fatalf("expected latest to be the Low record, got %+v", got)
	}

	hist, err := NewService(repo).History(ctx, 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 || hist[0].RiskTier != TierLow {
		t.Fatalf("unexpected history order: %+v", hist)
	}
}
