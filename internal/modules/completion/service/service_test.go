package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/completion/repository"
	"anoa.com/newtongame/internal/testutil"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*completionService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	svc := NewCompletionService(database.NewTransactor(db), repository.NewCompletionRepository(db))
	return svc.(*completionService), db
}

func score(v float64) *float64 { return &v }

func TestQuizThreshold(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, db, "ada")

	res, err := svc.ReportMilestone(ctx, user.ID, GameQuiz, score(79.9))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if res.QuizCompleted || res.Completion.Quiz || res.Completion.QuizScore != 0 {
		t.Fatalf("79.9 must not pass: %+v", res)
	}

	res, err = svc.ReportMilestone(ctx, user.ID, GameQuiz, score(80.0))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !res.QuizCompleted || !res.Completion.Quiz || res.Completion.QuizScore != 80.0 {
		t.Fatalf("80 must pass: %+v", res)
	}

	// A later failing attempt keeps the passing score.
	res, err = svc.ReportMilestone(ctx, user.ID, GameQuiz, score(12))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if res.QuizCompleted || !res.Completion.Quiz || res.Completion.QuizScore != 80.0 {
		t.Fatalf("failing retry must not change state: %+v", res)
	}
}

func TestFailedQuizCreatesDefaultRow(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, db, "ada")

	if _, err := svc.ReportMilestone(ctx, user.ID, GameQuiz, score(10)); err != nil {
		t.Fatalf("report: %v", err)
	}

	var status entity.CompletionStatus
	if err := db.First(&status, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("expected row: %v", err)
	}
	if status.QuizCompleted || status.QuizScore != 0 || status.AllCompleted {
		t.Fatalf("unexpected row: %+v", status)
	}
}

func TestAllCompletedFlipsOnce(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, db, "ada")

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	for _, g := range []string{GameSoccer, GameRocket, GameAsteroid} {
		res, err := svc.ReportMilestone(ctx, user.ID, g, nil)
		if err != nil {
			t.Fatalf("report %s: %v", g, err)
		}
		if res.Completion.AllCompleted {
			t.Fatalf("all_completed set before quiz")
		}
	}

	res, err := svc.ReportMilestone(ctx, user.ID, GameQuiz, score(95))
	if err != nil {
		t.Fatalf("report quiz: %v", err)
	}
	if !res.Completion.AllCompleted || res.Completion.CompletedAt == nil || !res.Completion.CompletedAt.Equal(first) {
		t.Fatalf("expected completion at %v, got %+v", first, res.Completion)
	}

	svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	res, err = svc.ReportMilestone(ctx, user.ID, GameRocket, nil)
	if err != nil {
		t.Fatalf("report again: %v", err)
	}
	if !res.Completion.AllCompleted || !res.Completion.CompletedAt.Equal(first) {
		t.Fatalf("completed_at must not move: %+v", res.Completion)
	}

	snap, err := svc.GetCompletion(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !snap.CompletedAt.Equal(first) {
		t.Fatalf("stored completed_at changed: %v", snap.CompletedAt)
	}
}

func TestMilestonesAreIdempotent(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, db, "ada")

	for i := 0; i < 3; i++ {
		if _, err := svc.ReportMilestone(ctx, user.ID, "  Soccer", nil); err != nil {
			t.Fatalf("report: %v", err)
		}
	}

	var count int64
	db.Model(&entity.CompletionStatus{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}

	snap, _ := svc.GetCompletion(ctx, user.ID)
	if !snap.Soccer || snap.Rocket || snap.AllCompleted {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestGetCompletionDefaults(t *testing.T) {
	svc, db := newService(t)
	user := testutil.SeedUser(t, context.Background(), db, "ada")

	snap, err := svc.GetCompletion(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snap.Soccer || snap.Rocket || snap.Asteroid || snap.Quiz || snap.QuizScore != 0 || snap.AllCompleted || snap.CompletedAt != nil {
		t.Fatalf("expected defaults, got %+v", snap)
	}
}

func TestReportMilestoneValidation(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, db, "ada")

	for _, tc := range []struct {
		name     string
		gameType string
		score    *float64
	}{
		{"missing", "", nil},
		{"unknown", "chess", nil},
		{"quiz without score", GameQuiz, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReportMilestone(ctx, user.ID, tc.gameType, tc.score)
			if !errors.Is(err, apperror.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}

	if _, err := svc.ReportMilestone(ctx, uuid.Nil, GameSoccer, nil); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
