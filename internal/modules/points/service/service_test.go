package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/points/repository"
	"anoa.com/newtongame/internal/testutil"
	"anoa.com/newtongame/pkg/apperror"
	"github.com/google/uuid"
)

type countingListener struct{ calls int }

func (l *countingListener) ScoresChanged(context.Context) { l.calls++ }

func TestRecordPointsAppendsEvent(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	user := testutil.SeedUser(t, ctx, db, "ada")
	listener := &countingListener{}
	svc := NewPointsService(repository.NewPointsRepository(db), listener)

	got, err := svc.RecordPoints(ctx, user.ID, 120)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got != 120 {
		t.Fatalf("expected 120, got %d", got)
	}
	if listener.calls != 1 {
		t.Fatalf("expected listener to be called once, got %d", listener.calls)
	}

	var events []entity.ScoreEvent
	if err := db.Find(&events, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 || events[0].Points != 120 || events[0].Source != SourceSavePoints {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestRecordPointsAcceptsNegative(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	user := testutil.SeedUser(t, ctx, db, "ada")
	svc := NewPointsService(repository.NewPointsRepository(db), nil)

	if _, err := svc.RecordPoints(ctx, user.ID, -5); err != nil {
		t.Fatalf("record: %v", err)
	}
	sum, err := svc.TotalOrMaxPoints(ctx, user.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.MaxPoints != -5 || sum.TotalPoints != -5 || sum.Events != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestRecordPointsRequiresIdentity(t *testing.T) {
	db := testutil.DB(t)
	svc := NewPointsService(repository.NewPointsRepository(db), nil)

	_, err := svc.RecordPoints(context.Background(), uuid.Nil, 10)
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestTotalOrMaxPointsUsesMaximum(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	user := testutil.SeedUser(t, ctx, db, "ada")
	for _, p := range []int{40, 90, 15} {
		testutil.SeedScoreEvent(t, ctx, db, user.ID, p)
	}
	svc := NewPointsService(repository.NewPointsRepository(db), nil)

	sum, err := svc.TotalOrMaxPoints(ctx, user.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.MaxPoints != 90 {
		t.Fatalf("expected max 90, got %d", sum.MaxPoints)
	}
	if sum.TotalPoints != 145 {
		t.Fatalf("expected total 145, got %d", sum.TotalPoints)
	}
	if sum.Events != 3 {
		t.Fatalf("expected 3 events, got %d", sum.Events)
	}
}

func TestTotalOrMaxPointsWithoutEvents(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	user := testutil.SeedUser(t, ctx, db, "ada")
	svc := NewPointsService(repository.NewPointsRepository(db), nil)

	sum, err := svc.TotalOrMaxPoints(ctx, user.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.MaxPoints != 0 || sum.TotalPoints != 0 || sum.Events != 0 {
		t.Fatalf("expected zero summary, got %+v", sum)
	}
}

func TestRecordPointsStorageFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	svc := NewPointsService(repository.NewPointsRepository(db), nil)

	sqlDB, _ := db.DB()
	_ = sqlDB.Close()

	_, err := svc.RecordPoints(ctx, uuid.New(), 10)
	if apperror.MapErrorToStatus(err) != 500 {
		t.Fatalf("expected 500, got %v", err)
	}
	if err.Error() != "Error saving points" {
		t.Fatalf("cause leaked into message: %q", err.Error())
	}
}
