package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/newtongame/internal/entity"
	"anoa.com/newtongame/internal/modules/search/dto"
	userRepo "anoa.com/newtongame/internal/modules/user/repository"
	"anoa.com/newtongame/internal/testutil"
	"anoa.com/newtongame/pkg/apperror"
)

type fakeIndex struct {
	indexed []string
	results []dto.PlayerResult
	err     error
}

func (f *fakeIndex) IndexPlayer(user *entity.User) error {
	f.indexed = append(f.indexed, user.Username)
	return f.err
}

func (f *fakeIndex) SearchPlayers(string, int) ([]dto.PlayerResult, error) {
	return f.results, f.err
}

func TestSearchPlayersUsesIndex(t *testing.T) {
	db := testutil.DB(t)
	idx := &fakeIndex{results: []dto.PlayerResult{{ID: "1", Username: "newton"}}}
	svc := NewSearchService(idx, userRepo.NewUserRepository(db), nil)

	got, err := svc.SearchPlayers(context.Background(), "new", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Username != "newton" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestSearchPlayersFallsBackToDatabase(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	for _, name := range []string{"Newton", "newbie", "galileo", "new_100"} {
		testutil.SeedUser(t, ctx, db, name)
	}
	repo := userRepo.NewUserRepository(db)

	for _, idx := range []PlayerIndex{nil, &fakeIndex{err: errors.New("down")}} {
		svc := NewSearchService(idx, repo, nil)
		got, err := svc.SearchPlayers(ctx, "NEW", 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 matches, got %+v", got)
		}
	}

	svc := NewSearchService(nil, repo, nil)
	got, _ := svc.SearchPlayers(ctx, "w_", 10)
	if len(got) != 1 || got[0].Username != "new_100" {
		t.Fatalf("underscore must match literally: %+v", got)
	}
}

func TestSearchPlayersRequiresQuery(t *testing.T) {
	svc := NewSearchService(nil, userRepo.NewUserRepository(testutil.DB(t)), nil)
	if _, err := svc.SearchPlayers(context.Background(), "  ", 5); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestIndexPlayerIgnoresFailures(t *testing.T) {
	idx := &fakeIndex{err: errors.New("down")}
	svc := NewSearchService(idx, nil, nil)
	svc.IndexPlayer(context.Background(), &entity.User{Username: "ada"})
	if len(idx.indexed) != 1 {
		t.Fatalf("expected index call")
	}

	NewSearchService(nil, nil, nil).IndexPlayer(context.Background(), &entity.User{Username: "ada"})
}
