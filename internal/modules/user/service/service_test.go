package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"anoa.com/newtongame/internal/entity"
	searchDto "anoa.com/newtongame/internal/modules/search/dto"
	"anoa.com/newtongame/internal/modules/user/dto"
	"anoa.com/newtongame/internal/modules/user/repository"
	"anoa.com/newtongame/internal/testutil"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type fakeStorage struct {
	uploads []string
	deleted []string
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + fileName
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

type recordingSearch struct{ indexed []string }

func (r *recordingSearch) IndexPlayer(_ context.Context, user *entity.User) {
	r.indexed = append(r.indexed, user.Username)
}

func (r *recordingSearch) SearchPlayers(context.Context, string, int) ([]searchDto.PlayerResult, error) {
	return nil, nil
}

func newService(t *testing.T, store storage.ImageStorage) (AuthService, *gorm.DB, *recordingSearch) {
	t.Helper()
	db := testutil.DB(t)
	rec := &recordingSearch{}
	opts := Options{Secret: testSecret, TokenTTL: time.Hour, AvatarFolder: "avatars"}
	svc := NewAuthService(repository.NewUserRepository(db), store, rec, opts, nil)
	return svc, db, rec
}

func subject(t *testing.T, token string) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return claims.Subject
}

func TestSignUpAndLogin(t *testing.T) {
	svc, db, rec := newService(t, nil)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, dto.SignUpInput{Username: "galileo", Password1: "telescope", Password2: "telescope"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if resp.Username != "galileo" || resp.AccessToken == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	var user entity.User
	if err := db.First(&user, "username = ?", "galileo").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.PasswordHash == "telescope" {
		t.Fatalf("password stored in clear text")
	}
	if subject(t, resp.AccessToken) != user.ID.String() {
		t.Fatalf("token subject mismatch")
	}
	if len(rec.indexed) != 1 {
		t.Fatalf("expected player to be indexed")
	}

	login, err := svc.Login(ctx, dto.LoginInput{Username: "galileo", Password: "telescope"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if subject(t, login.AccessToken) != user.ID.String() {
		t.Fatalf("login token subject mismatch")
	}
}

func TestSignUpValidation(t *testing.T) {
	svc, db, _ := newService(t, nil)
	ctx := context.Background()
	testutil.SeedUser(t, ctx, db, "taken")

	cases := []struct {
		name  string
		input dto.SignUpInput
		msg   string
	}{
		{"taken", dto.SignUpInput{Username: "taken", Password1: "password1", Password2: "password1"}, "Username Already Exist!"},
		{"short username", dto.SignUpInput{Username: "abc", Password1: "password1", Password2: "password1"}, "Username must be at least 4 characters."},
		{"short password", dto.SignUpInput{Username: "abcd", Password1: "123456", Password2: "123456"}, "Password must contain at least 7 characters."},
		{"mismatch", dto.SignUpInput{Username: "abcd", Password1: "1234567", Password2: "7654321"}, "Passwords don't match!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tc.input)
			if !errors.Is(err, apperror.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if err.Error() != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, err.Error())
			}
		})
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _, _ := newService(t, nil)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, dto.SignUpInput{Username: "kepler", Password1: "ellipses", Password2: "ellipses"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := svc.Login(ctx, dto.LoginInput{Username: "nobody", Password: "x"}); err == nil || err.Error() != "Username does not exist" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Login(ctx, dto.LoginInput{Username: "kepler", Password: "circles"}); err == nil || err.Error() != "Incorrect Password!" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	svc, db, _ := newService(t, nil)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, db, "curie")

	got, err := svc.CurrentUser(ctx, user.ID)
	if err != nil || got.Username != "curie" {
		t.Fatalf("unexpected user: %+v, %v", got, err)
	}
	if _, err := svc.CurrentUser(ctx, uuid.New()); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestUpdateAvatar(t *testing.T) {
	store := &fakeStorage{}
	svc, db, rec := newService(t, store)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, db, "curie")

	first, err := svc.UpdateAvatar(ctx, user.ID, dto.AvatarFile{Reader: strings.NewReader("img"), FileName: "a.png"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	second, err := svc.UpdateAvatar(ctx, user.ID, dto.AvatarFile{Reader: strings.NewReader("img"), FileName: "b.png"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	var stored entity.User
	db.First(&stored, "id = ?", user.ID)
	if stored.AvatarURL == nil || *stored.AvatarURL != second {
		t.Fatalf("avatar not stored: %v", stored.AvatarURL)
	}
	if len(store.deleted) != 1 || store.deleted[0] != first {
		t.Fatalf("previous avatar not deleted: %v", store.deleted)
	}
	if len(rec.indexed) != 2 {
		t.Fatalf("expected reindex on each upload, got %d", len(rec.indexed))
	}
}

func TestUpdateAvatarWithoutStorage(t *testing.T) {
	svc, db, _ := newService(t, nil)
	user := testutil.SeedUser(t, context.Background(), db, "curie")

	_, err := svc.UpdateAvatar(context.Background(), user.ID, dto.AvatarFile{Reader: strings.NewReader("x"), FileName: "a.png"})
	if apperror.MapErrorToStatus(err) != 503 {
		t.Fatalf("expected 503, got %v", err)
	}
}
