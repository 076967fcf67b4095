package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/newtongame/internal/entity"
	search "anoa.com/newtongame/internal/modules/search/service"
	"anoa.com/newtongame/internal/modules/user/dto"
	"anoa.com/newtongame/internal/modules/user/repository"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/logger"
	"anoa.com/newtongame/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minUsernameLength = 4
	minPasswordLength = 7
	maxUsernameLength = 150
)

type AuthService interface {
	SignUp(ctx context.Context, input dto.SignUpInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, file dto.AvatarFile) (string, error)
}

type authService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
	avatarFolder string
	search       search.SearchService
	secret       string
	tokenTTL     time.Duration
	log          *logger.Logger
}

type Options struct {
	Secret       string
	TokenTTL     time.Duration
	AvatarFolder string
}

// NewAuthService wires the identity service. imageStorage and searchSvc may be nil.
func NewAuthService(repo repository.UserRepository, imageStorage storage.ImageStorage, searchSvc search.SearchService, opts Options, log *logger.Logger) AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &authService{
		repo:         repo,
		imageStorage: imageStorage,
		avatarFolder: opts.AvatarFolder,
		search:       searchSvc,
		secret:       opts.Secret,
		tokenTTL:     opts.TokenTTL,
		log:          log,
	}
}

func (s *authService) SignUp(ctx context.Context, input dto.SignUpInput) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(input.Username)

	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, apperror.InvalidInput("Username Already Exist!")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperror.Internal("Error creating account", err)
	}

	if len(username) < minUsernameLength {
		return nil, apperror.InvalidInput("Username must be at least 4 characters.")
	}
	if len(username) > maxUsernameLength {
		return nil, apperror.InvalidInput("Username is too long.")
	}
	if len(input.Password1) < minPasswordLength {
		return nil, apperror.InvalidInput("Password must contain at least 7 characters.")
	}
	if input.Password1 != input.Password2 {
		return nil, apperror.InvalidInput("Passwords don't match!")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("Error creating account", err)
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: string(hashed),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up for the same name.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.InvalidInput("Username Already Exist!")
		}
		return nil, apperror.Internal("Error creating account", err)
	}

	if s.search != nil {
		s.search.IndexPlayer(ctx, user)
	}
	s.log.Info("player signed up", "user_id", user.ID, "username", user.Username)

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.InvalidInput("Username does not exist")
		}
		return nil, apperror.Internal("Error logging in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.InvalidInput("Incorrect Password!")
	}

	return s.buildAuthResponse(user)
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Token outlived the account.
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Internal("Error loading session", err)
	}
	return user, nil
}

func (s *authService) UpdateAvatar(ctx context.Context, userID uuid.UUID, file dto.AvatarFile) (string, error) {
	if s.imageStorage == nil {
		return "", apperror.Unavailable("Avatar uploads are not configured")
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.imageStorage.UploadImage(ctx, file.Reader, s.avatarFolder, file.FileName)
	if err != nil {
		return "", apperror.Internal("Error uploading avatar", err)
	}

	if err := s.repo.UpdateAvatar(ctx, user.ID, url); err != nil {
		return "", apperror.Internal("Error saving avatar", err)
	}

	if user.AvatarURL != nil && *user.AvatarURL != "" {
		if err := s.imageStorage.DeleteImage(ctx, *user.AvatarURL); err != nil {
			s.log.Warn("failed to delete previous avatar", "user_id", user.ID, "error", err)
		}
	}

	user.AvatarURL = &url
	if s.search != nil {
		s.search.IndexPlayer(ctx, user)
	}
	return url, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, apperror.Internal("Error issuing session", err)
	}

	return &dto.AuthResponse{
		Username:    user.Username,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
