package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/carbonlens/pkg/util"
)

// Service manages the optional accounts that attribute runs on the leaderboard.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (UserView, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	Profile(ctx context.Context, userID int64) (UserView, error)
}

type service struct {
	repo   Repository
	tokens *signer
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	return newService(cfg, repo, logger, util.NowUTC)
}

func newService(cfg Config, repo Repository, logger *slog.Logger, now util.Clock) *service {
	return &service{
		repo:   repo,
		tokens: newSigner(cfg, now),
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (UserView, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return UserView{}, err
	}
	nickname, err := normalizeNickname(req.Nickname)
	if err != nil {
		return UserView{}, err
	}
	if err := checkPassword(req.Password); err != nil {
		return UserView{}, err
	}

	if _, exists, err := s.repo.GetByEmail(ctx, email); err != nil {
		return UserView{}, storeFailure("failed to check user", err)
	} else if exists {
		return UserView{}, emailTaken(nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserView{}, storeFailure("failed to hash password", err)
	}
	// The unique index still decides when two registrations race.
	user, err := s.repo.Create(ctx, email, nickname, string(hash))
	switch {
	case errors.Is(err, ErrEmailExists):
		return UserView{}, emailTaken(err)
	case err != nil:
		return UserView{}, storeFailure("failed to create user", err)
	}
	s.logger.Info("account registered", "user_id", user.ID)
	return user.View(), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}
	if req.Password == "" {
		return LoginResponse{}, invalidInput("password is required", nil)
	}
	user, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, storeFailure("failed to fetch user", err)
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return LoginResponse{}, badCredentials()
	}
	return s.session(user)
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, invalidToken("token missing", nil)
	}
	return s.tokens.verify(token, tokenTypeAccess)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (LoginResponse, error) {
	claims, err := s.tokens.verify(strings.TrimSpace(refreshToken), tokenTypeRefresh)
	if err != nil {
		return LoginResponse{}, err
	}
	// Reload so a refreshed token carries the stored nickname.
	user, err := s.load(ctx, claims.UserID)
	if err != nil {
		return LoginResponse{}, err
	}
	return s.session(user)
}

func (s *service) Profile(ctx context.Context, userID int64) (UserView, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return user.View(), nil
}

func (s *service) load(ctx context.Context, userID int64) (User, error) {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, storeFailure("failed to load user", err)
	}
	if !found {
		return User{}, userMissing()
	}
	return user, nil
}

func (s *service) session(user User) (LoginResponse, error) {
	access, refresh, err := s.tokens.pair(user)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Token: access, RefreshToken: refresh, User: user.View()}, nil
}
