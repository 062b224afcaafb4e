package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/auth"
	"github.com/duccv/medrecords-api/internal/model"
	"github.com/duccv/medrecords-api/internal/model/request"
	"github.com/duccv/medrecords-api/internal/model/response"
	"github.com/duccv/medrecords-api/internal/repository"
)

// TokenIssuer issues bearer tokens for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Validity() time.Duration
}

type AuthService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	now        func() time.Time
	logger     *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
		logger:     zap.L(),
	}
}

// Register creates a USER account. A taken email is reported as
// apperror.ErrRegistrationConflict without saying which field clashed.
func (s *AuthService) Register(ctx context.Context, req request.RegisterRequest) (*response.UserResponse, error) {
	email := repository.NormalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.ErrRegistrationConflict
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	// the unique index still guards against a concurrent registration
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("userId", user.ID))
	res := response.NewUserResponse(user)
	return &res, nil
}

// Login checks credentials and issues a token whose subject is the email.
func (s *AuthService) Login(ctx context.Context, req request.LoginRequest) (*response.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrBadCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperror.ErrBadCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	return &response.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.Validity().Seconds()),
	}, nil
}

// ResolveIdentity loads the account behind a token subject.
func (s *AuthService) ResolveIdentity(ctx context.Context, subject string) (auth.Identity, error) {
	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return auth.Identity{}, apperror.ErrInvalidToken
		}
		return auth.Identity{}, err
	}
	return auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}
