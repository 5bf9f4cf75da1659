package service

import (
	"context"
	"errors"
	"time"

	"gemini-chat-be/internal/dto"
	"gemini-chat-be/internal/entity"
	"gemini-chat-be/internal/repository/specification"
	"gemini-chat-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases must be indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	uowFactory  unitofwork.RepositoryFactory
	jwtSecret   []byte
	tokenExpiry time.Duration
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, jwtSecret string, tokenExpiry time.Duration) IAuthService {
	return &authService{
		uowFactory:  uowFactory,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	// 1. Check for existing user. The check and the insert share one
	// transaction so a concurrent registration cannot slip between them.
	count, err := uow.UserRepository().Count(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		uow.Rollback()
		return nil, err
	}
	if count > 0 {
		uow.Rollback()
		return nil, ErrEmailTaken
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		uow.Rollback()
		return nil, err
	}

	// 3. Create User Entity
	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		uow.Rollback()
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// 4. Mint claim
	token, err := s.mintToken(user.Id)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: token, Email: user.Email}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.mintToken(user.Id)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: token, Email: user.Email}, nil
}

func (s *authService) mintToken(userId uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(s.tokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
