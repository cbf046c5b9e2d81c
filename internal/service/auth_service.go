package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cashdesk/internal/apierror"
	"cashdesk/internal/config"
	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/repository"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	repo repository.OperatorRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.OperatorRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	op, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apierror.Validation("invalid credentials")
	}
	if !op.Active {
		return nil, apierror.Validation("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Validation("invalid credentials")
	}
	return s.issueTokens(op)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apierror.Validation("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.Validation("malformed token")
	}
	operatorIDStr, ok := claims["operator_id"].(string)
	if !ok {
		return nil, apierror.Validation("malformed token")
	}
	operatorID, err := uuid.Parse(operatorIDStr)
	if err != nil {
		return nil, apierror.Validation("malformed token")
	}

	op, err := s.repo.FindByID(ctx, operatorID)
	if err != nil || !op.Active {
		return nil, apierror.Validation("operator not found or inactive")
	}
	return s.issueTokens(op)
}

func (s *authService) issueTokens(op *model.Operator) (*dto.LoginResponse, error) {
	access, err := s.generateToken(op, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(op, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Operator: dto.OperatorResponse{
			ID:       op.ID.String(),
			Username: op.Username,
			Name:     op.Name,
			Role:     string(op.Role),
		},
	}, nil
}

func (s *authService) generateToken(op *model.Operator, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"operator_id": op.ID.String(),
		"username":    op.Username,
		"role":        string(op.Role),
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
