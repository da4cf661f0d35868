package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vcbot/internal/core/apperror"
	"vcbot/pkg/logger"
)

// Operator is a human with API access: a clerk who manages reference numbers
// and bills, or an admin who can additionally read the query log.
type Operator struct {
	ID           string
	Name         string
	PasswordHash string
	Roles        []string
	IsAdmin      bool
}

// NewOperator creates an operator with a fresh id and a bcrypt password hash.
func NewOperator(name, password string, roles []string, isAdmin bool) (Operator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Operator{}, err
	}
	return Operator{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: string(hash),
		Roles:        roles,
		IsAdmin:      isAdmin,
	}, nil
}

// TokenPair is a successful login result.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Credentials are a login request.
type Credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Service authenticates operators against a fixed, env-provisioned set.
type Service struct {
	operators map[string]Operator
	jwt       *JWTService
	log       *logger.Logger
}

// NewService creates an auth service over the given operators.
func NewService(operators []Operator, jwtService *JWTService, log *logger.Logger) *Service {
	byName := make(map[string]Operator, len(operators))
	for _, op := range operators {
		byName[op.Name] = op
	}
	return &Service{operators: byName, jwt: jwtService, log: log.WithComponent("auth")}
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	if creds.Name == "" || creds.Password == "" {
		return nil, apperror.NewValidation("name and password are required")
	}

	op, ok := s.operators[creds.Name]
	if !ok {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(creds.Password)); err != nil {
		s.log.Warnw("failed login attempt", "operator", creds.Name)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(op.ID, op.Name, op.Roles, op.IsAdmin)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	s.log.Infow("operator logged in", "operator", op.Name, "user_id", op.ID)
	return &TokenPair{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}
