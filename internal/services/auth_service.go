package services

import (
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"campusbay/internal/domain"
	"campusbay/internal/repos"
)

const tokenTTL = 24 * time.Hour

type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
}

func NewAuthService(users *repos.UserRepo, secret string) *AuthService {
	return &AuthService{Users: users, Secret: []byte(secret)}
}

// Register creates a USER account and returns it with a fresh token.
func (s *AuthService) Register(email, name, password, department, year string) (*domain.User, string, error) {
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, "", ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return nil, "", errors.Wrap(err, "lookup email")
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}
	u := domain.User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       name,
		Hash:       string(h),
		Role:       "USER",
		Department: department,
		Year:       year,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, "", errors.Wrap(err, "insert user")
	}
	tok, err := s.token(&u)
	if err != nil {
		return nil, "", err
	}
	return &u, tok, nil
}

func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	tok, err := s.token(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *AuthService) token(u *domain.User) (string, error) {
	claims := &JwtCustomClaims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// UserFromToken verifies the signature and expiry, then loads the user so
// role changes take effect without reissuing tokens.
func (s *AuthService) UserFromToken(raw string) (*domain.User, error) {
	claims := &JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadCreds
	}
	u, err := s.Users.ByID(claims.UserID)
	if err != nil {
		return nil, ErrBadCreds
	}
	return u, nil
}
