package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/thanhhle/salesops-management/internal"
)

// Account is the slice of the user record auth needs to verify
// credentials and mint tokens.
type Account struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Username     string
	PasswordHash string
	Role         string
	IsActive     bool
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims carried inside access and refresh tokens. EmployeeID rides
// along because plans are keyed by it, not by the user id.
type Claims struct {
	UserID       string `json:"user_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator creates tokens and validates them back into claims.
type TokenGenerator interface {
	GenerateAccessToken(account *Account) (string, error)
	GenerateRefreshToken(account *Account) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// AuthService performs authentication-related business logic.
type AuthService interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ChangePassword(userID string, dto ChangePasswordDTO) error
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(account *Account) (string, error) {
	return j.signed(account, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(account *Account) (string, error) {
	return j.signed(account, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) signed(account *Account, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       account.ID,
		EmployeeID:   account.EmployeeID,
		EmployeeName: account.EmployeeName,
		Username:     account.Username,
		Role:         account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   account.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidToken
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
