package auth

import (
	"log/slog"

	"github.com/thanhhle/salesops-management/internal"
)

// UserRepository is the slice of user storage auth depends on.
type UserRepository interface {
	GetAccountByUsername(username string) (*Account, error)
	GetAccountByID(userID string) (*Account, error)
	UpdatePasswordHash(userID, passwordHash string) error
}

type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns a token pair. Accounts
// imported from the legacy deployment store plain credentials; on the
// first successful login the stored value is upgraded to a bcrypt digest.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	account, err := s.userRepo.GetAccountByUsername(dto.Username)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeConnectivity {
			return AuthTokens{}, err
		}
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !VerifyPassword(account.PasswordHash, dto.Password) {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !account.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if !IsBcryptHash(account.PasswordHash) {
		if hash, hashErr := HashPassword(dto.Password, s.bcryptCost); hashErr == nil {
			if upErr := s.userRepo.UpdatePasswordHash(account.ID, hash); upErr != nil {
				s.logger.Warn("legacy credential upgrade failed", "user_id", account.ID, "error", upErr)
			}
		}
	}

	return s.issueTokens(account)
}

// RefreshTokens validates a refresh token and returns a new pair. The
// account is re-checked so a deactivated user cannot keep rotating tokens.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	account, err := s.userRepo.GetAccountByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	if !account.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueTokens(account)
}

func (s *Service) issueTokens(account *Account) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(account)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(account)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// ChangePassword verifies the current credential and stores a bcrypt
// digest of the new one. Legacy plain credentials verify the same way
// they do at login.
func (s *Service) ChangePassword(userID string, dto ChangePasswordDTO) error {
	if dto.OldPassword == "" {
		return internal.ErrInvalidOldCredential
	}
	if len(dto.NewPassword) < 6 {
		return internal.ErrPasswordTooShort
	}

	account, err := s.userRepo.GetAccountByID(userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(account.PasswordHash, dto.OldPassword) {
		return internal.ErrInvalidOldCredential
	}

	hash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	return s.userRepo.UpdatePasswordHash(userID, hash)
}
