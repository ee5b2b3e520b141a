package auth

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	internal "github.com/thanhhle/salesops-management/internal"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	accounts        map[string]*Account // username -> account
	accountsByID    map[string]*Account
	upgradedHashes  map[string]string
	returnError     error
	updateHashError error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)

	accounts := map[string]*Account{
		"hung.le": {
			ID:           "u-1",
			EmployeeID:   "EMP_1",
			EmployeeName: "Lê Văn Hùng",
			Username:     "hung.le",
			PasswordHash: string(hashedPassword),
			Role:         RoleEmployee,
			IsActive:     true,
		},
		"legacy.user": {
			ID:           "u-2",
			EmployeeID:   "EMP_2",
			EmployeeName: "Legacy User",
			Username:     "legacy.user",
			PasswordHash: "abc123",
			Role:         RoleEmployee,
			IsActive:     true,
		},
		"inactive.user": {
			ID:           "u-3",
			EmployeeID:   "EMP_3",
			EmployeeName: "Inactive User",
			Username:     "inactive.user",
			PasswordHash: string(hashedPassword),
			Role:         RoleEmployee,
			IsActive:     false,
		},
	}

	byID := make(map[string]*Account)
	for _, a := range accounts {
		byID[a.ID] = a
	}

	return &mockUserRepository{
		accounts:       accounts,
		accountsByID:   byID,
		upgradedHashes: make(map[string]string),
	}
}

func (m *mockUserRepository) GetAccountByUsername(username string) (*Account, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	if a, ok := m.accounts[username]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockUserRepository) GetAccountByID(userID string) (*Account, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	if a, ok := m.accountsByID[userID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePasswordHash(userID, passwordHash string) error {
	if m.updateHashError != nil {
		return m.updateHashError
	}
	m.upgradedHashes[userID] = passwordHash
	if a, ok := m.accountsByID[userID]; ok {
		a.PasswordHash = passwordHash
	}
	return nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		repo     *mockUserRepository
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcdef",
			15*time.Minute,
			7*24*time.Hour,
		)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, tokenGen, bcrypt.MinCost, logger)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "hung.le", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("embeds identity claims in the access token", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "hung.le", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("u-1"))
			gomega.Expect(claims.EmployeeID).To(gomega.Equal("EMP_1"))
			gomega.Expect(claims.Role).To(gomega.Equal(RoleEmployee))
		})

		ginkgo.It("rejects a wrong password", func() {
			_, err := service.Authenticate(LoginDTO{Username: "hung.le", Password: "wrong"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an unknown username", func() {
			_, err := service.Authenticate(LoginDTO{Username: "nobody", Password: "correct_password"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an inactive account even with a valid password", func() {
			_, err := service.Authenticate(LoginDTO{Username: "inactive.user", Password: "correct_password"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserInactive))
		})

		ginkgo.It("accepts a legacy plain credential", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "legacy.user", Password: "abc123"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("upgrades a legacy credential to bcrypt on successful login", func() {
			_, err := service.Authenticate(LoginDTO{Username: "legacy.user", Password: "abc123"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			upgraded, ok := repo.upgradedHashes["u-2"]
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(IsBcryptHash(upgraded)).To(gomega.BeTrue())
			gomega.Expect(VerifyPassword(upgraded, "abc123")).To(gomega.BeTrue())
		})

		ginkgo.It("does not upgrade on a failed legacy login", func() {
			_, err := service.Authenticate(LoginDTO{Username: "legacy.user", Password: "wrong"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
			gomega.Expect(repo.upgradedHashes).To(gomega.BeEmpty())
		})

		ginkgo.It("still logs in when the legacy upgrade write fails", func() {
			repo.updateHashError = internal.NewConnectivityError("down", nil)
			tokens, err := service.Authenticate(LoginDTO{Username: "legacy.user", Password: "abc123"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("surfaces a connectivity failure instead of invalid credentials", func() {
			repo.returnError = internal.NewConnectivityError("down", nil)
			_, err := service.Authenticate(LoginDTO{Username: "hung.le", Password: "correct_password"})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeConnectivity))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("issues a new pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "hung.le", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			renewed, err := service.RefreshTokens(tokens.RefreshToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(renewed.AccessToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("rejects an access token used as a refresh token", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "hung.le", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.RefreshTokens(tokens.AccessToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("refuses to rotate tokens for a deactivated account", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "hung.le", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			repo.accountsByID["u-1"].IsActive = false
			_, err = service.RefreshTokens(tokens.RefreshToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserInactive))
		})
	})

	ginkgo.Describe("ChangePassword", func() {
		ginkgo.It("stores a bcrypt digest of the new password", func() {
			err := service.ChangePassword("u-1", ChangePasswordDTO{
				OldPassword: "correct_password",
				NewPassword: "new_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			stored := repo.upgradedHashes["u-1"]
			gomega.Expect(IsBcryptHash(stored)).To(gomega.BeTrue())
			gomega.Expect(VerifyPassword(stored, "new_password")).To(gomega.BeTrue())
		})

		ginkgo.It("rejects a wrong old password", func() {
			err := service.ChangePassword("u-1", ChangePasswordDTO{
				OldPassword: "wrong",
				NewPassword: "new_password",
			})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidOldCredential))
		})

		ginkgo.It("rejects a short new password", func() {
			err := service.ChangePassword("u-1", ChangePasswordDTO{
				OldPassword: "correct_password",
				NewPassword: "tiny",
			})
			gomega.Expect(err).To(gomega.Equal(internal.ErrPasswordTooShort))
		})

		ginkgo.It("verifies the old password against a legacy plain credential", func() {
			err := service.ChangePassword("u-2", ChangePasswordDTO{
				OldPassword: "abc123",
				NewPassword: "new_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})
})
