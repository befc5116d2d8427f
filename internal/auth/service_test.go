package auth_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/auth"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

// MockUserRepository implements auth.UserRepository for testing
type MockUserRepository struct {
	users map[string]*userDatamodel.User
	roles map[int64][]int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*userDatamodel.User),
		roles: make(map[int64][]int64),
	}
}

func (m *MockUserRepository) GetByUserName(_ context.Context, userName string) (*userDatamodel.User, error) {
	return m.users[userName], nil
}

func (m *MockUserRepository) GetByID(_ context.Context, userID int64) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) ActiveRoleIDs(_ context.Context, userID int64) ([]int64, error) {
	return m.roles[userID], nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo    *MockUserRepository
		tokens  *auth.JWTTokenGenerator
		service *auth.Service
		ctx     context.Context
	)

	hash := func(password string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		return string(h)
	}

	BeforeEach(func() {
		repo = NewMockUserRepository()
		tokens = auth.NewJWTTokenGenerator(
			"access-secret-for-tests-0123456789ab",
			"refresh-secret-for-tests-0123456789a",
			15*time.Minute,
			72*time.Hour,
		)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(repo, tokens, nil, bcrypt.MinCost, logger)
		ctx = context.Background()

		repo.users["alice"] = &userDatamodel.User{
			ID:           1,
			UserName:     "alice",
			PasswordHash: hash("s3cret"),
			AccountType:  int(internal.AccountTypeOperation),
			Status:       1,
		}
		repo.roles[1] = []int64{10, 11}
	})

	Describe("Authenticate", func() {
		It("should issue tokens for valid credentials", func() {
			got, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "s3cret"}, "127.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AccessToken).NotTo(BeEmpty())
			Expect(got.RefreshToken).NotTo(BeEmpty())
		})

		It("should embed the principal in the access token", func() {
			got, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "s3cret"}, "127.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			principal, err := tokens.VerifyAccessToken(got.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.UserID).To(Equal(int64(1)))
			Expect(principal.AccountType).To(Equal(internal.AccountTypeOperation))
			Expect(principal.RoleIDs).To(Equal([]int64{10, 11}))
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "nope"}, "127.0.0.1")
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("should reject an unknown user with the same error", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "mallory", Password: "s3cret"}, "127.0.0.1")
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("should reject missing fields before touching the repository", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice"}, "127.0.0.1")
			Expect(err).To(HaveOccurred())
			var vErr auth.ValidationError
			Expect(err).To(BeAssignableToTypeOf(vErr))
		})

		It("should reject locked accounts", func() {
			until := time.Now().Add(time.Hour)
			repo.users["alice"].LockedUntil = &until

			_, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "s3cret"}, "127.0.0.1")
			Expect(err).To(Equal(internal.ErrUserLocked))
		})

		It("should reject inactive accounts", func() {
			repo.users["alice"].Status = 0
			_, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "s3cret"}, "127.0.0.1")
			Expect(err).To(Equal(internal.ErrUserInactive))
		})

		It("should treat deleted accounts as unknown", func() {
			repo.users["alice"].Status = -1
			_, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "s3cret"}, "127.0.0.1")
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue fresh tokens for a valid refresh token", func() {
			first, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "s3cret"}, "127.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			second, err := service.RefreshTokens(ctx, auth.RefreshTokenDTO{RefreshToken: first.RefreshToken})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.AccessToken).NotTo(BeEmpty())
		})

		It("should refuse refresh for an account deactivated since login", func() {
			first, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "s3cret"}, "127.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			repo.users["alice"].Status = 0
			_, err = service.RefreshTokens(ctx, auth.RefreshTokenDTO{RefreshToken: first.RefreshToken})
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("should reject garbage tokens", func() {
			_, err := service.RefreshTokens(ctx, auth.RefreshTokenDTO{RefreshToken: "garbage"})
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("should reject an access token used as refresh token", func() {
			first, err := service.Authenticate(ctx, auth.LoginDTO{UserName: "alice", Password: "s3cret"}, "127.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RefreshTokens(ctx, auth.RefreshTokenDTO{RefreshToken: first.AccessToken})
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})
	})
})
