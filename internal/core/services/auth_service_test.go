package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mstephano/authgate/internal/apperrors"
	"github.com/mstephano/authgate/internal/core/domain"
	portssvc "github.com/mstephano/authgate/internal/core/ports/services"
	"github.com/mstephano/authgate/internal/core/services"
	"github.com/mstephano/authgate/internal/dto"
	"github.com/mstephano/authgate/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByResetToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

// --- Mock RefreshTokenRepository ---
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	var token *domain.RefreshToken
	if args.Get(0) != nil {
		token = args.Get(0).(*domain.RefreshToken)
	}
	return token, args.Error(1)
}

func (m *MockRefreshTokenRepository) SaveRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteRefreshTokensForUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Suite ---
// Repositories and the mail transport are mocked; token issuance and the
// reset service run for real against the test config so the issued JWTs and
// challenges behave like production ones.
type AuthServiceTestSuite struct {
	suite.Suite
	mockUserRepo    *MockUserRepository
	mockRefreshRepo *MockRefreshTokenRepository
	mockMailer      *MockMailSender
	tokenSvc        portssvc.TokenSvcFacade
	service         portssvc.AuthSvcFacade
}

func (suite *AuthServiceTestSuite) SetupTest() {
	cfg := testConfig()
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockRefreshRepo = new(MockRefreshTokenRepository)
	suite.mockMailer = new(MockMailSender)
	suite.tokenSvc = services.NewTokenService(cfg)
	resetSvc := services.NewPasswordResetService(cfg, suite.mockMailer)
	suite.service = services.NewAuthService(suite.mockUserRepo, suite.mockRefreshRepo, suite.tokenSvc, resetSvc)
}

func (suite *AuthServiceTestSuite) registeredUser(password string) *domain.User {
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)
	return &domain.User{
		UserID:       "user-1",
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: hash,
	}
}

// --- Register ---

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "alice").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "a@x.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		if user.Username != "alice" || user.Email != "a@x.com" || user.UserID == "" {
			return false
		}
		ok, err := utils.CheckPasswordHash("secret1", user.PasswordHash)
		return err == nil && ok
	})).Return(nil).Once()

	user, err := suite.service.Register(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.NotEqual("secret1", user.PasswordHash)
	suite.Nil(user.ResetPasswordToken)
	suite.Nil(user.ResetPasswordExpires)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRegister_UsernameTaken() {
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "alice", Email: "new@x.com", Password: "secret1"}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "alice").Return(suite.registeredUser("whatever"), nil).Once()

	user, err := suite.service.Register(ctx, req)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestRegister_EmailTaken() {
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "bob", Email: "a@x.com", Password: "secret1"}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "bob").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "a@x.com").Return(suite.registeredUser("whatever"), nil).Once()

	user, err := suite.service.Register(ctx, req)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AuthServiceTestSuite) TestRegister_DuplicateFromStoreConstraint() {
	// The check-then-insert race: both lookups miss but the DB constraint trips.
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "alice").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "a@x.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(apperrors.ErrDuplicate).Once()

	user, err := suite.service.Register(ctx, req)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AuthServiceTestSuite) TestRegister_ShortPassword() {
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "short"}

	user, err := suite.service.Register(ctx, req)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

// --- Login ---

func (suite *AuthServiceTestSuite) TestLogin_SuccessByUsername() {
	ctx := context.Background()
	user := suite.registeredUser("secret1")

	suite.mockUserRepo.On("FindUserByUsername", ctx, "alice").Return(user, nil).Once()
	suite.mockRefreshRepo.On("SaveRefreshToken", ctx, mock.AnythingOfType("domain.RefreshToken")).Return(nil).Once()

	pair, err := suite.service.Login(ctx, "alice", "secret1")

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.NotEmpty(pair.Token)
	suite.NotEmpty(pair.RefreshToken)
	suite.NotEqual(pair.Token, pair.RefreshToken)

	// Both tokens verify and carry the user ID.
	userID, err := suite.tokenSvc.VerifyToken(ctx, pair.Token)
	suite.Require().NoError(err)
	suite.Equal("user-1", userID)

	// The persisted row holds the digest of the refresh token, never the raw string.
	saved := suite.mockRefreshRepo.Calls[0].Arguments.Get(1).(domain.RefreshToken)
	suite.Equal(utils.HashRefreshToken(pair.RefreshToken), saved.TokenHash)
	suite.Equal("user-1", saved.UserID)
	suite.WithinDuration(pair.RefreshExpiresAt, saved.ExpiresAt, time.Second)

	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockRefreshRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLogin_SuccessByEmail() {
	ctx := context.Background()
	user := suite.registeredUser("secret1")

	suite.mockUserRepo.On("FindUserByUsername", ctx, "a@x.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "a@x.com").Return(user, nil).Once()
	suite.mockRefreshRepo.On("SaveRefreshToken", ctx, mock.AnythingOfType("domain.RefreshToken")).Return(nil).Once()

	pair, err := suite.service.Login(ctx, "a@x.com", "secret1")

	suite.Require().NoError(err)
	suite.NotEmpty(pair.Token)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownIdentifier() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByUsername", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	pair, err := suite.service.Login(ctx, "ghost", "secret1")

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	user := suite.registeredUser("secret1")

	suite.mockUserRepo.On("FindUserByUsername", ctx, "alice").Return(user, nil).Once()

	pair, err := suite.service.Login(ctx, "alice", "not-the-password")

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockRefreshRepo.AssertNotCalled(suite.T(), "SaveRefreshToken", mock.Anything, mock.Anything)
}

// --- Refresh ---

func (suite *AuthServiceTestSuite) issueRefreshToken(userID string) (string, time.Time) {
	token, expiry, err := suite.tokenSvc.GenerateRefreshToken(context.Background(), userID)
	suite.Require().NoError(err)
	return token, expiry
}

func (suite *AuthServiceTestSuite) TestRefresh_Success() {
	ctx := context.Background()
	refreshToken, expiry := suite.issueRefreshToken("user-1")

	suite.mockRefreshRepo.On("FindRefreshTokenByHash", ctx, utils.HashRefreshToken(refreshToken)).Return(&domain.RefreshToken{
		ID:        1,
		TokenHash: utils.HashRefreshToken(refreshToken),
		UserID:    "user-1",
		ExpiresAt: expiry,
	}, nil).Once()

	pair, err := suite.service.Refresh(ctx, refreshToken)

	suite.Require().NoError(err)
	suite.NotEmpty(pair.Token)
	suite.Empty(pair.RefreshToken) // not rotated

	userID, err := suite.tokenSvc.VerifyToken(ctx, pair.Token)
	suite.Require().NoError(err)
	suite.Equal("user-1", userID)
	suite.mockRefreshRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRefresh_MissingToken() {
	pair, err := suite.service.Refresh(context.Background(), "")

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrTokenMissing)
}

func (suite *AuthServiceTestSuite) TestRefresh_RevokedToken() {
	ctx := context.Background()
	refreshToken, _ := suite.issueRefreshToken("user-1")

	suite.mockRefreshRepo.On("FindRefreshTokenByHash", ctx, utils.HashRefreshToken(refreshToken)).Return(nil, apperrors.ErrNotFound).Once()

	pair, err := suite.service.Refresh(ctx, refreshToken)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestRefresh_ExpiredToken() {
	ctx := context.Background()

	// A token present in the store but past its embedded expiry.
	expired, err := utils.GenerateJWT("user-1", testConfig().JWTSecret, -time.Hour, testConfig().JWTIssuer)
	suite.Require().NoError(err)

	suite.mockRefreshRepo.On("FindRefreshTokenByHash", ctx, utils.HashRefreshToken(expired)).Return(&domain.RefreshToken{
		ID:        1,
		TokenHash: utils.HashRefreshToken(expired),
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}, nil).Once()

	pair, err := suite.service.Refresh(ctx, expired)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrTokenExpired)
}

func (suite *AuthServiceTestSuite) TestRefresh_TamperedToken() {
	ctx := context.Background()

	// Signed with a different secret: present in the store but unverifiable.
	tampered, err := utils.GenerateJWT("user-1", "attacker-secret", time.Hour, "authgate-test")
	suite.Require().NoError(err)

	suite.mockRefreshRepo.On("FindRefreshTokenByHash", ctx, utils.HashRefreshToken(tampered)).Return(&domain.RefreshToken{
		ID:        1,
		TokenHash: utils.HashRefreshToken(tampered),
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil).Once()

	pair, err := suite.service.Refresh(ctx, tampered)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrTokenInvalid)
}

func (suite *AuthServiceTestSuite) TestRefresh_SubjectMismatch() {
	ctx := context.Background()
	refreshToken, expiry := suite.issueRefreshToken("user-1")

	suite.mockRefreshRepo.On("FindRefreshTokenByHash", ctx, utils.HashRefreshToken(refreshToken)).Return(&domain.RefreshToken{
		ID:        1,
		TokenHash: utils.HashRefreshToken(refreshToken),
		UserID:    "someone-else",
		ExpiresAt: expiry,
	}, nil).Once()

	pair, err := suite.service.Refresh(ctx, refreshToken)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrTokenInvalid)
}

// --- Logout ---

func (suite *AuthServiceTestSuite) TestLogout_RevokesAllSessions() {
	ctx := context.Background()
	refreshToken, _ := suite.issueRefreshToken("user-1")

	suite.mockRefreshRepo.On("DeleteRefreshTokensForUser", ctx, "user-1").Return(int64(3), nil).Once()

	err := suite.service.Logout(ctx, refreshToken)

	suite.Require().NoError(err)
	suite.mockRefreshRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLogout_MissingTokenIsIdempotent() {
	err := suite.service.Logout(context.Background(), "")

	suite.Require().NoError(err)
	suite.mockRefreshRepo.AssertNotCalled(suite.T(), "DeleteRefreshTokensForUser", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLogout_GarbageTokenIsIdempotent() {
	err := suite.service.Logout(context.Background(), "not-a-token")

	suite.Require().NoError(err)
	suite.mockRefreshRepo.AssertNotCalled(suite.T(), "DeleteRefreshTokensForUser", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLogout_StoreFailurePropagates() {
	ctx := context.Background()
	refreshToken, _ := suite.issueRefreshToken("user-1")
	expectedErr := assert.AnError

	suite.mockRefreshRepo.On("DeleteRefreshTokensForUser", ctx, "user-1").Return(int64(0), expectedErr).Once()

	err := suite.service.Logout(ctx, refreshToken)

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
}

// --- ForgotPassword ---

func (suite *AuthServiceTestSuite) TestForgotPassword_Success() {
	ctx := context.Background()
	user := suite.registeredUser("secret1")

	var issuedToken string
	suite.mockUserRepo.On("FindUserByEmail", ctx, "a@x.com").Return(user, nil).Once()
	suite.mockUserRepo.On("SetResetToken", ctx, "user-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			issuedToken = args.Get(2).(string)
			expiresAt := args.Get(3).(time.Time)
			suite.Len(issuedToken, 40)
			suite.WithinDuration(time.Now().Add(time.Hour), expiresAt, time.Minute)
		}).Return(nil).Once()
	suite.mockMailer.On("Send", ctx, "a@x.com", "Password Reset", mock.MatchedBy(func(body string) bool {
		return issuedToken != "" && strings.Contains(body, issuedToken)
	})).Return(nil).Once()

	err := suite.service.ForgotPassword(ctx, "a@x.com")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockMailer.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestForgotPassword_UnknownEmail() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByEmail", ctx, "ghost@x.com").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ForgotPassword(ctx, "ghost@x.com")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SetResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestForgotPassword_DeliveryFailurePropagates() {
	ctx := context.Background()
	user := suite.registeredUser("secret1")
	expectedErr := assert.AnError

	suite.mockUserRepo.On("FindUserByEmail", ctx, "a@x.com").Return(user, nil).Once()
	suite.mockUserRepo.On("SetResetToken", ctx, "user-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockMailer.On("Send", ctx, "a@x.com", "Password Reset", mock.AnythingOfType("string")).Return(expectedErr).Once()

	err := suite.service.ForgotPassword(ctx, "a@x.com")

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
}

// --- ResetPassword ---

func (suite *AuthServiceTestSuite) userWithResetChallenge(token string, expiresAt time.Time) *domain.User {
	user := suite.registeredUser("old-password")
	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expiresAt
	return user
}

func (suite *AuthServiceTestSuite) TestResetPassword_Success() {
	ctx := context.Background()
	user := suite.userWithResetChallenge("reset-tok", time.Now().Add(30*time.Minute))

	suite.mockUserRepo.On("FindUserByResetToken", ctx, "reset-tok").Return(user, nil).Once()
	suite.mockUserRepo.On("UpdatePassword", ctx, "user-1", mock.MatchedBy(func(hash string) bool {
		ok, err := utils.CheckPasswordHash("new-secret", hash)
		return err == nil && ok
	})).Return(nil).Once()

	err := suite.service.ResetPassword(ctx, "reset-tok", "new-secret")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestResetPassword_UnknownToken() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByResetToken", ctx, "bogus").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ResetPassword(ctx, "bogus", "new-secret")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrResetTokenInvalid)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestResetPassword_ExpiredToken() {
	ctx := context.Background()
	user := suite.userWithResetChallenge("reset-tok", time.Now().Add(-time.Minute))

	suite.mockUserRepo.On("FindUserByResetToken", ctx, "reset-tok").Return(user, nil).Once()

	err := suite.service.ResetPassword(ctx, "reset-tok", "new-secret")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrResetTokenInvalid)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestResetPassword_ReplayAfterSuccess() {
	// After a successful reset the store no longer holds the token, so a
	// replay behaves exactly like an unknown token even before expiry.
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByResetToken", ctx, "reset-tok").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ResetPassword(ctx, "reset-tok", "another-secret")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrResetTokenInvalid)
}

func (suite *AuthServiceTestSuite) TestResetPassword_ShortPassword() {
	err := suite.service.ResetPassword(context.Background(), "reset-tok", "short")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByResetToken", mock.Anything, mock.Anything)
}

// --- Run Suite ---
func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
