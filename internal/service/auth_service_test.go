package service_test

import (
	"context"
	"testing"

	"github.com/dom/videotube/internal/repository/postgres"
	"github.com/dom/videotube/internal/service"
	"github.com/dom/videotube/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*service.AuthService, *testutil.TestDB) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := service.NewTokenService(service.KeysFromConfig(testutil.TestConfig(t)))
	return service.NewAuthService(repos.User, tokens), testDB
}

func TestAuthService_Login(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   func(username, email, password string) service.LoginInput
		wantErr error
	}{
		{
			name: "by username",
			input: func(username, _, password string) service.LoginInput {
				return service.LoginInput{Username: username, Password: password}
			},
		},
		{
			name: "by email",
			input: func(_, email, password string) service.LoginInput {
				return service.LoginInput{Email: email, Password: password}
			},
		},
		{
			name: "username is case insensitive",
			input: func(username, _, password string) service.LoginInput {
				return service.LoginInput{Username: "  " + username + "  ", Password: password}
			},
		},
		{
			name: "missing identifier",
			input: func(_, _, password string) service.LoginInput {
				return service.LoginInput{Password: password}
			},
			wantErr: service.ErrCredentialsRequired,
		},
		{
			name: "unknown user",
			input: func(_, _, password string) service.LoginInput {
				return service.LoginInput{Username: "nobody", Password: password}
			},
			wantErr: service.ErrUserNotFound,
		},
		{
			name: "wrong password",
			input: func(username, _, _ string) service.LoginInput {
				return service.LoginInput{Username: username, Password: "wrong-password"}
			},
			wantErr: service.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			user, password := testutil.NewUserBuilder().WithUsername("Alice").Build(t, testDB.DB)

			result, err := authService.Login(ctx, tt.input("ALICE", user.Email, password))

			stored := loadUser(t, testDB, user.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stored.RefreshToken, "failed login must not touch the session")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "alice", result.User.Username)
			assert.Empty(t, result.User.Password)
			assert.Nil(t, result.User.RefreshToken)
			assert.NotEmpty(t, result.AccessToken)
			require.NotNil(t, stored.RefreshToken)
			assert.Equal(t, result.RefreshToken, *stored.RefreshToken)
		})
	}
}

func TestAuthService_RefreshRotation(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login, err := authService.Login(ctx, service.LoginInput{Username: user.Username, Password: password})
	require.NoError(t, err)

	rotated, err := authService.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)
	assert.NotEmpty(t, rotated.AccessToken)

	stored := loadUser(t, testDB, user.ID)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, rotated.RefreshToken, *stored.RefreshToken)

	// The superseded token is single use.
	_, err = authService.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrStaleRefreshToken)

	// The current one still works.
	_, err = authService.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshRejects(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login, err := authService.Login(ctx, service.LoginInput{Username: user.Username, Password: password})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty token", token: "", wantErr: service.ErrRefreshTokenRequired},
		{name: "garbage", token: "not-a-jwt", wantErr: service.ErrInvalidToken},
		{name: "access token presented as refresh", token: login.AccessToken, wantErr: service.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Refresh(ctx, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login, err := authService.Login(ctx, service.LoginInput{Username: user.Username, Password: password})
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, user.ID))
	assert.Nil(t, loadUser(t, testDB, user.ID).RefreshToken)

	// Logging out twice is harmless.
	require.NoError(t, authService.Logout(ctx, user.ID))

	_, err = authService.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrStaleRefreshToken)

	err = authService.Logout(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestAuthService_Authenticate(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login, err := authService.Login(ctx, service.LoginInput{Username: user.Username, Password: password})
	require.NoError(t, err)

	got, err := authService.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.Password)
	assert.Nil(t, got.RefreshToken)

	_, err = authService.Authenticate(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidAccessToken)

	testDB.Truncate(t)
	_, err = authService.Authenticate(ctx, login.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidAccessToken)
}
