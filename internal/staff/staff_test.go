package staff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/pkg/auth"
)

func seededRepo(t *testing.T) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository()
	created, err := EnsureAccounts(context.Background(), repo, Defaults("admin123", "cashier123"))
	require.NoError(t, err)
	require.Equal(t, 2, created)
	return repo
}

func TestEnsureAccounts_Idempotent(t *testing.T) {
	repo := seededRepo(t)

	created, err := EnsureAccounts(context.Background(), repo, Defaults("other", "other"))
	require.NoError(t, err)
	assert.Zero(t, created)

	accounts, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "admin", accounts[0].Username)
	assert.True(t, accounts[0].IsAdmin())
	assert.False(t, accounts[1].IsAdmin())
	assert.True(t, auth.CheckPassword(accounts[0].Password, "admin123"))
}

func TestLogin(t *testing.T) {
	auth.Configure("staff-test-secret", time.Hour)
	h := NewLoginHandler(seededRepo(t))
	ctx := context.Background()

	resp, err := h.Handle(ctx, LoginCommand{Username: " cashier ", Password: "cashier123"})
	require.NoError(t, err)
	assert.Equal(t, RoleCashier, resp.Account.Role)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "cashier", claims.Username)
	assert.Equal(t, RoleCashier, claims.Role)

	tests := []struct {
		name string
		cmd  LoginCommand
		err  error
	}{
		{name: "wrong password", cmd: LoginCommand{Username: "admin", Password: "nope"}, err: ErrInvalidCredentials},
		{name: "unknown user", cmd: LoginCommand{Username: "ghost", Password: "x"}, err: ErrInvalidCredentials},
		{name: "missing fields", cmd: LoginCommand{}, err: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	repo := NewMemoryRepository()
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &Account{Username: "temp", Password: hash, Role: RoleCashier}))

	_, err = NewLoginHandler(repo).Handle(context.Background(), LoginCommand{Username: "temp", Password: "pw"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}
