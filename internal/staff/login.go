package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tair/pos-core/pkg/auth"
	"github.com/tair/pos-core/pkg/logger"
)

// LoginCommand represents the command to sign an operator in
type LoginCommand struct {
	Username string
	Password string
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

// LoginHandler handles operator login command
type LoginHandler struct {
	repo Repository
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(repo Repository) *LoginHandler {
	return &LoginHandler{repo: repo}
}

// Handle executes the login command. Unknown usernames and wrong passwords
// both yield ErrInvalidCredentials.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResponse, error) {
	username := strings.TrimSpace(cmd.Username)
	if username == "" || cmd.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	account, err := h.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			logger.Warn(ctx).Str("username", username).Msg("Login for unknown operator")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrAccountDisabled
	}
	if !auth.CheckPassword(account.Password, cmd.Password) {
		logger.Warn(ctx).Str("username", username).Msg("Login with wrong password")
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(account.ID, account.Username, account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	logger.Info(ctx).Str("username", username).Str("role", account.Role).Msg("Operator signed in")
	return &LoginResponse{Token: token, Account: account}, nil
}
