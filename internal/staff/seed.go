package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/pos-core/pkg/auth"
)

// DefaultAccount describes an account created on first start
type DefaultAccount struct {
	Username    string
	DisplayName string
	Role        string
	Password    string
}

// Defaults returns the admin and cashier accounts every till starts with
func Defaults(adminPassword, cashierPassword string) []DefaultAccount {
	return []DefaultAccount{
		{Username: "admin", DisplayName: "Store manager", Role: RoleAdmin, Password: adminPassword},
		{Username: "cashier", DisplayName: "Cashier", Role: RoleCashier, Password: cashierPassword},
	}
}

// EnsureAccounts creates the missing default accounts and reports how many
// were created. Existing accounts keep their password.
func EnsureAccounts(ctx context.Context, repo Repository, defaults []DefaultAccount) (int, error) {
	created := 0
	for _, d := range defaults {
		_, err := repo.FindByUsername(ctx, d.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrAccountNotFound) {
			return created, err
		}

		hash, err := auth.HashPassword(d.Password)
		if err != nil {
			return created, err
		}
		account := &Account{
			Username:    d.Username,
			DisplayName: d.DisplayName,
			Password:    hash,
			Role:        d.Role,
			IsActive:    true,
		}
		if err := repo.Create(ctx, account); err != nil {
			return created, fmt.Errorf("failed to seed account %s: %w", d.Username, err)
		}
		created++
	}
	return created, nil
}
