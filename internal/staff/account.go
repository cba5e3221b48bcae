package staff

import (
	"context"
	"errors"
	"time"
)

// Role types
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is deactivated")
)

// Account is an operator allowed to sign in at the till
type Account struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"not null"`
	Password    string    `json:"-" gorm:"not null"`
	Role        string    `json:"role" gorm:"not null;default:'cashier'"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Account) TableName() string {
	return "staff_accounts"
}

// IsAdmin checks if the operator may manage the catalog and books
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Repository defines the contract for account storage
type Repository interface {
	Create(ctx context.Context, account *Account) error
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindAll(ctx context.Context) ([]Account, error)
}
