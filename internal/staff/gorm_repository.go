package staff

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("staff-repository")

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM account repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// AutoMigrate creates the accounts table
func (r *GormRepository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&Account{}); err != nil {
		return fmt.Errorf("failed to migrate staff accounts: %w", err)
	}
	return nil
}

// Create inserts a new account
func (r *GormRepository) Create(ctx context.Context, account *Account) error {
	ctx, span := tracer.Start(ctx, "repository.CreateAccount",
		trace.WithAttributes(attribute.String("staff.username", account.Username)),
	)
	defer span.End()

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create account: %w", err)
	}
	span.SetAttributes(attribute.Int("staff.id", int(account.ID)))
	return nil
}

// FindByUsername retrieves an account by username
func (r *GormRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAccountByUsername",
		trace.WithAttributes(attribute.String("staff.username", username)),
	)
	defer span.End()

	var account Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &account, nil
}

// FindAll lists every account
func (r *GormRepository) FindAll(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	return accounts, nil
}
