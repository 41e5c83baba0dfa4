// Package store holds the gorm repositories behind the credential and report stores.
package store

import (
	"context" // Request scoped queries
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"report_portal/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// UserRepository reads and provisions users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository wraps a gorm handle
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns up to two users with the given username so callers
// can detect duplicates without loading the whole table.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Limit(2).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: find user by username: %w", domain.ErrDatabase, err)
	}
	return users, nil
}

// FindByID loads one user
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find user %d: %w", domain.ErrDatabase, id, err)
	}
	return &user, nil
}

// ListClients returns every client-role user ordered by name
func (r *UserRepository) ListClients(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("role = ?", domain.RoleClient).Order("name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: list clients: %w", domain.ErrDatabase, err)
	}
	return users, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("%w: create user: %w", domain.ErrDatabase, err)
	}
	return nil
}
