package repository

import (
	"context"

	"stockswift/internal/infra"
	"stockswift/internal/model"

	"github.com/google/uuid"
)

// UserRepository defines the data access contract for users.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userRepo struct{ db *infra.Connector }

func NewUserRepository(db *infra.Connector) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(u).Error
}

// FindByEmail matches the email exactly as stored (case-sensitive).
func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	var u model.User
	err = db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	var u model.User
	err = db.WithContext(ctx).First(&u, id).Error
	return &u, err
}
