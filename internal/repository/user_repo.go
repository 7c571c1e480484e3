package repository

import (
	"context"
	"errors"

	"github.com/squid-app/squid-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for User
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// AddUser inserts or merges the profile of an authenticated identity.
// Only non-empty identity fields are written, so a token lacking a field never
// erases a value stored from an earlier login. Reports whether the user was new.
func (r *UserRepository) AddUser(ctx context.Context, identity *model.Identity) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(model.NewUserFromIdentity(identity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			created = true
			return nil
		}

		// The row already existed, possibly inserted by a concurrent first login
		updates := profileUpdates(identity)
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&model.User{}).Where("user_id = ?", identity.ID).Updates(updates).Error
	})
	return created, err
}

// GetUser finds a user by ID
func (r *UserRepository) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// profileUpdates returns the columns an identity is allowed to overwrite
func profileUpdates(identity *model.Identity) map[string]interface{} {
	updates := map[string]interface{}{}
	if identity.Name != "" {
		updates["name"] = identity.Name
	}
	if identity.Picture != "" {
		updates["picture"] = identity.Picture
	}
	if identity.Email != "" {
		updates["email"] = identity.Email
	}
	if identity.Gender != "" {
		updates["gender"] = identity.Gender
	}
	return updates
}
