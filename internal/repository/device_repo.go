package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/squid-app/squid-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRepository handles database operations for a user's device list.
// It is the only writer of the user_devices and devices tables.
type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// AddDevice registers a device for a user, creating the user's device list on first use.
// Registration is idempotent on the push token: if the user already owns a device with
// the same token, that device is returned with added=false whatever its name or type.
func (r *DeviceRepository) AddDevice(ctx context.Context, userID string, input model.NewDevice) (*model.Device, bool, error) {
	var (
		device *model.Device
		added  bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner := model.UserDevices{UserID: userID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&owner).Error; err != nil {
			return err
		}

		// Serializes concurrent adds for the same user
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Take(&owner).Error; err != nil {
			return err
		}

		var devices []model.Device
		if err := tx.Where("user_id = ?", userID).Order("position").Find(&devices).Error; err != nil {
			return err
		}

		for i := range devices {
			if devices[i].GCMToken == input.GCMToken {
				device = &devices[i]
				return nil
			}
		}

		if len(devices) >= model.MaxDevicesPerUser {
			return ErrDeviceLimitExceeded
		}

		position := 0
		if n := len(devices); n > 0 {
			position = devices[n-1].Position + 1
		}

		device = &model.Device{
			ID:         uuid.NewString(),
			UserID:     userID,
			Name:       input.Name,
			GCMToken:   input.GCMToken,
			DeviceType: input.DeviceType,
			Position:   position,
		}
		if err := tx.Create(device).Error; err != nil {
			return err
		}
		added = true
		return nil
	})

	// The unique (user_id, gcm_token) index caught a concurrent registration
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, findErr := r.findByToken(ctx, userID, input.GCMToken)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return device, added, nil
}

// GetDevices returns a user's devices in insertion order.
// ErrUserNotFound means the user never registered a device, which is distinct
// from a user whose list is empty.
func (r *DeviceRepository) GetDevices(ctx context.Context, userID string) ([]model.Device, error) {
	db := r.db.WithContext(ctx)
	if err := r.ensureOwner(db, userID); err != nil {
		return nil, err
	}

	devices := []model.Device{}
	if err := db.Where("user_id = ?", userID).Order("position").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// RemoveDevice deletes a user's device. Missing users and devices are not errors;
// the result reports whether anything was removed.
func (r *DeviceRepository) RemoveDevice(ctx context.Context, userID, deviceID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, deviceID).
		Delete(&model.Device{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindDevice returns a device owned by a user
func (r *DeviceRepository) FindDevice(ctx context.Context, userID, deviceID string) (*model.Device, error) {
	db := r.db.WithContext(ctx)
	if err := r.ensureOwner(db, userID); err != nil {
		return nil, err
	}

	var device model.Device
	err := db.Where("user_id = ? AND id = ?", userID, deviceID).Take(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// CountDevices returns how many devices a user has registered
func (r *DeviceRepository) CountDevices(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Device{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *DeviceRepository) ensureOwner(db *gorm.DB, userID string) error {
	var owner model.UserDevices
	err := db.Where("user_id = ?", userID).Take(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (r *DeviceRepository) findByToken(ctx context.Context, userID, gcmToken string) (*model.Device, error) {
	var device model.Device
	err := r.db.WithContext(ctx).Where("user_id = ? AND gcm_token = ?", userID, gcmToken).Take(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}
