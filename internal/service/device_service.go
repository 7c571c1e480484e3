package service

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/internal/repository"
	"github.com/squid-app/squid-api/pkg/notification"
)

// DeviceService handles device registration and command dispatch
type DeviceService struct {
	devices    *repository.DeviceRepository
	users      *repository.UserRepository
	dispatcher *notification.Dispatcher
}

func NewDeviceService(
	devices *repository.DeviceRepository,
	users *repository.UserRepository,
	dispatcher *notification.Dispatcher,
) *DeviceService {
	return &DeviceService{
		devices:    devices,
		users:      users,
		dispatcher: dispatcher,
	}
}

// GetDevices returns the caller's devices
func (s *DeviceService) GetDevices(ctx context.Context, userID string) ([]model.Device, error) {
	devices, err := s.devices.GetDevices(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, model.NewAppError(model.ErrorCodeUserNotFound, model.MsgUserNotFound)
	}
	return devices, err
}

// AddDevice records the caller's profile, then registers the device.
// added is false when the caller already owns a device with the same push token.
func (s *DeviceService) AddDevice(ctx context.Context, identity *model.Identity, input model.NewDevice) (*model.Device, bool, error) {
	created, err := s.users.AddUser(ctx, identity)
	if err != nil {
		return nil, false, err
	}
	if created {
		log.WithField("user_id", identity.ID).Info("New user added")
	}

	device, added, err := s.devices.AddDevice(ctx, identity.ID, input)
	if errors.Is(err, repository.ErrDeviceLimitExceeded) {
		return nil, false, model.WrapAppError(model.ErrorCodeBadRequest, model.MsgDeviceLimitExceeded, err)
	}
	if err != nil {
		return nil, false, err
	}

	logger := log.WithFields(log.Fields{"user_id": identity.ID, "device_id": device.ID})
	if added {
		logger.Info("Device added")
	} else {
		logger.Info("User already has a device with the same push token")
	}
	return device, added, nil
}

// RemoveDevice deletes one of the caller's devices. Deleting a device that does
// not exist succeeds.
func (s *DeviceService) RemoveDevice(ctx context.Context, userID, deviceID string) error {
	removed, err := s.devices.RemoveDevice(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": userID, "device_id": deviceID, "removed": removed}).Info("Device removal")
	return nil
}

// SendURL pushes a URL to one of the caller's devices
func (s *DeviceService) SendURL(ctx context.Context, userID, deviceID, url string) error {
	device, err := s.devices.FindDevice(ctx, userID, deviceID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return model.NewAppError(model.ErrorCodeUserNotFound, model.MsgCommandUserNotFound)
	case errors.Is(err, repository.ErrDeviceNotFound):
		return model.NewAppError(model.ErrorCodeDeviceNotFound, model.MsgDeviceNotFound)
	case err != nil:
		return err
	}

	cmd := notification.Command{Type: notification.CommandTypeURL, Data: url}
	if err := s.dispatcher.SendCommand(ctx, device.GCMToken, cmd); err != nil {
		return err
	}

	log.WithFields(log.Fields{"user_id": userID, "device_id": deviceID}).Info("Command sent")
	return nil
}
