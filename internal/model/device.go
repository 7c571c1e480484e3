package model

import "time"

// MaxDevicesPerUser caps the number of devices a single user may register
const MaxDevicesPerUser = 10

// DeviceType identifies the client platform of a device
type DeviceType string

const (
	DeviceTypeAndroid DeviceType = "android"
	DeviceTypeChrome  DeviceType = "chrome"
)

// Device is a push-addressable client registered under a user
type Device struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	UserID     string     `json:"-" gorm:"size:255;not null;uniqueIndex:idx_devices_user_token,priority:1"`
	Name       string     `json:"name" gorm:"size:25;not null"`
	GCMToken   string     `json:"gcmToken" gorm:"column:gcm_token;size:512;not null;uniqueIndex:idx_devices_user_token,priority:2"`
	DeviceType DeviceType `json:"deviceType" gorm:"size:20;not null"`
	Position   int        `json:"-" gorm:"not null"` // insertion order within the user's list
	CreatedAt  time.Time  `json:"-"`
}

func (Device) TableName() string {
	return "devices"
}

// UserDevices is the parent row of a user's device list. It is created with the
// first device and outlives the removal of every device.
type UserDevices struct {
	UserID    string    `json:"userId" gorm:"primaryKey;size:255"`
	CreatedAt time.Time `json:"-"`
}

func (UserDevices) TableName() string {
	return "user_devices"
}

// NewDevice carries the client-supplied fields of a device registration
type NewDevice struct {
	Name       string
	GCMToken   string
	DeviceType DeviceType
}

// DeviceResponse is the client-facing view of a Device; the push token stays server side
type DeviceResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	DeviceType DeviceType `json:"deviceType"`
}

// ToResponse converts Device to DeviceResponse
func (d *Device) ToResponse() DeviceResponse {
	return DeviceResponse{
		ID:         d.ID,
		Name:       d.Name,
		DeviceType: d.DeviceType,
	}
}
