package model

// ========== Device DTOs ==========

type AddDeviceRequest struct {
	Name       string     `json:"name" validate:"required,max=25"`
	GCMToken   string     `json:"gcmToken" validate:"required,max=512"`
	DeviceType DeviceType `json:"deviceType" validate:"required,oneof=android chrome"`
}

// ToNewDevice converts the request into store input
func (r AddDeviceRequest) ToNewDevice() NewDevice {
	return NewDevice{
		Name:       r.Name,
		GCMToken:   r.GCMToken,
		DeviceType: r.DeviceType,
	}
}

// ========== Command DTOs ==========

type SendCommandRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// ========== Common ==========

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Time    string `json:"time"`
}
