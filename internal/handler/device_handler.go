package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/squid-app/squid-api/internal/middleware"
	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/internal/service"
)

// DeviceHandler handles device and command endpoints
type DeviceHandler struct {
	deviceService *service.DeviceService
}

func NewDeviceHandler(deviceService *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// RegisterDeviceRoutes mounts the device endpoints under /devices behind authMW
func RegisterDeviceRoutes(api *gin.RouterGroup, h *DeviceHandler, authMW gin.HandlerFunc) {
	devices := api.Group("/devices")
	devices.Use(authMW)
	{
		devices.GET("", h.GetDevices)
		devices.POST("", h.AddDevice)
		devices.DELETE("/:deviceId", h.RemoveDevice)
		devices.POST("/:deviceId/commands", h.SendCommand)
	}
}

// GetDevices godoc
// @Summary List the caller's devices
// @Tags Devices
// @Produce json
// @Security GoogleAuth
// @Success 200 {array} model.DeviceResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /devices [get]
func (h *DeviceHandler) GetDevices(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	devices, err := h.deviceService.GetDevices(c.Request.Context(), identity.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]model.DeviceResponse, 0, len(devices))
	for i := range devices {
		resp = append(resp, devices[i].ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

// AddDevice godoc
// @Summary Register a device
// @Description Returns 302 with the existing device when the caller already registered the same push token
// @Tags Devices
// @Accept json
// @Produce json
// @Security GoogleAuth
// @Param body body model.AddDeviceRequest true "Add device request"
// @Success 200 {object} model.DeviceResponse
// @Success 302 {object} model.DeviceResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /devices [post]
func (h *DeviceHandler) AddDevice(c *gin.Context) {
	var req model.AddDeviceRequest
	if appErr := bindBody(c, &req); appErr != nil {
		respondError(c, appErr)
		return
	}

	device, added, err := h.deviceService.AddDevice(c.Request.Context(), middleware.GetIdentity(c), req.ToNewDevice())
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if !added {
		status = http.StatusFound
	}
	c.JSON(status, device.ToResponse())
}

// RemoveDevice godoc
// @Summary Remove a device
// @Tags Devices
// @Security GoogleAuth
// @Param deviceId path string true "Device ID"
// @Success 200
// @Failure 401 {object} model.ErrorResponse
// @Router /devices/{deviceId} [delete]
func (h *DeviceHandler) RemoveDevice(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	if err := h.deviceService.RemoveDevice(c.Request.Context(), identity.ID, c.Param("deviceId")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// SendCommand godoc
// @Summary Open a URL on a device
// @Tags Devices
// @Accept json
// @Security GoogleAuth
// @Param deviceId path string true "Device ID"
// @Param body body model.SendCommandRequest true "Command request"
// @Success 200
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /devices/{deviceId}/commands [post]
func (h *DeviceHandler) SendCommand(c *gin.Context) {
	var req model.SendCommandRequest
	if appErr := bindBody(c, &req); appErr != nil {
		respondError(c, appErr)
		return
	}

	identity := middleware.GetIdentity(c)
	if err := h.deviceService.SendURL(c.Request.Context(), identity.ID, c.Param("deviceId"), req.URL); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
