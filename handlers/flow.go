package handlers

import (
	"errors"
	"net/http"

	"venuebook/services/flow"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FlowHandler exposes the booking confirmation flow over HTTP.
type FlowHandler struct {
	Service flow.FlowService
	Logger  *zap.Logger
}

func NewFlowHandler(service flow.FlowService, logger *zap.Logger) *FlowHandler {
	return &FlowHandler{Service: service, Logger: logger}
}

type enterFlowRequest struct {
	VenueID       string `json:"venueId" binding:"required"`
	Date          string `json:"date" binding:"required"`
	StartMinute   int    `json:"startMinute"`
	DurationHours int    `json:"durationHours" binding:"required"`
}

// EnterFlow starts a booking flow for the requested slot.
func (h *FlowHandler) EnterFlow(c *gin.Context) {
	var req enterFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	snap, err := h.Service.Enter(c.Request.Context(), req.VenueID, req.Date, req.StartMinute, req.DurationHours)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetFlow returns the current snapshot of a flow.
func (h *FlowHandler) GetFlow(c *gin.Context) {
	snap, err := h.Service.Get(c.Param("flowID"))
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type stepRequest struct {
	Direction string `json:"direction" binding:"required"` // "next" or "back"
}

// Step moves the wizard forward or backward.
func (h *FlowHandler) Step(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	var err error
	var snap interface{}
	switch req.Direction {
	case "next":
		snap, err = h.Service.Next(c.Param("flowID"))
	case "back":
		snap, err = h.Service.Back(c.Param("flowID"))
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "direction must be next or back")
		return
	}
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type editScheduleRequest struct {
	Date          string `json:"date" binding:"required"`
	StartMinute   int    `json:"startMinute"`
	DurationHours int    `json:"durationHours" binding:"required"`
}

// EditSchedule changes the draft's date/time/duration from the review step.
func (h *FlowHandler) EditSchedule(c *gin.Context) {
	var req editScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	snap, err := h.Service.EditSchedule(c.Param("flowID"), req.Date, req.StartMinute, req.DurationHours)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type paymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

// SelectPaymentMethod records the instrument collected on the payment step.
func (h *FlowHandler) SelectPaymentMethod(c *gin.Context) {
	var req paymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	snap, err := h.Service.SelectPaymentMethod(c.Param("flowID"), req.Method)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// AcceptPrice acknowledges a price drift, making the new price the
// accepted baseline.
func (h *FlowHandler) AcceptPrice(c *gin.Context) {
	snap, err := h.Service.AcceptPriceChange(c.Param("flowID"))
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// RejectPrice declines a price drift, reverting to the accepted baseline.
func (h *FlowHandler) RejectPrice(c *gin.Context) {
	snap, err := h.Service.RejectPriceChange(c.Param("flowID"))
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Confirm triggers the guarded confirm action. An anonymous caller gets a
// 401 with the draft intact and must confirm again after signing in.
func (h *FlowHandler) Confirm(c *gin.Context) {
	token := c.GetString("authToken")
	snap, err := h.Service.Confirm(c.Request.Context(), c.Param("flowID"), token)
	if err != nil {
		var flowErr *flow.FlowError
		if errors.As(err, &flowErr) {
			// Error snapshots still carry the preserved draft and the
			// no-charge guarantee, so return them alongside the error.
			c.JSON(statusForFlowError(flowErr), gin.H{
				"error": flowErr.Message,
				"code":  flowErr.Code,
				"flow":  snap,
			})
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "confirm failed", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

// Alternatives hands the blocked draft's location/date/venue type to venue
// search and returns the candidates.
func (h *FlowHandler) Alternatives(c *gin.Context) {
	venues, err := h.Service.Alternatives(c.Request.Context(), c.Param("flowID"))
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alternatives": venues})
}

// CancelFlow tears the flow down and discards the draft.
func (h *FlowHandler) CancelFlow(c *gin.Context) {
	if err := h.Service.Cancel(c.Param("flowID")); err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

func (h *FlowHandler) respondFlowError(c *gin.Context, err error) {
	var flowErr *flow.FlowError
	if errors.As(err, &flowErr) {
		c.JSON(statusForFlowError(flowErr), gin.H{
			"error": flowErr.Message,
			"code":  flowErr.Code,
		})
		return
	}
	h.Logger.Error("flow handler error", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}

func statusForFlowError(err *flow.FlowError) int {
	switch err.Code {
	case "flowNotFound", "venueNotFound", "noActiveDraft":
		return http.StatusNotFound
	case "invalidSlot":
		return http.StatusBadRequest
	case "notAuthenticated":
		return http.StatusUnauthorized
	case "confirmInFlight", "priceDriftPending", "invalidStep", "scheduleLocked":
		return http.StatusConflict
	case "quoteUnavailable":
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
