package http

import (
	"errors"
	"net/http"
	"strconv"

	"itnfit/pkg/logger"
	"itnfit/pkg/middleware"
	"itnfit/services/attendance/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	attendanceUseCase usecase.AttendanceUseCase
	logger            *logger.Logger
}

func NewAttendanceHandler(attendanceUseCase usecase.AttendanceUseCase, logger *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceUseCase: attendanceUseCase,
		logger:            logger,
	}
}

// CheckInRequest uses pointers so that a 0 coordinate is not mistaken for
// a missing one.
type CheckInRequest struct {
	QRCode    string   `json:"qr_code" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

// CheckIn godoc
// @Summary      Check in
// @Description  Record today's attendance after validating the QR code, location and opening hours
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CheckInRequest true "Scanned code and device location"
// @Success      201  {object}  usecase.CheckInResult
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]interface{}
// @Router       /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.attendanceUseCase.CheckIn(c.Request.Context(), userID, req.QRCode, *req.Latitude, *req.Longitude)
	if err != nil {
		var checkErr *usecase.CheckFailedError
		switch {
		case errors.As(err, &checkErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": checkErr.Error(), "check": checkErr.Result})
		case errors.Is(err, usecase.ErrAlreadyCheckedIn):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to check in user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check in"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Validate godoc
// @Summary      Validate check-in
// @Description  Run the QR, distance and opening hour checks without recording anything
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CheckInRequest true "Scanned code and device location"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /attendance/validate [post]
func (h *AttendanceHandler) Validate(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.attendanceUseCase.Validate(*req.Latitude, *req.Longitude, req.QRCode)
	c.JSON(http.StatusOK, gin.H{"ok": result.OK(), "check": result})
}

// GetHistory godoc
// @Summary      Attendance history
// @Description  List the authenticated member's check-ins, newest first
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of records (max 100)"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /attendance/history [get]
func (h *AttendanceHandler) GetHistory(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 30
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	attendances, total, err := h.attendanceUseCase.GetHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get attendance history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get attendance history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attendances": attendances,
		"count":       len(attendances),
		"total":       total,
		"offset":      offset,
	})
}
