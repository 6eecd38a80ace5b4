package http

import (
	"errors"
	"net/http"
	"strconv"

	"itnfit/pkg/jwt"
	"itnfit/pkg/logger"
	"itnfit/pkg/middleware"
	"itnfit/services/points/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointsHandler struct {
	pointsUseCase usecase.PointsUseCase
	logger        *logger.Logger
}

func NewPointsHandler(pointsUseCase usecase.PointsUseCase, logger *logger.Logger) *PointsHandler {
	return &PointsHandler{
		pointsUseCase: pointsUseCase,
		logger:        logger,
	}
}

type EarnRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	Amount      int    `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type CreateUsageRequestBody struct {
	Amount   int    `json:"amount" binding:"required"`
	UserName string `json:"user_name"`
}

// writeError maps ledger errors to HTTP statuses. Unknown errors are logged
// and reported as 500 without their message.
func (h *PointsHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidAmount), errors.Is(err, usecase.ErrInvalidUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrRequestExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Points request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// GetBalance godoc
// @Summary      Get point balance
// @Description  Get the point balance of the authenticated member
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /points/balance [get]
func (h *PointsHandler) GetBalance(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := h.pointsUseCase.GetBalance(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "points": balance})
}

// GetHistory godoc
// @Summary      Get point history
// @Description  Get the transactions of the authenticated member, newest first
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of transactions (max 100)"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /points/history [get]
func (h *PointsHandler) GetHistory(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 50
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	transactions, err := h.pointsUseCase.GetHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "count": len(transactions)})
}

// Earn godoc
// @Summary      Award points
// @Description  Credit points to a member. Staff only.
// @Tags         points
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body EarnRequest true "Earn request"
// @Success      201  {object}  entity.Transaction
// @Failure      400  {object}  map[string]string
// @Router       /points/earn [post]
func (h *PointsHandler) Earn(c *gin.Context) {
	var req EarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction, err := h.pointsUseCase.Earn(c.Request.Context(), req.UserID, req.Amount, req.Description)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// CreateUsageRequest godoc
// @Summary      Request point usage
// @Description  Create a pending usage request and get its verification code
// @Tags         points
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateUsageRequestBody true "Usage request"
// @Success      201  {object}  entity.UsageRequest
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /points/usage-requests [post]
func (h *PointsHandler) CreateUsageRequest(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body CreateUsageRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := body.UserName
	if name == "" {
		name = c.GetString(middleware.ContextUserName)
	}

	req, err := h.pointsUseCase.CreateUsageRequest(c.Request.Context(), userID, usecase.DisplayName(name, userID), body.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// ListUsageRequests godoc
// @Summary      List pending usage requests
// @Description  List the authenticated member's pending usage requests
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /points/usage-requests [get]
func (h *PointsHandler) ListUsageRequests(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requests, err := h.pointsUseCase.ListPendingRequests(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// GetUsageRequest godoc
// @Summary      Get usage request
// @Description  Get a usage request by id. Members see their own, staff see any.
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Usage request ID"
// @Success      200  {object}  entity.UsageRequest
// @Failure      404  {object}  map[string]string
// @Router       /points/usage-requests/{id} [get]
func (h *PointsHandler) GetUsageRequest(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if !isRequestID(c.Param("id")) {
		h.writeError(c, usecase.ErrRequestNotFound)
		return
	}

	req, err := h.pointsUseCase.GetUsageRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if req.UserID != userID && !isStaff(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": usecase.ErrRequestNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, req)
}

// CancelUsageRequest godoc
// @Summary      Cancel usage request
// @Description  Cancel one of the authenticated member's pending usage requests
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Usage request ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /points/usage-requests/{id} [delete]
func (h *PointsHandler) CancelUsageRequest(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	requestID := c.Param("id")
	if !isRequestID(requestID) {
		h.writeError(c, usecase.ErrRequestNotFound)
		return
	}

	req, err := h.pointsUseCase.GetUsageRequest(c.Request.Context(), requestID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if req.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only cancel your own requests"})
		return
	}

	if err := h.pointsUseCase.CancelRequest(c.Request.Context(), requestID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usage request cancelled", "id": requestID})
}

// LookupByCode godoc
// @Summary      Look up usage request by code
// @Description  Show the pending request behind a verification code. Staff only.
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Verification code"
// @Success      200  {object}  entity.UsageRequest
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Router       /points/usage-requests/code/{code} [get]
func (h *PointsHandler) LookupByCode(c *gin.Context) {
	req, err := h.pointsUseCase.LookupPendingRequest(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// ConfirmUsage godoc
// @Summary      Confirm point usage
// @Description  Redeem the pending request behind a verification code. Staff only.
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Verification code"
// @Success      200  {object}  entity.Transaction
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Router       /points/usage-requests/code/{code}/confirm [post]
func (h *PointsHandler) ConfirmUsage(c *gin.Context) {
	staffID := c.GetString(middleware.ContextUserID)

	transaction, err := h.pointsUseCase.ConfirmUsage(c.Request.Context(), c.Param("code"), staffID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

func isStaff(c *gin.Context) bool {
	return c.GetString(middleware.ContextUserRole) == jwt.RoleStaff
}

// isRequestID rejects ids the uuid column could never hold.
func isRequestID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
