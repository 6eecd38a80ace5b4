package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"itnfit/pkg/event"
	"itnfit/pkg/jwt"
	"itnfit/pkg/logger"
	"itnfit/pkg/middleware"
	"itnfit/services/points/internal/entity"
	"itnfit/services/points/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	memberID  = "0b7e5c1a-2f3d-4e6a-8b9c-1d2e3f4a5b6c"
	requestID = "6f1c2a8e-3b4d-4c5e-9f60-7a8b9c0d1e2f"
)

// MockPointsUseCase is a mock implementation of PointsUseCase
type MockPointsUseCase struct {
	mock.Mock
}

func (m *MockPointsUseCase) GetBalance(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockPointsUseCase) GetHistory(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Transaction), args.Error(1)
}

func (m *MockPointsUseCase) Earn(ctx context.Context, userID string, amount int, description string) (*entity.Transaction, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockPointsUseCase) EarnWithReference(ctx context.Context, userID string, amount int, description, reference string) (*entity.Transaction, error) {
	args := m.Called(ctx, userID, amount, description, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockPointsUseCase) CreateUsageRequest(ctx context.Context, userID, userName string, amount int) (*entity.UsageRequest, error) {
	args := m.Called(ctx, userID, userName, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UsageRequest), args.Error(1)
}

func (m *MockPointsUseCase) GetUsageRequest(ctx context.Context, requestID string) (*entity.UsageRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UsageRequest), args.Error(1)
}

func (m *MockPointsUseCase) ListPendingRequests(ctx context.Context, userID string) ([]*entity.UsageRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.UsageRequest), args.Error(1)
}

func (m *MockPointsUseCase) LookupPendingRequest(ctx context.Context, code string) (*entity.UsageRequest, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UsageRequest), args.Error(1)
}

func (m *MockPointsUseCase) ConfirmUsage(ctx context.Context, code, staffID string) (*entity.Transaction, error) {
	args := m.Called(ctx, code, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockPointsUseCase) CancelRequest(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockPointsUseCase) Subscribe(handler func(event.Event)) func() {
	args := m.Called(handler)
	return args.Get(0).(func())
}

var _ usecase.PointsUseCase = (*MockPointsUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func asUser(userID, role, name string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
		c.Set(middleware.ContextUserName, name)
		next(c)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetBalance_Success(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.GET("/points/balance", asUser("user-1", jwt.RoleMember, "Kim", handler.GetBalance))

	mockUseCase.On("GetBalance", mock.Anything, "user-1").Return(2450, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/points/balance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2450), decode(t, w)["points"])
	mockUseCase.AssertExpectations(t)
}

func TestGetBalance_Unauthorized(t *testing.T) {
	handler := NewPointsHandler(new(MockPointsUseCase), logger.NewNop())

	router := setupTestRouter()
	router.GET("/points/balance", handler.GetBalance)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/points/balance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetBalance_InternalErrorHidesMessage(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.GET("/points/balance", asUser("user-1", jwt.RoleMember, "", handler.GetBalance))

	mockUseCase.On("GetBalance", mock.Anything, "user-1").Return(0, errors.New("connection refused"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/points/balance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGetHistory_ClampsPaging(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.GET("/points/history", asUser("user-1", jwt.RoleMember, "", handler.GetHistory))

	history := []*entity.Transaction{
		{ID: "tx-2", Amount: -500, Type: entity.TransactionTypeUse},
		{ID: "tx-1", Amount: 2450, Type: entity.TransactionTypeEarn},
	}
	mockUseCase.On("GetHistory", mock.Anything, "user-1", 50, 10).Return(history, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/points/history?limit=1000&offset=10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])
	mockUseCase.AssertExpectations(t)
}

func TestEarn_InvalidAmount(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.POST("/points/earn", asUser("staff-1", jwt.RoleStaff, "", handler.Earn))

	mockUseCase.On("Earn", mock.Anything, memberID, -5, "oops").Return(nil, usecase.ErrInvalidAmount)

	body, _ := json.Marshal(map[string]interface{}{"user_id": memberID, "amount": -5, "description": "oops"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/points/earn", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestEarn_Success(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.POST("/points/earn", asUser("staff-1", jwt.RoleStaff, "", handler.Earn))

	mockUseCase.On("Earn", mock.Anything, memberID, 100, "Attendance").
		Return(&entity.Transaction{ID: "tx-1", UserID: memberID, Amount: 100, BalanceAfter: 100}, nil)

	body, _ := json.Marshal(map[string]interface{}{"user_id": memberID, "amount": 100, "description": "Attendance"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/points/earn", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tx-1", decode(t, w)["id"])
}

func TestCreateUsageRequest_UsesProfileName(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.POST("/points/usage-requests", asUser("user-1", jwt.RoleMember, "Kim", handler.CreateUsageRequest))

	created := &entity.UsageRequest{
		ID:               requestID,
		UserID:           "user-1",
		UserName:         "Kim",
		Amount:           500,
		VerificationCode: "AB12CD",
		Status:           entity.UsageRequestPending,
		ExpiresAt:        time.Now().Add(5 * time.Minute),
	}
	mockUseCase.On("CreateUsageRequest", mock.Anything, "user-1", "Kim", 500).Return(created, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/points/usage-requests", bytes.NewBufferString(`{"amount":500}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "AB12CD", decode(t, w)["verification_code"])
	mockUseCase.AssertExpectations(t)
}

func TestCreateUsageRequest_InsufficientBalance(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.POST("/points/usage-requests", asUser("user-1", jwt.RoleMember, "Kim", handler.CreateUsageRequest))

	mockUseCase.On("CreateUsageRequest", mock.Anything, "user-1", "Lee", 9999).Return(nil, usecase.ErrInsufficientBalance)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/points/usage-requests", bytes.NewBufferString(`{"amount":9999,"user_name":"Lee"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, usecase.ErrInsufficientBalance.Error(), decode(t, w)["error"])
}

func TestCreateUsageRequest_MissingAmount(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.POST("/points/usage-requests", asUser("user-1", jwt.RoleMember, "Kim", handler.CreateUsageRequest))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/points/usage-requests", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "CreateUsageRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUsageRequest_OtherMemberGets404(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.GET("/points/usage-requests/:id", asUser("user-2", jwt.RoleMember, "", handler.GetUsageRequest))

	mockUseCase.On("GetUsageRequest", mock.Anything, requestID).
		Return(&entity.UsageRequest{ID: requestID, UserID: "user-1", Status: entity.UsageRequestPending}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/points/usage-requests/"+requestID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUsageRequest_StaffSeesAny(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.GET("/points/usage-requests/:id", asUser("staff-1", jwt.RoleStaff, "", handler.GetUsageRequest))

	mockUseCase.On("GetUsageRequest", mock.Anything, requestID).
		Return(&entity.UsageRequest{ID: requestID, UserID: "user-1", Status: entity.UsageRequestCompleted}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/points/usage-requests/"+requestID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["status"])
}

func TestCancelUsageRequest_OwnerOnly(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.DELETE("/points/usage-requests/:id", asUser("user-2", jwt.RoleMember, "", handler.CancelUsageRequest))

	mockUseCase.On("GetUsageRequest", mock.Anything, requestID).
		Return(&entity.UsageRequest{ID: requestID, UserID: "user-1", Status: entity.UsageRequestPending}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/points/usage-requests/"+requestID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockUseCase.AssertNotCalled(t, "CancelRequest", mock.Anything, mock.Anything)
}

func TestCancelUsageRequest_Success(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.DELETE("/points/usage-requests/:id", asUser("user-1", jwt.RoleMember, "", handler.CancelUsageRequest))

	mockUseCase.On("GetUsageRequest", mock.Anything, requestID).
		Return(&entity.UsageRequest{ID: requestID, UserID: "user-1", Status: entity.UsageRequestPending}, nil)
	mockUseCase.On("CancelRequest", mock.Anything, requestID).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/points/usage-requests/"+requestID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestLookupByCode_Expired(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.GET("/points/usage-requests/code/:code", asUser("staff-1", jwt.RoleStaff, "", handler.LookupByCode))

	mockUseCase.On("LookupPendingRequest", mock.Anything, "AB12CD").Return(nil, usecase.ErrRequestExpired)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/points/usage-requests/code/AB12CD", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGone, w.Code)
}

func TestConfirmUsage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "unknown code", err: usecase.ErrRequestNotFound, wantStatus: http.StatusNotFound},
		{name: "expired", err: usecase.ErrRequestExpired, wantStatus: http.StatusGone},
		{name: "balance spent", err: usecase.ErrInsufficientBalance, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := new(MockPointsUseCase)
			handler := NewPointsHandler(mockUseCase, logger.NewNop())

			router := setupTestRouter()
			router.POST("/points/usage-requests/code/:code/confirm", asUser("staff-1", jwt.RoleStaff, "", handler.ConfirmUsage))

			if tt.err != nil {
				mockUseCase.On("ConfirmUsage", mock.Anything, "AB12CD", "staff-1").Return(nil, tt.err)
			} else {
				mockUseCase.On("ConfirmUsage", mock.Anything, "AB12CD", "staff-1").
					Return(&entity.Transaction{ID: "tx-9", Amount: -500, BalanceAfter: 1950}, nil)
			}

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/points/usage-requests/code/AB12CD/confirm", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			mockUseCase.AssertExpectations(t)
		})
	}
}

func TestStaffRoutesRejectMembers(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.POST("/points/usage-requests/code/:code/confirm", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "user-1")
		c.Set(middleware.ContextUserRole, jwt.RoleMember)
	}, middleware.RequireRole(jwt.RoleStaff), handler.ConfirmUsage)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/points/usage-requests/code/AB12CD/confirm", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockUseCase.AssertNotCalled(t, "ConfirmUsage", mock.Anything, mock.Anything, mock.Anything)
}

func TestUsageRequestRoutes_MalformedIDIsNotFound(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.GET("/points/usage-requests/:id", asUser("user-1", jwt.RoleMember, "", handler.GetUsageRequest))
	router.DELETE("/points/usage-requests/:id", asUser("user-1", jwt.RoleMember, "", handler.CancelUsageRequest))

	for _, method := range []string{"GET", "DELETE"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(method, "/points/usage-requests/not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}
	mockUseCase.AssertNotCalled(t, "GetUsageRequest", mock.Anything, mock.Anything)
	mockUseCase.AssertNotCalled(t, "CancelRequest", mock.Anything, mock.Anything)
}

func TestEarn_MalformedUserID(t *testing.T) {
	mockUseCase := new(MockPointsUseCase)
	handler := NewPointsHandler(mockUseCase, logger.NewNop())

	router := setupTestRouter()
	router.POST("/points/earn", asUser("staff-1", jwt.RoleStaff, "", handler.Earn))

	body, _ := json.Marshal(map[string]interface{}{"user_id": "user-1", "amount": 100, "description": "Attendance"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/points/earn", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Earn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
