package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_request_app/internal/core/ports/services"
	"github.com/SscSPs/budget_request_app/internal/dto"
	"github.com/SscSPs/budget_request_app/internal/export"
	"github.com/SscSPs/budget_request_app/internal/handlers"
	"github.com/SscSPs/budget_request_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock BudgetRequestService ---
type MockBudgetRequestService struct {
	mock.Mock
}

func (m *MockBudgetRequestService) GetBudgetRequest(ctx context.Context, actor domain.Principal, requestID string) (*domain.BudgetRequest, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetRequest), args.Error(1)
}

func (m *MockBudgetRequestService) ListBudgetRequests(ctx context.Context, actor domain.Principal, params dto.ListBudgetRequestsParams) (domain.Page[domain.BudgetRequest], error) {
	args := m.Called(ctx, actor, params)
	return args.Get(0).(domain.Page[domain.BudgetRequest]), args.Error(1)
}

func (m *MockBudgetRequestService) ExportBudgetRequests(ctx context.Context, actor domain.Principal, params dto.ListBudgetRequestsParams) ([]domain.BudgetRequest, error) {
	args := m.Called(ctx, actor, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetRequest), args.Error(1)
}

func (m *MockBudgetRequestService) GetStats(ctx context.Context, actor domain.Principal) (domain.RequestStats, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(domain.RequestStats), args.Error(1)
}

func (m *MockBudgetRequestService) ListStatuses(ctx context.Context) []dto.StatusInfoResponse {
	args := m.Called(ctx)
	return args.Get(0).([]dto.StatusInfoResponse)
}

func (m *MockBudgetRequestService) CreateBudgetRequest(ctx context.Context, actor domain.Principal, req dto.CreateBudgetRequestRequest) (*domain.BudgetRequest, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetRequest), args.Error(1)
}

func (m *MockBudgetRequestService) UpdateBudgetRequest(ctx context.Context, actor domain.Principal, requestID string, req dto.UpdateBudgetRequestRequest) (*domain.BudgetRequest, error) {
	args := m.Called(ctx, actor, requestID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetRequest), args.Error(1)
}

func (m *MockBudgetRequestService) DeleteBudgetRequest(ctx context.Context, actor domain.Principal, requestID string) error {
	args := m.Called(ctx, actor, requestID)
	return args.Error(0)
}

func (m *MockBudgetRequestService) TransitionStatus(ctx context.Context, actor domain.Principal, requestID string, req dto.UpdateStatusRequest) (*domain.BudgetRequest, error) {
	args := m.Called(ctx, actor, requestID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetRequest), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.BudgetRequestSvcFacade = (*MockBudgetRequestService)(nil)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidations(v); err != nil {
			panic(err)
		}
	}
}

// --- Test Suite Setup ---
type BudgetRequestHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockBudgetRequestService
	jwtSecret   string

	agent domain.Principal
	chef  domain.Principal
}

// generateTestToken creates a signed JWT carrying p.
func (suite *BudgetRequestHandlerTestSuite) generateTestToken(p domain.Principal) string {
	claims := middleware.Claims{
		Role:       string(p.Role),
		Department: p.Department,
		Name:       p.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    "budget-request-app",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *BudgetRequestHandlerTestSuite) SetupTest() {
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockService = new(MockBudgetRequestService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret, "budget-request-app"))
	handlers.RegisterBudgetRequestRoutes(v1, suite.mockService, nil)

	suite.agent = domain.Principal{UserID: "agent-1", Role: domain.RoleAgent, Department: "GI", DisplayName: "Moussa Ba"}
	suite.chef = domain.Principal{UserID: "chef-1", Role: domain.RoleChefDepartement, Department: "GI", DisplayName: "Awa Diop"}
}

func (suite *BudgetRequestHandlerTestSuite) do(method, path string, as domain.Principal, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(as))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *BudgetRequestHandlerTestSuite) decode(w *httptest.ResponseRecorder) (dto.APIResponse, map[string]any) {
	var env dto.APIResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	data, _ := env.Data.(map[string]any)
	return env, data
}

func sampleRequest(id string, status domain.RequestStatus) *domain.BudgetRequest {
	now := time.Date(2025, 5, 12, 14, 30, 0, 0, time.UTC)
	return &domain.BudgetRequest{
		ID:          id,
		OwnerID:     "agent-1",
		OwnerName:   "Moussa Ba",
		Department:  "GI",
		Title:       "Achat ordinateurs",
		Description: "Postes pour la salle TP",
		Amount:      decimal.NewFromInt(1421),
		Urgency:     domain.UrgencyMedium,
		Status:      status,
		Attachments: []string{},
		Items:       []domain.RequestItem{},
		Comments:    []domain.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     2,
	}
}

// --- Test Cases ---

func (suite *BudgetRequestHandlerTestSuite) TestCreateBudgetRequest_Success() {
	payload := dto.CreateBudgetRequestRequest{Title: "Achat ordinateurs", Description: "Postes", Amount: decimal.NewFromInt(1421)}
	created := sampleRequest(uuid.NewString(), domain.StatusDraft)
	suite.mockService.On("CreateBudgetRequest", mock.Anything, suite.agent, mock.MatchedBy(func(r dto.CreateBudgetRequestRequest) bool {
		return r.Title == "Achat ordinateurs" && r.Amount.Equal(decimal.NewFromInt(1421))
	})).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/budget-requests", suite.agent, payload)

	suite.Equal(http.StatusCreated, w.Code)
	env, data := suite.decode(w)
	suite.True(env.Success)
	suite.Equal(created.ID, data["id"])
	suite.Equal("draft", data["status"])
	suite.Equal("Brouillon", data["statusLabel"])
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *BudgetRequestHandlerTestSuite) TestCreateBudgetRequest_BindingErrors() {
	w := suite.do(http.MethodPost, "/api/v1/budget-requests", suite.agent, map[string]any{"description": "no title"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/budget-requests", suite.agent, map[string]any{"title": "t", "description": "d", "urgency": "asap"})
	suite.Equal(http.StatusBadRequest, w.Code)
	env, _ := suite.decode(w)
	suite.False(env.Success)

	suite.mockService.AssertNotCalled(suite.T(), "CreateBudgetRequest", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetRequestHandlerTestSuite) TestUpdateStatus_MapsDomainErrors() {
	id := uuid.NewString()
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{name: "invalid transition", err: fmt.Errorf("%w: draft -> executed", apperrors.ErrInvalidTransition), status: http.StatusBadRequest, msg: "status transition not allowed: draft -> executed"},
		{name: "forbidden", err: fmt.Errorf("%w: request belongs to another department", apperrors.ErrForbidden), status: http.StatusForbidden, msg: "forbidden: request belongs to another department"},
		{name: "not found", err: apperrors.ErrNotFound, status: http.StatusNotFound, msg: "resource not found"},
		{name: "conflict", err: apperrors.ErrConflict, status: http.StatusConflict, msg: "request was modified concurrently"},
		{name: "infrastructure", err: errors.New("pq: connection reset"), status: http.StatusInternalServerError, msg: "internal server error"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			suite.mockService.On("TransitionStatus", mock.Anything, suite.chef, id, dto.UpdateStatusRequest{Status: domain.StatusChefApproved}).
				Return(nil, tt.err).Once()

			w := suite.do(http.MethodPatch, "/api/v1/budget-requests/"+id+"/status", suite.chef, dto.UpdateStatusRequest{Status: domain.StatusChefApproved})

			suite.Equal(tt.status, w.Code)
			env, _ := suite.decode(w)
			suite.False(env.Success)
			suite.Equal(tt.msg, env.Error)
		})
	}
}

func (suite *BudgetRequestHandlerTestSuite) TestUpdateStatus_Success() {
	id := uuid.NewString()
	updated := sampleRequest(id, domain.StatusChefApproved)
	validator := "chef-1"
	updated.ValidatedBy = &validator
	suite.mockService.On("TransitionStatus", mock.Anything, suite.chef, id, dto.UpdateStatusRequest{Status: domain.StatusChefApproved, Comment: "ok"}).
		Return(updated, nil).Once()

	w := suite.do(http.MethodPatch, "/api/v1/budget-requests/"+id+"/status", suite.chef, map[string]string{"status": "chef_approved", "comment": "ok"})

	suite.Equal(http.StatusOK, w.Code)
	_, data := suite.decode(w)
	suite.Equal("chef_approved", data["status"])
	suite.Equal("chef-1", data["validatedBy"])
}

func (suite *BudgetRequestHandlerTestSuite) TestUpdateStatus_UnknownStatusRejectedByBinding() {
	id := uuid.NewString()
	w := suite.do(http.MethodPatch, "/api/v1/budget-requests/"+id+"/status", suite.chef, map[string]string{"status": "archived"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetRequestHandlerTestSuite) TestGetBudgetRequest_InvalidID() {
	w := suite.do(http.MethodGet, "/api/v1/budget-requests/not-a-uuid", suite.agent, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "GetBudgetRequest", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetRequestHandlerTestSuite) TestGetBudgetRequest_Success() {
	id := uuid.NewString()
	suite.mockService.On("GetBudgetRequest", mock.Anything, suite.agent, id).Return(sampleRequest(id, domain.StatusSubmitted), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/budget-requests/"+id, suite.agent, nil)

	suite.Equal(http.StatusOK, w.Code)
	_, data := suite.decode(w)
	suite.Equal(id, data["id"])
	suite.Equal("agent-1", data["agentId"])
}

func (suite *BudgetRequestHandlerTestSuite) TestListBudgetRequests() {
	page := domain.NewPage([]domain.BudgetRequest{*sampleRequest(uuid.NewString(), domain.StatusSubmitted)}, 2, 5, 6)
	suite.mockService.On("ListBudgetRequests", mock.Anything, suite.chef, mock.MatchedBy(func(p dto.ListBudgetRequestsParams) bool {
		return p.Page == 2 && p.Limit == 5 && p.Status == "submitted"
	})).Return(page, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/budget-requests?page=2&limit=5&status=submitted", suite.chef, nil)

	suite.Equal(http.StatusOK, w.Code)
	_, data := suite.decode(w)
	pagination := data["pagination"].(map[string]any)
	suite.EqualValues(6, pagination["total"])
	suite.EqualValues(2, pagination["totalPages"])
	suite.Len(data["data"], 1)
}

func (suite *BudgetRequestHandlerTestSuite) TestListBudgetRequests_InvalidStatusFilter() {
	w := suite.do(http.MethodGet, "/api/v1/budget-requests?status=archived", suite.chef, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *BudgetRequestHandlerTestSuite) TestUpdateBudgetRequest_NotEditable() {
	id := uuid.NewString()
	title := "Nouveau"
	suite.mockService.On("UpdateBudgetRequest", mock.Anything, suite.agent, id, dto.UpdateBudgetRequestRequest{Title: &title}).
		Return(nil, fmt.Errorf("%w: status is chef_approved", apperrors.ErrNotEditable)).Once()

	w := suite.do(http.MethodPut, "/api/v1/budget-requests/"+id, suite.agent, map[string]string{"title": title})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *BudgetRequestHandlerTestSuite) TestDeleteBudgetRequest() {
	id := uuid.NewString()
	suite.mockService.On("DeleteBudgetRequest", mock.Anything, suite.agent, id).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/budget-requests/"+id, suite.agent, nil)

	suite.Equal(http.StatusOK, w.Code)
	env, _ := suite.decode(w)
	suite.True(env.Success)
	suite.Equal("Budget request deleted", env.Message)
}

func (suite *BudgetRequestHandlerTestSuite) TestStatsAndStatuses() {
	stats := domain.NewRequestStats()
	stats.Add(domain.StatusChefReview, 3, decimal.NewFromInt(900))
	suite.mockService.On("GetStats", mock.Anything, suite.chef).Return(stats, nil).Once()
	suite.mockService.On("ListStatuses", mock.Anything).Return(dto.ToStatusInfoResponses(domain.DefaultStatusGraph())).Once()

	w := suite.do(http.MethodGet, "/api/v1/budget-requests/stats", suite.chef, nil)
	suite.Equal(http.StatusOK, w.Code)
	_, data := suite.decode(w)
	suite.EqualValues(3, data["pendingRequests"])

	w = suite.do(http.MethodGet, "/api/v1/budget-requests/statuses", suite.chef, nil)
	suite.Equal(http.StatusOK, w.Code)
	env, _ := suite.decode(w)
	suite.Len(env.Data, len(domain.AllStatuses))
}

func (suite *BudgetRequestHandlerTestSuite) TestExportBudgetRequests() {
	rows := []domain.BudgetRequest{*sampleRequest(uuid.NewString(), domain.StatusSubmitted)}
	suite.mockService.On("ExportBudgetRequests", mock.Anything, suite.agent, mock.Anything).Return(rows, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/budget-requests/export", suite.agent, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(export.ContentType, w.Header().Get("Content-Type"))
	suite.Contains(w.Header().Get("Content-Disposition"), ".xlsx")
	suite.Greater(w.Body.Len(), 0)
}

func (suite *BudgetRequestHandlerTestSuite) TestMissingToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/budget-requests", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

// --- Run Test Suite ---
func TestBudgetRequestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetRequestHandlerTestSuite))
}
