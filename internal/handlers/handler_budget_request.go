package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_request_app/internal/core/ports/services"
	"github.com/SscSPs/budget_request_app/internal/dto"
	"github.com/SscSPs/budget_request_app/internal/export"
	"github.com/SscSPs/budget_request_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// budgetRequestHandler handles HTTP requests related to budget requests.
type budgetRequestHandler struct {
	service portssvc.BudgetRequestSvcFacade
}

func newBudgetRequestHandler(svc portssvc.BudgetRequestSvcFacade) *budgetRequestHandler {
	return &budgetRequestHandler{service: svc}
}

// RegisterBudgetRequestRoutes registers the budget request routes on rg.
// exportLimit, when non-nil, runs in front of the export endpoint only.
func RegisterBudgetRequestRoutes(rg *gin.RouterGroup, svc portssvc.BudgetRequestSvcFacade, exportLimit gin.HandlerFunc) {
	h := newBudgetRequestHandler(svc)

	exportChain := []gin.HandlerFunc{h.exportBudgetRequests}
	if exportLimit != nil {
		exportChain = append([]gin.HandlerFunc{exportLimit}, exportChain...)
	}

	requests := rg.Group("/budget-requests")
	{
		requests.POST("", h.createBudgetRequest)
		requests.GET("", h.listBudgetRequests)
		requests.GET("/stats", h.getStats)
		requests.GET("/statuses", h.listStatuses)
		requests.GET("/export", exportChain...)
		requests.GET("/:id", h.getBudgetRequest)
		requests.PUT("/:id", h.updateBudgetRequest)
		requests.PATCH("/:id/status", h.updateStatus)
		requests.DELETE("/:id", h.deleteBudgetRequest)
	}
}

// principal returns the caller, answering 401 itself when none is present.
func principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, dto.Fail("Unauthorized"))
		return domain.Principal{}, false
	}
	return p, true
}

// requestID returns the :id path parameter, answering 400 itself when it is not a UUID.
func requestID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid budget request id"))
		return "", false
	}
	return id, true
}

// respondError maps a service error to its status and the public envelope.
func respondError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, dto.Fail(apperrors.PublicMessage(err)))
}

// createBudgetRequest godoc
// @Summary Create a budget request
// @Description Opens a new request owned by the caller, as a draft or directly submitted
// @Tags budget-requests
// @Accept  json
// @Produce  json
// @Param   request body dto.CreateBudgetRequestRequest true "Request details"
// @Success 201 {object} dto.APIResponse{data=dto.BudgetRequestResponse}
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Role may not create requests"
// @Failure 500 {object} dto.APIResponse "Failed to create request"
// @Security BearerAuth
// @Router /budget-requests [post]
func (h *budgetRequestHandler) createBudgetRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := principal(c)
	if !ok {
		return
	}

	var req dto.CreateBudgetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBudgetRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request format: "+err.Error()))
		return
	}

	created, err := h.service.CreateBudgetRequest(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to create budget request")
		return
	}
	c.JSON(http.StatusCreated, dto.OK(dto.ToBudgetRequestResponse(created)))
}

// listBudgetRequests godoc
// @Summary List budget requests
// @Description Lists the requests visible to the caller, newest first
// @Tags budget-requests
// @Produce  json
// @Param   page query int false "Page number (default 1)"
// @Param   limit query int false "Page size (default 10)"
// @Param   status query string false "Status"
// @Param   department query string false "Department"
// @Param   agentId query string false "Owner id"
// @Param   urgency query string false "Urgency"
// @Param   category query string false "Category"
// @Param   amountMin query string false "Minimum amount"
// @Param   amountMax query string false "Maximum amount"
// @Param   dateFrom query string false "Created on or after (RFC3339 or YYYY-MM-DD)"
// @Param   dateTo query string false "Created on or before (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.ListBudgetRequestsResponse}
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Failed to list requests"
// @Security BearerAuth
// @Router /budget-requests [get]
func (h *budgetRequestHandler) listBudgetRequests(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var params dto.ListBudgetRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid query parameters: "+err.Error()))
		return
	}

	page, err := h.service.ListBudgetRequests(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to list budget requests")
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.ToListBudgetRequestsResponse(page)))
}

// exportBudgetRequests godoc
// @Summary Export budget requests
// @Description Downloads the requests visible to the caller as an xlsx workbook. Accepts the list filters.
// @Tags budget-requests
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   status query string false "Status"
// @Param   department query string false "Department"
// @Success 200 {file} file
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 429 {object} dto.APIResponse "Too many exports"
// @Failure 500 {object} dto.APIResponse "Failed to export"
// @Security BearerAuth
// @Router /budget-requests/export [get]
func (h *budgetRequestHandler) exportBudgetRequests(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var params dto.ListBudgetRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid query parameters: "+err.Error()))
		return
	}

	list, err := h.service.ExportBudgetRequests(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to export budget requests")
		return
	}
	buf, err := export.WriteRequests(list)
	if err != nil {
		respondError(c, err, "Failed to render export workbook")
		return
	}

	filename := "demandes-budgetaires-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// getStats godoc
// @Summary Budget request statistics
// @Description Counts and amounts over the caller's scope
// @Tags budget-requests
// @Produce  json
// @Success 200 {object} dto.APIResponse{data=domain.RequestStats}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Failed to compute statistics"
// @Security BearerAuth
// @Router /budget-requests/stats [get]
func (h *budgetRequestHandler) getStats(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	stats, err := h.service.GetStats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to compute budget request stats")
		return
	}
	c.JSON(http.StatusOK, dto.OK(stats))
}

// listStatuses godoc
// @Summary List statuses
// @Description Every status with its display label and legal next statuses
// @Tags budget-requests
// @Produce  json
// @Success 200 {object} dto.APIResponse{data=[]dto.StatusInfoResponse}
// @Security BearerAuth
// @Router /budget-requests/statuses [get]
func (h *budgetRequestHandler) listStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, dto.OK(h.service.ListStatuses(c.Request.Context())))
}

// getBudgetRequest godoc
// @Summary Get a budget request
// @Tags budget-requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=dto.BudgetRequestResponse}
// @Failure 400 {object} dto.APIResponse "Invalid id"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not visible to the caller"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Security BearerAuth
// @Router /budget-requests/{id} [get]
func (h *budgetRequestHandler) getBudgetRequest(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}
	req, err := h.service.GetBudgetRequest(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to get budget request")
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.ToBudgetRequestResponse(req)))
}

// updateBudgetRequest godoc
// @Summary Edit a budget request
// @Description Changes the fields of a draft or submitted request. Items, when sent, replace the existing list.
// @Tags budget-requests
// @Accept  json
// @Produce  json
// @Param   id path string true "Request ID"
// @Param   request body dto.UpdateBudgetRequestRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.BudgetRequestResponse}
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Failure 409 {object} dto.APIResponse "Modified concurrently"
// @Failure 422 {object} dto.APIResponse "Request is no longer editable"
// @Security BearerAuth
// @Router /budget-requests/{id} [put]
func (h *budgetRequestHandler) updateBudgetRequest(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req dto.UpdateBudgetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request format: "+err.Error()))
		return
	}

	updated, err := h.service.UpdateBudgetRequest(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err, "Failed to update budget request")
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.ToBudgetRequestResponse(updated)))
}

// updateStatus godoc
// @Summary Change the status of a budget request
// @Description Moves the request along the approval chain, optionally with a comment
// @Tags budget-requests
// @Accept  json
// @Produce  json
// @Param   id path string true "Request ID"
// @Param   transition body dto.UpdateStatusRequest true "Target status and comment"
// @Success 200 {object} dto.APIResponse{data=dto.BudgetRequestResponse}
// @Failure 400 {object} dto.APIResponse "Transition not allowed"
// @Failure 403 {object} dto.APIResponse "Role may not drive this transition"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Failure 409 {object} dto.APIResponse "Modified concurrently"
// @Security BearerAuth
// @Router /budget-requests/{id}/status [patch]
func (h *budgetRequestHandler) updateStatus(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request format: "+err.Error()))
		return
	}

	updated, err := h.service.TransitionStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err, "Failed to change budget request status")
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.ToBudgetRequestResponse(updated)))
}

// deleteBudgetRequest godoc
// @Summary Delete a draft budget request
// @Tags budget-requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Failure 422 {object} dto.APIResponse "Only drafts can be deleted"
// @Security BearerAuth
// @Router /budget-requests/{id} [delete]
func (h *budgetRequestHandler) deleteBudgetRequest(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBudgetRequest(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "Failed to delete budget request")
		return
	}
	c.JSON(http.StatusOK, dto.OKMessage("Budget request deleted"))
}
