package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/leadops-backend/internal/domain/aggregates"
	httpMW "github.com/yungbote/leadops-backend/internal/http/middleware"
	"github.com/yungbote/leadops-backend/internal/http/response"
	"github.com/yungbote/leadops-backend/internal/platform/apierr"
	"github.com/yungbote/leadops-backend/internal/platform/dbctx"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
	"github.com/yungbote/leadops-backend/internal/services"
)

type LeadHandler struct {
	log   *logger.Logger
	leads services.LeadService
}

func NewLeadHandler(log *logger.Logger, leads services.LeadService) *LeadHandler {
	return &LeadHandler{log: log.With("handler", "LeadHandler"), leads: leads}
}

// DELETE /api/leads/:id?strict=true
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_lead_id", err)
		return
	}

	in := services.DeleteLeadInput{
		LeadID:      leadID,
		RequestedBy: httpMW.RequestedBy(c),
	}
	if raw := strings.TrimSpace(c.Query("strict")); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_strict", err)
			return
		}
		in.RequireExisting = &strict
	}

	res, err := h.leads.DeleteLead(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, leadDeleteError(err), resultIfRan(res))
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// GET /api/leads/:id/deletion-preview
func (h *LeadHandler) PreviewDeletion(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_lead_id", err)
		return
	}
	res, err := h.leads.PreviewDeletion(c.Request.Context(), leadID)
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, leadDeleteError(err), resultIfRan(res))
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// GET /api/leads/:id/deletion-logs?limit=20
func (h *LeadHandler) ListDeletionLogs(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_lead_id", err)
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a non-negative integer"))
			return
		}
	}
	logs, err := h.leads.ListDeletionLogs(dbctx.Context{Ctx: c.Request.Context()}, leadID, limit)
	if err != nil {
		_ = c.Error(err)
		if domainagg.IsCode(err, domainagg.CodeValidation) {
			response.RespondError(c, http.StatusBadRequest, "invalid_lead_id", err)
			return
		}
		h.log.Error("list deletion logs failed", "lead_id", leadID, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "list_deletion_logs_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deletion_logs": logs})
}

// leadDeleteError maps aggregate error codes onto HTTP statuses.
func leadDeleteError(err error) *apierr.Error {
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return apierr.New(http.StatusBadRequest, "invalid_lead_id", err)
	case domainagg.CodeNotFound:
		return apierr.New(http.StatusNotFound, "lead_not_found", err)
	case domainagg.CodeConflict:
		return apierr.New(http.StatusConflict, "lead_purge_in_progress", err)
	case domainagg.CodeRetryable:
		return apierr.New(http.StatusServiceUnavailable, "lead_delete_aborted", err)
	case domainagg.CodePreconditionFailed, domainagg.CodeInternal:
		return apierr.New(http.StatusInternalServerError, "lead_delete_aborted", err)
	default:
		return apierr.As(err, "lead_delete_failed")
	}
}

// resultIfRan drops the result when the cascade never started.
func resultIfRan(res domainagg.DeleteLeadCascadeResult) any {
	if len(res.Steps) == 0 && !res.Cancelled {
		return nil
	}
	return res
}
