package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LogReportRequest is the body of POST /api/admin/logs. An empty date means
// today.
type LogReportRequest struct {
	Date string `json:"date"`
}

// AdminHandler serves /api/admin.
type AdminHandler struct {
	admin      domain.AdminService
	categories domain.CategoryService
	logger     *logger.Logger
}

func NewAdminHandler(admin domain.AdminService, categories domain.CategoryService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, categories: categories, logger: log.Named("AdminHTTPHandler")}
}

func (h *AdminHandler) HandleCreateCategories(w http.ResponseWriter, r *http.Request) {
	var payload []domain.NewCategory
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, h.logger, "CreateCategories", err)
		return
	}
	resp, err := h.categories.CreateCategories(r.Context(), payload, middleware.TokenFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, "CreateCategories", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, resp)
}

func (h *AdminHandler) HandleHits(w http.ResponseWriter, r *http.Request) {
	resp, err := h.admin.GetHitStatistics(r.Context(), middleware.TokenFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, "GetHitStatistics", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AdminHandler) HandleGenerateLog(w http.ResponseWriter, r *http.Request) {
	var req LogReportRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.logger, "GenerateLogReport", err)
			return
		}
	}
	resp, err := h.admin.GenerateLogReport(r.Context(), middleware.TokenFromContext(r.Context()), req.Date)
	if err != nil {
		writeError(w, h.logger, "GenerateLogReport", err)
		return
	}
	h.logger.Info("Log report requested", zap.String("task_id", resp.TaskID))
	writeJSON(w, h.logger, http.StatusAccepted, resp)
}

func (h *AdminHandler) HandleLogStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.admin.GetLogTaskStatus(r.Context(), middleware.TokenFromContext(r.Context()), chi.URLParam(r, "taskId"))
	if err != nil {
		writeError(w, h.logger, "GetLogTaskStatus", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AdminHandler) writeLog(w http.ResponseWriter, name string, content []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.log"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		h.logger.Error("Failed to write log file", zap.Error(err))
	}
}

func (h *AdminHandler) HandleDownloadLog(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")
	content, err := h.admin.DownloadGeneratedLog(r.Context(), middleware.TokenFromContext(r.Context()), taskID)
	if err != nil {
		writeError(w, h.logger, "DownloadGeneratedLog", err)
		return
	}
	h.writeLog(w, taskID, content)
}

func (h *AdminHandler) HandleDownloadArchive(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	content, err := h.admin.DownloadArchivedLog(r.Context(), middleware.TokenFromContext(r.Context()), date)
	if err != nil {
		writeError(w, h.logger, "DownloadArchivedLog", err)
		return
	}
	h.writeLog(w, date, content)
}
