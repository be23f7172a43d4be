package handler

import (
	"net/http"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.uber.org/zap"
)

// AdHandler serves /api/ads.
type AdHandler struct {
	ads    domain.AdvertisementService
	logger *logger.Logger
}

func NewAdHandler(ads domain.AdvertisementService, log *logger.Logger) *AdHandler {
	return &AdHandler{ads: ads, logger: log.Named("AdHTTPHandler")}
}

func (h *AdHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	criteria, err := domain.ParseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, "ListAdvertisements", err)
		return
	}
	page, err := intQuery(r, "page", 0)
	if err != nil {
		writeError(w, h.logger, "ListAdvertisements", err)
		return
	}
	size, err := intQuery(r, "size", 0)
	if err != nil {
		writeError(w, h.logger, "ListAdvertisements", err)
		return
	}
	resp, err := h.ads.ListAdvertisements(r.Context(), criteria, page, size)
	if err != nil {
		writeError(w, h.logger, "ListAdvertisements", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AdHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.logger, "GetAdvertisement", err)
		return
	}
	resp, err := h.ads.GetAdvertisement(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "GetAdvertisement", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// adImages reads the "images" files. The optional "previewIndex" field marks
// one of them as preview; "clearImages=true" with no files removes all images.
func adImages(r *http.Request) ([]domain.ImageUpload, error) {
	if !isMultipart(r) {
		return nil, nil
	}
	uploads, err := formFiles(r, "images")
	if err != nil {
		return nil, err
	}
	if raw := r.FormValue("previewIndex"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 || idx >= len(uploads) {
			return nil, invalid("previewIndex is out of range")
		}
		uploads[idx].Preview = true
	}
	if uploads == nil && r.FormValue("clearImages") == "true" {
		uploads = []domain.ImageUpload{}
	}
	return uploads, nil
}

func (h *AdHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var payload domain.AdvertisementPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, h.logger, "CreateAdvertisement", err)
		return
	}
	images, err := adImages(r)
	if err != nil {
		writeError(w, h.logger, "CreateAdvertisement", err)
		return
	}
	resp, err := h.ads.CreateAdvertisement(r.Context(), payload, images, middleware.TokenFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, "CreateAdvertisement", err)
		return
	}
	h.logger.Info("Advertisement created via HTTP", zap.Int64("ad_id", resp.ID))
	writeJSON(w, h.logger, http.StatusCreated, resp)
}

func (h *AdHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.logger, "UpdateAdvertisement", err)
		return
	}
	var payload domain.AdvertisementPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, h.logger, "UpdateAdvertisement", err)
		return
	}
	images, err := adImages(r)
	if err != nil {
		writeError(w, h.logger, "UpdateAdvertisement", err)
		return
	}
	resp, err := h.ads.UpdateAdvertisement(r.Context(), id, payload, images, middleware.TokenFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, "UpdateAdvertisement", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AdHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.logger, "DeleteAdvertisement", err)
		return
	}
	if err := h.ads.DeleteAdvertisement(r.Context(), id, middleware.TokenFromContext(r.Context())); err != nil {
		writeError(w, h.logger, "DeleteAdvertisement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
