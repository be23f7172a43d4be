package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
)

// LookupHandler serves the location hierarchy and the category tree.
type LookupHandler struct {
	locations  domain.LocationService
	categories domain.CategoryService
	logger     *logger.Logger
}

func NewLookupHandler(locations domain.LocationService, categories domain.CategoryService, log *logger.Logger) *LookupHandler {
	return &LookupHandler{locations: locations, categories: categories, logger: log.Named("LookupHTTPHandler")}
}

func (h *LookupHandler) HandleRegions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.locations.ListRegions(r.Context())
	if err != nil {
		writeError(w, h.logger, "ListRegions", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *LookupHandler) HandleDistricts(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.logger, "ListDistricts", err)
		return
	}
	resp, err := h.locations.ListDistricts(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ListDistricts", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *LookupHandler) HandleCities(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.logger, "ListCities", err)
		return
	}
	resp, err := h.locations.ListCities(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ListCities", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *LookupHandler) HandleResolveCity(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.logger, "ResolveCity", err)
		return
	}
	resp, err := h.locations.ResolveCity(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ResolveCity", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *LookupHandler) HandleCategoryTree(w http.ResponseWriter, r *http.Request) {
	resp, err := h.categories.ListCategoriesAsTree(r.Context())
	if err != nil {
		writeError(w, h.logger, "ListCategoriesAsTree", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
