package handlers

import (
	"net/http"

	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services"
)

// BannerHandler отдаёт баннеры витрины.
type BannerHandler struct {
	banners BannerProvider
	log     *logger.Logger
}

// NewBannerHandler создаёт обработчик баннеров.
func NewBannerHandler(banners BannerProvider, log *logger.Logger) *BannerHandler {
	return &BannerHandler{banners: banners, log: log}
}

// BannersResponse оборачивает список баннеров.
type BannersResponse struct {
	Banners []models.Banner `json:"banners"`
}

// List обрабатывает GET /api/banners?position=top|mid|bottom.
func (h *BannerHandler) List(w http.ResponseWriter, r *http.Request) {
	position, err := services.ParseBannerPosition(r.URL.Query().Get("position"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	banners, err := h.banners.List(r.Context(), position)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load banners")
		return
	}
	if banners == nil {
		banners = []models.Banner{}
	}

	writeJSONResponse(w, http.StatusOK, BannersResponse{Banners: banners})
}
