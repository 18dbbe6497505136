package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"sponsorengine/internal/delivery/http/helpers"
	"sponsorengine/internal/domain"
)

type SponsorController struct {
	Logger  *slog.Logger
	Service domain.SponsorService
}

func NewSponsorController(logger *slog.Logger, svc domain.SponsorService) *SponsorController {
	return &SponsorController{
		Logger:  logger,
		Service: svc,
	}
}

// Search godoc
// @Summary Search sponsors by name or email
// @Description Autocomplete lookup. Requires at least 2 characters; returns at most 10 matches.
// @Tags sponsors
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query (min 2 characters)"
// @Success 200 {object} helpers.APIResponse "data contains matching sponsors"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (query too short)"
// @Router /sponsorship/sponsors/search [get]
func (c *SponsorController) Search(w http.ResponseWriter, r *http.Request) {
	sponsors, err := c.Service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "query must be at least 2 characters")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "op", "search sponsors", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sponsors)
}
