package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"sponsorengine/internal/delivery/http/helpers"
	"sponsorengine/internal/domain"
)

type LinkController struct {
	Logger  *slog.Logger
	Service domain.LinkService
	Nonces  domain.NonceVerifier
}

func NewLinkController(logger *slog.Logger, svc domain.LinkService, nonces domain.NonceVerifier) *LinkController {
	return &LinkController{
		Logger:  logger,
		Service: svc,
		Nonces:  nonces,
	}
}

// Create godoc
// @Summary Link a sponsor to an event directly
// @Description Creates a sponsor-event link without an EOI, applying the same capacity gate as an approval when a level is given.
// @Tags links
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param event_id formData string true "Event ID"
// @Param sponsor_id formData string true "Sponsor ID"
// @Param level_id formData string false "Level to assign"
// @Param _token formData string true "Anti-forgery token (link-manage)"
// @Success 201 {object} helpers.APIResponse "data contains the link"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or capacity_exhausted"
// @Router /sponsorship/links [post]
func (c *LinkController) Create(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionLinks) {
		return
	}
	eventID := helpers.FormString(r, "event_id")
	sponsorID := helpers.FormString(r, "sponsor_id")
	if eventID == "" || sponsorID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "event_id and sponsor_id are required")
		return
	}
	var levelID *string
	if v := helpers.FormString(r, "level_id"); v != "" {
		levelID = &v
	}
	link, err := c.Service.CreateLink(r.Context(), eventID, sponsorID, levelID)
	if err != nil {
		c.writeLinkError(w, r, err, "create link")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, link)
}

// Remove godoc
// @Summary Unlink a sponsor from an event
// @Description Removes the sponsor-event link and releases the assigned level's slot, if any.
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param event_id query string true "Event ID"
// @Param sponsor_id query string true "Sponsor ID"
// @Param _token query string true "Anti-forgery token (link-manage)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sponsorship/links [delete]
func (c *LinkController) Remove(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionLinks) {
		return
	}
	eventID := helpers.FormString(r, "event_id")
	sponsorID := helpers.FormString(r, "sponsor_id")
	if eventID == "" || sponsorID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "event_id and sponsor_id are required")
		return
	}
	if err := c.Service.RemoveLink(r.Context(), eventID, sponsorID); err != nil {
		c.writeLinkError(w, r, err, "remove link")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"event_id": eventID, "sponsor_id": sponsorID})
}

// List godoc
// @Summary List sponsor-event links
// @Description Lists links for an event (?event_id=) or for a sponsor (?sponsor_id=). Exactly one of the two is required.
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param event_id query string false "Event ID"
// @Param sponsor_id query string false "Sponsor ID"
// @Success 200 {object} helpers.APIResponse "data contains the links, newest first"
// @Router /sponsorship/links [get]
func (c *LinkController) List(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event_id")
	sponsorID := r.URL.Query().Get("sponsor_id")
	if (eventID == "") == (sponsorID == "") {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "exactly one of event_id or sponsor_id is required")
		return
	}
	var links []*domain.SponsorLink
	var err error
	if eventID != "" {
		links, err = c.Service.ListForEvent(r.Context(), eventID)
	} else {
		links, err = c.Service.ListForSponsor(r.Context(), sponsorID)
	}
	if err != nil {
		c.writeLinkError(w, r, err, "list links")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, links)
}

func (c *LinkController) writeLinkError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "link, level, sponsor, or event not found")
	case errors.Is(err, domain.ErrCapacityExhausted):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeCapacityExhausted, "sponsorship level is full")
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "sponsor is already linked to this event")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid input")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "op", op, "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
