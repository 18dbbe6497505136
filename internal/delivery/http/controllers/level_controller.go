package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"sponsorengine/internal/delivery/http/helpers"
	"sponsorengine/internal/domain"
)

type LevelController struct {
	Logger  *slog.Logger
	Service domain.LevelService
	Nonces  domain.NonceVerifier
}

func NewLevelController(logger *slog.Logger, svc domain.LevelService, nonces domain.NonceVerifier) *LevelController {
	return &LevelController{
		Logger:  logger,
		Service: svc,
		Nonces:  nonces,
	}
}

// Save godoc
// @Summary Create or update a sponsorship level
// @Description Without level_id, creates a level for event_id. With level_id, updates the named fields; omitted fields are unchanged. Sending an empty slots_total clears the cap (unlimited).
// @Tags levels
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param level_id formData string false "Level ID (update)"
// @Param event_id formData string false "Event ID (create)"
// @Param name formData string false "Name"
// @Param color formData string false "Display colour"
// @Param value formData number false "Monetary value"
// @Param slots_total formData integer false "Capacity; empty for unlimited"
// @Param recognition formData string false "Recognition text"
// @Param sort_order formData integer false "Sort order"
// @Param enabled formData boolean false "Enabled flag"
// @Param _token formData string true "Anti-forgery token (level-manage)"
// @Success 200 {object} helpers.APIResponse "data contains the saved level"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (cap below filled slots)"
// @Router /sponsorship/levels [post]
func (c *LevelController) Save(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionLevels) {
		return
	}
	fields, ok := parseLevelFields(r)
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "malformed numeric field")
		return
	}
	level, err := c.Service.SaveLevel(r.Context(), helpers.FormString(r, "level_id"), helpers.FormString(r, "event_id"), fields)
	if err != nil {
		c.writeLevelError(w, r, err, "save level")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, level)
}

func parseLevelFields(r *http.Request) (domain.LevelFields, bool) {
	fields := domain.LevelFields{
		Name:        helpers.FormStringPtr(r, "name"),
		Color:       helpers.FormStringPtr(r, "color"),
		Recognition: helpers.FormStringPtr(r, "recognition"),
	}
	var ok bool
	if fields.Value, ok = helpers.FormFloatPtr(r, "value"); !ok {
		return fields, false
	}
	if fields.SortOrder, ok = helpers.FormIntPtr(r, "sort_order"); !ok {
		return fields, false
	}
	if fields.Enabled, ok = helpers.FormBoolPtr(r, "enabled"); !ok {
		return fields, false
	}
	if slots, present := r.Form["slots_total"]; present {
		if len(slots) > 0 && slots[0] == "" {
			fields.ClearSlots = true
		} else {
			if fields.SlotsTotal, ok = helpers.FormIntPtr(r, "slots_total"); !ok {
				return fields, false
			}
		}
	}
	return fields, true
}

// Delete godoc
// @Summary Delete a sponsorship level
// @Description Refuses with a conflict when the level has filled slots or links still reference it.
// @Tags levels
// @Produce json
// @Security BearerAuth
// @Param levelID path string true "Level ID"
// @Param _token query string true "Anti-forgery token (level-manage)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (level in use)"
// @Router /sponsorship/levels/{levelID} [delete]
func (c *LevelController) Delete(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionLevels) {
		return
	}
	levelID := r.PathValue("levelID")
	if levelID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing levelID")
		return
	}
	if err := c.Service.DeleteLevel(r.Context(), levelID); err != nil {
		c.writeLevelError(w, r, err, "delete level")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"deleted": levelID})
}

// PopulateDefaults godoc
// @Summary Seed the default sponsorship levels for an event
// @Description Creates the fixed Gold/Silver/Bronze tiers. Conflicts when any level already exists for the event.
// @Tags levels
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param _token formData string true "Anti-forgery token (level-manage)"
// @Success 201 {object} helpers.APIResponse "data contains the seeded levels"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (levels already exist)"
// @Router /sponsorship/events/{eventID}/levels/defaults [post]
func (c *LevelController) PopulateDefaults(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionLevels) {
		return
	}
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	levels, err := c.Service.PopulateDefaults(r.Context(), eventID)
	if err != nil {
		c.writeLevelError(w, r, err, "populate default levels")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, levels)
}

// LevelWithAvailability pairs a level with its remaining capacity.
// AvailableSlots is -1 for an unlimited level.
// swagger:model LevelWithAvailability
type LevelWithAvailability struct {
	*domain.SponsorshipLevel
	AvailableSlots int `json:"available_slots"`
}

// ListForEvent godoc
// @Summary List sponsorship levels for an event
// @Description Returns the event's levels ordered by sort order, each with remaining capacity (-1 means unlimited).
// @Tags levels
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the levels"
// @Router /sponsorship/events/{eventID}/levels [get]
func (c *LevelController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	levels, err := c.Service.ListEventLevels(r.Context(), eventID)
	if err != nil {
		c.writeLevelError(w, r, err, "list levels")
		return
	}
	out := make([]LevelWithAvailability, 0, len(levels))
	for _, l := range levels {
		available := domain.UnlimitedSlots
		if l.SlotsTotal != nil {
			available = *l.SlotsTotal - l.SlotsFilled
			if available < 0 {
				available = 0
			}
		}
		out = append(out, LevelWithAvailability{SponsorshipLevel: l, AvailableSlots: available})
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

func (c *LevelController) writeLevelError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "level or event not found")
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "level is in use or already populated")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid input")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "op", op, "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
