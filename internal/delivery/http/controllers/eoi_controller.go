package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sponsorengine/internal/delivery/http/helpers"
	"sponsorengine/internal/delivery/http/middleware"
	"sponsorengine/internal/domain"
)

// Anti-forgery action families. Nonces issued for one family are not valid
// for another.
const (
	NonceActionSubmit = "eoi-submit"
	NonceActionReview = "eoi-review"
	NonceActionLevels = "level-manage"
	NonceActionLinks  = "link-manage"
)

// checkNonce validates the _token form field against the given action family
// and the authenticated user. On failure it writes a 401 JSON error and
// returns false.
func checkNonce(w http.ResponseWriter, r *http.Request, nonces domain.NonceVerifier, action string) bool {
	userID, _ := middleware.UserIDFromContext(r.Context())
	if !nonces.VerifyNonce(helpers.FormString(r, "_token"), action, userID) {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
		return false
	}
	return true
}

type EOIController struct {
	Logger  *slog.Logger
	Service domain.EOIService
	Nonces  domain.NonceVerifier
}

func NewEOIController(logger *slog.Logger, svc domain.EOIService, nonces domain.NonceVerifier) *EOIController {
	return &EOIController{
		Logger:  logger,
		Service: svc,
		Nonces:  nonces,
	}
}

// Submit godoc
// @Summary Submit an expression of interest
// @Description Creates a pending EOI for a sponsor and event. The disclosures field is an opaque JSON document passed through unexamined.
// @Tags eois
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param sponsor_id formData string true "Sponsor ID"
// @Param event_id formData string true "Event ID"
// @Param preferred_level formData string false "Preferred level label (free-form)"
// @Param disclosures formData string false "Opaque JSON disclosure document"
// @Param _token formData string true "Anti-forgery token (eoi-submit)"
// @Success 201 {object} helpers.APIResponse "data contains the created EOI"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (pair already has an EOI)"
// @Router /sponsorship/eois [post]
func (c *EOIController) Submit(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionSubmit) {
		return
	}
	sponsorID := helpers.FormString(r, "sponsor_id")
	eventID := helpers.FormString(r, "event_id")
	if sponsorID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "sponsor_id and event_id are required")
		return
	}
	var disclosures json.RawMessage
	if raw := helpers.FormString(r, "disclosures"); raw != "" {
		if !json.Valid([]byte(raw)) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "disclosures must be valid JSON")
			return
		}
		disclosures = json.RawMessage(raw)
	}
	eoi, err := c.Service.Submit(r.Context(), sponsorID, eventID, helpers.FormString(r, "preferred_level"), disclosures)
	if err != nil {
		c.writeEOIError(w, r, err, "submit eoi")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, eoi)
}

// ReviewResponse wraps a reviewed EOI with whether the call changed anything.
// Changed is false when the EOI was already in the target state.
// swagger:model ReviewResponse
type ReviewResponse struct {
	EOI     *domain.EOI `json:"eoi"`
	Changed bool        `json:"changed"`
}

// Approve godoc
// @Summary Approve an EOI
// @Description Approves the EOI, optionally assigning a sponsorship level. Approving an already-approved EOI is a no-op. A full level fails the whole transition.
// @Tags eois
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param eoiID path string true "EOI ID"
// @Param level_id formData string false "Level to assign"
// @Param _token formData string true "Anti-forgery token (eoi-review)"
// @Success 200 {object} helpers.APIResponse "data contains the EOI and whether it changed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exhausted or conflict"
// @Router /sponsorship/eois/{eoiID}/approve [post]
func (c *EOIController) Approve(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionReview) {
		return
	}
	eoiID := r.PathValue("eoiID")
	if eoiID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eoiID")
		return
	}
	reviewerID, _ := middleware.UserIDFromContext(r.Context())
	var levelID *string
	if v := helpers.FormString(r, "level_id"); v != "" {
		levelID = &v
	}
	eoi, changed, err := c.Service.Approve(r.Context(), eoiID, levelID, reviewerID)
	if err != nil {
		c.writeEOIError(w, r, err, "approve eoi")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReviewResponse{EOI: eoi, Changed: changed})
}

// Reject godoc
// @Summary Reject an EOI
// @Description Rejects the EOI. A previously approved EOI is fully reversed: its slot is released and the sponsor-event link removed.
// @Tags eois
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param eoiID path string true "EOI ID"
// @Param reason formData string false "Review notes"
// @Param _token formData string true "Anti-forgery token (eoi-review)"
// @Success 200 {object} helpers.APIResponse "data contains the EOI and whether it changed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sponsorship/eois/{eoiID}/reject [post]
func (c *EOIController) Reject(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionReview) {
		return
	}
	eoiID := r.PathValue("eoiID")
	if eoiID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eoiID")
		return
	}
	reviewerID, _ := middleware.UserIDFromContext(r.Context())
	eoi, changed, err := c.Service.Reject(r.Context(), eoiID, helpers.FormString(r, "reason"), reviewerID)
	if err != nil {
		c.writeEOIError(w, r, err, "reject eoi")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReviewResponse{EOI: eoi, Changed: changed})
}

// RequestInfo godoc
// @Summary Request more information for an EOI
// @Description Marks the EOI as info_requested and records the reviewer's message. No slot or link side effects.
// @Tags eois
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param eoiID path string true "EOI ID"
// @Param message formData string true "Message to the sponsor"
// @Param _token formData string true "Anti-forgery token (eoi-review)"
// @Success 200 {object} helpers.APIResponse "data contains the EOI"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sponsorship/eois/{eoiID}/request-info [post]
func (c *EOIController) RequestInfo(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionReview) {
		return
	}
	eoiID := r.PathValue("eoiID")
	if eoiID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eoiID")
		return
	}
	reviewerID, _ := middleware.UserIDFromContext(r.Context())
	eoi, err := c.Service.RequestInfo(r.Context(), eoiID, helpers.FormString(r, "message"), reviewerID)
	if err != nil {
		c.writeEOIError(w, r, err, "request info")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, eoi)
}

// BulkApply godoc
// @Summary Apply approve or reject across many EOIs
// @Description Applies the action to each EOI independently. Items already in the target state are skipped; failing items are reported without aborting the batch.
// @Tags eois
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param action formData string true "approve or reject"
// @Param eoi_ids formData []string true "EOI IDs (repeatable)"
// @Param _token formData string true "Anti-forgery token (eoi-review)"
// @Success 200 {object} helpers.APIResponse "data contains per-item outcomes and summary counts"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /sponsorship/eois/bulk [post]
func (c *EOIController) BulkApply(w http.ResponseWriter, r *http.Request) {
	if !helpers.ParseForm(w, r) {
		return
	}
	if !checkNonce(w, r, c.Nonces, NonceActionReview) {
		return
	}
	action := helpers.FormString(r, "action")
	ids := helpers.FormStrings(r, "eoi_ids")
	reviewerID, _ := middleware.UserIDFromContext(r.Context())
	result, err := c.Service.BulkApply(r.Context(), action, ids, reviewerID)
	if err != nil {
		c.writeEOIError(w, r, err, "bulk apply")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// Get godoc
// @Summary Fetch a single EOI
// @Tags eois
// @Produce json
// @Security BearerAuth
// @Param eoiID path string true "EOI ID"
// @Success 200 {object} helpers.APIResponse "data contains the EOI"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sponsorship/eois/{eoiID} [get]
func (c *EOIController) Get(w http.ResponseWriter, r *http.Request) {
	eoiID := r.PathValue("eoiID")
	if eoiID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eoiID")
		return
	}
	eoi, err := c.Service.GetEOI(r.Context(), eoiID)
	if err != nil {
		c.writeEOIError(w, r, err, "get eoi")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, eoi)
}

// ListForEvent godoc
// @Summary List EOIs for an event
// @Tags eois
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the EOIs, newest first"
// @Router /sponsorship/events/{eventID}/eois [get]
func (c *EOIController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	eois, err := c.Service.ListEventEOIs(r.Context(), eventID)
	if err != nil {
		c.writeEOIError(w, r, err, "list eois")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, eois)
}

func (c *EOIController) writeEOIError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "eoi, level, or party not found")
	case errors.Is(err, domain.ErrCapacityExhausted):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeCapacityExhausted, "sponsorship level is full")
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "conflicting sponsorship state")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid input")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "op", op, "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
