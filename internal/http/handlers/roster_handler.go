// Roster HTTP handlers.
//
//   - GET   /roster               (list records, ?active=true)
//   - POST  /roster/upload        (admin, multipart CSV)
//   - GET   /roster/imports       (admin, recent upload summaries)
//   - PATCH /roster/{id}          (admin, activate/deactivate)
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/http/middleware"
	"github.com/tbourn/go-celebrations-backend/internal/services"
	"github.com/tbourn/go-celebrations-backend/internal/utils"
)

// maxUploadBytes caps roster CSV uploads.
const maxUploadBytes = 1 << 20

// RosterListResponse wraps the roster listing.
type RosterListResponse struct {
	Records []domain.RosterRecord `json:"records"`
	Total   int                   `json:"total"`
}

// RosterImportsResponse wraps recent imports, newest first.
type RosterImportsResponse struct {
	Imports []domain.RosterImport `json:"imports"`
}

// UpdateRosterRequest is the PATCH /roster/{id} body.
type UpdateRosterRequest struct {
	Active *bool `json:"active" validate:"required" example:"false"`
}

// ListRoster godoc
// @ID          listRoster
// @Summary     List roster records
// @Tags        Roster
// @Produce     json
//
// @Param       active  query  bool  false  "Only active records"  default(false)
//
// @Success     200  {object}  handlers.RosterListResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad query"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /roster [get]
func (h *Handlers) ListRoster(c *gin.Context) {
	activeOnly, valid := utils.Bool(c.Query("active"), false)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "active must be true or false")
		return
	}
	recs, err := h.Celebrations.Roster(c.Request.Context(), activeOnly)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list roster")
		return
	}
	ok(c, http.StatusOK, RosterListResponse{Records: recs, Total: len(recs)})
}

// UploadRoster godoc
// @ID          uploadRoster
// @Summary     Import a roster CSV
// @Description Upserts records by (name, type). Columns: name, type, date (MM-DD), optional year and spouse. The whole file is rejected when any row is invalid.
// @Tags        Roster
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       file  formData  file  true  "CSV file"
//
// @Success     200  {object}  services.ImportResult
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or invalid file"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /roster/upload [post]
func (h *Handlers) UploadRoster(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field \"file\" is required")
		return
	}
	if fh.Size > maxUploadBytes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read upload")
		return
	}
	defer f.Close()

	res, err := h.Roster.ImportCSV(c.Request.Context(), fh.Filename, f)
	switch {
	case errors.Is(err, services.ErrCSVInvalid):
		fail(c, http.StatusBadRequest, ErrCodeCSVInvalid, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "import failed")
		return
	}
	middleware.LoggerFrom(c).Info().
		Str("file", res.Filename).
		Int("processed", res.RecordsProcessed).
		Int("added", res.RecordsAdded).
		Int("updated", res.RecordsUpdated).
		Msg("roster imported")
	ok(c, http.StatusOK, res)
}

// ListRosterImports godoc
// @ID          listRosterImports
// @Summary     Recent roster uploads
// @Tags        Roster
// @Produce     json
// @Security    BearerAuth
//
// @Param       limit  query  int  false  "Max items"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.RosterImportsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /roster/imports [get]
func (h *Handlers) ListRosterImports(c *gin.Context) {
	items, err := h.Roster.Imports(c.Request.Context(), utils.Limit(c.Query("limit"), 20, 100))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list imports")
		return
	}
	ok(c, http.StatusOK, RosterImportsResponse{Imports: items})
}

// UpdateRoster godoc
// @ID          updateRoster
// @Summary     Activate or deactivate a roster record
// @Tags        Roster
// @Accept      json
// @Security    BearerAuth
//
// @Param       id    path  int  true  "Record id"
// @Param       body  body  handlers.UpdateRosterRequest  true  "New state"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown record"
// @Failure     422  {object}  handlers.ValidationErrorResponse  "Invalid body"
// @Router      /roster/{id} [patch]
func (h *Handlers) UpdateRoster(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	var body UpdateRosterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		unprocessable(c, bodyDecodeDetail(err))
		return
	}
	if details := validationDetails(body); details != nil {
		unprocessable(c, details)
		return
	}
	err = h.Celebrations.SetActive(c.Request.Context(), uint(id), *body.Active)
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "roster record not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "update failed")
	default:
		noContent(c)
	}
}
