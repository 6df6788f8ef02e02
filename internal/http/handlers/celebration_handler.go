// Celebration and dispatch HTTP handlers.
//
//   - GET  /celebrations/today       (records due today, business timezone)
//   - GET  /celebrations/{date}      (records for an MM-DD date)
//   - POST /celebrations/send        (admin, run dispatch now)
//   - GET  /celebrations/deliveries  (admin, delivery log for a date)
//   - GET  /scheduler/status
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/services"
)

// CelebrationItem is one due record with its computed milestone.
type CelebrationItem struct {
	ID          uint    `json:"id" example:"7"`
	Name        string  `json:"name" example:"Ann"`
	EventType   string  `json:"event_type" example:"birthday"`
	EventDate   string  `json:"event_date" example:"03-15"`
	Year        *int    `json:"year,omitempty" example:"1990"`
	Spouse      *string `json:"spouse,omitempty"`
	AgeOrYears  int     `json:"age_or_years,omitempty" example:"35"`
	Description string  `json:"description" example:"Ann's birthday (turning 35)"`
}

// CelebrationsResponse lists celebrations for one date.
type CelebrationsResponse struct {
	Date         string            `json:"date" example:"2025-03-15"`
	Count        int               `json:"count"`
	Celebrations []CelebrationItem `json:"celebrations"`
}

// DeliveriesResponse lists delivery attempts for one date, oldest first.
type DeliveriesResponse struct {
	Date       string                    `json:"date" example:"2025-03-15"`
	Deliveries []domain.DeliveryLogEntry `json:"deliveries"`
}

func (h *Handlers) describeAll(recs []domain.RosterRecord, today string, day func(domain.RosterRecord) services.Celebration) CelebrationsResponse {
	items := make([]CelebrationItem, 0, len(recs))
	for _, r := range recs {
		cel := day(r)
		items = append(items, CelebrationItem{
			ID:          r.ID,
			Name:        r.Name,
			EventType:   r.EventType,
			EventDate:   r.EventDate,
			Year:        r.Year,
			Spouse:      r.Spouse,
			AgeOrYears:  cel.AgeOrYears,
			Description: cel.Text(),
		})
	}
	return CelebrationsResponse{Date: today, Count: len(items), Celebrations: items}
}

// TodayCelebrations godoc
// @ID          todayCelebrations
// @Summary     Celebrations due today
// @Description Active records whose month-day matches today in the business timezone. Feb 29 records are only due on Feb 29.
// @Tags        Celebrations
// @Produce     json
//
// @Success     200  {object}  handlers.CelebrationsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /celebrations/today [get]
func (h *Handlers) TodayCelebrations(c *gin.Context) {
	today := h.Celebrations.Today(h.now())
	recs, err := h.Celebrations.DueToday(c.Request.Context(), today)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load celebrations")
		return
	}
	ok(c, http.StatusOK, h.describeAll(recs, clock.DateKey(today), func(r domain.RosterRecord) services.Celebration {
		return h.Celebrations.Describe(r, today)
	}))
}

// CelebrationsOn godoc
// @ID          celebrationsOn
// @Summary     Celebrations for a month-day
// @Tags        Celebrations
// @Produce     json
//
// @Param       date  path  string  true  "Month-day (MM-DD)"  example(03-15)
//
// @Success     200  {object}  handlers.CelebrationsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad date"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /celebrations/{date} [get]
func (h *Handlers) CelebrationsOn(c *gin.Context) {
	md := c.Param("date")
	recs, err := h.Celebrations.ForMonthDay(c.Request.Context(), md)
	if errors.Is(err, services.ErrInvalidDate) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be in MM-DD format")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load celebrations")
		return
	}
	today := h.Celebrations.Today(h.now())
	ok(c, http.StatusOK, h.describeAll(recs, md, func(r domain.RosterRecord) services.Celebration {
		return h.Celebrations.Describe(r, today)
	}))
}

// SendCelebrations godoc
// @ID          sendCelebrations
// @Summary     Run the daily dispatch now
// @Description Runs dispatch for today, or for ?date=YYYY-MM-DD. Records already delivered for that date are skipped, so repeating the call is safe.
// @Tags        Celebrations
// @Produce     json
// @Security    BearerAuth
//
// @Param       date  query  string  false  "Calendar date (YYYY-MM-DD)"  example(2025-03-15)
//
// @Success     200  {object}  services.Summary
// @Failure     400  {object}  handlers.ErrorResponse  "Bad date"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     500  {object}  handlers.ErrorResponse  "Dispatch failed"
// @Router      /celebrations/send [post]
func (h *Handlers) SendCelebrations(c *gin.Context) {
	day := h.Celebrations.Today(h.now())
	if v := c.Query("date"); v != "" {
		parsed, err := h.Celebrations.ParseDay(v)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	sum, err := h.Scheduler.RunNow(c.Request.Context(), day)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDispatchFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, sum)
}

// ListDeliveries godoc
// @ID          listDeliveries
// @Summary     Delivery log for a date
// @Tags        Celebrations
// @Produce     json
// @Security    BearerAuth
//
// @Param       date  query  string  false  "Calendar date (YYYY-MM-DD), default today"
//
// @Success     200  {object}  handlers.DeliveriesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad date"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /celebrations/deliveries [get]
func (h *Handlers) ListDeliveries(c *gin.Context) {
	day := h.Celebrations.Today(h.now())
	if v := c.Query("date"); v != "" {
		parsed, err := h.Celebrations.ParseDay(v)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	date := clock.DateKey(day)
	items, err := h.Deliveries.Deliveries(c.Request.Context(), date)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list deliveries")
		return
	}
	ok(c, http.StatusOK, DeliveriesResponse{Date: date, Deliveries: items})
}

// SchedulerStatus godoc
// @ID          schedulerStatus
// @Summary     Scheduler state
// @Description Schedule time, timezone, next run and the last run's summary.
// @Tags        Celebrations
// @Produce     json
//
// @Success     200  {object}  scheduler.Status
// @Router      /scheduler/status [get]
func (h *Handlers) SchedulerStatus(c *gin.Context) {
	ok(c, http.StatusOK, h.Scheduler.Status())
}
