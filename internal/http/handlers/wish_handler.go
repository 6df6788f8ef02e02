// Wish HTTP handlers.
//
// This file exposes the wish endpoints:
//   - POST /wish                          (generate)
//   - POST /wish/{request_id}/regenerate  (regenerate with extra context)
//   - GET  /wish/rate-limit-info          (limiter state, never mutates)
//
// Anonymous callers are subject to the persisted per-client window;
// authenticated callers bypass it. A POST carrying an Idempotency-Key that
// already produced a wish replays that wish without generating or counting.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-celebrations-backend/internal/http/middleware"
	"github.com/tbourn/go-celebrations-backend/internal/services"
)

//
// DTOs
//

// WishRequestBody is the JSON payload for POST /wish.
type WishRequestBody struct {
	Name            string `json:"name" validate:"required,min=1,max=100" example:"Ann"`
	AnniversaryType string `json:"anniversary_type" validate:"required,oneof=birthday work-anniversary wedding-anniversary promotion retirement friendship relationship milestone custom" example:"birthday"`
	Relationship    string `json:"relationship" validate:"required,min=1,max=50" example:"colleague"`
	// Tone defaults to warm.
	Tone    string `json:"tone" validate:"oneof=professional friendly warm humorous formal" example:"warm"`
	Context string `json:"context,omitempty" validate:"max=500" example:"loves hiking"`
}

// RegenerateRequestBody is the optional JSON payload for regeneration.
type RegenerateRequestBody struct {
	AdditionalContext string `json:"additional_context,omitempty" validate:"max=500" example:"mention the new puppy"`
}

// WishResponse is returned by the generate and regenerate endpoints.
// Limiter fields are omitted for authenticated callers.
type WishResponse struct {
	GeneratedWish     string     `json:"generated_wish" example:"Happy birthday, Ann!"`
	RequestID         string     `json:"request_id" example:"01J9Z8Q4W4M0J7N5X8K2C3V4B5"`
	OriginalRequestID *string    `json:"original_request_id,omitempty"`
	ServiceUsed       string     `json:"service_used,omitempty" example:"groq"`
	RemainingRequests *int       `json:"remaining_requests,omitempty" example:"4"`
	WindowResetTime   *time.Time `json:"window_reset_time,omitempty"`
}

// RateLimitInfoResponse is returned by GET /wish/rate-limit-info.
type RateLimitInfoResponse struct {
	ClientID          string     `json:"client_id" example:"203.0.113.7"`
	IsAuthenticated   bool       `json:"is_authenticated"`
	RemainingRequests *int       `json:"remaining_requests,omitempty" example:"5"`
	WindowResetTime   *time.Time `json:"window_reset_time,omitempty"`
	RequestCount      int        `json:"request_count" example:"0"`
}

func (b WishRequestBody) normalize() WishRequestBody {
	b.Name = strings.TrimSpace(b.Name)
	b.AnniversaryType = strings.ToLower(strings.TrimSpace(b.AnniversaryType))
	b.Relationship = strings.TrimSpace(b.Relationship)
	b.Tone = strings.ToLower(strings.TrimSpace(b.Tone))
	if b.Tone == "" {
		b.Tone = services.ToneWarm
	}
	b.Context = strings.TrimSpace(b.Context)
	return b
}

func toWishResponse(res *services.WishResult) WishResponse {
	return WishResponse{
		GeneratedWish:     res.Text,
		RequestID:         res.RequestID,
		OriginalRequestID: res.OriginalRequestID,
		ServiceUsed:       res.Service,
		RemainingRequests: res.RemainingRequests,
		WindowResetTime:   res.ResetAt,
	}
}

// wishError maps wish service errors to responses.
func (h *Handlers) wishError(c *gin.Context, err error) {
	var limited *services.RateLimitExceededError
	switch {
	case errors.As(err, &limited):
		c.Header("Retry-After", strconv.Itoa(limited.RetryAfter(h.now())))
		fail(c, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded, try again later")
	case errors.Is(err, services.ErrLimiterUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeLimiterUnavailable, "rate limiter unavailable, try again later")
	case errors.Is(err, services.ErrWishNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "wish not found")
	case errors.Is(err, services.ErrGenerationFailed):
		fail(c, http.StatusInternalServerError, ErrCodeGenerationFailed, "wish generation failed")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

// replay answers from the idempotency store when the middleware flagged the
// request. It reports whether a response was written.
func (h *Handlers) replay(c *gin.Context) bool {
	key, has := middleware.GetIdempotencyKey(c)
	if !has || !middleware.IsReplay(c) || h.Idempotency == nil {
		return false
	}
	ctx := c.Request.Context()
	who := caller(c)
	requestID, err := h.Idempotency.Lookup(ctx, who.ClientID, key, h.now())
	if err != nil || requestID == "" {
		return false
	}
	res, err := h.Wishes.Replay(ctx, requestID, who, h.now())
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("request_id", requestID).Msg("idempotent replay failed")
		return false
	}
	c.Header("Idempotent-Replay", "true")
	ok(c, http.StatusOK, toWishResponse(res))
	return true
}

func (h *Handlers) remember(c *gin.Context, requestID string) {
	key, has := middleware.GetIdempotencyKey(c)
	if !has || h.Idempotency == nil {
		return
	}
	if err := h.Idempotency.Remember(c.Request.Context(), caller(c).ClientID, key, requestID); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency key not stored")
	}
}

//
// Handlers
//

// GenerateWish godoc
// @ID          generateWish
// @Summary     Generate a celebration wish
// @Description Generates a personalized wish. Anonymous callers are limited per client address within a fixed window; bearer-authenticated callers are not. Repeating a request with the same Idempotency-Key returns the stored wish.
// @Tags        Wishes
// @Accept      json
// @Produce     json
//
// @Param       Authorization    header  string  false "Bearer token"
// @Param       Idempotency-Key  header  string  false "Client-chosen key for safe retries"  maxLength(200)
// @Param       body             body    handlers.WishRequestBody  true  "Wish request"
//
// @Success     200  {object}  handlers.WishResponse
// @Header      429  {integer} Retry-After  "Seconds until the window resets"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad Idempotency-Key"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid token"
// @Failure     422  {object}  handlers.ValidationErrorResponse  "Invalid body"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Generation failed"
// @Failure     503  {object}  handlers.ErrorResponse  "Limiter unavailable"
// @Router      /wish [post]
func (h *Handlers) GenerateWish(c *gin.Context) {
	if h.replay(c) {
		return
	}

	var body WishRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		unprocessable(c, bodyDecodeDetail(err))
		return
	}
	body = body.normalize()
	if details := validationDetails(body); details != nil {
		unprocessable(c, details)
		return
	}

	req := services.WishRequest{
		Name:            body.Name,
		AnniversaryType: body.AnniversaryType,
		Relationship:    body.Relationship,
		Tone:            body.Tone,
		Context:         body.Context,
	}
	res, err := h.Wishes.Generate(c.Request.Context(), req, caller(c), h.now(), nil)
	if err != nil {
		h.wishError(c, err)
		return
	}
	h.remember(c, res.RequestID)
	ok(c, http.StatusOK, toWishResponse(res))
}

// RegenerateWish godoc
// @ID          regenerateWish
// @Summary     Regenerate a wish
// @Description Re-runs a stored request, optionally with extra context, and links the new wish to the original. Counts against the anonymous limit like a new request.
// @Tags        Wishes
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  false "Bearer token"
// @Param       request_id     path    string  true  "Original request id (ULID)"
// @Param       body           body    handlers.RegenerateRequestBody  false  "Extra context"
//
// @Success     200  {object}  handlers.WishResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown request id"
// @Failure     422  {object}  handlers.ValidationErrorResponse  "Invalid body"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Generation failed"
// @Failure     503  {object}  handlers.ErrorResponse  "Limiter unavailable"
// @Router      /wish/{request_id}/regenerate [post]
func (h *Handlers) RegenerateWish(c *gin.Context) {
	var body RegenerateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		unprocessable(c, bodyDecodeDetail(err))
		return
	}
	if details := validationDetails(body); details != nil {
		unprocessable(c, details)
		return
	}

	res, err := h.Wishes.Regenerate(c.Request.Context(), c.Param("request_id"), body.AdditionalContext, caller(c), h.now())
	if err != nil {
		h.wishError(c, err)
		return
	}
	ok(c, http.StatusOK, toWishResponse(res))
}

// RateLimitInfo godoc
// @ID          rateLimitInfo
// @Summary     Show the caller's rate limit state
// @Description Reports remaining requests and the window reset time without consuming a request.
// @Tags        Wishes
// @Produce     json
//
// @Param       Authorization  header  string  false "Bearer token"
//
// @Success     200  {object}  handlers.RateLimitInfoResponse
// @Failure     503  {object}  handlers.ErrorResponse  "Limiter unavailable"
// @Router      /wish/rate-limit-info [get]
func (h *Handlers) RateLimitInfo(c *gin.Context) {
	who := caller(c)
	resp := RateLimitInfoResponse{ClientID: who.ClientID, IsAuthenticated: who.Authenticated}
	if who.Authenticated {
		ok(c, http.StatusOK, resp)
		return
	}
	d, err := h.Wishes.LimitStatus(c.Request.Context(), who, h.now())
	if err != nil {
		h.wishError(c, err)
		return
	}
	remaining, reset := d.Remaining, d.ResetAt
	resp.RemainingRequests, resp.WindowResetTime = &remaining, &reset
	resp.RequestCount = d.RequestCount
	ok(c, http.StatusOK, resp)
}
