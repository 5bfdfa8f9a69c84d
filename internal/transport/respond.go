package transport

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errorStatus maps domain errors to HTTP status codes. The first match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{repository.ErrUserNotFound, http.StatusNotFound},
	{repository.ErrProductNotFound, http.StatusNotFound},
	{repository.ErrCategoryNotFound, http.StatusNotFound},
	{repository.ErrReviewNotFound, http.StatusNotFound},
	{repository.ErrCartItemNotFound, http.StatusNotFound},
	{repository.ErrAddressNotFound, http.StatusNotFound},
	{repository.ErrOrderNotFound, http.StatusNotFound},
	{repository.ErrBannerNotFound, http.StatusNotFound},
	{repository.ErrCarouselItemNotFound, http.StatusNotFound},

	{repository.ErrUserAlreadyExists, http.StatusConflict},
	{repository.ErrUserHasOrders, http.StatusConflict},
	{repository.ErrCategoryAlreadyExists, http.StatusConflict},
	{repository.ErrCategoryInUse, http.StatusConflict},
	{repository.ErrCarouselItemExists, http.StatusConflict},
	{repository.ErrInsufficientStock, http.StatusConflict},
	{repository.ErrOrderStatusConflict, http.StatusConflict},
	{service.ErrInvalidStatusTransition, http.StatusConflict},
	{service.ErrSelfModification, http.StatusConflict},
	{service.ErrOrderNotPayable, http.StatusConflict},
	{repository.ErrPendingOrderExists, http.StatusConflict},
	{service.ErrPaymentInProgress, http.StatusConflict},
	{service.ErrProductUnavailable, http.StatusConflict},

	{repository.ErrInvalidOrder, http.StatusBadRequest},
	{service.ErrUnknownCategory, http.StatusBadRequest},
	{service.ErrInvalidQuantity, http.StatusBadRequest},
	{service.ErrEmptyCart, http.StatusBadRequest},
	{service.ErrInvalidRating, http.StatusBadRequest},
	{service.ErrInvalidRole, http.StatusBadRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrInvalidPaymentConfig, http.StatusBadRequest},
	{service.ErrImageRequired, http.StatusBadRequest},
	{service.ErrUnsupportedImage, http.StatusBadRequest},
	{payment.ErrInvalidSignature, http.StatusBadRequest},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge},

	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrTokenExpired, http.StatusUnauthorized},
	{service.ErrUserInactive, http.StatusForbidden},

	{service.ErrPaymentProvider, http.StatusBadGateway},
	{service.ErrPaymentsDisabled, http.StatusServiceUnavailable},
	{payment.ErrNotConfigured, http.StatusServiceUnavailable},
}

// respondWithServiceError writes the status mapped for err. Unmapped errors
// are logged and reported as 500 without leaking their text.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, msg string) {
	for _, m := range errorStatus {
		if !errors.Is(err, m.err) {
			continue
		}
		message := err.Error()
		if m.status >= http.StatusInternalServerError {
			logger.Warn(msg, zap.Error(err))
			message = m.err.Error()
		} else {
			logger.Debug(msg, zap.Error(err))
		}
		middleware.RespondWithError(w, m.status, message)
		return
	}

	logger.Error(msg, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

// decodeRequest decodes and validates the JSON body, writing the 400 response
// itself on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(w, r, v); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return false
	}
	return true
}

// uuidParam reads a chi URL parameter as a UUID, writing 400 when malformed.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user id put on the context by the
// auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pageRequest reads page and page_size. Out of range values are clamped by
// PageRequest.Normalize in the services.
func pageRequest(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return domain.PageRequest{Page: page, PageSize: size}
}

// idsRequest is the body of every reorder endpoint.
type idsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}
