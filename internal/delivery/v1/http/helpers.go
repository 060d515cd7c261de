package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type ErrorResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// badRequest - ошибки валидации входных данных
var badRequest = []error{
	e.ErrStatusBadRequest,
	e.ErrMissingFields,
	e.ErrInvalidID,
	e.ErrInvalidPrice,
	e.ErrPricePrecision,
	e.ErrProductNameRequired,
	e.ErrInvalidStock,
	e.ErrInvalidQuantity,
	e.ErrEmptyCart,
	e.ErrInvalidShippingAddress,
	e.ErrInvalidStatus,
	e.ErrInvalidRole,
}

var notFound = []error{
	e.ErrOrderNotFound,
	e.ErrCartItemNotFound,
	e.ErrUserNotFound,
	e.ErrReceiptNotFound,
}

func ToHTTPResponse(err error) *ErrorResponse {
	var (
		stockErr   *usecase.InsufficientStockError
		missingErr *usecase.ProductMissingError
	)

	switch {
	case errors.Is(err, e.ErrCheckoutFailed):
		return NewErrorResponse(http.StatusInternalServerError, e.ErrCheckoutFailed.Error())
	case errors.As(err, &stockErr):
		res := NewErrorResponse(http.StatusBadRequest, e.ErrInsufficientStock.Error())
		res.Details = map[string]any{
			"product_id": stockErr.ProductID,
			"product":    stockErr.ProductName,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		}
		return res
	case errors.As(err, &missingErr):
		res := NewErrorResponse(http.StatusNotFound, e.ErrProductMissing.Error())
		res.Details = map[string]any{"product_id": missingErr.ProductID}
		return res
	case errors.Is(err, e.ErrProductMissing):
		return NewErrorResponse(http.StatusNotFound, e.ErrProductMissing.Error())
	case errors.Is(err, e.ErrUnauthorized):
		return NewErrorResponse(http.StatusUnauthorized, e.ErrUnauthorized.Error())
	case errors.Is(err, e.ErrInvalidCredentials):
		return NewErrorResponse(http.StatusUnauthorized, e.ErrInvalidCredentials.Error())
	case errors.Is(err, e.ErrForbidden):
		return NewErrorResponse(http.StatusForbidden, e.ErrForbidden.Error())
	case errors.Is(err, e.ErrUserAlreadyExists):
		return NewErrorResponse(http.StatusConflict, e.ErrUserAlreadyExists.Error())
	case errors.Is(err, e.ErrCheckoutInProgress):
		return NewErrorResponse(http.StatusConflict, e.ErrCheckoutInProgress.Error())
	}

	for _, target := range badRequest {
		if errors.Is(err, target) {
			return NewErrorResponse(http.StatusBadRequest, target.Error())
		}
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return NewErrorResponse(http.StatusNotFound, target.Error())
		}
	}

	return NewErrorResponse(http.StatusInternalServerError, e.ErrInternalServerError.Error())
}

func WriteError(w http.ResponseWriter, err error) {
	res := ToHTTPResponse(err)
	WriteSuccess(w, res.Code, res)
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError пишет ответ с ошибкой. 5xx логируются как ошибки, остальное как предупреждения.
func respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	res := ToHTTPResponse(err)
	if res.Code >= http.StatusInternalServerError {
		log.Errorf(err, "%s: %s %s", op, r.Method, r.URL.Path)
	} else {
		log.Warnf("%s: %d %s: %v", op, res.Code, res.Message, err)
	}
	WriteSuccess(w, res.Code, res)
}

// decodeJSON читает тело запроса в dst и проверяет теги validate.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return e.Wrap(fmt.Sprintf("content type %s", ct), e.ErrStatusBadRequest)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(e.ErrStatusBadRequest, err)
	}

	if err := validate.Struct(dst); err != nil {
		return errors.Join(e.ErrMissingFields, err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, e.Wrap(name, e.ErrInvalidID)
	}
	return id, nil
}

// parseIDs разбирает список идентификаторов вида "a,b,c".
func parseIDs(raw string) ([]uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, e.Wrap(part, e.ErrInvalidID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
