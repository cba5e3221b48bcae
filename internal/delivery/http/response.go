package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tair/pos-core/internal/analytics"
	"github.com/tair/pos-core/internal/cart"
	"github.com/tair/pos-core/internal/catalog/usecase/command"
	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/inventory"
	"github.com/tair/pos-core/internal/notification"
	"github.com/tair/pos-core/internal/scanner"
	"github.com/tair/pos-core/internal/staff"
	"github.com/tair/pos-core/internal/store"
)

// Response is the envelope of every API response. Warning is set when a
// change took effect locally but a remote mirror has not caught up yet.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Error: message})
}

// respondResult answers a mutation. A mirror failure still reports success
// because the local change was applied.
func respondResult(w http.ResponseWriter, status int, message string, data interface{}, err error) {
	if err == nil {
		respondData(w, status, message, data)
		return
	}
	if errors.Is(err, store.ErrMirror) {
		respondJSON(w, status, Response{Success: true, Message: message, Data: data, Warning: err.Error()})
		return
	}
	respondFailure(w, err)
}

// respondFailure maps an error to its status code
func respondFailure(w http.ResponseWriter, err error) {
	var shortage *store.InsufficientStockError
	if errors.As(err, &shortage) {
		respondJSON(w, http.StatusConflict, Response{Error: err.Error(), Data: shortage.Shortages})
		return
	}
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound

	case errors.Is(err, command.ErrDuplicateSKU),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, scanner.ErrBusy):
		return http.StatusConflict

	case errors.Is(err, staff.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, staff.ErrAccountDisabled):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidExpense),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidPrice),
		errors.Is(err, command.ErrEmptyOrder),
		errors.Is(err, inventory.ErrInvalidCost),
		errors.Is(err, analytics.ErrInvalidRange),
		errors.Is(err, analytics.ErrInvalidMode),
		errors.Is(err, notification.ErrInvalidFilter):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
