package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mmynk/expensesplit/internal/errs"
	"github.com/mmynk/expensesplit/internal/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors map[string][]string `json:"errors"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type userResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	CreatedAt    int64  `json:"created_at"`
}

type createUserResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

// getUserResponse keeps the short "mobile" key of the lookup endpoint.
type getUserResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

type shareResponse struct {
	ID     string      `json:"id"`
	Amount json.Number `json:"amount"`
}

type expenseResponse struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Amount       json.Number     `json:"amount"`
	Participants []string        `json:"participants"`
	SplitMethod  string          `json:"split_method,omitempty"`
	Shares       []shareResponse `json:"shares,omitempty"`
	CreatedAt    int64           `json:"created_at"`
}

type createExpenseResponse struct {
	Message string          `json:"message"`
	Expense expenseResponse `json:"expense"`
}

type splitExpenseResponse struct {
	Message     string          `json:"message"`
	ExpenseID   string          `json:"expense_id"`
	SplitMethod string          `json:"split_method"`
	Shares      []shareResponse `json:"shares"`
}

func amount(d decimal.Decimal, scale int32) json.Number {
	return json.Number(d.StringFixed(scale))
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		CreatedAt:    u.CreatedAt,
	}
}

func toShareResponses(shares []models.Share, scale int32) []shareResponse {
	out := make([]shareResponse, len(shares))
	for i, s := range shares {
		out[i] = shareResponse{ID: s.UserID, Amount: amount(s.Amount, scale)}
	}
	return out
}

func toExpenseResponse(e *models.Expense, scale int32) expenseResponse {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return expenseResponse{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       amount(e.Amount, scale),
		Participants: participants,
		SplitMethod:  string(e.SplitMethod),
		Shares:       toShareResponses(e.Shares, scale),
		CreatedAt:    e.CreatedAt,
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to encode response", "status", status, "error", err)
	}
}

// writeError maps an error class to its HTTP status. Unclassified errors are
// logged and reported as 500 without detail.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := errs.AsValidation(err); ok {
		a.writeJSON(w, http.StatusBadRequest, validationResponse{Errors: ve.Fields})
		return
	}

	switch {
	case errors.Is(err, errs.ErrInvalidInput), errors.Is(err, errs.ErrAlreadyExists):
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		a.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		a.logger.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		a.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
