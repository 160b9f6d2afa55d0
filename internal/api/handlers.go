package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/expensesplit/internal/export"
	"github.com/mmynk/expensesplit/internal/service"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON body into v. It writes the 400 response itself and
// reports whether the handler should continue.
func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if !a.decode(w, r, &req) {
		return
	}

	user, err := a.service.CreateUser(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, createUserResponse{
		Message: "User created successfully",
		User:    toUserResponse(user),
	})
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	var req service.GetUserRequest
	if !a.decode(w, r, &req) {
		return
	}

	user, err := a.service.GetUser(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, getUserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Mobile: user.MobileNumber,
	})
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req service.CreateExpenseRequest
	if !a.decode(w, r, &req) {
		return
	}

	expense, err := a.service.CreateExpense(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, createExpenseResponse{
		Message: "Expense added successfully",
		Expense: toExpenseResponse(expense, a.service.Scale()),
	})
}

func (a *API) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := a.service.GetExpense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, toExpenseResponse(expense, a.service.Scale()))
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.service.ListExpenses(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	scale := a.service.Scale()
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e, scale)
	}
	a.writeJSON(w, http.StatusOK, out)
}

func (a *API) handleSplitExpense(w http.ResponseWriter, r *http.Request) {
	var req service.SplitExpenseRequest
	if !a.decode(w, r, &req) {
		return
	}

	expense, err := a.service.SplitExpense(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, splitExpenseResponse{
		Message:     "Expense split successfully",
		ExpenseID:   expense.ID,
		SplitMethod: string(expense.SplitMethod),
		Shares:      toShareResponses(expense.Shares, a.service.Scale()),
	})
}

// handleBalanceSheet renders the workbook into memory first so a failure
// can still be reported as a JSON error.
func (a *API) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := a.service.ExportBalanceSheet(r.Context(), &buf, r.URL.Query().Get("user_id")); err != nil {
		a.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.FileName))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.WarnContext(r.Context(), "Failed to send balance sheet", "error", err)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
