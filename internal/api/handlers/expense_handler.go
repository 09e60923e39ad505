package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/isdelr/expense-tracker-be/internal/services"
)

// ExpenseHandler handles HTTP requests for the authenticated user's expenses.
type ExpenseHandler struct {
	service services.ExpenseServiceProvider
	now     func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(service services.ExpenseServiceProvider) *ExpenseHandler {
	return &ExpenseHandler{service: service, now: time.Now}
}

// owner returns the authenticated user, answering 401 when it is missing.
func owner(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required: No token provided.")
	}
	return user, ok
}

// GetAll lists every expense of the user, most recent first.
func (h *ExpenseHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := owner(w, r)
	if !ok {
		return
	}

	expenses, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, http.StatusUnauthorized, "Failed to fetch expenses.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Expenses fetched successfully",
		"expenses": expenses,
	})
}

// Create adds a new expense.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := owner(w, r)
	if !ok {
		return
	}
	var payload services.ExpenseInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	expense, err := h.service.Create(r.Context(), user.ID, payload)
	if err != nil {
		writeServiceError(w, r, err, http.StatusUnauthorized, "Failed to create expense.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Expense created successfully.",
		"expense": expense,
	})
}

// Update changes the supplied fields of one expense.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := owner(w, r)
	if !ok {
		return
	}
	var payload services.ExpenseInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	id := chi.URLParam(r, "id")
	expense, err := h.service.Update(r.Context(), user.ID, id, payload)
	if err != nil {
		writeServiceError(w, r, err, http.StatusUnauthorized, "Failed to update expense.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Expense updated successfully.",
		"expense": expense,
	})
}

// Delete removes one expense and returns its last state.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := owner(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	expense, err := h.service.Delete(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, r, err, http.StatusUnauthorized, "Failed to delete expense.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Expense deleted successfully.",
		"expense": expense,
	})
}

// Analytics returns the spending summary, recomputed from the full list.
func (h *ExpenseHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	user, ok := owner(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), user.ID, h.now())
	if err != nil {
		writeServiceError(w, r, err, http.StatusUnauthorized, "Failed to compute analytics.")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
