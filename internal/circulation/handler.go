// internal/circulation/handler.go
package circulation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"libris/internal/auth"
	"libris/internal/availability"
	"libris/internal/loans"
	"libris/internal/reservations"
)

// Handler exposes the circulation facade over HTTP. Loan-mutating endpoints
// take the acting librarian from the request's auth claims.
type Handler struct {
	service Service
}

// NewHandler creates a new circulation handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the circulation route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/loans", h.handleBorrow)
	r.Post("/loans/{id}/return", h.handleReturn)
	r.Post("/loans/{id}/extend", h.handleExtend)
	r.Post("/loans/{id}/lost", h.handleMarkLost)
	r.Get("/loans/active", h.handleActiveLoans)

	r.Post("/reservations", h.handleReserve)
	r.Post("/reservations/{id}/cancel", h.handleCancelReservation)
	r.Post("/reservations/{id}/expire", h.handleExpireReservation)

	r.Get("/books/{id}/reservations", h.handleBookReservations)
	r.Get("/users/{id}/loans", h.handleUserLoans)
	r.Get("/users/{id}/reservations", h.handleUserReservations)

	return r
}

func (h *Handler) handleBorrow(w http.ResponseWriter, r *http.Request) {
	librarianID, ok := actingUser(r)
	if !ok {
		http.Error(w, "missing auth claims", http.StatusUnauthorized)
		return
	}

	var req struct {
		BookID uuid.UUID `json:"book_id"`
		UserID uuid.UUID `json:"user_id"`
		Notes  string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loan, err := h.service.BorrowBook(r.Context(), req.BookID, req.UserID, librarianID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	h.loanAction(w, r, h.service.ReturnBook)
}

func (h *Handler) handleExtend(w http.ResponseWriter, r *http.Request) {
	h.loanAction(w, r, h.service.ExtendLoan)
}

func (h *Handler) loanAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, loanID, librarianID uuid.UUID) (*loans.Loan, error)) {
	librarianID, ok := actingUser(r)
	if !ok {
		http.Error(w, "missing auth claims", http.StatusUnauthorized)
		return
	}

	loanID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid loan ID", http.StatusBadRequest)
		return
	}

	loan, err := action(r.Context(), loanID, librarianID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) reservationAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, reservationID uuid.UUID) (*reservations.Reservation, error)) {
	reservationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid reservation ID", http.StatusBadRequest)
		return
	}

	reservation, err := action(r.Context(), reservationID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(reservation)
}

func (h *Handler) handleMarkLost(w http.ResponseWriter, r *http.Request) {
	librarianID, ok := actingUser(r)
	if !ok {
		http.Error(w, "missing auth claims", http.StatusUnauthorized)
		return
	}

	loanID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid loan ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	loan, err := h.service.MarkBookAsLost(r.Context(), loanID, req.Notes, librarianID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleActiveLoans(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetAllActiveLoans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleReserve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID uuid.UUID `json:"book_id"`
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), req.BookID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(reservation)
}

func (h *Handler) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	h.reservationAction(w, r, h.service.CancelReservation)
}

func (h *Handler) handleExpireReservation(w http.ResponseWriter, r *http.Request) {
	h.reservationAction(w, r, h.service.ExpireReservation)
}

func (h *Handler) handleBookReservations(w http.ResponseWriter, r *http.Request) {
	bookID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid book ID", http.StatusBadRequest)
		return
	}

	var result []*reservations.Reservation
	if r.URL.Query().Get("active") == "true" {
		result, err = h.service.GetActiveBookReservations(r.Context(), bookID)
	} else {
		result, err = h.service.GetBookReservations(r.Context(), bookID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleUserLoans(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	var result []*loans.Loan
	if r.URL.Query().Get("active") == "true" {
		result, err = h.service.GetActiveUserLoans(r.Context(), userID)
	} else {
		result, err = h.service.GetUserLoans(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleUserReservations(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	result, err := h.service.GetUserReservations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(result)
}

func actingUser(r *http.Request) (uuid.UUID, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrBookNotFound),
		errors.Is(err, loans.ErrLoanNotFound),
		errors.Is(err, reservations.ErrReservationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, loans.ErrNotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, loans.ErrBookNotAvailable),
		errors.Is(err, reservations.ErrBookNotAvailable),
		errors.Is(err, reservations.ErrAlreadyReserved),
		errors.Is(err, loans.ErrIllegalState),
		errors.Is(err, reservations.ErrIllegalState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
