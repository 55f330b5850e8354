package http

import (
	"net/http"

	"github.com/adhilsalahh/package-booking/internal/domain"
)

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) AdminListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListBookings(r.Context(), ActorFromContext(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) AdminConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.svc.ConfirmBooking(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) AdminCancelBooking(w http.ResponseWriter, r *http.Request) {
	h.CancelBooking(w, r)
}

func (h *Handlers) AdminVerifyPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.VerifyPayment(r.Context(), ActorFromContext(r.Context()), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) AdminListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.svc.ListAllPackages(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (h *Handlers) AdminCreatePackage(w http.ResponseWriter, r *http.Request) {
	var p domain.Package
	if !decodeJSON(w, r, &p) {
		return
	}
	created, err := h.svc.CreatePackage(r.Context(), ActorFromContext(r.Context()), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) AdminUpdatePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p domain.Package
	if !decodeJSON(w, r, &p) {
		return
	}
	updated, err := h.svc.UpdatePackage(r.Context(), ActorFromContext(r.Context()), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) AdminDeletePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePackage(r.Context(), ActorFromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AdminGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.AdminSettings(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) AdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.Settings
	if !decodeJSON(w, r, &s) {
		return
	}
	saved, err := h.svc.UpdateSettings(r.Context(), ActorFromContext(r.Context()), s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
