package domain

// Transition decides whether the booking may move to the target status.
// Reaching a status the booking already has is a no-op; leaving a terminal
// status is a StateError.
func (b *Booking) Transition(to BookingStatus) (bool, error) {
	if b.Status == to {
		return false, nil
	}
	if b.Status == BookingPending && (to == BookingConfirmed || to == BookingCancelled) {
		return true, nil
	}
	return false, &StateError{Entity: "booking", From: string(b.Status), To: string(to)}
}

// CanCancel reports whether the actor may cancel the booking. Owners may
// cancel their own bookings; admins may cancel any.
func (b *Booking) CanCancel(actor Actor) bool {
	return actor.IsAdmin() || actor.ID == b.UserID
}
