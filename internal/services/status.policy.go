package services

import "github.com/nimasrn/reservation-hub/internal/model"

// StatusPolicy decides whether a reservation may move from one status to
// another.
type StatusPolicy interface {
	Allow(from, to model.ReservationStatus) bool
}

// OpenStatusPolicy accepts every transition between known statuses.
type OpenStatusPolicy struct{}

func (OpenStatusPolicy) Allow(from, to model.ReservationStatus) bool {
	return to.Valid()
}

// StrictStatusPolicy treats Cancelled, Completed and NoShow as terminal.
type StrictStatusPolicy struct{}

func (StrictStatusPolicy) Allow(from, to model.ReservationStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case model.ReservationStatusCancelled, model.ReservationStatusCompleted, model.ReservationStatusNoShow:
		return false
	}
	return true
}

func NewStatusPolicy(strict bool) StatusPolicy {
	if strict {
		return StrictStatusPolicy{}
	}
	return OpenStatusPolicy{}
}
