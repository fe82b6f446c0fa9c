package model

import (
	"math"
	"time"
)

type JobStatus string

const (
	StatusAssigned  JobStatus = "ASSIGNED"
	StatusEnRoute   JobStatus = "EN_ROUTE"
	StatusArrived   JobStatus = "ARRIVED"
	StatusPickedUp  JobStatus = "PICKED_UP"
	StatusCompleted JobStatus = "COMPLETED"
	StatusCancelled JobStatus = "CANCELLED"
	StatusNoShow    JobStatus = "NO_SHOW"
)

// Terminal reports whether the status ends the ride lifecycle.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type JobCategory string

const (
	CategoryActive   JobCategory = "ACTIVE"
	CategoryUpcoming JobCategory = "UPCOMING"
	CategoryHistory  JobCategory = "HISTORY"
)

func (c JobCategory) Known() bool {
	switch c {
	case CategoryActive, CategoryUpcoming, CategoryHistory:
		return true
	}
	return false
}

// Fallback values for descriptive fields absent from every payload shape.
const (
	PlaceholderPassengerName  = "Guest"
	PlaceholderPassengerPhone = "N/A"
	DefaultPaymentStatus      = "PENDING"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid rejects non-finite values and the 0,0 "null island" point.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat != 0 || c.Lng != 0
}

// Job is the canonical dispatch job held by the reconciler.
type Job struct {
	ID                string
	Category          JobCategory
	Status            JobStatus
	ScheduledTime     time.Time
	PickupCoordinates *Coordinates
	DropCoordinates   *Coordinates
	PassengerName     string
	PassengerPhone    string
	PaymentAmount     float64
	PaymentStatus     string
	VehicleReference  string
}

// CategoryFor derives the list category from status and scheduled time.
func CategoryFor(status JobStatus, scheduled time.Time, now time.Time) JobCategory {
	if status.Terminal() {
		return CategoryHistory
	}
	if !scheduled.IsZero() && scheduled.After(now) {
		return CategoryUpcoming
	}
	return CategoryActive
}

// Merge copies the fields present in update onto j, leaving the rest
// untouched. Placeholder fallbacks never overwrite real values.
func (j *Job) Merge(update *Job) {
	if update.Status != "" {
		j.Status = update.Status
	}
	if !update.ScheduledTime.IsZero() {
		j.ScheduledTime = update.ScheduledTime
	}
	if update.PickupCoordinates != nil {
		j.PickupCoordinates = update.PickupCoordinates
	}
	if update.DropCoordinates != nil {
		j.DropCoordinates = update.DropCoordinates
	}
	if update.PassengerName != "" && update.PassengerName != PlaceholderPassengerName {
		j.PassengerName = update.PassengerName
	}
	if update.PassengerPhone != "" && update.PassengerPhone != PlaceholderPassengerPhone {
		j.PassengerPhone = update.PassengerPhone
	}
	if update.PaymentAmount != 0 {
		j.PaymentAmount = update.PaymentAmount
	}
	if update.PaymentStatus != "" && update.PaymentStatus != DefaultPaymentStatus {
		j.PaymentStatus = update.PaymentStatus
	}
	if update.VehicleReference != "" && update.VehicleReference != update.ID {
		j.VehicleReference = update.VehicleReference
	}
}
