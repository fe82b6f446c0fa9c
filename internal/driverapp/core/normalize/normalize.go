// Package normalize converts the backend's heterogeneous job payloads into
// the canonical model.Job. The backend mixes camelCase and snake_case,
// nested and flat coordinates, passenger and guest naming; every known
// shape is declared as a typed field below and tried in priority order, so
// no payload is ever probed through untyped maps.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"
)

// rawCoordinates is a nested coordinate object in either naming convention.
type rawCoordinates struct {
	Lat       flexFloat `json:"lat"`
	Lng       flexFloat `json:"lng"`
	Latitude  flexFloat `json:"latitude"`
	Longitude flexFloat `json:"longitude"`
}

func (rc *rawCoordinates) resolve() *model.Coordinates {
	if rc == nil {
		return nil
	}
	if c := coordinatePair(rc.Lat, rc.Lng); c != nil {
		return c
	}
	return coordinatePair(rc.Latitude, rc.Longitude)
}

type rawVehicle struct {
	Registration       flexString `json:"registration"`
	RegistrationNumber flexString `json:"registrationNumber"`
	Plate              flexString `json:"plate"`
}

func (rv *rawVehicle) reference() string {
	if rv == nil {
		return ""
	}
	return firstNonEmpty(rv.Registration.val, rv.RegistrationNumber.val, rv.Plate.val)
}

// rawJob declares every field-naming convention the backend is known to
// emit. Absent or malformed fields simply stay unset.
type rawJob struct {
	ID        flexString `json:"id"`
	JobID     flexString `json:"jobId"`
	BookingID flexString `json:"bookingId"`

	Status   string `json:"status"`
	Category string `json:"category"`

	ScheduledTime      flexTime `json:"scheduledTime"`
	ScheduledTimeSnake flexTime `json:"scheduled_time"`
	PickupTime         flexTime `json:"pickupTime"`

	PickupCoordinates *rawCoordinates `json:"pickupCoordinates"`
	PickupLocation    *rawCoordinates `json:"pickup_location"`
	Pickup            *rawCoordinates `json:"pickup"`
	DropCoordinates   *rawCoordinates `json:"dropCoordinates"`
	DropLocation      *rawCoordinates `json:"drop_location"`
	Drop              *rawCoordinates `json:"drop"`

	PickupLat            flexFloat `json:"pickupLat"`
	PickupLng            flexFloat `json:"pickupLng"`
	PickupLatitude       flexFloat `json:"pickupLatitude"`
	PickupLongitude      flexFloat `json:"pickupLongitude"`
	PickupLatSnake       flexFloat `json:"pickup_lat"`
	PickupLngSnake       flexFloat `json:"pickup_lng"`
	PickupLatitudeSnake  flexFloat `json:"pickup_latitude"`
	PickupLongitudeSnake flexFloat `json:"pickup_longitude"`

	DropLat            flexFloat `json:"dropLat"`
	DropLng            flexFloat `json:"dropLng"`
	DropLatitude       flexFloat `json:"dropLatitude"`
	DropLongitude      flexFloat `json:"dropLongitude"`
	DropLatSnake       flexFloat `json:"drop_lat"`
	DropLngSnake       flexFloat `json:"drop_lng"`
	DropLatitudeSnake  flexFloat `json:"drop_latitude"`
	DropLongitudeSnake flexFloat `json:"drop_longitude"`

	PassengerName      flexString `json:"passengerName"`
	PassengerNameSnake flexString `json:"passenger_name"`
	GuestName          flexString `json:"guestName"`
	GuestNameSnake     flexString `json:"guest_name"`

	PassengerPhone      flexString `json:"passengerPhone"`
	PassengerPhoneSnake flexString `json:"passenger_phone"`
	GuestPhone          flexString `json:"guestPhone"`
	GuestPhoneSnake     flexString `json:"guest_phone"`

	PaymentAmount      flexFloat `json:"paymentAmount"`
	PaymentAmountSnake flexFloat `json:"payment_amount"`
	Fare               flexFloat `json:"fare"`

	PaymentStatus      string `json:"paymentStatus"`
	PaymentStatusSnake string `json:"payment_status"`

	Reference flexString `json:"reference"`
	Ref       flexString `json:"ref"`

	Vehicle *rawVehicle `json:"vehicle"`
}

// ToJob decodes a raw payload into a canonical Job, or nil when the payload
// cannot be interpreted as one. hint supplies the category when neither an
// explicit category nor status/schedule information is present. ToJob never
// panics on malformed input.
func ToJob(raw []byte, hint model.JobCategory) *model.Job {
	var rj rawJob
	if err := json.Unmarshal(raw, &rj); err != nil {
		return nil
	}

	id := firstNonEmpty(rj.ID.val, rj.JobID.val, rj.BookingID.val)
	status := model.JobStatus(strings.ToUpper(strings.TrimSpace(rj.Status)))
	if id == "" && status == "" {
		return nil
	}

	scheduled := firstTime(rj.ScheduledTime, rj.ScheduledTimeSnake, rj.PickupTime)

	job := &model.Job{
		ID:            id,
		Status:        status,
		ScheduledTime: scheduled,
		PickupCoordinates: firstCoordinates(
			rj.PickupCoordinates.resolve(),
			rj.PickupLocation.resolve(),
			rj.Pickup.resolve(),
			coordinatePair(rj.PickupLat, rj.PickupLng),
			coordinatePair(rj.PickupLatitude, rj.PickupLongitude),
			coordinatePair(rj.PickupLatSnake, rj.PickupLngSnake),
			coordinatePair(rj.PickupLatitudeSnake, rj.PickupLongitudeSnake),
		),
		DropCoordinates: firstCoordinates(
			rj.DropCoordinates.resolve(),
			rj.DropLocation.resolve(),
			rj.Drop.resolve(),
			coordinatePair(rj.DropLat, rj.DropLng),
			coordinatePair(rj.DropLatitude, rj.DropLongitude),
			coordinatePair(rj.DropLatSnake, rj.DropLngSnake),
			coordinatePair(rj.DropLatitudeSnake, rj.DropLongitudeSnake),
		),
		PassengerName: firstNonEmpty(
			rj.PassengerName.val, rj.PassengerNameSnake.val,
			rj.GuestName.val, rj.GuestNameSnake.val,
			model.PlaceholderPassengerName,
		),
		PassengerPhone: firstNonEmpty(
			rj.PassengerPhone.val, rj.PassengerPhoneSnake.val,
			rj.GuestPhone.val, rj.GuestPhoneSnake.val,
			model.PlaceholderPassengerPhone,
		),
		PaymentStatus: firstNonEmpty(
			strings.TrimSpace(rj.PaymentStatus), strings.TrimSpace(rj.PaymentStatusSnake),
			model.DefaultPaymentStatus,
		),
		VehicleReference: firstNonEmpty(
			rj.Reference.val, rj.Ref.val, rj.Vehicle.reference(), id,
		),
	}

	for _, amount := range []flexFloat{rj.PaymentAmount, rj.PaymentAmountSnake, rj.Fare} {
		if amount.finite() {
			job.PaymentAmount = amount.val
			break
		}
	}

	job.Category = categorize(rj.Category, status, scheduled, hint)
	return job
}

func categorize(explicit string, status model.JobStatus, scheduled time.Time, hint model.JobCategory) model.JobCategory {
	if c := model.JobCategory(strings.ToUpper(strings.TrimSpace(explicit))); c.Known() {
		return c
	}
	if status == "" && scheduled.IsZero() && hint.Known() {
		return hint
	}
	return model.CategoryFor(status, scheduled, time.Now())
}

func coordinatePair(lat, lng flexFloat) *model.Coordinates {
	if !lat.finite() || !lng.finite() {
		return nil
	}
	c := model.Coordinates{Lat: lat.val, Lng: lng.val}
	if !c.Valid() {
		return nil
	}
	return &c
}

func firstCoordinates(candidates ...*model.Coordinates) *model.Coordinates {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstTime(values ...flexTime) time.Time {
	for _, v := range values {
		if !v.val.IsZero() {
			return v.val
		}
	}
	return time.Time{}
}
