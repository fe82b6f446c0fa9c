package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/normalize"
)

func TestToJobRejectsOnlyPayloadsWithoutIDAndStatus(t *testing.T) {
	assert.Nil(t, normalize.ToJob([]byte(`{}`), model.CategoryActive))
	assert.Nil(t, normalize.ToJob([]byte(`{"foo": 1}`), model.CategoryActive))
	assert.Nil(t, normalize.ToJob([]byte(`not json`), model.CategoryActive))
	assert.Nil(t, normalize.ToJob([]byte(`[1,2]`), model.CategoryActive))

	assert.NotNil(t, normalize.ToJob([]byte(`{"id": "j1"}`), model.CategoryActive))
	assert.NotNil(t, normalize.ToJob([]byte(`{"status": "ASSIGNED"}`), model.CategoryActive))
}

func TestToJobIDAliases(t *testing.T) {
	for _, payload := range []string{
		`{"id": "j1", "status": "ASSIGNED"}`,
		`{"jobId": "j1", "status": "ASSIGNED"}`,
		`{"bookingId": "j1", "status": "ASSIGNED"}`,
		`{"id": "j1", "bookingId": "other", "status": "ASSIGNED"}`,
	} {
		job := normalize.ToJob([]byte(payload), model.CategoryActive)
		require.NotNil(t, job, payload)
		assert.Equal(t, "j1", job.ID, payload)
	}
}

func TestToJobNumericID(t *testing.T) {
	job := normalize.ToJob([]byte(`{"id": 42, "status": "ASSIGNED"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, "42", job.ID)
}

func TestCoordinateResolutionNested(t *testing.T) {
	job := normalize.ToJob([]byte(`{
		"id": "j1", "status": "ASSIGNED",
		"pickupCoordinates": {"lat": 12.9, "lng": 77.5},
		"dropCoordinates": {"latitude": 13.1, "longitude": 77.7}
	}`), model.CategoryActive)
	require.NotNil(t, job)
	require.NotNil(t, job.PickupCoordinates)
	assert.Equal(t, model.Coordinates{Lat: 12.9, Lng: 77.5}, *job.PickupCoordinates)
	require.NotNil(t, job.DropCoordinates)
	assert.Equal(t, model.Coordinates{Lat: 13.1, Lng: 77.7}, *job.DropCoordinates)
}

func TestCoordinateResolutionStringCoercion(t *testing.T) {
	job := normalize.ToJob([]byte(`{
		"id": "j1", "status": "ASSIGNED",
		"pickupLat": "12.9", "pickupLng": "77.5"
	}`), model.CategoryActive)
	require.NotNil(t, job)
	require.NotNil(t, job.PickupCoordinates)
	assert.Equal(t, model.Coordinates{Lat: 12.9, Lng: 77.5}, *job.PickupCoordinates)
}

func TestCoordinateResolutionFlatConventions(t *testing.T) {
	cases := map[string]string{
		"camel":          `{"id": "j1", "pickupLat": 1.5, "pickupLng": 2.5}`,
		"camel long":     `{"id": "j1", "pickupLatitude": 1.5, "pickupLongitude": 2.5}`,
		"snake":          `{"id": "j1", "pickup_lat": 1.5, "pickup_lng": 2.5}`,
		"snake long":     `{"id": "j1", "pickup_latitude": 1.5, "pickup_longitude": 2.5}`,
		"nested generic": `{"id": "j1", "pickup": {"lat": 1.5, "lng": 2.5}}`,
	}
	for name, payload := range cases {
		job := normalize.ToJob([]byte(payload), model.CategoryActive)
		require.NotNil(t, job, name)
		require.NotNil(t, job.PickupCoordinates, name)
		assert.Equal(t, model.Coordinates{Lat: 1.5, Lng: 2.5}, *job.PickupCoordinates, name)
	}
}

func TestCoordinateResolutionRequiresCompletePair(t *testing.T) {
	job := normalize.ToJob([]byte(`{"id": "j1", "pickupLat": 1.5, "pickup_lng": 2.5}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Nil(t, job.PickupCoordinates)
}

func TestCoordinateResolutionNullIsland(t *testing.T) {
	job := normalize.ToJob([]byte(`{
		"id": "j1", "status": "ASSIGNED",
		"pickupCoordinates": {"lat": 0, "lng": 0},
		"dropLat": 0, "dropLng": 0
	}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Nil(t, job.PickupCoordinates)
	assert.Nil(t, job.DropCoordinates)
}

func TestCoordinateResolutionMalformedValuesDegrade(t *testing.T) {
	job := normalize.ToJob([]byte(`{
		"id": "j1",
		"pickupCoordinates": {"lat": "abc", "lng": 77.5},
		"dropLat": true, "dropLng": 77.7
	}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Nil(t, job.PickupCoordinates)
	assert.Nil(t, job.DropCoordinates)
}

func TestPassengerNameFallbacks(t *testing.T) {
	job := normalize.ToJob([]byte(`{"id": "j1", "passengerName": "Asel", "guestName": "G"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, "Asel", job.PassengerName)

	job = normalize.ToJob([]byte(`{"id": "j1", "guest_name": "Dana"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, "Dana", job.PassengerName)

	job = normalize.ToJob([]byte(`{"id": "j1", "passengerName": "  "}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, model.PlaceholderPassengerName, job.PassengerName)
	assert.Equal(t, model.PlaceholderPassengerPhone, job.PassengerPhone)
}

func TestVehicleReferenceFallbacks(t *testing.T) {
	job := normalize.ToJob([]byte(`{"id": "j1", "reference": "R-9", "vehicle": {"registration": "KZ 001"}}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, "R-9", job.VehicleReference)

	job = normalize.ToJob([]byte(`{"id": "j1", "vehicle": {"registration": "KZ 001"}}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, "KZ 001", job.VehicleReference)

	job = normalize.ToJob([]byte(`{"id": "j1"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, "j1", job.VehicleReference)
}

func TestPaymentFields(t *testing.T) {
	job := normalize.ToJob([]byte(`{"id": "j1", "paymentAmount": "250.5", "payment_status": "PAID"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, 250.5, job.PaymentAmount)
	assert.Equal(t, "PAID", job.PaymentStatus)

	job = normalize.ToJob([]byte(`{"id": "j1"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, model.DefaultPaymentStatus, job.PaymentStatus)
}

func TestCategoryDerivation(t *testing.T) {
	job := normalize.ToJob([]byte(`{"id": "j1", "category": "history", "status": "ASSIGNED"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, model.CategoryHistory, job.Category, "explicit category wins")

	job = normalize.ToJob([]byte(`{"id": "j1", "status": "CANCELLED"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, model.CategoryHistory, job.Category, "terminal status")

	future := time.Now().Add(2 * time.Hour).Format(time.RFC3339)
	job = normalize.ToJob([]byte(`{"id": "j1", "status": "ASSIGNED", "scheduledTime": "`+future+`"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, model.CategoryUpcoming, job.Category, "future schedule")

	job = normalize.ToJob([]byte(`{"id": "j1", "status": "EN_ROUTE"}`), model.CategoryHistory)
	require.NotNil(t, job)
	assert.Equal(t, model.CategoryActive, job.Category, "status present, hint ignored")

	job = normalize.ToJob([]byte(`{"id": "j1"}`), model.CategoryUpcoming)
	require.NotNil(t, job)
	assert.Equal(t, model.CategoryUpcoming, job.Category, "hint applies when nothing else is known")
}

func TestScheduledTimeVariants(t *testing.T) {
	when := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	job := normalize.ToJob([]byte(`{"id": "j1", "scheduled_time": "2026-09-01T10:00:00Z"}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.True(t, job.ScheduledTime.Equal(when))

	job = normalize.ToJob([]byte(`{"id": "j1", "scheduledTime": 1788602400}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, int64(1788602400), job.ScheduledTime.Unix())

	job = normalize.ToJob([]byte(`{"id": "j1", "scheduledTime": 1788602400000}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, int64(1788602400), job.ScheduledTime.Unix(), "milliseconds")
}

func TestStatusIsTrimmedAndUppercased(t *testing.T) {
	job := normalize.ToJob([]byte(`{"id": "j1", "status": " picked_up "}`), model.CategoryActive)
	require.NotNil(t, job)
	assert.Equal(t, model.StatusPickedUp, job.Status)
}
