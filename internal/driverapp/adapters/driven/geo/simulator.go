// Package geo provides a simulated location source for the agent binary.
package geo

import (
	"math/rand"
	"sync"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/myerrors"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
)

// Simulator random-walks around an initial position, the way a parked
// driver's GPS drifts.
type Simulator struct {
	mu        sync.Mutex
	lat, lng  float64
	permitted bool
}

var _ ports.LocationSource = (*Simulator)(nil)

func NewSimulator(lat, lng float64) *Simulator {
	return &Simulator{lat: lat, lng: lng, permitted: true}
}

func (s *Simulator) Permitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permitted
}

func (s *Simulator) SetPermitted(permitted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permitted = permitted
}

func (s *Simulator) Current() (model.Coordinates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.permitted {
		return model.Coordinates{}, myerrors.ErrLocationPermission
	}
	// Simulate small movement
	s.lat += (rand.Float64() - 0.5) / 1000
	s.lng += (rand.Float64() - 0.5) / 1000
	return model.Coordinates{Lat: s.lat, Lng: s.lng}, nil
}
