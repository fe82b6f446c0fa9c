package ports

import "github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"

// AuthProvider exposes the bearer credential owned by an external
// collaborator. The core only reacts to authentication state, it never
// manages credentials.
type AuthProvider interface {
	IsAuthenticated() bool
	Token() (string, error)
}

// LocationSource reports the device position and its permission state.
type LocationSource interface {
	Permitted() bool
	Current() (model.Coordinates, error)
}
