package dto

// Request/Response models for the data channel

type StatusPatchRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	OTP    string `json:"otp,omitempty"`
}

type PickupVerificationRequest struct {
	Code string `json:"code"`
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
