package ports

import (
	"context"
	"encoding/json"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/dto"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"
)

// DataChannel is the request/response side of the backend. Job payloads are
// returned raw because their shape varies; the normalizer owns decoding.
// Failures are reported as *myerrors.TransportError when the backend
// answered, plain wrapped errors otherwise.
type DataChannel interface {
	FetchJobs(ctx context.Context, category model.JobCategory) ([]json.RawMessage, error)
	FetchJobDetail(ctx context.Context, jobID string) (json.RawMessage, error)
	PatchJobStatus(ctx context.Context, jobID string, req dto.StatusPatchRequest) error
	PostPickupVerification(ctx context.Context, jobID, code string) error
	PostPickupVerificationLegacy(ctx context.Context, jobID, code string) error
	PostLocation(ctx context.Context, loc dto.LocationRequest) error
}
