package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/myerrors"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
	"github.com/gowrishetty09/bal-driver-sub001/internal/mylogger"
)

type VerifyFailure string

const (
	FailureInvalidCode VerifyFailure = "INVALID_CODE"
	FailureCodeLocked  VerifyFailure = "CODE_LOCKED"
)

// VerifyResult is the outcome of a pickup-code verification. A business
// rejection is a result, not an error; only unexpected transport failures
// are returned as errors.
type VerifyResult struct {
	OK      bool
	Failure VerifyFailure
	Message string
}

// VerificationService runs the pickup-code verification protocol against
// the data channel. Two backend deployments expose the operation on
// different routes; the legacy route is tried exactly once and only when
// the primary route itself is missing, never when a code was rejected.
type VerificationService struct {
	data ports.DataChannel
	log  mylogger.Logger
}

func NewVerificationService(data ports.DataChannel, log mylogger.Logger) *VerificationService {
	return &VerificationService{data: data, log: log}
}

// VerifyPickupCode issues at most two network attempts: the primary route,
// and the legacy route only on a route-not-found class transport error.
func (s *VerificationService) VerifyPickupCode(ctx context.Context, jobID, code string) (VerifyResult, error) {
	log := s.log.Action("verify_pickup_code").With("job_id", jobID)

	err := s.data.PostPickupVerification(ctx, jobID, code)
	result, fallback, err := interpret(err)
	if !fallback {
		return result, err
	}

	log.Warn("primary verification route missing, trying legacy route")
	err = s.data.PostPickupVerificationLegacy(ctx, jobID, code)
	result, fallback, err = interpret(err)
	if fallback {
		// the legacy route is missing too; surface the transport error
		return VerifyResult{}, err
	}
	return result, err
}

// interpret classifies one attempt's outcome. fallback is true only for a
// route-not-found transport error without a recognized rejection tag.
func interpret(err error) (result VerifyResult, fallback bool, _ error) {
	if err == nil {
		return VerifyResult{OK: true}, false, nil
	}

	var te *myerrors.TransportError
	if !errors.As(err, &te) {
		return VerifyResult{}, false, err
	}

	switch VerifyFailure(te.Tag()) {
	case FailureInvalidCode:
		return VerifyResult{Failure: FailureInvalidCode, Message: te.Message()}, false, nil
	case FailureCodeLocked:
		return VerifyResult{Failure: FailureCodeLocked, Message: te.Message()}, false, nil
	}

	if te.StatusCode == http.StatusNotFound || te.StatusCode == http.StatusMethodNotAllowed {
		return VerifyResult{}, true, err
	}
	return VerifyResult{}, false, err
}
