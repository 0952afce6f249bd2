package grpcapi

import (
	"errors"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codeFor(err), err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMatrixNotFound),
		errors.Is(err, domain.ErrDonateNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidBuildType),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrHouseCannotDonate):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrPendingDonationExists),
		errors.Is(err, domain.ErrStatusNotUpgrade),
		errors.Is(err, domain.ErrDonationCanceled),
		errors.Is(err, domain.ErrNoHouse):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrUserExists):
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}
