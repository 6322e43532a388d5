package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
)

// toStatus maps an application error to a gRPC status. Validation errors carry a
// BadRequest detail naming the offending field.
func toStatus(err error, action string) error {
	var validation *apperrors.ErrValidation
	var notFound *apperrors.ErrNotFound
	var network *apperrors.ErrNetwork
	var cfgErr *apperrors.ErrConfig
	var running *apperrors.ErrBatchRunning

	switch {
	case errors.As(err, &validation):
		st := status.New(codes.InvalidArgument, action+": "+err.Error())
		detailed, detailErr := st.WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{
				{Field: validation.Field, Description: validation.Message},
			},
		})
		if detailErr != nil {
			return st.Err()
		}
		return detailed.Err()
	case errors.As(err, &notFound):
		return status.Errorf(codes.NotFound, "%s: %v", action, err)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s: %v", action, err)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s: %v", action, err)
	case errors.As(err, &network):
		return status.Errorf(codes.Unavailable, "%s: %v", action, err)
	case errors.As(err, &cfgErr), errors.As(err, &running):
		return status.Errorf(codes.FailedPrecondition, "%s: %v", action, err)
	default:
		return status.Errorf(codes.Internal, "%s: %v", action, err)
	}
}
