package grpc

import (
	"errors"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrMissingFields), errors.Is(err, e.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrProductMissing):
		return status.Error(codes.NotFound, e.ErrProductMissing.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}
