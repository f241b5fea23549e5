package service

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Errors returned by PickupService
var (
	ErrStoreIDRequired   = errors.New("store id is required")
	ErrProductIDRequired = errors.New("product id is required")
	ErrNoProducts        = errors.New("at least one product is required")
	ErrUserIDRequired    = errors.New("user id must be positive")
	ErrInvalidPaging     = errors.New("skip and take must not be negative")
	ErrInvalidFilter     = errors.New("invalid filter expression")
	ErrStoreNotFound     = errors.New("store not found")
	ErrProductNotFound   = errors.New("product not found")
)

// ToStatus converts a service error into a gRPC status error
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		return st.Err()
	}

	switch {
	case errors.Is(err, ErrStoreIDRequired),
		errors.Is(err, ErrProductIDRequired),
		errors.Is(err, ErrNoProducts),
		errors.Is(err, ErrUserIDRequired),
		errors.Is(err, ErrInvalidPaging),
		errors.Is(err, ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrStoreNotFound), errors.Is(err, ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
