package grpc

import (
	"errors"

	"github.com/dmitrijs2005/clinauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrEmailInUse, codes.AlreadyExists},
	{common.ErrNotFound, codes.NotFound},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrValidation, codes.InvalidArgument},
	{common.ErrInvalidOrExpiredToken, codes.FailedPrecondition},
}

// toStatus maps service errors onto the codes the client translates back.
// Anything unknown is Internal and its text is not sent.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return status.Error(ec.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}
