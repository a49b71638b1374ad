package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clinauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FailureKind tells a semantic refusal apart from an infrastructure failure.
type FailureKind int

const (
	// Rejected means the remote store answered and said no.
	Rejected FailureKind = iota
	// Unreachable covers transport errors, timeouts and server faults.
	Unreachable
)

func (k FailureKind) String() string {
	if k == Unreachable {
		return "unreachable"
	}
	return "rejected"
}

// Failure is a classified remote error.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("remote %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

var semantic = []error{
	common.ErrEmailInUse,
	common.ErrNotFound,
	common.ErrInvalidCredentials,
	common.ErrValidation,
	common.ErrInvalidOrExpiredToken,
	common.ErrNoSession,
}

// Classify tags err. Errors matching an identity sentinel are Rejected,
// everything else is Unreachable. A nil error yields nil.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	for _, s := range semantic {
		if errors.Is(err, s) {
			return &Failure{Kind: Rejected, Err: err}
		}
	}
	return &Failure{Kind: Unreachable, Err: err}
}

// IsUnreachable reports whether err is an infrastructure failure.
func IsUnreachable(err error) bool {
	f := Classify(err)
	return f != nil && f.Kind == Unreachable
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	switch st.Code() {
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrEmailInUse, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrInvalidCredentials, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", common.ErrInvalidOrExpiredToken, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", common.ErrNetwork, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
