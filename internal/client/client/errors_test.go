package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	rejected := []error{
		common.ErrEmailInUse,
		fmt.Errorf("wrap: %w", common.ErrNotFound),
		mapError(status.Error(codes.Unauthenticated, "bad password")),
		common.ErrInvalidOrExpiredToken,
		common.ErrValidation,
	}
	for _, err := range rejected {
		f := Classify(err)
		require.NotNil(t, f)
		assert.Equal(t, Rejected, f.Kind, err.Error())
		assert.False(t, IsUnreachable(err))
	}

	unreachable := []error{
		mapError(status.Error(codes.Unavailable, "down")),
		mapError(context.DeadlineExceeded),
		mapError(status.Error(codes.Internal, "boom")),
		errors.New("dial tcp: connection refused"),
	}
	for _, err := range unreachable {
		assert.True(t, IsUnreachable(err), err.Error())
	}
}

func TestClassify_KeepsExistingFailure(t *testing.T) {
	orig := &Failure{Kind: Unreachable, Err: common.ErrNotFound}
	wrapped := fmt.Errorf("ctx: %w", orig)
	assert.Same(t, orig, Classify(wrapped))
}

func TestFailure_ErrorAndUnwrap(t *testing.T) {
	f := &Failure{Kind: Rejected, Err: common.ErrEmailInUse}
	assert.Equal(t, "remote rejected: email already registered", f.Error())
	assert.ErrorIs(t, f, common.ErrEmailInUse)
	assert.Equal(t, "unreachable", Unreachable.String())
}
