package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/common"
	pb "github.com/dmitrijs2005/clinauth/internal/proto"
	"github.com/dmitrijs2005/clinauth/internal/server/auth"
	"github.com/dmitrijs2005/clinauth/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func carol() *models.User {
	return &models.User{
		ID: "c1", Email: "carol@example.com", PasswordHash: "secret1", Profession: "clinician",
		FullName: "Carol", LicenseNumber: "CRM-1",
		CreatedAt: time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("x: %w", common.ErrEmailInUse), codes.AlreadyExists},
		{common.ErrNotFound, codes.NotFound},
		{common.ErrInvalidCredentials, codes.Unauthenticated},
		{fmt.Errorf("%w: short", common.ErrValidation), codes.InvalidArgument},
		{common.ErrInvalidOrExpiredToken, codes.FailedPrecondition},
		{errors.New("pg down"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(toStatus(tt.err)))
		})
	}
	assert.NoError(t, toStatus(nil))

	st, _ := status.FromError(toStatus(errors.New("password=hunter2")))
	assert.NotContains(t, st.Message(), "hunter2")
}

func TestPing(t *testing.T) {
	resp, err := newTestServer().Ping(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, pb.StatusOK, pb.String(resp, pb.FieldStatus))
}

func TestFindUsers(t *testing.T) {
	s := NewGRPCServer("", nopLogger{}, newFakeUsers(carol()), testSecret)

	resp, err := s.FindUsers(context.Background(), pb.Strings(map[string]string{pb.FieldEmail: "CAROL@example.com"}))
	require.NoError(t, err)

	rows := pb.Structs(resp, pb.FieldRows)
	require.Len(t, rows, 1)
	want := map[string]any{
		"id": "c1", "email": "carol@example.com", "profession": "clinician",
		"full_name": "Carol", "license_number": "CRM-1",
		"created_at": "2025-05-06T07:08:09Z",
	}
	assert.Empty(t, cmp.Diff(want, rows[0].AsMap()))

	resp, err = s.FindUsers(context.Background(), pb.Strings(map[string]string{pb.FieldEmail: "ghost@example.com"}))
	require.NoError(t, err)
	assert.Empty(t, pb.Structs(resp, pb.FieldRows))
}

func TestFindUsers_Error(t *testing.T) {
	users := newFakeUsers()
	users.findErr = errors.New("pg down")
	s := NewGRPCServer("", nopLogger{}, users, testSecret)

	_, err := s.FindUsers(context.Background(), pb.Strings(nil))
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestInsertUser(t *testing.T) {
	users := newFakeUsers(carol())
	s := NewGRPCServer("", nopLogger{}, users, testSecret)

	row := pb.Strings(map[string]string{
		"email": "dave@example.com", "profession": "patient", pb.FieldPassword: "secret1",
		"created_at": "2024-01-01T00:00:00Z",
	})
	resp, err := s.InsertUser(context.Background(), pb.WithStruct(pb.FieldRow, row))
	require.NoError(t, err)

	out := pb.Struct(resp, pb.FieldRow)
	assert.Equal(t, "srv-1", pb.String(out, "id"))
	assert.Equal(t, "2024-01-01T00:00:00Z", pb.String(out, "created_at"))
	assert.Empty(t, pb.String(out, pb.FieldPasswordHash))
	assert.Equal(t, "secret1", users.byEmail["dave@example.com"].PasswordHash)

	_, err = s.InsertUser(context.Background(), pb.WithStruct(pb.FieldRow, pb.Strings(map[string]string{"email": "carol@example.com"})))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = s.InsertUser(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDeleteUser(t *testing.T) {
	users := newFakeUsers(carol())
	s := NewGRPCServer("", nopLogger{}, users, testSecret)

	_, err := s.DeleteUser(context.Background(), pb.Strings(map[string]string{pb.FieldID: "c1"}))
	require.NoError(t, err)
	assert.Empty(t, users.byEmail)

	_, err = s.DeleteUser(context.Background(), pb.Strings(map[string]string{pb.FieldID: "c1"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestSignIn(t *testing.T) {
	s := NewGRPCServer("", nopLogger{}, newFakeUsers(carol()), testSecret)

	resp, err := s.SignIn(context.Background(), pb.Strings(map[string]string{pb.FieldEmail: "carol@example.com", pb.FieldPassword: "secret1"}))
	require.NoError(t, err)
	id, err := auth.GetUserIDFromToken(pb.String(resp, pb.FieldAccessToken), []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "c1", id)

	_, err = s.SignIn(context.Background(), pb.Strings(map[string]string{pb.FieldEmail: "carol@example.com", pb.FieldPassword: "nope"}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestSendPasswordReset(t *testing.T) {
	users := newFakeUsers(carol())
	s := NewGRPCServer("", nopLogger{}, users, testSecret)

	_, err := s.SendPasswordReset(context.Background(), pb.Strings(map[string]string{pb.FieldEmail: "carol@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"carol@example.com"}, users.resets)

	_, err = s.SendPasswordReset(context.Background(), pb.Strings(map[string]string{pb.FieldEmail: "ghost@example.com"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUpdatePassword_NeedsInterceptor(t *testing.T) {
	s := NewGRPCServer("", nopLogger{}, newFakeUsers(carol()), testSecret)

	_, err := s.UpdatePassword(context.Background(), pb.Strings(map[string]string{pb.FieldPassword: "brandnew"}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := context.WithValue(context.Background(), userIDKey, "c1")
	_, err = s.UpdatePassword(ctx, pb.Strings(map[string]string{pb.FieldPassword: "brandnew"}))
	require.NoError(t, err)

	_, err = s.UpdatePassword(ctx, pb.Strings(map[string]string{pb.FieldPassword: "x"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestValidateResetToken(t *testing.T) {
	s := NewGRPCServer("", nopLogger{}, newFakeUsers(carol()), testSecret)

	token, err := auth.GenerateResetToken("c1", "carol@example.com", []byte(testSecret), time.Minute)
	require.NoError(t, err)

	resp, err := s.ValidateResetToken(context.Background(), pb.Strings(map[string]string{pb.FieldToken: token}))
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", pb.String(resp, pb.FieldEmail))

	_, err = s.ValidateResetToken(context.Background(), pb.Strings(map[string]string{pb.FieldToken: "junk"}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}
