package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/clinauth/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func ok() *structpb.Struct {
	return pb.Strings(map[string]string{pb.FieldStatus: pb.StatusOK})
}

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return ok(), nil
}

func (s *GRPCServer) FindUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	found, err := s.users.Find(ctx, pb.String(req, pb.FieldEmail))
	if err != nil {
		s.logger.Error(ctx, "find users failed", "error", err)
		return nil, toStatus(err)
	}

	rows := make([]*structpb.Struct, 0, len(found))
	for _, u := range found {
		rows = append(rows, userToRow(u))
	}
	return pb.WithStructs(pb.FieldRows, rows), nil
}

func (s *GRPCServer) InsertUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	row := pb.Struct(req, pb.FieldRow)
	if row == nil {
		return nil, status.Error(codes.InvalidArgument, "row required")
	}

	u, err := s.users.Insert(ctx, rowToNewUser(row))
	if err != nil {
		s.logger.Warn(ctx, "insert user failed", "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return pb.WithStruct(pb.FieldRow, userToRow(u)), nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.users.Delete(ctx, pb.String(req, pb.FieldID)); err != nil {
		return nil, toStatus(err)
	}
	return ok(), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := s.users.SignIn(ctx, pb.String(req, pb.FieldEmail), pb.String(req, pb.FieldPassword))
	if err != nil {
		return nil, toStatus(err)
	}
	return pb.Strings(map[string]string{pb.FieldAccessToken: token}), nil
}

func (s *GRPCServer) SendPasswordReset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.users.SendPasswordReset(ctx, pb.String(req, pb.FieldEmail)); err != nil {
		return nil, toStatus(err)
	}
	return ok(), nil
}

// UpdatePassword relies on accessTokenInterceptor to resolve the account.
func (s *GRPCServer) UpdatePassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	if err := s.users.UpdatePassword(ctx, userID, pb.String(req, pb.FieldPassword)); err != nil {
		return nil, toStatus(err)
	}
	return ok(), nil
}

func (s *GRPCServer) ValidateResetToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	claims, err := s.users.ValidateResetToken(ctx, pb.String(req, pb.FieldToken))
	if err != nil {
		return nil, toStatus(err)
	}
	return pb.Strings(map[string]string{pb.FieldEmail: claims.Email}), nil
}
