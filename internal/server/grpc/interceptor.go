package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/common"
	pb "github.com/dmitrijs2005/clinauth/internal/proto"
	"github.com/dmitrijs2005/clinauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFromContext returns the id the interceptor attached, if any.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func accessToken(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// accessTokenInterceptor guards UpdatePassword and DeleteUser. A reset token
// in an UpdatePassword body names the account to change; otherwise the caller
// must present an access token in metadata. DeleteUser additionally requires
// the token to belong to the account being deleted.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	in, _ := req.(*structpb.Struct)

	switch info.FullMethod {
	case pb.FullMethod(pb.MethodUpdatePassword):
		if resetToken := pb.String(in, pb.FieldResetToken); resetToken != "" {
			claims, err := auth.ParseResetToken(resetToken, s.jwtSecret)
			if err != nil {
				return nil, status.Error(codes.FailedPrecondition, "invalid or expired reset token")
			}
			return handler(context.WithValue(ctx, userIDKey, claims.UserID), req)
		}
		userID, err := s.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(context.WithValue(ctx, userIDKey, userID), req)

	case pb.FullMethod(pb.MethodDeleteUser):
		userID, err := s.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		if userID != pb.String(in, pb.FieldID) {
			return nil, status.Error(codes.PermissionDenied, "token does not match account")
		}
		return handler(context.WithValue(ctx, userIDKey, userID), req)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) authenticate(ctx context.Context) (string, error) {
	token := accessToken(ctx)
	if token == "" {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", status.Error(codes.Unauthenticated, "invalid access token")
	}
	return userID, nil
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
