// Package grpc exposes UserService as the IdentityService gRPC API.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/clinauth/internal/logging"
	pb "github.com/dmitrijs2005/clinauth/internal/proto"
	"github.com/dmitrijs2005/clinauth/internal/server/auth"
	"github.com/dmitrijs2005/clinauth/internal/server/models"
	"github.com/dmitrijs2005/clinauth/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is what the handlers need from services.UserService.
type UserService interface {
	Find(ctx context.Context, email string) ([]*models.User, error)
	Insert(ctx context.Context, in services.NewUser) (*models.User, error)
	Delete(ctx context.Context, id string) error
	SignIn(ctx context.Context, email, password string) (string, error)
	SendPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID, password string) error
	ValidateResetToken(ctx context.Context, token string) (*auth.Claims, error)
}

type GRPCServer struct {
	pb.UnimplementedIdentityServiceServer
	address   string
	users     UserService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us UserService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		jwtSecret: []byte(secretKey),
	}
}

// newServer builds a grpc.Server with the interceptor chain and the service
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterIdentityServiceServer(srv, s)
	return srv
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}
