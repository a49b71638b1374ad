package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/common"
	pb "github.com/dmitrijs2005/clinauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultRequestTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      pb.IdentityServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = t
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if t := s.token(); t != "" {
		ctx = withAccessToken(ctx, t)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewIdentityClient prepares a connection to endpointURL. The connection is
// established lazily, so an unreachable server surfaces on the first call.
func NewIdentityClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewIdentityServiceClient(conn)
	return nil
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &structpb.Struct{})
	if err != nil {
		return mapError(err)
	}

	if pb.String(resp, pb.FieldStatus) != pb.StatusOK {
		return fmt.Errorf("%w: bad ping status", common.ErrNetwork)
	}

	return nil
}

func (s *GRPCClient) FindUsers(ctx context.Context, email string) ([]Row, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := pb.Strings(map[string]string{pb.FieldEmail: email})

	resp, err := s.client.FindUsers(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	var rows []Row
	for _, r := range pb.Structs(resp, pb.FieldRows) {
		rows = append(rows, r.AsMap())
	}
	return rows, nil
}

func (s *GRPCClient) InsertUser(ctx context.Context, row Row) (Row, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	in, err := structpb.NewStruct(row)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	resp, err := s.client.InsertUser(ctx, pb.WithStruct(pb.FieldRow, in))
	if err != nil {
		return nil, mapError(err)
	}

	out := pb.Struct(resp, pb.FieldRow)
	if out == nil {
		return nil, fmt.Errorf("rpc error: empty insert reply")
	}
	return out.AsMap(), nil
}

func (s *GRPCClient) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DeleteUser(ctx, pb.Strings(map[string]string{pb.FieldID: id}))
	return mapError(err)
}

func (s *GRPCClient) SignIn(ctx context.Context, email string, password []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := pb.Strings(map[string]string{pb.FieldEmail: email, pb.FieldPassword: string(password)})

	resp, err := s.client.SignIn(ctx, req)
	if err != nil {
		return mapError(err)
	}

	s.setToken(pb.String(resp, pb.FieldAccessToken))
	return nil
}

func (s *GRPCClient) SignOut() {
	s.setToken("")
}

func (s *GRPCClient) HasSession() bool {
	return s.token() != ""
}

func (s *GRPCClient) SendPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.SendPasswordReset(ctx, pb.Strings(map[string]string{pb.FieldEmail: email}))
	return mapError(err)
}

func (s *GRPCClient) UpdatePassword(ctx context.Context, password []byte, resetToken string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := pb.Strings(map[string]string{pb.FieldPassword: string(password), pb.FieldResetToken: resetToken})

	_, err := s.client.UpdatePassword(ctx, req)
	return mapError(err)
}

func (s *GRPCClient) ValidateResetToken(ctx context.Context, token string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ValidateResetToken(ctx, pb.Strings(map[string]string{pb.FieldToken: token}))
	if err != nil {
		return "", mapError(err)
	}
	return pb.String(resp, pb.FieldEmail), nil
}
