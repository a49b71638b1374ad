// Package proto describes the IdentityService exchanged between the clinauth
// client and server. Messages are google.protobuf.Struct values so that rows
// can carry the loosely typed records the remote store produces.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "clinauth.IdentityService"

// Method names.
const (
	MethodPing               = "Ping"
	MethodFindUsers          = "FindUsers"
	MethodInsertUser         = "InsertUser"
	MethodDeleteUser         = "DeleteUser"
	MethodSignIn             = "SignIn"
	MethodSendPasswordReset  = "SendPasswordReset"
	MethodUpdatePassword     = "UpdatePassword"
	MethodValidateResetToken = "ValidateResetToken"
)

// Message field names.
const (
	FieldStatus       = "status"
	FieldEmail        = "email"
	FieldID           = "id"
	FieldRow          = "row"
	FieldRows         = "rows"
	FieldPassword     = "password"
	FieldPasswordHash = "password_hash"
	FieldAccessToken  = "access_token"
	FieldResetToken   = "reset_token"
	FieldToken        = "token"
)

// StatusOK is the Ping reply of a healthy server.
const StatusOK = "OK"

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// IdentityServiceServer is implemented by the remote identity server.
type IdentityServiceServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FindUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InsertUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendPasswordReset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateResetToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedIdentityServiceServer can be embedded to get forward
// compatible servers.
type UnimplementedIdentityServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedIdentityServiceServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedIdentityServiceServer) FindUsers(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodFindUsers)
}
func (UnimplementedIdentityServiceServer) InsertUser(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodInsertUser)
}
func (UnimplementedIdentityServiceServer) DeleteUser(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodDeleteUser)
}
func (UnimplementedIdentityServiceServer) SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodSignIn)
}
func (UnimplementedIdentityServiceServer) SendPasswordReset(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodSendPasswordReset)
}
func (UnimplementedIdentityServiceServer) UpdatePassword(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodUpdatePassword)
}
func (UnimplementedIdentityServiceServer) ValidateResetToken(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodValidateResetToken)
}

type unaryCall func(IdentityServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(IdentityServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		h := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, h)
	}
}

// IdentityService_ServiceDesc is the grpc.ServiceDesc for IdentityService.
var IdentityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodPing, Handler: handler(MethodPing, IdentityServiceServer.Ping)},
		{MethodName: MethodFindUsers, Handler: handler(MethodFindUsers, IdentityServiceServer.FindUsers)},
		{MethodName: MethodInsertUser, Handler: handler(MethodInsertUser, IdentityServiceServer.InsertUser)},
		{MethodName: MethodDeleteUser, Handler: handler(MethodDeleteUser, IdentityServiceServer.DeleteUser)},
		{MethodName: MethodSignIn, Handler: handler(MethodSignIn, IdentityServiceServer.SignIn)},
		{MethodName: MethodSendPasswordReset, Handler: handler(MethodSendPasswordReset, IdentityServiceServer.SendPasswordReset)},
		{MethodName: MethodUpdatePassword, Handler: handler(MethodUpdatePassword, IdentityServiceServer.UpdatePassword)},
		{MethodName: MethodValidateResetToken, Handler: handler(MethodValidateResetToken, IdentityServiceServer.ValidateResetToken)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinauth/identity.proto",
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&IdentityService_ServiceDesc, srv)
}

// IdentityServiceClient is the client API for IdentityService.
type IdentityServiceClient interface {
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	FindUsers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	InsertUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SendPasswordReset(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdatePassword(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ValidateResetToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type identityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityServiceClient(cc grpc.ClientConnInterface) IdentityServiceClient {
	return &identityServiceClient{cc: cc}
}

func (c *identityServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodPing, in, opts)
}
func (c *identityServiceClient) FindUsers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodFindUsers, in, opts)
}
func (c *identityServiceClient) InsertUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodInsertUser, in, opts)
}
func (c *identityServiceClient) DeleteUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodDeleteUser, in, opts)
}
func (c *identityServiceClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSignIn, in, opts)
}
func (c *identityServiceClient) SendPasswordReset(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSendPasswordReset, in, opts)
}
func (c *identityServiceClient) UpdatePassword(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodUpdatePassword, in, opts)
}
func (c *identityServiceClient) ValidateResetToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodValidateResetToken, in, opts)
}
