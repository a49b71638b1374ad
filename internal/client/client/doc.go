// Package client contains the client-side transport to the remote identity
// store and the local database bootstrap.
//
// # Overview
//
//  1. Client is the remote contract used by the remote identity backend:
//     Ping, FindUsers, InsertUser, DeleteUser, SignIn/SignOut,
//     SendPasswordReset, UpdatePassword and ValidateResetToken.
//  2. GRPCClient implements it over gRPC. It keeps the access token issued by
//     SignIn and attaches it to every call through a unary interceptor.
//  3. InitDatabase and RunMigrations open the local SQLite file and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// gRPC status codes are mapped to the sentinels in package common. Classify
// tags any remote error as Rejected (the store answered no) or Unreachable
// (transport, timeout or server fault); the orchestrator uses the tag to
// decide whether the local fallback may run.
package client
