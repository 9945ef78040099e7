package scoutapi

import (
	"context"
	"errors"
	"fmt"
)

// Client is the boundary to the chapter's remote backend. The backend owns
// registration, credential checking and the server-side cart.
//
//go:generate mockgen -source=api.go -package scoutapi -destination client_mock.go Client
type Client interface {
	Register(c context.Context, req RegisterRequest) error
	Login(c context.Context, req LoginRequest) (LoginResponse, error)
	AddCartItem(c context.Context, req AddCartItemRequest) error
}

type RegisterRequest struct {
	Email    string
	Password string
	Username string
	Role     string
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResponse struct {
	Token    string
	UserUID  string
	Username string
	Role     string
}

type AddCartItemRequest struct {
	ProductUID string
	UserUID    string
	Quantity   int
}

type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindDuplicateIdentity
	ErrorKindAuthRejected
	ErrorKindTransient
)

// RemoteError carries the kind of remote failure so that the caller can pick
// a user-facing message without inspecting wire details.
type RemoteError struct {
	Kind    ErrorKind
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (kind %d): %s", e.Kind, e.Message)
}

func errorKind(err error) ErrorKind {
	remoteErr := &RemoteError{}
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind
	}
	return ErrorKindUnknown
}

func IsDuplicateIdentity(err error) bool {
	return errorKind(err) == ErrorKindDuplicateIdentity
}

func IsAuthRejected(err error) bool {
	return errorKind(err) == ErrorKindAuthRejected
}

func IsTransient(err error) bool {
	return errorKind(err) == ErrorKindTransient
}

// RemoteMessage returns the backend's verbatim message, or "" for errors
// without one (transport failures).
func RemoteMessage(err error) string {
	remoteErr := &RemoteError{}
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}
	return ""
}
