package liteapi

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnexpectedMessage is returned when a message kind does not match the
// protocol expectation, such as receiving a Query while awaiting an Answer.
// It has the same severity as a codec error: fatal for the exchange, not for
// the connection.
var ErrUnexpectedMessage = errors.New("unexpected message kind")

// ServerError is the typed error a peer returned in place of a positive
// response. The connection remains healthy; the error belongs to a single
// call.
type ServerError struct {
	Code    int32
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Service handles a wrapped lite request and produces a response. It is the
// handler abstraction shared by the client and server stacks.
type Service interface {
	Call(ctx context.Context, req *WrappedRequest) (Response, error)
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(ctx context.Context, req *WrappedRequest) (Response, error)

// Call implements Service.
func (f ServiceFunc) Call(ctx context.Context, req *WrappedRequest) (Response, error) {
	return f(ctx, req)
}

// MessageService handles one envelope message and produces the message to
// send back. It is the transport-facing abstraction of the stacks.
type MessageService interface {
	Call(ctx context.Context, msg Message) (Message, error)
}

// MessageServiceFunc adapts a function to the MessageService interface.
type MessageServiceFunc func(ctx context.Context, msg Message) (Message, error)

// Call implements MessageService.
func (f MessageServiceFunc) Call(ctx context.Context, msg Message) (Message, error) {
	return f(ctx, msg)
}

// WrapMessages adapts a message-level transport into a request/response
// Service for the client side: it wraps the request in a Query with a
// zero correlation tag and unwraps the resulting Answer. Tag assignment is
// not done here; the multiplexer overwrites the tag before the bytes leave.
func WrapMessages(inner MessageService) Service {
	return ServiceFunc(func(ctx context.Context, req *WrappedRequest) (Response, error) {
		msg, err := inner.Call(ctx, Query{Query: LiteQuery{WrappedRequest: *req}})
		if err != nil {
			return nil, err
		}
		answer, ok := msg.(Answer)
		if !ok {
			return nil, fmt.Errorf("%w: awaiting answer, got %T", ErrUnexpectedMessage, msg)
		}
		return answer.Answer, nil
	})
}

// UnwrapMessages adapts a request/response Service into a message-level
// handler for the server side: queries are unwrapped, handled and re-wrapped
// as answers under the echoed tag, and pings are answered directly without
// invoking the handler.
func UnwrapMessages(inner Service) MessageService {
	return MessageServiceFunc(func(ctx context.Context, msg Message) (Message, error) {
		switch m := msg.(type) {
		case Query:
			resp, err := inner.Call(ctx, &m.Query.WrappedRequest)
			if err != nil {
				return nil, err
			}
			return Answer{QueryId: m.QueryId, Answer: resp}, nil
		case Ping:
			return Pong{RandomId: m.RandomId}, nil
		default:
			return nil, fmt.Errorf("%w: awaiting query, got %T", ErrUnexpectedMessage, msg)
		}
	})
}

// WrapError converts handler failures into Error responses with code 500 so
// they travel back to the client instead of tearing down the exchange. No
// error surfaces upward.
func WrapError(inner Service) Service {
	return ServiceFunc(func(ctx context.Context, req *WrappedRequest) (Response, error) {
		resp, err := inner.Call(ctx, req)
		if err != nil {
			return Error{Code: 500, Message: err.Error()}, nil
		}
		return resp, nil
	})
}

// UnwrapError converts Error responses into typed *ServerError failures on
// the client side so callers only see positive responses.
func UnwrapError(inner Service) Service {
	return ServiceFunc(func(ctx context.Context, req *WrappedRequest) (Response, error) {
		resp, err := inner.Call(ctx, req)
		if err != nil {
			return nil, err
		}
		if e, ok := resp.(Error); ok {
			return nil, &ServerError{Code: e.Code, Message: e.Message}
		}
		return resp, nil
	})
}
