package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/horockey/regclient/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// InvokeOnce opens a connection to addr, performs a single unary call and
// closes the connection whatever the outcome.
// Connection-level failures are returned as model.TransportError.
func InvokeOnce(
	ctx context.Context,
	addr string,
	timeout time.Duration,
	method string,
	req any,
	resp any,
	dialOpts ...grpc.DialOption,
) (resErr error) {
	opts := append(
		[]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())},
		dialOpts...,
	)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return model.TransportError{Op: method, Addr: addr, Err: fmt.Errorf("creating client: %w", err)}
	}
	defer func() {
		if err := conn.Close(); err != nil {
			resErr = errors.Join(resErr, fmt.Errorf("closing connection: %w", err))
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := conn.Invoke(ctx, method, req, resp, CallOptions()...); err != nil {
		if IsTransport(err) {
			return model.TransportError{Op: method, Addr: addr, Err: err}
		}
		return fmt.Errorf("calling %s on %s: %w", method, addr, err)
	}

	return nil
}

// IsTransport reports whether err came from the connection rather than
// from the remote handler.
func IsTransport(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return true
	default:
		return false
	}
}

func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
