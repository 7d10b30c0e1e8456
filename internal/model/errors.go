package model

import (
	"errors"
	"fmt"
)

var ErrNotRegistered = errors.New("service is not registered yet")

var (
	_ error = ServiceNotFoundError{}
	_ error = RegistrationError{}
	_ error = ResolutionError{}
	_ error = TransportError{}
	_ error = HeartbeatFailure{}
)

type ServiceNotFoundError struct {
	Name string
}

func (err ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service %s not found", err.Name)
}

// RegistrationError is fatal to startup unless the caller retries.
type RegistrationError struct {
	Name string
	Err  error
}

func (err RegistrationError) Error() string {
	return fmt.Sprintf("registering %s: %s", err.Name, errString(err.Err))
}

func (err RegistrationError) Unwrap() error {
	return err.Err
}

// ResolutionError means the registry could not answer, as opposed to
// answering that the name is unknown.
type ResolutionError struct {
	Name string
	Err  error
}

func (err ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %s", err.Name, errString(err.Err))
}

func (err ResolutionError) Unwrap() error {
	return err.Err
}

// TransportError is a connection-level failure against Addr.
type TransportError struct {
	Op   string
	Addr string
	Err  error
}

func (err TransportError) Error() string {
	return fmt.Sprintf("%s on %s: %s", err.Op, err.Addr, errString(err.Err))
}

func (err TransportError) Unwrap() error {
	return err.Err
}

// HeartbeatFailure is always recovered by the scheduler.
type HeartbeatFailure struct {
	Err error
}

func (err HeartbeatFailure) Error() string {
	return fmt.Sprintf("sending heartbeat: %s", errString(err.Err))
}

func (err HeartbeatFailure) Unwrap() error {
	return err.Err
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
