package regclient

import "github.com/horockey/regclient/internal/model"

var ErrNotRegistered = model.ErrNotRegistered

type (
	RegistrationError    = model.RegistrationError
	ResolutionError      = model.ResolutionError
	TransportError       = model.TransportError
	ServiceNotFoundError = model.ServiceNotFoundError
	HeartbeatFailure     = model.HeartbeatFailure
)
