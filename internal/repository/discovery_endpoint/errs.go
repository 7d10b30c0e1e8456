package discovery_endpoint

var _ error = EndpointNotFoundError{}

type EndpointNotFoundError struct{}

func (err EndpointNotFoundError) Error() string {
	return "discovery endpoint not stored yet"
}
