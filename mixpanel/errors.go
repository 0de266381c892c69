package mixpanel

import "errors"

var (
	// ErrConfig is returned when the export configuration can not produce a
	// meaningful run, e.g. missing api credentials.
	ErrConfig = errors.New("config error")

	// ErrDuplicateName is returned when two queries target the same sheet.
	ErrDuplicateName = errors.New("duplicate query name")

	// ErrTransport is returned when the export API could not be reached or
	// answered with a non 2xx status.
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse is returned when a response does not have the
	// shape expected for its endpoint.
	ErrMalformedResponse = errors.New("malformed response")
)
