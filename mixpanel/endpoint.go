package mixpanel

import "fmt"

// Endpoint is an export API report endpoint.
type Endpoint string

const (
	EndpointSegmentation Endpoint = "segmentation"
	EndpointRetention    Endpoint = "retention"
)

const apiPathPrefix = "/api/2.0/"

func (e Endpoint) Valid() bool {
	switch e {
	case EndpointSegmentation, EndpointRetention:
		return true
	default:
		return false
	}
}

// Path returns the url path of the endpoint.
func (e Endpoint) Path() string {
	return apiPathPrefix + string(e)
}

// Header returns the header row of the tables produced for the endpoint.
func (e Endpoint) Header() []string {
	switch e {
	case EndpointSegmentation:
		return []string{"report", "time period", "data"}
	case EndpointRetention:
		return []string{"date", "first", "counts"}
	default:
		return nil
	}
}

func parseEndpoint(v string) (Endpoint, error) {
	e := Endpoint(v)
	if !e.Valid() {
		return "", fmt.Errorf("%w: unknown endpoint %q", ErrConfig, v)
	}

	return e, nil
}
