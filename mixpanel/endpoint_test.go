package mixpanel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpoint(t *testing.T) {
	assert.True(t, EndpointSegmentation.Valid())
	assert.True(t, EndpointRetention.Valid())
	assert.False(t, Endpoint("funnels").Valid())

	assert.Equal(t, "/api/2.0/retention", EndpointRetention.Path())

	e, err := parseEndpoint("segmentation")
	assert.NoError(t, err)
	assert.Equal(t, EndpointSegmentation, e)

	_, err = parseEndpoint("Segmentation")
	assert.ErrorIs(t, err, ErrConfig)
}
