package mixpanel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	tests := []struct {
		name       string
		parameters []string
		secret     string
		want       string
	}{
		{
			name:       "sorted before hashing",
			parameters: []string{"expire=1000", "api_key=abc", "event=Video Start"},
			secret:     "s3cr3t",
			want:       "41b5cdcc2a96865a9693ed5c530efa86",
		},
		{
			name:       "empty",
			parameters: nil,
			secret:     "",
			want:       "d41d8cd98f00b204e9800998ecf8427e",
		},
		{
			name:       "whole pair order differs from key order",
			parameters: []string{"a=1", "a0=2"},
			secret:     "secret",
			// md5("a0=2a=1secret"); key order would hash "a=1a0=2secret".
			want: "c388cf68c99a36b8ac0426e2cb73ad02",
		},
		{
			name:       "secret only",
			parameters: []string{},
			secret:     "secret",
			want:       "5ebe2294ecd0e0f08eab7690d2a6ee69",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sign(tt.parameters, tt.secret)

			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 32)
		})
	}
}

func TestSignIsOrderIndependent(t *testing.T) {
	a := []string{"b=2", "a=1", "c=3"}
	b := []string{"c=3", "b=2", "a=1"}

	assert.Equal(t, Sign(a, "x"), Sign(b, "x"))
	assert.Equal(t, []string{"b=2", "a=1", "c=3"}, a, "input must not be reordered")
}

func TestSignSortsWholePairs(t *testing.T) {
	byPair := Sign([]string{"a=1", "a0=2"}, "secret")

	assert.NotEqual(t, "934b8bddb46a1bca9d845f11daf669eb", byPair)
	assert.Equal(t, Sign([]string{"a0=2", "a=1"}, "secret"), byPair)
}
