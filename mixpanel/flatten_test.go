package mixpanel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFlattenSegmentation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     [][]interface{}
		wantErr  error
		errMatch string
	}{
		{
			name: "rows follow response order",
			body: `{"legend_size":2,"data":{"series":["2024-03-14","2024-03-13"],"values":{"Video Start":{"2024-03-14":7,"2024-03-13":4},"App Open":{"2024-03-13":12}}}}`,
			want: [][]interface{}{
				{"Video Start", "2024-03-14", int64(7)},
				{"Video Start", "2024-03-13", int64(4)},
				{"App Open", "2024-03-13", int64(12)},
			},
		},
		{
			name: "average values stay fractional",
			body: `{"data":{"values":{"Watch Time":{"2024-03-14":1.5,"2024-03-15":2.0}}}}`,
			want: [][]interface{}{
				{"Watch Time", "2024-03-14", 1.5},
				{"Watch Time", "2024-03-15", 2.0},
			},
		},
		{
			name: "no data points",
			body: `{"data":{"series":[],"values":{}}}`,
			want: [][]interface{}{},
		},
		{
			name:     "missing data",
			body:     `{"legend_size":0}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `missing "data"`,
		},
		{
			name:     "missing values",
			body:     `{"data":{"series":[]}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `missing "data.values"`,
		},
		{
			name:     "api error",
			body:     `{"error":"Invalid API key"}`,
			wantErr:  ErrMalformedResponse,
			errMatch: "api error: Invalid API key",
		},
		{
			name:     "non numeric value",
			body:     `{"data":{"values":{"Video Start":{"2024-03-14":"7"}}}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: "Video Start 2024-03-14",
		},
		{
			name:    "not an object",
			body:    `[1,2,3]`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "truncated",
			body:    `{"data":{"values":{"Video Start":{`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "trailing data",
			body:    `{"data":{"values":{}}} {}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:     "missing colon",
			body:     `{"data" {"values":{"A":{"2020-01-01":5}}}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: "invalid json",
		},
		{
			name:     "missing comma",
			body:     `{"data":{"values":{"A":{"2020-01-01" 5 "x":6}}}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: "invalid json",
		},
		{
			name:     "duplicate data",
			body:     `{"data":{"values":{"A":{"2020-01-01":5}}},"data":{"values":{"B":{"x":1}}}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `duplicate key "data"`,
		},
		{
			name:     "duplicate values",
			body:     `{"data":{"values":{"A":{"2020-01-01":5}},"values":{"B":{"x":1}}}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `duplicate key "values"`,
		},
		{
			name:     "duplicate bucket",
			body:     `{"data":{"values":{"A":{"2020-01-01":5,"2020-01-01":6}}}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `duplicate key "2020-01-01"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlattenSegmentation([]byte(tt.body))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				if tt.errMatch != "" {
					assert.ErrorContains(t, err, tt.errMatch)
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, []string{"report", "time period", "data"}, got.Header)

			if diff := cmp.Diff(tt.want, got.Rows); diff != "" {
				t.Errorf("FlattenSegmentation() rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlattenRetention(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     [][]interface{}
		wantErr  error
		errMatch string
	}{
		{
			name: "ragged rows",
			body: `{"2024-03-04":{"counts":[10,6,3],"first":12},"2024-03-11":{"first":9,"counts":[8]},"2024-03-18":{"first":0,"counts":[]}}`,
			want: [][]interface{}{
				{"2024-03-04", int64(12), int64(10), int64(6), int64(3)},
				{"2024-03-11", int64(9), int64(8)},
				{"2024-03-18", int64(0)},
			},
		},
		{
			name: "integral floats and unknown keys",
			body: `{"2024-03-04":{"first":12.0,"counts":[10.0],"rates":[0.8]}}`,
			want: [][]interface{}{
				{"2024-03-04", int64(12), int64(10)},
			},
		},
		{
			name: "no cohorts",
			body: `{}`,
			want: [][]interface{}{},
		},
		{
			name:     "missing first",
			body:     `{"2024-03-04":{"counts":[1]}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `2024-03-04: missing "first"`,
		},
		{
			name:     "missing counts",
			body:     `{"2024-03-04":{"first":1}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `2024-03-04: missing "counts"`,
		},
		{
			name:     "fractional count",
			body:     `{"2024-03-04":{"first":3,"counts":[2.5]}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: "2024-03-04",
		},
		{
			name:    "counts not an array",
			body:    `{"2024-03-04":{"first":3,"counts":2}}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:     "api error",
			body:     `{"error":"rate limit exceeded"}`,
			wantErr:  ErrMalformedResponse,
			errMatch: "api error: rate limit exceeded",
		},
		{
			name:    "cohort not an object",
			body:    `{"2024-03-04":[1,2]}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:     "missing array comma",
			body:     `{"2020-01-01":{"first":10,"counts":[10 5 2]}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: "invalid json",
		},
		{
			name:     "trailing comma",
			body:     `{"2020-01-01":{"first":10,"counts":[10,5,2],}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: "invalid json",
		},
		{
			name:     "duplicate date",
			body:     `{"2020-01-01":{"first":10,"counts":[10]},"2020-01-01":{"first":3,"counts":[1]}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `duplicate key "2020-01-01"`,
		},
		{
			name:     "duplicate counts",
			body:     `{"2020-01-01":{"first":10,"counts":[10],"counts":[1]}}`,
			wantErr:  ErrMalformedResponse,
			errMatch: `duplicate key "counts"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlattenRetention([]byte(tt.body))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				if tt.errMatch != "" {
					assert.ErrorContains(t, err, tt.errMatch)
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, []string{"date", "first", "counts"}, got.Header)

			if diff := cmp.Diff(tt.want, got.Rows); diff != "" {
				t.Errorf("FlattenRetention() rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	seg, err := Flatten(EndpointSegmentation, []byte(`{"data":{"values":{"a":{"d":1}}}}`))
	assert.NoError(t, err)
	assert.Len(t, seg.Rows, 1)

	ret, err := Flatten(EndpointRetention, []byte(`{"d":{"first":1,"counts":[]}}`))
	assert.NoError(t, err)
	assert.Len(t, ret.Rows, 1)

	_, err = Flatten(Endpoint("funnels"), []byte(`{}`))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestTableValues(t *testing.T) {
	table := &Table{
		Header: []string{"date", "first", "counts"},
		Rows: [][]interface{}{
			{"2024-03-04", int64(12), int64(10)},
		},
	}

	assert.Equal(t, [][]interface{}{
		{"date", "first", "counts"},
		{"2024-03-04", int64(12), int64(10)},
	}, table.Values())

	empty := &Table{Header: []string{"report", "time period", "data"}, Rows: [][]interface{}{}}
	assert.Equal(t, [][]interface{}{{"report", "time period", "data"}}, empty.Values())
}
