package mixpanel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/goccy/go-json"
)

const (
	segmentationDataKey   = "data"
	segmentationValuesKey = "values"
	retentionFirstKey     = "first"
	retentionCountsKey    = "counts"
	apiErrorKey           = "error"
)

// Table is the row oriented form of a report, ready to be written to a sheet.
type Table struct {
	Header []string
	Rows   [][]interface{}
}

func newTable(e Endpoint) *Table {
	return &Table{
		Header: e.Header(),
		Rows:   make([][]interface{}, 0),
	}
}

// Values returns the header row followed by the data rows.
func (t *Table) Values() [][]interface{} {
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}

	values := make([][]interface{}, 0, len(t.Rows)+1)
	values = append(values, header)

	return append(values, t.Rows...)
}

// Flatten converts a raw response of the given endpoint into a table.
func Flatten(endpoint Endpoint, body []byte) (*Table, error) {
	switch endpoint {
	case EndpointSegmentation:
		return FlattenSegmentation(body)
	case EndpointRetention:
		return FlattenRetention(body)
	default:
		return nil, fmt.Errorf("%w: unknown endpoint %q", ErrConfig, endpoint)
	}
}

// FlattenSegmentation flattens {"data":{"values":{series:{bucket:value}}}}
// into one [series, bucket, value] row per data point. Rows follow the key
// order of the response.
func FlattenSegmentation(body []byte) (*Table, error) {
	r, err := newTokenReader(body)
	if err != nil {
		return nil, err
	}

	t := newTable(EndpointSegmentation)

	var hasData, hasValues bool

	err = r.object(func(key string) error {
		switch key {
		case apiErrorKey:
			return r.apiError()
		case segmentationDataKey:
			hasData = true
		default:
			return r.skip()
		}

		return r.object(func(key string) error {
			if key != segmentationValuesKey {
				return r.skip()
			}

			hasValues = true

			return r.object(func(series string) error {
				return r.object(func(bucket string) error {
					v, err := r.number()
					if err != nil {
						return fmt.Errorf("%s %s: %w", series, bucket, err)
					}

					t.Rows = append(t.Rows, []interface{}{series, bucket, v})

					return nil
				})
			})
		})
	})
	if err != nil {
		return nil, err
	}

	if err := r.end(); err != nil {
		return nil, err
	}

	switch {
	case !hasData:
		return nil, malformed("missing %q", segmentationDataKey)
	case !hasValues:
		return nil, malformed("missing %q", segmentationDataKey+"."+segmentationValuesKey)
	}

	return t, nil
}

// FlattenRetention flattens {date:{"first":n,"counts":[c0,c1,...]}} into
// [date, first, c0, c1, ...] rows. Rows are ragged when the counts lengths
// differ between dates.
func FlattenRetention(body []byte) (*Table, error) {
	r, err := newTokenReader(body)
	if err != nil {
		return nil, err
	}

	t := newTable(EndpointRetention)

	err = r.object(func(date string) error {
		if date == apiErrorKey {
			return r.apiError()
		}

		var (
			first               int64
			counts              []int64
			hasFirst, hasCounts bool
		)

		err := r.object(func(key string) error {
			var err error

			switch key {
			case retentionFirstKey:
				hasFirst = true
				first, err = r.integer()
			case retentionCountsKey:
				hasCounts = true
				counts, err = r.integers()
			default:
				err = r.skip()
			}

			return err
		})
		if err != nil {
			return fmt.Errorf("%s: %w", date, err)
		}

		switch {
		case !hasFirst:
			return malformed("%s: missing %q", date, retentionFirstKey)
		case !hasCounts:
			return malformed("%s: missing %q", date, retentionCountsKey)
		}

		row := make([]interface{}, 0, 2+len(counts))
		row = append(row, date, first)

		for _, c := range counts {
			row = append(row, c)
		}

		t.Rows = append(t.Rows, row)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.end(); err != nil {
		return nil, err
	}

	return t, nil
}

func malformed(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, a...))
}

// tokenReader walks a json document token by token, which keeps the key
// order of objects that a map would lose. Decoder.Token does not check the
// ':' and ',' separators, so the body is validated up front.
type tokenReader struct {
	dec *json.Decoder
}

func newTokenReader(body []byte) (*tokenReader, error) {
	if !json.Valid(body) {
		return nil, malformed("invalid json")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	return &tokenReader{dec}, nil
}

func (r *tokenReader) next() (json.Token, error) {
	t, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, malformed("unexpected end of response")
		}

		return nil, malformed("%s", err)
	}

	return t, nil
}

// object consumes an object, calling fn for every key. fn must consume the
// key's value. A repeated key fails the object.
func (r *tokenReader) object(fn func(key string) error) error {
	t, err := r.next()
	if err != nil {
		return err
	}

	if d, ok := t.(json.Delim); !ok || d != '{' {
		return malformed("expected object, got %s", describe(t))
	}

	seen := make(map[string]struct{})

	for {
		t, err := r.next()
		if err != nil {
			return err
		}

		if d, ok := t.(json.Delim); ok && d == '}' {
			return nil
		}

		key, ok := t.(string)
		if !ok {
			return malformed("expected object key, got %s", describe(t))
		}

		if _, ok := seen[key]; ok {
			return malformed("duplicate key %q", key)
		}

		seen[key] = struct{}{}

		if err := fn(key); err != nil {
			return err
		}
	}
}

// skip consumes the next value whatever its type.
func (r *tokenReader) skip() error {
	depth := 0

	for {
		t, err := r.next()
		if err != nil {
			return err
		}

		if d, ok := t.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}

		if depth <= 0 {
			return nil
		}
	}
}

func (r *tokenReader) number() (interface{}, error) {
	t, err := r.next()
	if err != nil {
		return nil, err
	}

	return toNumber(t)
}

func (r *tokenReader) integer() (int64, error) {
	t, err := r.next()
	if err != nil {
		return 0, err
	}

	return toInteger(t)
}

func (r *tokenReader) integers() ([]int64, error) {
	t, err := r.next()
	if err != nil {
		return nil, err
	}

	if d, ok := t.(json.Delim); !ok || d != '[' {
		return nil, malformed("expected array, got %s", describe(t))
	}

	values := make([]int64, 0)

	for {
		t, err := r.next()
		if err != nil {
			return nil, err
		}

		if d, ok := t.(json.Delim); ok && d == ']' {
			return values, nil
		}

		v, err := toInteger(t)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}
}

// apiError reports the error message the API sent instead of a report.
func (r *tokenReader) apiError() error {
	t, err := r.next()
	if err != nil {
		return err
	}

	if msg, ok := t.(string); ok {
		return malformed("api error: %s", msg)
	}

	return malformed("api error")
}

// end verifies nothing follows the root value.
func (r *tokenReader) end() error {
	t, err := r.dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}

	if err != nil {
		return malformed("%s", err)
	}

	return malformed("unexpected %s after response", describe(t))
}

func toNumber(t json.Token) (interface{}, error) {
	switch v := t.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}

		f, err := v.Float64()
		if err != nil {
			return nil, malformed("invalid number %s", v.String())
		}

		return f, nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
			return int64(v), nil
		}

		return v, nil
	default:
		return nil, malformed("expected number, got %s", describe(t))
	}
}

func toInteger(t json.Token) (int64, error) {
	n, err := toNumber(t)
	if err != nil {
		return 0, err
	}

	switch v := n.(type) {
	case int64:
		return v, nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
			return int64(v), nil
		}
	}

	return 0, malformed("expected integer, got %v", n)
}

func describe(t json.Token) string {
	switch v := t.(type) {
	case nil:
		return "null"
	case json.Delim:
		return fmt.Sprintf("%q", v.String())
	case string:
		return fmt.Sprintf("string %q", v)
	case bool:
		return fmt.Sprintf("bool %t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
