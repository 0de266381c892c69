package mixpanel

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	eventParam    = "event"
	fromDateParam = "from_date"
	toDateParam   = "to_date"

	launchDate = "2016-06-06"
)

// NamedQuery is a single report request. Name is also the title of the
// sheet the report is written to.
type NamedQuery struct {
	Name     string    `json:"name" validate:"required"`
	Endpoint Endpoint  `json:"endpoint" validate:"required"`
	Spec     QuerySpec `json:"spec" validate:"dive"`
}

// ExportConfig holds everything a single export run needs. It is built once
// and never modified during the run.
type ExportConfig struct {
	APIKey      string       `validate:"required"`
	APISecret   string       `validate:"required"`
	Queries     []NamedQuery `validate:"dive"`
	Concurrency int          `validate:"gte=0"`
}

var validate = validator.New()

// Validate checks the configuration before any request is sent. Errors wrap
// either ErrConfig or ErrDuplicateName.
func (c *ExportConfig) Validate(now time.Time) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrConfig, describeValidation(err))
	}

	names := make(map[string]struct{}, len(c.Queries))

	for _, q := range c.Queries {
		if err := q.validate(now); err != nil {
			return err
		}

		if _, ok := names[q.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, q.Name)
		}

		names[q.Name] = struct{}{}
	}

	return nil
}

func (q *NamedQuery) validate(now time.Time) error {
	if !q.Endpoint.Valid() {
		return fmt.Errorf("%w: query %q: unknown endpoint %q", ErrConfig, q.Name, q.Endpoint)
	}

	if v, ok := q.Spec.Get(eventParam); !ok || v == "" {
		return fmt.Errorf("%w: query %q: missing %q", ErrConfig, q.Name, eventParam)
	}

	spec, err := q.Spec.Resolve(now)
	if err != nil {
		return fmt.Errorf("query %q: %w", q.Name, err)
	}

	for _, key := range []string{fromDateParam, toDateParam} {
		if v, ok := spec.Get(key); ok {
			if err := validateDate(key, v); err != nil {
				return fmt.Errorf("query %q: %w", q.Name, err)
			}
		}
	}

	return nil
}

// describeValidation lists the failing fields without their values, so api
// credentials never end up in an error message.
func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msg := ""

	for i, fe := range verrs {
		if i > 0 {
			msg += ", "
		}

		msg += fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag())
	}

	return msg
}

// DefaultQueries is the query table used when no queries file is configured.
func DefaultQueries() []NamedQuery {
	return []NamedQuery{
		{
			Name:     "iOS Video Starts",
			Endpoint: EndpointSegmentation,
			Spec: QuerySpec{
				{"event", "Video Start"},
				{"where", `(properties["$os"])=="iPhone OS"`},
				{"unit", "day"},
				{"type", "general"},
				{"from_date", launchDate},
				{"to_date", "$yesterday"},
			},
		},
		{
			Name:     "7-Day Video Ranker",
			Endpoint: EndpointSegmentation,
			Spec: QuerySpec{
				{"event", "Video Start"},
				{"type", "general"},
				{"on", `(properties["title"])`},
				{"limit", "10"},
				{"unit", "month"},
				{"from_date", "$week"},
				{"to_date", "$yesterday"},
			},
		},
		{
			Name:     "iOS Retention Curve",
			Endpoint: EndpointRetention,
			Spec: QuerySpec{
				{"born_where", `(properties["$os"])=="iPhone OS"`},
				{"where", `(properties["$os"])=="iPhone OS"`},
				{"retention_type", "birth"},
				{"unit", "week"},
				{"event", "Video Start"},
				{"born_event", "Video Start"},
				{"from_date", "$threeMonth"},
				{"to_date", "$yesterday"},
			},
		},
		{
			Name:     "Android Retention Curve",
			Endpoint: EndpointRetention,
			Spec: QuerySpec{
				{"born_where", `(properties["$os"])=="Android"`},
				{"where", `(properties["$os"])=="Android"`},
				{"retention_type", "birth"},
				{"unit", "week"},
				{"event", "Video Start"},
				{"born_event", "Video Start"},
				{"from_date", "$threeMonth"},
				{"to_date", "$yesterday"},
			},
		},
	}
}

type queriesFile struct {
	Queries []struct {
		Name     string    `yaml:"name"`
		Endpoint string    `yaml:"endpoint"`
		Params   yaml.Node `yaml:"params"`
	} `yaml:"queries"`
}

// LoadQueriesFile reads a yaml query table from path.
func LoadQueriesFile(path string) ([]NamedQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfig, err)
	}

	defer f.Close()

	return LoadQueries(f)
}

// LoadQueries parses a yaml query table:
//
//	queries:
//	  - name: iOS Video Starts
//	    endpoint: segmentation
//	    params:
//	      event: Video Start
//	      from_date: $week
//
// The order of the queries and of every query's params is kept.
func LoadQueries(r io.Reader) ([]NamedQuery, error) {
	var file queriesFile

	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: invalid queries file: %s", ErrConfig, err)
	}

	queries := make([]NamedQuery, 0, len(file.Queries))

	for _, q := range file.Queries {
		endpoint, err := parseEndpoint(q.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q.Name, err)
		}

		spec, err := specFromNode(&q.Params)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q.Name, err)
		}

		queries = append(queries, NamedQuery{
			Name:     q.Name,
			Endpoint: endpoint,
			Spec:     spec,
		})
	}

	return queries, nil
}

func specFromNode(node *yaml.Node) (QuerySpec, error) {
	if node.Kind == 0 {
		return QuerySpec{}, nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: params must be a mapping (line %d)", ErrConfig, node.Line)
	}

	spec := make(QuerySpec, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]

		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: param %q must be a scalar (line %d)", ErrConfig, k.Value, v.Line)
		}

		if _, ok := seen[k.Value]; ok {
			return nil, fmt.Errorf("%w: param %q declared twice (line %d)", ErrConfig, k.Value, k.Line)
		}

		seen[k.Value] = struct{}{}

		spec = append(spec, Param{Key: k.Value, Value: v.Value})
	}

	return spec, nil
}
