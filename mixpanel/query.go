package mixpanel

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	apiKeyParam    = "api_key"
	expireParam    = "expire"
	signatureParam = "sig"

	expirationWindow = 10 * time.Minute
)

// Param is a single query parameter.
type Param struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// QuerySpec is the ordered parameter list of a single export API request.
// Order is the declaration order of the configuration.
type QuerySpec []Param

// Get returns the value of the first parameter named key.
func (q QuerySpec) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}

// Resolve returns a copy of the spec with the relative date tokens of
// from_date and to_date replaced. Other values are never touched, event names
// such as "$ae_session" start with '$' too.
func (q QuerySpec) Resolve(now time.Time) (QuerySpec, error) {
	resolved := make(QuerySpec, len(q))

	for i, p := range q {
		resolved[i] = p

		if (p.Key != fromDateParam && p.Key != toDateParam) || !IsDateToken(p.Value) {
			continue
		}

		v, err := ResolveDateToken(p.Value, now)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Key, err)
		}

		resolved[i].Value = v
	}

	return resolved, nil
}

// BuildSignedQueryString returns the encoded query string of a signed request.
// The request expires ten minutes after nowMillis. The caller is expected to
// prefix the result with the endpoint url.
func BuildSignedQueryString(apiKey, apiSecret string, nowMillis int64, spec QuerySpec) string {
	expire := nowMillis + expirationWindow.Milliseconds()

	params := make([]string, 0, len(spec)+2)
	params = append(params,
		apiKeyParam+"="+apiKey,
		expireParam+"="+strconv.FormatInt(expire, 10),
	)

	for _, p := range spec {
		params = append(params, p.Key+"="+p.Value)
	}

	sig := Sign(params, apiSecret)

	return URLEncode(strings.Join(params, "&") + "&" + signatureParam + "=" + sig)
}

// urlEncoder escapes the characters that show up in segmentation
// expressions, such as (properties["$os"])=="iPhone OS". It is not a full url
// encoder: '=' and '&' are left as is. Every whitespace character, the
// unicode spaces included, becomes %20. Replacement is single pass, so the
// '%' of an escape sequence is never escaped again.
var urlEncoder = strings.NewReplacer(
	"%", "%25",
	" ", "%20",
	"\t", "%20",
	"\n", "%20",
	"\v", "%20",
	"\f", "%20",
	"\r", "%20",
	"\u00a0", "%20",
	"\u1680", "%20",
	"\u2000", "%20",
	"\u2001", "%20",
	"\u2002", "%20",
	"\u2003", "%20",
	"\u2004", "%20",
	"\u2005", "%20",
	"\u2006", "%20",
	"\u2007", "%20",
	"\u2008", "%20",
	"\u2009", "%20",
	"\u200a", "%20",
	"\u2028", "%20",
	"\u2029", "%20",
	"\u202f", "%20",
	"\u205f", "%20",
	"\u3000", "%20",
	"\ufeff", "%20",
	"[", "%5B",
	"]", "%5D",
	`"`, "%22",
	"(", "%28",
	")", "%29",
	">", "%3E",
	"<", "%3C",
	"-", "%2D",
	"+", "%2B",
	"/", "%2F",
)

// URLEncode applies the partial percent encoding expected by the export API.
func URLEncode(s string) string {
	return urlEncoder.Replace(s)
}
