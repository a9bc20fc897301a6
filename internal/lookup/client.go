// Package lookup wraps the external number lookup service: one GET per
// query with a fixed timeout, and a small taxonomy separating timeouts,
// transport failures and definitive empty answers.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"
)

var (
	// ErrTimeout means the service did not answer in time. The caller
	// refunds the authorized debit.
	ErrTimeout = errors.New("lookup timed out")

	// ErrTransport covers connection failures and non-2xx statuses.
	// Also refunded.
	ErrTransport = errors.New("lookup service unavailable")
)

// attributionField is the service's own tag, stripped before display.
const attributionField = "Api_owner"

// Result is a definitive answer from the service. Found is false when
// the response was well-formed but carried no usable data; that is an
// outcome, not an error, and it still consumes a credit.
type Result struct {
	Found  bool
	Fields map[string]string
}

// Keys returns the field names in sorted order for stable rendering.
func (r *Result) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the configured base URL; the numeric
// query is appended verbatim.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Lookup queries the service for a number. Errors are always one of
// ErrTimeout or ErrTransport (possibly wrapped); anything decoded is a
// Result.
func (c *Client) Lookup(ctx context.Context, number string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+number, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrTransport, resp.Status)
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	fields := extractFields(payload)
	delete(fields, attributionField)
	if len(fields) == 0 {
		return &Result{Found: false}, nil
	}
	return &Result{Found: true, Fields: fields}, nil
}

// extractFields handles the two response shapes the service emits: a
// {"result": [ {..} ]} envelope or a flat object of fields.
func extractFields(payload map[string]json.RawMessage) map[string]string {
	if raw, ok := payload["result"]; ok {
		var list []map[string]any
		if err := json.Unmarshal(raw, &list); err == nil {
			if len(list) == 0 {
				return nil
			}
			return flatten(list[0])
		}
	}

	flat := make(map[string]any, len(payload))
	for k, raw := range payload {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			flat[k] = v
		}
	}
	return flatten(flat)
}

// flatten renders field values as trimmed strings, dropping empties.
func flatten(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprintf("%v", v))
		if s == "" {
			continue
		}
		out[k] = s
	}
	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
