package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"spahau/internal/model"
	"spahau/internal/resolver"
)

// QueryError reports a failed lookup, or an answer that is not an IPv4
// address.
type QueryError struct {
	Hostname string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Hostname, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// BuildHostname returns the DNSBL query name for addr under zone, e.g.
// 2.0.0.127.zen.spamhaus.org for 127.0.0.2.
func BuildHostname(addr model.IPAddress, zone string) string {
	return addr.TextRev() + "." + zone
}

// Query looks addr up in zone and classifies the answers.
//
// An empty, non-nil result means the address is not listed. If any answer is
// in the error range, only the first such answer is returned. Otherwise the
// answers are deduplicated and sorted by octets.
func Query(ctx context.Context, r resolver.Resolver, addr model.IPAddress, zone string) ([]model.Response, error) {
	hostname := BuildHostname(addr, zone)
	slog.Debug("Query", "address", addr.Text(), "hostname", hostname)

	raw, err := r.LookupIPv4(ctx, hostname)
	if resolver.IsNotFound(err) {
		slog.Debug("Not listed", "hostname", hostname)
		return []model.Response{}, nil
	} else if err != nil {
		return nil, &QueryError{Hostname: hostname, Err: err}
	}
	slog.Debug("Response", "hostname", hostname, "addresses", raw)

	answers := make([]model.IPAddress, 0, len(raw))
	for _, s := range raw {
		a, err := model.ParseIPAddress(s)
		if err != nil {
			return nil, &QueryError{Hostname: hostname, Err: err}
		}
		answers = append(answers, a)
	}

	for _, a := range answers {
		if a.IsErrorCode() {
			return []model.Response{Classify(a)}, nil
		}
	}

	slices.SortFunc(answers, model.Compare)
	answers = slices.Compact(answers)

	responses := make([]model.Response, 0, len(answers))
	for _, a := range answers {
		responses = append(responses, Classify(a))
	}
	return responses, nil
}
