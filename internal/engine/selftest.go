package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"spahau/internal/model"
	"spahau/internal/resolver"
)

var (
	ErrUnknownProbe     = errors.New("no selftest definition for address")
	ErrSelfTestMismatch = errors.New("selftest mismatch")
)

// selfTestProbes are the test entries every Spamhaus zone is expected to
// answer: 127.0.0.1 is never listed, 127.0.0.2 is listed everywhere.
var selfTestProbes = map[string][]string{
	"127.0.0.1": {},
	"127.0.0.2": {"127.0.0.2", "127.0.0.4", "127.0.0.10"},
}

// ExpectedResponses returns what a healthy zone answers for a selftest probe.
func ExpectedResponses(addr model.IPAddress) ([]model.Response, error) {
	codes, ok := selfTestProbes[addr.Text()]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownProbe, addr)
	}
	expected := make([]model.Response, 0, len(codes))
	for _, c := range codes {
		expected = append(expected, Classify(model.MustParseIPAddress(c)))
	}
	return expected, nil
}

// IsProbe reports whether addr has a selftest definition.
func IsProbe(addr model.IPAddress) bool {
	_, ok := selfTestProbes[addr.Text()]
	return ok
}

// SelfTest queries a probe address and compares the answer with the expected
// responses. Both are returned so callers can show them.
func SelfTest(ctx context.Context, r resolver.Resolver, addr model.IPAddress, zone string) (expected, got []model.Response, err error) {
	expected, err = ExpectedResponses(addr)
	if err != nil {
		return nil, nil, err
	}
	got, err = Query(ctx, r, addr, zone)
	if err != nil {
		return expected, nil, err
	}
	if !slices.Equal(expected, got) {
		return expected, got, fmt.Errorf("%w for '%s'", ErrSelfTestMismatch, addr)
	}
	return expected, got, nil
}
