package resolver

import (
	"context"

	"github.com/miekg/dns"
)

// Mock is a Resolver with scripted answers, keyed by absolute name (with
// trailing dot). Names in neither map do not exist.
type Mock struct {
	A    map[string][]string
	Fail map[string]error
}

var _ Resolver = Mock{}

func (m Mock) LookupIPv4(ctx context.Context, host string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := dns.Fqdn(host)
	if err, ok := m.Fail[name]; ok {
		return nil, err
	}
	addrs, ok := m.A[name]
	if !ok {
		return nil, notFound(name)
	}
	return append([]string(nil), addrs...), nil
}
