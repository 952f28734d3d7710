// Package resolver looks up the IPv4 addresses a DNSBL returns for a query name.
//
// Two providers exist: "system" goes through net.Resolver (optionally pinned
// to one nameserver) and "direct" sends a single A query with miekg/dns.
// Mock serves scripted answers for tests.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrNotFound is returned when the queried name does not exist. For a DNSBL
// this means the address is not listed.
var ErrNotFound = errors.New("resolver: name does not exist")

const (
	ProviderSystem = "system"
	ProviderDirect = "direct"
)

// Resolver resolves a host name to IPv4 addresses in dotted-quad form.
type Resolver interface {
	LookupIPv4(ctx context.Context, host string) ([]string, error)
}

// IsNotFound returns whether err reports a name that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New returns the resolver for provider. An empty server means the system
// configuration for "system"; "direct" needs a server.
func New(provider, server string, timeout time.Duration) (Resolver, error) {
	switch provider {
	case ProviderSystem:
		return NewSystem(server, timeout), nil
	case ProviderDirect:
		if server == "" {
			return nil, fmt.Errorf("nameserver address must be provided for direct provider")
		}
		return NewDirect(server, timeout), nil
	default:
		return nil, fmt.Errorf("unknown resolver provider: %s", provider)
	}
}

// hostPort adds the default DNS port to server if it has none.
func hostPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(strings.Trim(server, "[]"), "53")
}

func notFound(host string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, host)
}
