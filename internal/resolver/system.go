package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// System resolves through net.Resolver.
type System struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewSystem returns a System resolver. With server set, the pure Go resolver
// is used and every query goes to that nameserver.
func NewSystem(server string, timeout time.Duration) *System {
	r := &net.Resolver{StrictErrors: true}
	if server != "" {
		addr := hostPort(server)
		r.PreferGo = true
		r.Dial = func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{}
			return d.DialContext(ctx, network, addr)
		}
	}
	return &System{resolver: r, timeout: timeout}
}

func (s *System) LookupIPv4(ctx context.Context, host string) ([]string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// Absolute, so search domains are never appended.
	name := dns.Fqdn(host)
	ips, err := s.resolver.LookupIP(ctx, "ip4", name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("looking up %s: %w", name, err)
	}

	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, ip.String())
	}
	return addrs, nil
}
