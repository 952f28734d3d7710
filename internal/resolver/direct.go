package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// Direct sends A queries straight to one nameserver.
type Direct struct {
	server string
	udp    *dns.Client
	tcp    *dns.Client
}

func NewDirect(server string, timeout time.Duration) *Direct {
	return &Direct{
		server: hostPort(server),
		udp:    &dns.Client{Net: "udp", Timeout: timeout},
		tcp:    &dns.Client{Net: "tcp", Timeout: timeout},
	}
}

func (d *Direct) LookupIPv4(ctx context.Context, host string) ([]string, error) {
	name := dns.Fqdn(host)
	m := new(dns.Msg)
	m.SetQuestion(name, dns.TypeA)

	resp, _, err := d.udp.ExchangeContext(ctx, m, d.server)
	if err != nil {
		return nil, fmt.Errorf("querying %s for %s: %w", d.server, name, err)
	}
	if resp.Truncated {
		resp, _, err = d.tcp.ExchangeContext(ctx, m, d.server)
		if err != nil {
			return nil, fmt.Errorf("querying %s for %s over tcp: %w", d.server, name, err)
		}
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, notFound(name)
	default:
		return nil, fmt.Errorf("querying %s for %s: %s", d.server, name, dns.RcodeToString[resp.Rcode])
	}

	var addrs []string
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			addrs = append(addrs, a.A.String())
		}
	}
	return addrs, nil
}
