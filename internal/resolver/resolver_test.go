package resolver

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// records maps absolute query names to the A records served for them.
type records map[string][]string

func (rs records) handler(truncateUDP bool) dns.HandlerFunc {
	return func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		m.Authoritative = true
		m.RecursionAvailable = true

		q := r.Question[0]
		addrs, ok := rs[q.Name]
		switch {
		case q.Name == "servfail.test.":
			m.Rcode = dns.RcodeServerFailure
		case !ok:
			m.Rcode = dns.RcodeNameError
		case truncateUDP && w.RemoteAddr().Network() == "udp":
			m.Truncated = true
		case q.Qtype == dns.TypeA:
			for _, a := range addrs {
				m.Answer = append(m.Answer, &dns.A{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
					A:   net.ParseIP(a).To4(),
				})
			}
		}
		_ = w.WriteMsg(m)
	}
}

// startServer runs a DNS server on a random loopback UDP port, and on the
// same TCP port when withTCP is set. It returns the host:port address.
func startServer(t *testing.T, handler dns.Handler, withTCP bool) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	addr := pc.LocalAddr().String()
	serve(t, &dns.Server{PacketConn: pc, Handler: handler})

	if withTCP {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			t.Fatalf("listen tcp: %v", err)
		}
		serve(t, &dns.Server{Listener: l, Handler: handler})
	}
	return addr
}

func serve(t *testing.T, srv *dns.Server) {
	t.Helper()
	started := make(chan struct{})
	srv.NotifyStartedFunc = func() { close(started) }
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { srv.Shutdown() })
}

var testRecords = records{
	"2.0.0.127.zen.test.": {"127.0.0.10", "127.0.0.4", "127.0.0.2"},
}

func TestNewSelectsProvider(t *testing.T) {
	r, err := New(ProviderSystem, "", time.Second)
	if err != nil {
		t.Fatalf("system provider: %v", err)
	}
	if _, ok := r.(*System); !ok {
		t.Fatalf("expected *System, got %T", r)
	}

	r, err = New(ProviderDirect, "127.0.0.1", time.Second)
	if err != nil {
		t.Fatalf("direct provider: %v", err)
	}
	d, ok := r.(*Direct)
	if !ok {
		t.Fatalf("expected *Direct, got %T", r)
	}
	if d.server != "127.0.0.1:53" {
		t.Fatalf("expected default port to be added, got %s", d.server)
	}

	if _, err := New(ProviderDirect, "", time.Second); err == nil {
		t.Error("expected error for direct provider without server")
	}
	if _, err := New("carrier-pigeon", "", time.Second); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestHostPort(t *testing.T) {
	tests := map[string]string{
		"192.0.2.1":      "192.0.2.1:53",
		"192.0.2.1:5353": "192.0.2.1:5353",
		"::1":            "[::1]:53",
		"[::1]":          "[::1]:53",
		"[::1]:5353":     "[::1]:5353",
		"ns.example":     "ns.example:53",
	}
	for in, want := range tests {
		if got := hostPort(in); got != want {
			t.Errorf("hostPort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDirectLookup(t *testing.T) {
	addr := startServer(t, testRecords.handler(false), false)
	d := NewDirect(addr, 2*time.Second)
	ctx := context.Background()

	got, err := d.LookupIPv4(ctx, "2.0.0.127.zen.test")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	want := []string{"127.0.0.10", "127.0.0.4", "127.0.0.2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	_, err = d.LookupIPv4(ctx, "1.0.0.127.zen.test")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = d.LookupIPv4(ctx, "servfail.test")
	if err == nil || IsNotFound(err) {
		t.Fatalf("expected a non not-found error for SERVFAIL, got %v", err)
	}
}

func TestDirectLookupRetriesTruncatedOverTCP(t *testing.T) {
	addr := startServer(t, testRecords.handler(true), true)
	d := NewDirect(addr, 2*time.Second)

	got, err := d.LookupIPv4(context.Background(), "2.0.0.127.zen.test.")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 addresses over tcp, got %v", got)
	}
}

func TestDirectLookupUnreachableServer(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	// Nothing answers on this socket.
	defer pc.Close()

	d := NewDirect(pc.LocalAddr().String(), 200*time.Millisecond)
	_, err = d.LookupIPv4(context.Background(), "2.0.0.127.zen.test.")
	if err == nil || IsNotFound(err) {
		t.Fatalf("expected a timeout error, got %v", err)
	}
}

func TestSystemLookupWithServer(t *testing.T) {
	addr := startServer(t, testRecords.handler(false), true)
	s := NewSystem(addr, 2*time.Second)
	ctx := context.Background()

	got, err := s.LookupIPv4(ctx, "2.0.0.127.zen.test")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 addresses, got %v", got)
	}

	_, err = s.LookupIPv4(ctx, "1.0.0.127.zen.test")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMock(t *testing.T) {
	boom := errors.New("boom")
	m := Mock{
		A:    map[string][]string{"2.0.0.127.zen.test.": {"127.0.0.2"}},
		Fail: map[string]error{"3.0.0.127.zen.test.": boom},
	}
	ctx := context.Background()

	got, err := m.LookupIPv4(ctx, "2.0.0.127.zen.test")
	if err != nil || !reflect.DeepEqual(got, []string{"127.0.0.2"}) {
		t.Fatalf("unexpected answer %v, %v", got, err)
	}
	if _, err := m.LookupIPv4(ctx, "1.0.0.127.zen.test"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := m.LookupIPv4(ctx, "3.0.0.127.zen.test"); !errors.Is(err, boom) {
		t.Fatalf("expected scripted failure, got %v", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := m.LookupIPv4(cctx, "2.0.0.127.zen.test"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestNotFoundWrapsName(t *testing.T) {
	err := notFound("x.test.")
	if !IsNotFound(err) || err.Error() != ErrNotFound.Error()+": x.test." {
		t.Fatalf("unexpected error %v", err)
	}
	if IsNotFound(errors.New("no such host")) {
		t.Fatal("unrelated errors must not count as not found")
	}
}
