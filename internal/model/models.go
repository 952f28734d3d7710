package model

import (
	"encoding/json"
	"fmt"
	"time"

	"spahau/internal/utils"
)

// ParseError reports text that is not a strict dotted-quad IPv4 address.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("not a dotted quad: %q", e.Text)
}

// IPAddress is an IPv4 address kept in all the forms a DNSBL lookup needs.
// The zero value is not a valid address; use ParseIPAddress.
type IPAddress struct {
	text    string
	textRev string
	octets  [4]int
	value   uint32
	isError bool
}

// ParseIPAddress parses a dotted quad: exactly four components, each either
// "0" or a digit run without a leading zero, none above 255.
func ParseIPAddress(text string) (IPAddress, error) {
	var octets [4]int
	n := 0
	start := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '.' {
			continue
		}
		if n == len(octets) {
			return IPAddress{}, &ParseError{Text: text}
		}
		v, ok := parseOctet(text[start:i])
		if !ok {
			return IPAddress{}, &ParseError{Text: text}
		}
		octets[n] = v
		n++
		start = i + 1
	}
	if n != len(octets) {
		return IPAddress{}, &ParseError{Text: text}
	}
	return newIPAddress(text, octets), nil
}

// MustParseIPAddress is like ParseIPAddress but panics on error. It is meant
// for fixed tables.
func MustParseIPAddress(text string) IPAddress {
	addr, err := ParseIPAddress(text)
	if err != nil {
		panic(err)
	}
	return addr
}

func parseOctet(s string) (int, bool) {
	if s == "" || len(s) > 3 || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	v := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	if v > 255 {
		return 0, false
	}
	return v, true
}

func newIPAddress(text string, octets [4]int) IPAddress {
	return IPAddress{
		text:    text,
		textRev: utils.DottedQuad(utils.ReverseOctets(octets)),
		octets:  octets,
		value:   utils.PackOctets(octets),
		isError: octets[0] == 127 && octets[1] == 255 && octets[2] == 255,
	}
}

func (a IPAddress) Text() string    { return a.text }
func (a IPAddress) TextRev() string { return a.textRev }
func (a IPAddress) Octets() [4]int  { return a.octets }
func (a IPAddress) Value() uint32   { return a.value }

// IsErrorCode reports whether the address is in 127.255.255.0/24, the range
// Spamhaus answers with when it could not process the query.
func (a IPAddress) IsErrorCode() bool { return a.isError }

func (a IPAddress) String() string { return a.text }

func (a IPAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text            string `json:"text"`
		TextRev         string `json:"text_rev"`
		Octets          [4]int `json:"octets"`
		Value           uint32 `json:"value"`
		IsSpamhausError bool   `json:"is_spamhaus_error"`
	}{a.text, a.textRev, a.octets, a.value, a.isError})
}

// Compare orders addresses by their octets.
func Compare(a, b IPAddress) int {
	switch {
	case a.value < b.value:
		return -1
	case a.value > b.value:
		return 1
	}
	return 0
}

// Tag is the short category code of a Response.
type Tag string

const (
	TagSBL     Tag = "SBL"
	TagXBL     Tag = "XBL"
	TagPBL     Tag = "PBL"
	TagDBL     Tag = "DBL"
	TagZRD     Tag = "ZRD"
	TagError   Tag = "ERROR"
	TagUnknown Tag = "UNKNOWN"
)

// Response is a decoded answer from the blocklist.
type Response struct {
	Tag     Tag       `json:"tag"`
	Reason  string    `json:"reason"`
	Address IPAddress `json:"address"`
}

func (r Response) String() string {
	return fmt.Sprintf("%s - %s - %s", r.Address, r.Tag, r.Reason)
}

// Mode selects what the command does with each address.
type Mode int

const (
	ModeQuery Mode = iota
	ModeDescribe
	ModeHostname
	ModeSelfTest
)

func (m Mode) String() string {
	switch m {
	case ModeQuery:
		return "query"
	case ModeDescribe:
		return "describe"
	case ModeHostname:
		return "hostname"
	case ModeSelfTest:
		return "selftest"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Config holds the settings of a single run. It is built once from the
// command line and not changed afterwards.
type Config struct {
	Addresses []IPAddress
	Domain    string
	Mode      Mode
	JSON      bool
	Verbose   bool

	Provider string // "system" or "direct"
	Server   string // Nameserver, host[:port]. Empty for the system default.
	Timeout  time.Duration
	Workers  int
}
