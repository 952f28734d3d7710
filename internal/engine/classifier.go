package engine

import (
	"spahau/internal/model"
	"spahau/internal/utils"
)

// exact maps the documented Spamhaus return codes to their meaning.
var exact = map[string]model.Response{
	"127.0.0.2":       {Tag: model.TagSBL, Reason: "Spamhaus SBL Data"},
	"127.0.0.3":       {Tag: model.TagSBL, Reason: "Spamhaus SBL CSS Data"},
	"127.0.0.4":       {Tag: model.TagXBL, Reason: "CBL Data"},
	"127.0.0.9":       {Tag: model.TagSBL, Reason: "Spamhaus DROP/EDROP Data"},
	"127.0.0.10":      {Tag: model.TagPBL, Reason: "ISP Maintained"},
	"127.0.0.11":      {Tag: model.TagPBL, Reason: "Spamhaus Maintained"},
	"127.0.1.2":       {Tag: model.TagDBL, Reason: "spam domain"},
	"127.0.1.4":       {Tag: model.TagDBL, Reason: "phish domain"},
	"127.0.1.5":       {Tag: model.TagDBL, Reason: "malware domain"},
	"127.0.1.6":       {Tag: model.TagDBL, Reason: "Internet C&C domain"},
	"127.0.1.102":     {Tag: model.TagDBL, Reason: "abused legit spam"},
	"127.0.1.103":     {Tag: model.TagDBL, Reason: "abused spammed redirector domain"},
	"127.0.1.104":     {Tag: model.TagDBL, Reason: "abused legit phish"},
	"127.0.1.105":     {Tag: model.TagDBL, Reason: "abused legit malware"},
	"127.0.1.106":     {Tag: model.TagDBL, Reason: "abused legit botnet C&C"},
	"127.0.1.255":     {Tag: model.TagDBL, Reason: "IP queries prohibited!"},
	"127.255.255.252": {Tag: model.TagError, Reason: "Typing error in DNSBL name"},
	"127.255.255.254": {Tag: model.TagError, Reason: "Anonymous query through public resolver"},
	"127.255.255.255": {Tag: model.TagError, Reason: "Excessive number of queries"},
}

// domains is the fallback for codes not in exact, keyed by the /24 the code
// falls in, written as a.b.c.0.
var domains = map[string]model.Response{
	"127.0.0.0":     {Tag: model.TagSBL, Reason: "Spamhaus IP Blocklists"},
	"127.0.1.0":     {Tag: model.TagDBL, Reason: "Spamhaus Domain Blocklists"},
	"127.0.2.0":     {Tag: model.TagZRD, Reason: "Spamhaus Zero Reputation Domains list"},
	"127.255.255.0": {Tag: model.TagError, Reason: "could not obtain a Spamhaus response"},
}

const unknownReason = "unexpected response"

// Classify describes a single address returned by the blocklist. Exact codes
// win over the /24 fallback. It never fails: anything else is UNKNOWN.
func Classify(addr model.IPAddress) model.Response {
	if r, ok := exact[addr.Text()]; ok {
		r.Address = addr
		return r
	}

	o := addr.Octets()
	if r, ok := domains[utils.DottedQuad([4]int{o[0], o[1], o[2], 0})]; ok {
		r.Address = addr
		return r
	}

	return model.Response{Tag: model.TagUnknown, Reason: unknownReason, Address: addr}
}
