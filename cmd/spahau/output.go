package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"spahau/internal/model"
)

// outcome is what happened to one command line argument.
type outcome struct {
	Address string `json:"address"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`

	addr  model.IPAddress
	valid bool
	err   error
}

func writeText(w, errw io.Writer, o *outcome) {
	if o.err != nil {
		fmt.Fprintf(errw, "Could not obtain a result for '%s': %v\n", o.Address, o.err)
		return
	}

	switch v := o.Result.(type) {
	case string:
		fmt.Fprintln(w, v)
	case model.Response:
		fmt.Fprintln(w, v)
	case []model.Response:
		switch {
		case len(v) == 0:
			fmt.Fprintf(w, "The IP address: %s is NOT found in the Spamhaus blacklists.\n", o.Address)
		case v[0].Tag == model.TagError:
			fmt.Fprintf(w, "Could not obtain a response for %s: %s\n", o.Address, v[0])
		default:
			fmt.Fprintf(w, "The IP address: %s is found in the following Spamhaus public IP zone:%s\n", o.Address, quoteResponses(v))
		}
	}
}

func writeJSON(w io.Writer, outcomes []*outcome) error {
	for _, o := range outcomes {
		if o.err != nil {
			o.Error = o.err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(outcomes)
}

// quoteResponses renders responses as " 'r1' 'r2'", or "" for none.
func quoteResponses(responses []model.Response) string {
	var b strings.Builder
	for _, r := range responses {
		b.WriteString(" '")
		b.WriteString(r.String())
		b.WriteString("'")
	}
	return b.String()
}

// responseList is quoteResponses after a colon, or "" for none.
func responseList(responses []model.Response) string {
	if len(responses) == 0 {
		return ""
	}
	return ":" + quoteResponses(responses)
}
