package wellknown

import "testing"

func TestResolveZoneExpandsAliases(t *testing.T) {
	tests := map[string]string{
		"zen":              "zen.spamhaus.org",
		"SBL":              "sbl.spamhaus.org",
		"zrd":              "zrd.spamhaus.org",
		"zen.spamhaus.org": "zen.spamhaus.org",
		"dnsbl.example":    "dnsbl.example",
	}
	for in, want := range tests {
		if got := ResolveZone(in); got != want {
			t.Errorf("ResolveZone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetZoneReturnsFalseForUnknown(t *testing.T) {
	// Full zone names are not aliases.
	if _, ok := GetZone("zen.spamhaus.org"); ok {
		t.Fatalf("expected full zone name not to be an alias")
	}
}

func TestZonesKeepsFileOrder(t *testing.T) {
	zones := Zones()
	if len(zones) == 0 || zones[0].Alias != "zen" {
		t.Fatalf("expected zen first, got %#v", zones)
	}
	for _, z := range zones {
		if z.Description == "" {
			t.Errorf("zone %s has no description", z.Alias)
		}
	}

	// Callers get a copy.
	zones[0].Name = "changed"
	if Zones()[0].Name != "zen.spamhaus.org" {
		t.Fatalf("registry was modified through Zones()")
	}
}
