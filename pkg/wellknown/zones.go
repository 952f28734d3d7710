package wellknown

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strings"

	_ "embed"
)

//go:embed zones.csv
var zonesData string

// Zone is a public Spamhaus DNSBL zone.
type Zone struct {
	Alias       string
	Name        string
	Description string
}

var (
	zoneList     []Zone
	zoneRegistry map[string]Zone
)

func init() {
	zoneRegistry = make(map[string]Zone)
	reader := csv.NewReader(bytes.NewBufferString(zonesData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded zones.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded zones.csv: %v", err)
		}
		if len(record) < 3 {
			continue
		}

		zone := Zone{
			Alias:       strings.ToLower(strings.TrimSpace(record[0])),
			Name:        strings.ToLower(strings.TrimSpace(record[1])),
			Description: strings.TrimSpace(record[2]),
		}
		if zone.Alias == "" || zone.Name == "" {
			continue
		}
		zoneList = append(zoneList, zone)
		zoneRegistry[zone.Alias] = zone
	}
}

// GetZone returns the zone registered under alias.
func GetZone(alias string) (Zone, bool) {
	zone, ok := zoneRegistry[strings.ToLower(alias)]
	return zone, ok
}

// ResolveZone expands a short alias such as "sbl" to its zone name. Anything
// else, including full zone names, is returned unchanged.
func ResolveZone(name string) string {
	if zone, ok := GetZone(name); ok {
		return zone.Name
	}
	return name
}

// Zones returns the known zones in registry order.
func Zones() []Zone {
	return append([]Zone(nil), zoneList...)
}
