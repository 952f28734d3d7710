package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseAddressList reads the addresses to check from r. Two formats are
// accepted: plain text with one address per line, or CSV with a header row
// containing an "Address" (or "IP") column. Blank lines and lines starting
// with '#' are skipped. Entries are returned as written; validating them is
// up to the caller so that bad entries are reported, not dropped.
func ParseAddressList(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading address list: %w", err)
	}

	if isCSV(data) {
		addrs, err := parseCSV(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("error parsing address CSV: %w", err)
		}
		return addrs, nil
	}
	return parseLines(bytes.NewReader(data))
}

// isCSV reports whether the first significant line looks like a CSV header.
func isCSV(data []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Contains(line, ",")
	}
	return false
}

func parseCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}

	// Find the address column
	addrCol := -1
	for i, col := range header {
		col = strings.TrimSpace(col)
		if strings.EqualFold(col, "Address") || strings.EqualFold(col, "IP") {
			addrCol = i
			break
		}
	}
	if addrCol == -1 {
		return nil, fmt.Errorf("could not find 'Address' column in header")
	}

	var addrs []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if addrCol >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[addrCol]); v != "" {
			addrs = append(addrs, v)
		}
	}
	return addrs, nil
}

func parseLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var addrs []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addrs = append(addrs, line)
	}
	return addrs, scanner.Err()
}
