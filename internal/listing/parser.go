package listing

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"romcat/internal/utils"
	"romcat/pkg/models"
)

// ErrFormatMismatch means the listing is not in the six-column layout
// this parser understands.
var ErrFormatMismatch = errors.New("unsupported listing format")

var expectedHeaders = []string{"Attr", "Compressed", "Date", "Name", "Size", "Time"}

// Date and Time are printed at fixed width regardless of the divider row.
const (
	timeOffset = 11
	attrOffset = 20
)

type state int

const (
	seeking state = iota
	reading
	done
)

func isDivider(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if strings.Trim(f, "-") != "" {
			return false
		}
	}
	return true
}

func validateHeaders(headers []string) error {
	got := append([]string(nil), headers...)
	sort.Strings(got)
	if len(got) != len(expectedHeaders) {
		return fmt.Errorf("%w: headers %v", ErrFormatMismatch, headers)
	}
	for i := range got {
		if got[i] != expectedHeaders[i] {
			return fmt.Errorf("%w: headers %v", ErrFormatMismatch, headers)
		}
	}
	return nil
}

// columnOffsets derives the start of each column from the dash groups of
// the divider row. The first group spans both Date and Time; Name is
// preceded by two spaces instead of one.
func columnOffsets(divider []string) []int {
	offsets := []int{0, timeOffset, attrOffset}
	offset := attrOffset
	for i := 1; i < len(divider)-1; i++ {
		offset += len(divider[i]) + 1
		offsets = append(offsets, offset)
	}
	offsets[len(offsets)-1]++
	return offsets
}

func slice(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end < 0 || end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

func parseNumber(column, value string) (*int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s column holds %q", ErrFormatMismatch, column, value)
	}
	return &n, nil
}

func parseRow(line string, headers []string, offsets []int) (models.FileRecord, error) {
	var rec models.FileRecord
	last := len(headers) - 1
	for i, header := range headers {
		end := -1
		if i < last {
			end = offsets[i+1]
		}
		value := slice(line, offsets[i], end)
		if i < last {
			value = strings.TrimSpace(value)
		}
		if strings.TrimSpace(value) == "" {
			continue
		}

		switch header {
		case "Date":
			rec.Date = value
		case "Time":
			rec.Time = value
		case "Attr":
			rec.Attr = value
		case "Name":
			rec.Name = value
		case "Size", "Compressed":
			n, err := parseNumber(header, value)
			if err != nil {
				return rec, err
			}
			if header == "Size" {
				rec.Size = n
			} else {
				rec.Compressed = n
			}
		}
	}
	return rec, nil
}

// ParseListing turns the text output of the archive lister into an
// inventory. The header row is the last non-divider line with more than
// four words before a divider; rows are read until the next divider.
func ParseListing(archivePath, output string, reporter utils.Reporter) (*models.ArchiveInventory, error) {
	inv := &models.ArchiveInventory{
		ArchivePath: archivePath,
		Files:       make(map[string]models.FileRecord),
	}

	var (
		st      = seeking
		last    []string
		headers []string
		offsets []int
	)

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() && st != done {
		line := strings.TrimRight(scanner.Text(), "\r")
		fields := strings.Fields(line)

		switch st {
		case seeking:
			if !isDivider(fields) {
				last = fields
				continue
			}
			if len(last) <= 4 {
				continue
			}
			if err := validateHeaders(last); err != nil {
				return nil, err
			}
			headers = last
			offsets = columnOffsets(fields)
			if len(offsets) != len(headers) {
				return nil, fmt.Errorf("%w: %d columns in divider row for %d headers", ErrFormatMismatch, len(offsets), len(headers))
			}
			st = reading

		case reading:
			if isDivider(fields) {
				st = done
				continue
			}
			rec, err := parseRow(line, headers, offsets)
			if err != nil {
				return nil, err
			}
			if rec.Name == "" {
				continue
			}
			if _, exists := inv.Files[rec.Name]; exists {
				reporter.Printf("Duplicate entry %q in %s, keeping the later row", rec.Name, archivePath)
			}
			inv.Files[rec.Name] = rec
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing for %s: %w", archivePath, err)
	}
	if headers == nil {
		return nil, fmt.Errorf("%w: no header row found", ErrFormatMismatch)
	}

	return inv, nil
}
