package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var tokenPattern = regexp.MustCompile(`^([A-Z]+\d+)(START|GOAL)$`)

// FileToken is a timing point encoded in a race file name.
type FileToken struct {
	Segment string
	Kind    string
}

func (t FileToken) String() string {
	return t.Segment + t.Kind
}

// FileTokens extracts the timing points of a race file name.
// "PC1GOAL_PC2START.csv" records the GOAL of PC1 and the START of PC2.
func FileTokens(name string) []FileToken {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var tokens []FileToken
	for _, part := range strings.Split(base, "_") {
		m := tokenPattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		tokens = append(tokens, FileToken{Segment: m[1], Kind: m[2]})
	}
	return tokens
}

// ParseClock reads a time of day as HH:MM:SS or HH:MM:SS.ff and returns it
// as an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04:05", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()), nil
}

// readCSV loads a whole CSV file. A UTF-8 byte order mark is dropped.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	return rows, nil
}

// ParseRaceDir reads every CSV of a race folder.
func ParseRaceDir(dir string) (*RaceData, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list race files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files in race folder %s", dir)
	}
	sort.Strings(files)

	data := NewRaceData()
	for _, path := range files {
		if err := parseRaceFile(path, data); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return data, nil
}

func parseRaceFile(path string, data *RaceData) error {
	name := filepath.Base(path)
	data.Files = append(data.Files, name)

	tokens := FileTokens(name)
	if len(tokens) == 0 {
		data.ParseErrors = append(data.ParseErrors, fmt.Sprintf("Warning: %s names no timing point, ignored.", name))
		return nil
	}

	rows, err := readCSV(path)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("file is empty")
	}

	header := rows[0]
	timeCol := -1
	for i, col := range header {
		if strings.Contains(strings.ToLower(col), "time") {
			timeCol = i
			break
		}
	}
	if timeCol < 0 {
		return fmt.Errorf("no time column")
	}
	numberCol := timeCol + 1
	if numberCol >= len(header) {
		return fmt.Errorf("no number column right of the time column")
	}

	seen := make(map[int]bool)
	for rowIdx, row := range rows[1:] {
		if numberCol >= len(row) {
			continue
		}
		number := strings.TrimSpace(row[numberCol])
		if number == "" {
			continue
		}
		f, err := strconv.ParseFloat(number, 64)
		if err != nil {
			continue
		}
		bib := int(f)
		if seen[bib] {
			return fmt.Errorf("bib %d appears more than once", bib)
		}

		clockStr := strings.TrimSpace(row[timeCol])
		if clockStr == "" {
			continue
		}
		seen[bib] = true
		clock, err := ParseClock(clockStr)
		if err != nil {
			data.ParseErrors = append(data.ParseErrors, fmt.Sprintf("Warning: %s row %d, bib %d: %v. Passage ignored.", name, rowIdx+2, bib, err))
			continue
		}
		for _, tok := range tokens {
			data.record(bib, tok, clock)
		}
	}
	return nil
}
