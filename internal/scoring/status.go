package scoring

import (
	"fmt"
	"strings"
)

// Status is the override applied to a segment result or to a total result.
type Status uint8

const (
	StatusNone Status = iota
	StatusRetired
	StatusNoClassification
	StatusBlank
)

// Token is the value shown in place of a rank (and, for some statuses, of times).
func (s Status) Token() string {
	switch s {
	case StatusRetired:
		return "RIT"
	case StatusNoClassification:
		return "N.C."
	case StatusBlank:
		return "BLNK"
	}
	return ""
}

func (s Status) String() string {
	if s == StatusNone {
		return "none"
	}
	return s.Token()
}

// Set reports whether an override is present.
func (s Status) Set() bool {
	return s != StatusNone
}

// ParseStatus reads a status token. The empty string means no override.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return StatusNone, nil
	case "RIT":
		return StatusRetired, nil
	case "N.C.", "NC":
		return StatusNoClassification, nil
	case "BLNK", "BLANK":
		return StatusBlank, nil
	}
	return StatusNone, fmt.Errorf("unknown status %q (want RIT, N.C. or BLNK)", s)
}

// FieldMode says how a display field of a segment result is filled.
type FieldMode uint8

const (
	FieldComputed FieldMode = iota
	FieldToken
)

// Contract is the display and ranking behaviour bound to a status.
type Contract struct {
	Time        FieldMode
	Diff        FieldMode
	ZeroPoint   bool
	RankAsToken bool
	Eligible    bool // takes part in the segment ranking
}

var contracts = [...]Contract{
	StatusNone: {
		Time:     FieldComputed,
		Diff:     FieldComputed,
		Eligible: true,
	},
	StatusRetired: {
		Time:        FieldToken,
		Diff:        FieldToken,
		ZeroPoint:   true,
		RankAsToken: true,
	},
	StatusNoClassification: {
		Time:        FieldComputed,
		Diff:        FieldComputed,
		ZeroPoint:   true,
		RankAsToken: true,
	},
	StatusBlank: {
		Time:        FieldToken,
		Diff:        FieldToken,
		ZeroPoint:   true,
		RankAsToken: true,
	},
}

// Resolve returns the contract of a status. Every renderer goes through
// this table instead of switching on statuses itself.
func Resolve(s Status) Contract {
	if int(s) >= len(contracts) {
		return contracts[StatusBlank]
	}
	return contracts[s]
}
