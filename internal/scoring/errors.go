package scoring

import (
	"fmt"
	"strings"
)

// MissingDataError reports a competitor with neither a passage record nor a
// status override on a segment.
type MissingDataError struct {
	Bib     int
	Segment string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("bib %d: no passage record for %s and no status override", e.Bib, e.Segment)
}

// ConfigurationError reports a rule set that cannot be scored.
type ConfigurationError struct {
	Segment string
	Bib     int
	Reason  string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration")
	if e.Segment != "" {
		fmt.Fprintf(&b, " (segment %s)", e.Segment)
	}
	if e.Bib != 0 {
		fmt.Fprintf(&b, " (bib %d)", e.Bib)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// ValidationError reports an input value outside its allowed domain.
type ValidationError struct {
	Bib    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Bib != 0 {
		return fmt.Sprintf("invalid %s for bib %d: %s", e.Field, e.Bib, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
