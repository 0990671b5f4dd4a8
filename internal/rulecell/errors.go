package rulecell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/deepcave/internal/grid"
)

// ErrConfiguration is wrapped by every ConfigError.
var ErrConfiguration = errors.New("rule configuration error")

// ConfigError reports malformed rule metadata, or a cell that no rule matches.
type ConfigError struct {
	Source string // rule file or sheet name
	Entry  string // offending tile entry, when parsing
	Reason string

	// Set when resolution fails for a cell.
	Cell      *grid.Point
	Group     grid.GroupID
	Signature *Pattern
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("rule config")
	if e.Source != "" {
		fmt.Fprintf(&sb, " %s", e.Source)
	}
	if e.Entry != "" {
		fmt.Fprintf(&sb, " entry %s", e.Entry)
	}
	if e.Cell != nil {
		fmt.Fprintf(&sb, " cell %v group %v", *e.Cell, e.Group)
	}
	if e.Signature != nil {
		fmt.Fprintf(&sb, " signature %v", *e.Signature)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	return sb.String()
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
