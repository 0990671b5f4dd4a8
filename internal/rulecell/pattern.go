package rulecell

import (
	"fmt"
	"strings"
)

// Presence is the state of one neighbor position in a pattern or signature.
type Presence uint8

const (
	DontCare Presence = iota
	Present
	Absent
)

// String returns the single-character form used in rule files.
func (p Presence) String() string {
	switch p {
	case Present:
		return "#"
	case Absent:
		return "."
	default:
		return "?"
	}
}

func parsePresence(c byte) (Presence, bool) {
	switch c {
	case '#':
		return Present, true
	case '.':
		return Absent, true
	case '?':
		return DontCare, true
	}
	return DontCare, false
}

// Pattern is a 3x3 neighborhood indexed [row][col], row 0 being the north row.
// The center is always DontCare.
type Pattern [3][3]Presence

// neighborOffsets lists the 8 neighbors in bit order for signature indexing.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// ParsePattern reads three rows of three characters ('#', '.', '?').
// The center character is ignored.
func ParsePattern(rows []string) (Pattern, error) {
	var p Pattern
	if len(rows) != 3 {
		return p, fmt.Errorf("pattern has %d rows, want 3", len(rows))
	}
	for r, row := range rows {
		if len(row) != 3 {
			return p, fmt.Errorf("pattern row %d is %q, want 3 characters", r, row)
		}
		for c := 0; c < 3; c++ {
			v, ok := parsePresence(row[c])
			if !ok {
				return p, fmt.Errorf("pattern row %d has invalid character %q", r, row[c])
			}
			p[r][c] = v
		}
	}
	p[1][1] = DontCare
	return p, nil
}

// MustParsePattern is ParsePattern for literals; it panics on error.
func MustParsePattern(rows ...string) Pattern {
	p, err := ParsePattern(rows)
	if err != nil {
		panic(err)
	}
	return p
}

// Rows returns the pattern in rule-file form.
func (p Pattern) Rows() []string {
	rows := make([]string, 3)
	for r := 0; r < 3; r++ {
		rows[r] = p[r][0].String() + p[r][1].String() + p[r][2].String()
	}
	return rows
}

func (p Pattern) String() string {
	return strings.Join(p.Rows(), "/")
}

// RotateCW returns the pattern turned a quarter turn clockwise.
func (p Pattern) RotateCW() Pattern {
	var out Pattern
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = p[2-c][r]
		}
	}
	return out
}

// MirrorH returns the pattern flipped left to right.
func (p Pattern) MirrorH() Pattern {
	var out Pattern
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = p[r][2-c]
		}
	}
	return out
}

// Matches reports whether every non-DontCare position of p equals sig.
func (p Pattern) Matches(sig Pattern) bool {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if p[r][c] != DontCare && p[r][c] != sig[r][c] {
				return false
			}
		}
	}
	return true
}

// index packs a fully specified signature into 8 bits, one per neighbor.
func (p Pattern) index() int {
	idx := 0
	for bit, off := range neighborOffsets {
		if p[off[1]+1][off[0]+1] == Present {
			idx |= 1 << bit
		}
	}
	return idx
}

// signatureFromIndex is the inverse of index.
func signatureFromIndex(idx int) Pattern {
	var p Pattern
	for bit, off := range neighborOffsets {
		if idx&(1<<bit) != 0 {
			p[off[1]+1][off[0]+1] = Present
		} else {
			p[off[1]+1][off[0]+1] = Absent
		}
	}
	return p
}
