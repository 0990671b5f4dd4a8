// Package rulecell resolves occupied grid cells to sprites by matching each
// cell's 3x3 neighborhood against an ordered list of adjacency patterns.
//
// Rule files are YAML. Each tile entry names a sprite position on the sheet and
// lists its patterns, three rows of '#' (present), '.' (absent) and '?' (don't
// care). Patterns are written once in a canonical orientation; the matcher also
// tries the 3 other rotations and the 4 mirrored variants.
//
//	sheet: cave_walls
//	group: cave_wall
//	tiles:
//	  - name: solid
//	    position: [1, 1]
//	    patterns:
//	      - ["###", "###", "###"]
//
// A cell whose signature matches nothing is a configuration error, never a
// fallback sprite.
package rulecell
