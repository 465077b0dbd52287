// Package cp2kinput builds and renders CP2K input files.
//
// CP2K input is a section-oriented text format: named sections that nest,
// may carry one positional parameter, and hold keyword/value lines.
// This package holds such a document as a tree of Values and renders it
// deterministically.
//
// Two tiers are provided:
//
//   - Input: an owned tree with path-addressed mutation (Set) and rendering
//   - Render/RenderLines: stateless rendering of any Section
//
// Mutation never fails. Lexical rules (uppercase keys, no preprocessor
// sigils) are enforced only when rendering.
package cp2kinput

// Format constants.
const (
	// Disclaimer is always the first rendered line.
	Disclaimer = "!!! Generated by AiiDA !!!"

	// IndentStep is the number of spaces per nesting level.
	IndentStep = 3

	// TrueLiteral and FalseLiteral are the rendered forms of Bool.
	TrueLiteral  = ".TRUE."
	FalseLiteral = ".FALSE."

	// ParamKey holds a section's positional parameter, e.g. the "Ba" in "&KIND Ba".
	ParamKey = "_"

	// PathSeparator divides the segments of a string path.
	PathSeparator = "/"
)

// keywordSep separates a keyword from its value on a rendered line.
const keywordSep = "  "
