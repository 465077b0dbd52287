package cp2kinput

import "strings"

// Path addresses a location in an input tree, outermost section first.
type Path []string

// ParsePath splits a slash-delimited path such as "FORCE_EVAL/DFT/QS".
// An empty string yields an empty Path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	return Path(strings.Split(s, PathSeparator))
}

func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Child returns a new Path with key appended. p is not modified.
func (p Path) Child(key string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, key)
}
