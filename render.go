package cp2kinput

import (
	"fmt"
	"strings"
)

// Render converts a section tree into CP2K input text. Lines are joined
// with "\n"; there is no trailing newline. On error no text is returned.
func Render(root Section) (string, error) {
	lines, err := RenderLines(root)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// RenderLines returns the rendered input one line at a time, starting
// with Disclaimer. Keys are written in sorted order at every level;
// Repeated elements keep their order.
func RenderLines(root Section) ([]string, error) {
	w := &lineWriter{lines: []string{Disclaimer}}
	if err := w.writeSection(root, nil, 0); err != nil {
		return nil, err
	}
	return w.lines, nil
}

type lineWriter struct {
	lines []string
}

func (w *lineWriter) emit(indent int, text string) {
	w.lines = append(w.lines, strings.Repeat(" ", indent)+text)
}

// writeSection writes a section's entries at the given indent. The
// section parameter was already consumed by the caller's header line.
func (w *lineWriter) writeSection(s Section, path Path, indent int) error {
	for _, k := range s.Keys() {
		if k == ParamKey {
			continue
		}
		if err := w.writeEntry(k, s[k], path, indent); err != nil {
			return err
		}
	}
	return nil
}

// writeEntry writes a single key and its value.
func (w *lineWriter) writeEntry(key string, value Value, path Path, indent int) error {
	if err := checkKey(key, path); err != nil {
		return err
	}

	switch v := value.(type) {
	case Section:
		header := "&" + key
		if p, ok := v.Param(); ok {
			header += " " + paramText(p)
		}
		w.emit(indent, header)
		if err := w.writeSection(v, path.Child(key), indent+IndentStep); err != nil {
			return err
		}
		w.emit(indent, "&END "+key)

	case Repeated:
		for _, item := range v {
			if err := w.writeEntry(key, item, path, indent); err != nil {
				return err
			}
		}

	case Bool:
		w.emit(indent, key+keywordSep+v.String())

	case nil:
		// Flag keyword without a value.
		w.emit(indent, key)

	default:
		w.emit(indent, key+keywordSep+scalarText(v))
	}
	return nil
}

// checkKey enforces the lexical rules for a key about to be written.
func checkKey(key string, path Path) error {
	if strings.ToUpper(key) != key {
		return &FormatError{Kind: CaseViolation, Key: key, Path: path}
	}
	if strings.HasPrefix(key, "@") || strings.HasPrefix(key, "$") {
		return &FormatError{Kind: ReservedCharacterViolation, Key: key, Path: path}
	}
	return nil
}

func scalarText(v Value) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(ToAny(v))
}

// paramText formats a section parameter. A repeated parameter is joined
// with spaces, e.g. {"_": ["LDA", "PADE"]} gives "&XC_FUNCTIONAL LDA PADE".
func paramText(v Value) string {
	r, ok := v.(Repeated)
	if !ok {
		return scalarText(v)
	}
	parts := make([]string, len(r))
	for i, item := range r {
		parts[i] = paramText(item)
	}
	return strings.Join(parts, " ")
}
