package cp2kinput

import (
	"io"
	"slices"
)

// Input owns a CP2K input tree. Values passed in are copied, and values
// handed out are copies, so callers never share structure with an Input.
//
// An Input is not safe for concurrent use.
type Input struct {
	params Section
}

// New returns an Input holding a deep copy of params. A nil params gives
// an empty tree.
func New(params Section) *Input {
	if params == nil {
		return &Input{params: Section{}}
	}
	return &Input{params: params.clone()}
}

// Load converts generic nested data, e.g. a decoded JSON document, into
// an Input.
func Load(params map[string]any) (*Input, error) {
	s, err := FromMap(params)
	if err != nil {
		return nil, err
	}
	return &Input{params: s}, nil
}

// Get returns a copy of the top-level entry for key.
func (in *Input) Get(key string) (Value, bool) {
	v, ok := in.params[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Lookup returns a copy of the value at path, descending through
// sections only.
func (in *Input) Lookup(path Path) (Value, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := in.params
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return cloneValue(v), true
		}
		sec, ok := v.(Section)
		if !ok {
			return nil, false
		}
		cur = sec
	}
	return nil, false
}

// Params returns a copy of the whole tree.
func (in *Input) Params() Section {
	return in.params.clone()
}

// SetOption configures a Set call.
type SetOption func(*setOptions)

type setOptions struct {
	override    bool
	conflicting []string
}

// WithOverride sets whether existing values are replaced. The default is true.
func WithOverride(override bool) SetOption {
	return func(o *setOptions) { o.override = override }
}

// NoOverride is shorthand for WithOverride(false).
func NoOverride() SetOption {
	return WithOverride(false)
}

// ConflictsWith names sibling keys that may not coexist with the key
// being set. With override they are deleted; without override their
// presence suppresses the write.
func ConflictsWith(keys ...string) SetOption {
	return func(o *setOptions) {
		o.conflicting = append(o.conflicting, keys...)
	}
}

// Set stores a copy of v at path, creating intermediate sections as
// needed.
//
// Resolution, one segment at a time:
//   - last segment: write (override), or write only if the key is absent
//     and no conflicting sibling is present (no override)
//   - absent segment: a new empty section is created
//   - Repeated segment: the rest of the path is applied to every element
//   - scalar segment: replaced by an empty section (override), otherwise
//     the call does nothing on that branch
//
// Set never fails; keys are validated when rendering. An empty path is
// ignored.
func (in *Input) Set(path Path, v Value, opts ...SetOption) {
	if len(path) == 0 {
		return
	}
	o := setOptions{override: true}
	for _, opt := range opts {
		opt(&o)
	}
	setKeyword(in.params, path, v, &o)
}

// SetAny converts v with FromAny and calls Set.
func (in *Input) SetAny(path Path, v any, opts ...SetOption) error {
	cv, err := FromAny(v)
	if err != nil {
		return err
	}
	in.Set(path, cv, opts...)
	return nil
}

// Render returns the rendered input text.
func (in *Input) Render() (string, error) {
	return Render(in.params)
}

// WriteTo renders the input and writes it to w with every line
// newline-terminated. Nothing is written if rendering fails.
func (in *Input) WriteTo(w io.Writer) (int64, error) {
	lines, err := RenderLines(in.params)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, line := range lines {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func setKeyword(params Section, path Path, v Value, o *setOptions) {
	key := path[0]

	if len(path) == 1 {
		var present []string
		for _, c := range o.conflicting {
			if _, ok := params[c]; ok && !slices.Contains(present, c) {
				present = append(present, c)
			}
		}
		if o.override {
			params[key] = cloneValue(v)
			for _, c := range present {
				delete(params, c)
			}
			return
		}
		if _, exists := params[key]; !exists && len(present) == 0 {
			params[key] = cloneValue(v)
		}
		return
	}

	rest := path[1:]
	switch cur := params[key].(type) {
	case Section:
		setKeyword(cur, rest, v, o)
	case Repeated:
		broadcast(cur, rest, v, o)
	default:
		if _, exists := params[key]; exists && !o.override {
			return
		}
		sub := Section{}
		params[key] = sub
		setKeyword(sub, rest, v, o)
	}
}

// broadcast applies the remaining path to every section in a Repeated
// value. Nested Repeated elements are broadcast into as well; scalar
// elements are left alone.
func broadcast(items Repeated, path Path, v Value, o *setOptions) {
	for _, item := range items {
		switch el := item.(type) {
		case Section:
			setKeyword(el, path, v, o)
		case Repeated:
			broadcast(el, path, v, o)
		}
	}
}
