package cp2kinput

// Merge returns base overlaid with overlay, the way layered parameter
// files combine. Neither argument is modified and the result shares no
// structure with them.
//
// Resolution per key of overlay:
//   - Section over Section: merged key by key
//   - anything else: overlay's value replaces base's
//
// A Repeated is replaced as a whole, so a KIND list in an overlay file
// defines the complete list of kinds. The section parameter is an
// ordinary ParamKey entry and is replaced like any keyword.
func Merge(base, overlay Section) Section {
	out := base.clone()
	mergeInto(out, overlay)
	return out
}

// mergeInto overlays onto dst, which must be owned by the caller.
func mergeInto(dst, overlay Section) {
	for k, v := range overlay {
		if d, ok := dst[k].(Section); ok {
			if o, ok := v.(Section); ok {
				mergeInto(d, o)
				continue
			}
		}
		dst[k] = cloneValue(v)
	}
}
