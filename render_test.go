package cp2kinput

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScalars(t *testing.T) {
	got, err := RenderLines(Section{
		"E": Bool(false),
		"C": String("text"),
		"A": Int(1),
		"D": Bool(true),
		"B": Float(2.5),
	})
	require.NoError(t, err)

	want := []string{
		Disclaimer,
		"A  1",
		"B  2.5",
		"C  text",
		"D  .TRUE.",
		"E  .FALSE.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderLines mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSectionParameter(t *testing.T) {
	got, err := RenderLines(Section{
		"KIND": Section{"_": String("O"), "ELEMENT": String("O")},
	})
	require.NoError(t, err)

	want := []string{
		Disclaimer,
		"&KIND O",
		"   ELEMENT  O",
		"&END KIND",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderLines mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderRepeatedSections(t *testing.T) {
	got, err := RenderLines(Section{
		"SUBSYS": Section{
			"KIND": Repeated{
				Section{"_": String("Ba"), "ELEMENT": String("Ba")},
				Section{"_": String("Ti"), "ELEMENT": String("Ti")},
				Section{"_": String("O"), "ELEMENT": String("O")},
			},
		},
	})
	require.NoError(t, err)

	want := []string{
		Disclaimer,
		"&SUBSYS",
		"   &KIND Ba",
		"      ELEMENT  Ba",
		"   &END KIND",
		"   &KIND Ti",
		"      ELEMENT  Ti",
		"   &END KIND",
		"   &KIND O",
		"      ELEMENT  O",
		"   &END KIND",
		"&END SUBSYS",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderLines mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderRepeatedKeywordKeepsOrder(t *testing.T) {
	got, err := RenderLines(Section{
		"KEY": Repeated{String("val2"), String("val1"), Int(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{Disclaimer, "KEY  val2", "KEY  val1", "KEY  3"}, got)
}

func TestRenderNestedLayout(t *testing.T) {
	text, err := Render(Section{
		"GLOBAL": Section{"PROJECT": String("aiida"), "RUN_TYPE": String("ENERGY")},
		"FORCE_EVAL": Section{
			"METHOD": String("Quickstep"),
			"DFT": Section{
				"QS":  Section{"EPS_DEFAULT": Float(1e-12)},
				"XC":  Section{"XC_FUNCTIONAL": Section{"_": String("LDA")}},
				"UKS": Bool(true),
			},
		},
	})
	require.NoError(t, err)

	want := strings.Join([]string{
		Disclaimer,
		"&FORCE_EVAL",
		"   &DFT",
		"      &QS",
		"         EPS_DEFAULT  1e-12",
		"      &END QS",
		"      UKS  .TRUE.",
		"      &XC",
		"         &XC_FUNCTIONAL LDA",
		"         &END XC_FUNCTIONAL",
		"      &END XC",
		"   &END DFT",
		"   METHOD  Quickstep",
		"&END FORCE_EVAL",
		"&GLOBAL",
		"   PROJECT  aiida",
		"   RUN_TYPE  ENERGY",
		"&END GLOBAL",
	}, "\n")
	assert.Equal(t, want, text)
	assert.False(t, strings.HasSuffix(text, "\n"))
}

func TestRenderIsDeterministic(t *testing.T) {
	// Each key always maps to the same value; only insertion order varies.
	build := func(keys []string) Section {
		s := Section{}
		for _, k := range keys {
			sub := Section{}
			for _, inner := range keys {
				sub[inner] = String(k + "_" + inner)
			}
			sub["_"] = String(k)
			s[k] = sub
		}
		return s
	}

	keys := []string{"ALPHA", "BETA", "GAMMA", "DELTA"}
	var orders [][]string
	var permute func(prefix, rest []string)
	permute = func(prefix, rest []string) {
		if len(rest) == 0 {
			orders = append(orders, append([]string(nil), prefix...))
			return
		}
		for i := range rest {
			next := append(append([]string(nil), rest[:i]...), rest[i+1:]...)
			permute(append(prefix, rest[i]), next)
		}
	}
	permute(nil, keys)
	require.Len(t, orders, 24)

	first, err := Render(build(orders[0]))
	require.NoError(t, err)
	for _, order := range orders[1:] {
		got, err := Render(build(order))
		require.NoError(t, err)
		require.Equal(t, first, got, "insertion order %v", order)
	}
	assert.True(t, strings.HasPrefix(first, Disclaimer+"\n&ALPHA ALPHA\n   ALPHA  ALPHA_ALPHA\n   BETA  ALPHA_BETA\n"))
}

func TestRenderSectionParameterVariants(t *testing.T) {
	got, err := RenderLines(Section{
		"PRINT":         Section{"_": Bool(true)},
		"XC_FUNCTIONAL": Section{"_": Repeated{String("LDA"), String("PADE")}},
	})
	require.NoError(t, err)

	want := []string{
		Disclaimer,
		"&PRINT .TRUE.",
		"&END PRINT",
		"&XC_FUNCTIONAL LDA PADE",
		"&END XC_FUNCTIONAL",
	}
	assert.Equal(t, want, got)
}

func TestRenderRootParameterIsSkipped(t *testing.T) {
	got, err := RenderLines(Section{"_": String("ignored"), "A": Int(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{Disclaimer, "A  1"}, got)
}

func TestRenderFlagKeyword(t *testing.T) {
	got, err := RenderLines(Section{"SECTION": Section{"FLAG": nil}})
	require.NoError(t, err)
	assert.Equal(t, []string{Disclaimer, "&SECTION", "   FLAG", "&END SECTION"}, got)
}

func TestRenderEmptyTree(t *testing.T) {
	text, err := Render(Section{})
	require.NoError(t, err)
	assert.Equal(t, Disclaimer, text)
}

func TestRenderRejectsInvalidKeys(t *testing.T) {
	tests := []struct {
		name     string
		tree     Section
		kind     ViolationKind
		sentinel error
		key      string
		path     string
	}{
		{
			name:     "lower case top level",
			tree:     Section{"global": Section{}},
			kind:     CaseViolation,
			sentinel: ErrNotUpperCase,
			key:      "global",
		},
		{
			name:     "mixed case nested",
			tree:     Section{"FORCE_EVAL": Section{"DFT": Section{"Basis_Set_File_Name": String("x")}}},
			kind:     CaseViolation,
			sentinel: ErrNotUpperCase,
			key:      "Basis_Set_File_Name",
			path:     "FORCE_EVAL/DFT",
		},
		{
			name:     "lower case inside repeated element",
			tree:     Section{"KIND": Repeated{Section{"_": String("H"), "element": String("H")}}},
			kind:     CaseViolation,
			sentinel: ErrNotUpperCase,
			key:      "element",
			path:     "KIND",
		},
		{
			name:     "include directive",
			tree:     Section{"@INCLUDE": String("file.inc")},
			kind:     ReservedCharacterViolation,
			sentinel: ErrReservedPrefix,
			key:      "@INCLUDE",
		},
		{
			name:     "variable",
			tree:     Section{"GLOBAL": Section{"$CUTOFF": Int(280)}},
			kind:     ReservedCharacterViolation,
			sentinel: ErrReservedPrefix,
			key:      "$CUTOFF",
			path:     "GLOBAL",
		},
		{
			name:     "empty repeated still checked",
			tree:     Section{"kind": Repeated{}},
			kind:     CaseViolation,
			sentinel: ErrNotUpperCase,
			key:      "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := RenderLines(tt.tree)
			require.Error(t, err)
			assert.Nil(t, lines)

			var fe *FormatError
			require.True(t, errors.As(err, &fe), "expected *FormatError, got %T", err)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, tt.key, fe.Key)
			assert.Equal(t, tt.path, fe.Path.String())
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.key)

			text, err := Render(tt.tree)
			require.Error(t, err)
			assert.Empty(t, text)
		})
	}
}

func TestRenderFailsAfterValidSiblings(t *testing.T) {
	// A valid key sorting before the bad one must not leak partial output.
	lines, err := RenderLines(Section{"A": Int(1), "b": Int(2)})
	require.ErrorIs(t, err, ErrNotUpperCase)
	assert.Nil(t, lines)
}
