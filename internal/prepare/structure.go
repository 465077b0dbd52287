package prepare

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shcv/cp2kinput"
)

// Site is one atom of a structure, positions in Angstrom.
type Site struct {
	Symbol   string     `mapstructure:"symbol"`
	Position [3]float64 `mapstructure:"position"`
}

// Structure is an atomic structure. Cell rows are the lattice vectors A,
// B and C. PBC holds the periodicity along each of them; the zero value is
// non-periodic, while DecodeStructure defaults to periodic on all axes.
type Structure struct {
	Cell  [3][3]float64 `mapstructure:"cell"`
	PBC   [3]bool       `mapstructure:"pbc"`
	Sites []Site        `mapstructure:"sites"`
}

// DecodeStructure builds a Structure from generic data such as
//
//	cell: [[10, 0, 0], [0, 10, 0], [0, 0, 10]]
//	pbc: [true, true, false]
//	sites:
//	  - {symbol: O, position: [0, 0, 0.119]}
func DecodeStructure(data map[string]any) (*Structure, error) {
	s := Structure{PBC: [3]bool{true, true, true}}
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode structure: %w", err)
	}
	if len(md.Unused) > 0 {
		return nil, fmt.Errorf("failed to decode structure: unknown keys %s", strings.Join(md.Unused, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every lattice vector is non-zero and every site
// has a symbol.
func (s *Structure) Validate() error {
	for i, row := range s.Cell {
		if row == [3]float64{} {
			return fmt.Errorf("cell vector %c is zero", "ABC"[i])
		}
	}
	for i, site := range s.Sites {
		if site.Symbol == "" {
			return fmt.Errorf("site %d has no symbol", i)
		}
	}
	return nil
}

// CellVector formats lattice vector i as three left-aligned fields of
// width 15, the form CP2K accepts for the CELL A, B and C keywords.
func (s *Structure) CellVector(i int) string {
	row := s.Cell[i]
	return fmt.Sprintf("%-15s %-15s %-15s",
		cp2kinput.Float(row[0]).String(),
		cp2kinput.Float(row[1]).String(),
		cp2kinput.Float(row[2]).String())
}

// WriteXYZ writes the structure in extended XYZ format.
func (s *Structure) WriteXYZ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(s.Sites))

	lattice := make([]string, 0, 9)
	for _, row := range s.Cell {
		for _, x := range row {
			lattice = append(lattice, cp2kinput.Float(x).String())
		}
	}
	pbc := make([]string, 0, 3)
	for _, periodic := range s.PBC {
		if periodic {
			pbc = append(pbc, "T")
		} else {
			pbc = append(pbc, "F")
		}
	}
	fmt.Fprintf(bw, "Lattice=\"%s\" pbc=\"%s\"\n", strings.Join(lattice, " "), strings.Join(pbc, " "))

	for _, site := range s.Sites {
		fmt.Fprintf(bw, "%-6s %18.10f %18.10f %18.10f\n",
			site.Symbol, site.Position[0], site.Position[1], site.Position[2])
	}
	return bw.Flush()
}
