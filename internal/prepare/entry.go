package prepare

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// Entry is a basis set or pseudopotential that can append itself, in
// CP2K's native library format, to an auxiliary file.
type Entry interface {
	WriteCP2K(w io.Writer) error
}

// FileEntry is an entry stored verbatim in a file.
type FileEntry struct {
	Fs   afero.Fs
	Path string
}

// WriteCP2K copies the file content to w, adding a final newline if it is
// missing.
func (e FileEntry) WriteCP2K(w io.Writer) error {
	data, err := afero.ReadFile(e.Fs, e.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", e.Path, err)
	}
	return TextEntry(data).WriteCP2K(w)
}

// TextEntry is an entry held in memory.
type TextEntry string

// WriteCP2K writes the text to w, newline-terminated.
func (e TextEntry) WriteCP2K(w io.Writer) error {
	text := string(e)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}
