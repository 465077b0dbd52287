package prepare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Settings are the job options that are not CP2K parameters.
type Settings struct {
	// Cmdline is prepended to the "-i <input>" arguments.
	Cmdline []string `mapstructure:"cmdline"`
	// AdditionalRetrieveList is appended to the retrieve list.
	AdditionalRetrieveList []string `mapstructure:"additional_retrieve_list"`
}

// ParseSettings decodes settings data. Keys it does not understand are
// reported with ErrUnknownSettings.
func ParseSettings(data map[string]any) (Settings, error) {
	var s Settings
	if len(data) == 0 {
		return s, nil
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   &s,
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(data); err != nil {
		return s, fmt.Errorf("failed to decode settings: %w", err)
	}
	if len(md.Unused) > 0 {
		unused := append([]string(nil), md.Unused...)
		sort.Strings(unused)
		return s, fmt.Errorf("%w: %s", ErrUnknownSettings, strings.Join(unused, ","))
	}
	return s, nil
}
