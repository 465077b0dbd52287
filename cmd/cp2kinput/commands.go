package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shcv/cp2kinput"
	"github.com/shcv/cp2kinput/internal/paramfile"
	"github.com/shcv/cp2kinput/internal/prepare"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// treeFlags are the flags shared by every command that builds a tree.
type treeFlags struct {
	sets       []string
	noOverride bool
}

func (f *treeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "set PATH=VALUE after loading (repeatable)")
	cmd.Flags().BoolVar(&f.noOverride, "no-override", false, "leave existing keywords untouched when applying --set")
}

func newRenderCmd(a *app) *cobra.Command {
	var f treeFlags
	cmd := &cobra.Command{
		Use:   "render [PARAMS...]",
		Short: "Render parameter files as a CP2K input file",
		Example: `  cp2kinput render water.yaml --set FORCE_EVAL/DFT/MGRID/CUTOFF=400
  cp2kinput render base.toml overrides.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inp, err := a.buildInput(args, &f)
			if err != nil {
				return err
			}
			_, err = inp.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var f treeFlags
	cmd := &cobra.Command{
		Use:   "tree [PARAMS...]",
		Short: "Print the merged parameter tree as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			inp, err := a.buildInput(args, &f)
			if err != nil {
				return err
			}
			return writeJSON(cmd, inp.Params().ToMap())
		},
	}
	f.register(cmd)
	return cmd
}

type prepareFlags struct {
	treeFlags
	dir          string
	structure    string
	basisSets    []string
	pseudos      []string
	settings     string
	files        []string
	parentFolder string
}

func newPrepareCmd(a *app) *cobra.Command {
	var f prepareFlags
	cmd := &cobra.Command{
		Use:   "prepare [PARAMS...] --dir DIR",
		Short: "Write a complete CP2K job folder",
		Long: `prepare renders the input file into DIR together with the coordinates,
basis set and pseudopotential files, and prints the resulting calculation
info as JSON.

File names and the project name come from flags, CP2KINPUT_* environment
variables or the --config file, in that order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare(cmd, args, &f)
		},
	}
	f.register(cmd)

	flags := cmd.Flags()
	flags.StringVar(&f.dir, "dir", "", "job folder to write (created if missing)")
	flags.StringVar(&f.structure, "structure", "", "structure file with cell and sites")
	flags.StringArrayVar(&f.basisSets, "basis-set", nil, "basis set file to include (repeatable)")
	flags.StringArrayVar(&f.pseudos, "pseudo", nil, "pseudopotential file to include (repeatable)")
	flags.StringVar(&f.settings, "settings", "", "settings file with cmdline and additional_retrieve_list")
	flags.StringArrayVar(&f.files, "file", nil, "extra input file copied into the job folder (repeatable)")
	flags.StringVar(&f.parentFolder, "parent-folder", "", "previous calculation folder to link for restarts")
	_ = cmd.MarkFlagRequired("dir")

	flags.String("project", "", "CP2K project name")
	flags.String("input-file", "", "input file name")
	flags.String("output-file", "", "output file name")
	flags.String("coords-file", "", "coordinates file name")
	for _, name := range []string{"project", "input-file", "output-file", "coords-file"} {
		_ = a.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
	return cmd
}

func (a *app) prepare(cmd *cobra.Command, args []string, f *prepareFlags) error {
	opts, err := a.options()
	if err != nil {
		return err
	}

	params, err := a.buildInput(args, &f.treeFlags)
	if err != nil {
		return err
	}
	job := prepare.Job{
		Parameters:   params.Params().ToMap(),
		Files:        f.files,
		ParentFolder: f.parentFolder,
	}

	if f.structure != "" {
		data, err := paramfile.Load(a.fs, f.structure)
		if err != nil {
			return err
		}
		if job.Structure, err = prepare.DecodeStructure(data); err != nil {
			return fmt.Errorf("invalid structure %s: %w", f.structure, err)
		}
	}
	if f.settings != "" {
		if job.Settings, err = paramfile.Load(a.fs, f.settings); err != nil {
			return err
		}
	}
	for _, p := range f.basisSets {
		job.BasisSets = append(job.BasisSets, prepare.FileEntry{Fs: a.fs, Path: p})
	}
	for _, p := range f.pseudos {
		job.Pseudos = append(job.Pseudos, prepare.FileEntry{Fs: a.fs, Path: p})
	}

	if err := a.fs.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", f.dir, err)
	}
	p := prepare.NewPreparer(afero.NewBasePathFs(a.fs, f.dir), opts,
		prepare.WithLogger(a.logger.With(zap.String("dir", f.dir))))

	info, err := p.Prepare(cmd.Context(), job)
	if err != nil {
		return err
	}
	return writeJSON(cmd, info)
}

// buildInput loads and merges the parameter files, then applies every
// --set assignment in order.
func (a *app) buildInput(paths []string, f *treeFlags) (*cp2kinput.Input, error) {
	params, err := paramfile.LoadAll(a.fs, paths...)
	if err != nil {
		return nil, err
	}
	inp := cp2kinput.New(params)

	for _, s := range f.sets {
		path, v, err := parseAssignment(s)
		if err != nil {
			return nil, err
		}
		if err := inp.SetAny(path, v, cp2kinput.WithOverride(!f.noOverride)); err != nil {
			return nil, fmt.Errorf("invalid value in %q: %w", s, err)
		}
	}
	a.logger.Debug("Built parameter tree.",
		zap.Strings("files", paths),
		zap.Int("assignments", len(f.sets)))
	return inp, nil
}

// parseAssignment splits PATH=VALUE. VALUE is read as a YAML scalar or
// flow collection so numbers, booleans, lists and sections keep their
// type; anything else is taken verbatim.
func parseAssignment(s string) (cp2kinput.Path, any, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return nil, nil, fmt.Errorf("invalid assignment %q, expected PATH=VALUE", s)
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		v = raw
	}
	return cp2kinput.ParsePath(key), v, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
