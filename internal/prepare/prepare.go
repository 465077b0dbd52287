// Package prepare turns a job description into a CP2K job folder: the
// rendered input file, the coordinates file and the basis set and
// pseudopotential libraries, plus the bookkeeping a scheduler needs to run
// the code and retrieve its results.
package prepare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/shcv/cp2kinput"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	// ErrInvalidParameters wraps any failure to convert or render the
	// parameter tree.
	ErrInvalidParameters = errors.New("invalid keys or values in input parameters found")
	// ErrUnknownSettings lists settings keys that were not understood.
	ErrUnknownSettings = errors.New("settings keys not understood")
)

// Paths injected into every input.
var (
	projectPath     = cp2kinput.ParsePath("GLOBAL/PROJECT")
	cellPath        = cp2kinput.ParsePath("FORCE_EVAL/SUBSYS/CELL")
	topologyPath    = cp2kinput.ParsePath("FORCE_EVAL/SUBSYS/TOPOLOGY")
	basisFilePath   = cp2kinput.ParsePath("FORCE_EVAL/DFT/BASIS_SET_FILE_NAME")
	potentialPath   = cp2kinput.ParsePath("FORCE_EVAL/DFT/POTENTIAL_FILE_NAME")
	cellConflicts   = []string{"ABC", "ALPHA_BETA_GAMMA", "CELL_FILE_NAME"}
	coordConflicts  = []string{"COORDINATE"}
	coordFileFormat = "XYZ"
)

// Job is everything needed to prepare one calculation.
type Job struct {
	// Parameters is the CP2K parameter tree.
	Parameters map[string]any
	Structure  *Structure
	BasisSets  []Entry
	Pseudos    []Entry
	// Settings holds "cmdline" and "additional_retrieve_list".
	Settings map[string]any
	// Files are extra input files copied next to the input under their
	// base name.
	Files []string
	// ParentFolder is a remote folder of a previous calculation, linked
	// into the job folder for restarts.
	ParentFolder string
}

// CopySpec maps a source path to a name inside the job folder.
type CopySpec struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// CalcInfo describes how to run the prepared job.
type CalcInfo struct {
	CmdlineParams     []string   `json:"cmdline_params"`
	StdinName         string     `json:"stdin_name"`
	StdoutName        string     `json:"stdout_name"`
	JoinFiles         bool       `json:"join_files"`
	RetrieveList      []string   `json:"retrieve_list"`
	LocalCopyList     []CopySpec `json:"local_copy_list"`
	RemoteCopyList    []CopySpec `json:"remote_copy_list"`
	RemoteSymlinkList []CopySpec `json:"remote_symlink_list"`
}

// Preparer writes job folders into a filesystem.
type Preparer struct {
	folder afero.Fs
	opts   Options
	logger *zap.Logger
}

// Option configures a Preparer.
type Option func(*Preparer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Preparer) { p.logger = logger }
}

// NewPreparer returns a Preparer writing into folder. Empty option fields
// take their DefaultOptions values.
func NewPreparer(folder afero.Fs, opts Options, options ...Option) *Preparer {
	p := &Preparer{
		folder: folder,
		opts:   opts.withDefaults(),
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Options returns the effective options.
func (p *Preparer) Options() Options {
	return p.opts
}

// Prepare writes the job folder and returns its CalcInfo. The parameter
// tree in job is not modified.
func (p *Preparer) Prepare(ctx context.Context, job Job) (*CalcInfo, error) {
	logger := p.logger.With(zap.String("project", p.opts.ProjectName))

	settings, err := ParseSettings(job.Settings)
	if err != nil {
		return nil, err
	}

	inp, err := cp2kinput.Load(job.Parameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	inp.Set(projectPath, cp2kinput.String(p.opts.ProjectName))

	if job.Structure != nil {
		if err := p.writeFile(ctx, p.opts.CoordsFile, job.Structure.WriteXYZ); err != nil {
			return nil, err
		}
		logger.Debug("Wrote coordinates.",
			zap.String("file", p.opts.CoordsFile),
			zap.Int("sites", len(job.Structure.Sites)))

		for i, axis := range []string{"A", "B", "C"} {
			inp.Set(cellPath.Child(axis), cp2kinput.String(job.Structure.CellVector(i)),
				cp2kinput.NoOverride(), cp2kinput.ConflictsWith(cellConflicts...))
		}
		inp.Set(topologyPath.Child("COORD_FILE_NAME"), cp2kinput.String(p.opts.CoordsFile),
			cp2kinput.NoOverride())
		inp.Set(topologyPath.Child("COORD_FILE_FORMAT"), cp2kinput.String(coordFileFormat),
			cp2kinput.NoOverride(), cp2kinput.ConflictsWith(coordConflicts...))
	}

	if len(job.BasisSets) > 0 {
		inp.Set(basisFilePath, cp2kinput.String(p.opts.BasisSetFile))
		if err := p.writeEntries(ctx, p.opts.BasisSetFile, job.BasisSets); err != nil {
			return nil, err
		}
		logger.Debug("Wrote basis sets.", zap.String("file", p.opts.BasisSetFile), zap.Int("count", len(job.BasisSets)))
	}

	if len(job.Pseudos) > 0 {
		inp.Set(potentialPath, cp2kinput.String(p.opts.PotentialFile))
		if err := p.writeEntries(ctx, p.opts.PotentialFile, job.Pseudos); err != nil {
			return nil, err
		}
		logger.Debug("Wrote pseudopotentials.", zap.String("file", p.opts.PotentialFile), zap.Int("count", len(job.Pseudos)))
	}

	// Render fully before touching the input file so a bad tree leaves
	// no partial input behind.
	var buf bytes.Buffer
	if _, err := inp.WriteTo(&buf); err != nil {
		logger.Debug("Rendering failed.", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	if err := p.writeFile(ctx, p.opts.InputFile, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	}); err != nil {
		return nil, err
	}

	info := p.calcInfo(job, settings)
	logger.Info("Prepared job folder.",
		zap.String("input_file", p.opts.InputFile),
		zap.Strings("retrieve", info.RetrieveList))
	return info, nil
}

func (p *Preparer) calcInfo(job Job, settings Settings) *CalcInfo {
	cmdline := append(append([]string{}, settings.Cmdline...), "-i", p.opts.InputFile)

	info := &CalcInfo{
		CmdlineParams:     cmdline,
		StdinName:         p.opts.InputFile,
		StdoutName:        p.opts.OutputFile,
		JoinFiles:         true,
		RetrieveList:      []string{p.opts.OutputFile, p.opts.RestartFile()},
		LocalCopyList:     []CopySpec{},
		RemoteCopyList:    []CopySpec{},
		RemoteSymlinkList: []CopySpec{},
	}
	info.RetrieveList = append(info.RetrieveList, settings.AdditionalRetrieveList...)

	for _, f := range job.Files {
		info.LocalCopyList = append(info.LocalCopyList, CopySpec{Source: f, Target: filepath.Base(f)})
	}
	if job.ParentFolder != "" {
		info.RemoteSymlinkList = append(info.RemoteSymlinkList,
			CopySpec{Source: job.ParentFolder, Target: p.opts.ParentFolderName})
	}
	return info
}

// writeEntries appends every entry to a fresh file.
func (p *Preparer) writeEntries(ctx context.Context, name string, entries []Entry) error {
	return p.writeFile(ctx, name, func(w io.Writer) error {
		for _, e := range entries {
			if err := e.WriteCP2K(w); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFile creates name in the job folder and fills it with write.
func (p *Preparer) writeFile(ctx context.Context, name string, write func(io.Writer) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := p.folder.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", name, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
