package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shcv/cp2kinput/internal/prepare"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "CP2KINPUT"

// app is the state shared by all subcommands.
type app struct {
	fs     afero.Fs
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	logger *zap.Logger

	configFile string
	verbose    bool
}

func newRootCmd(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		fs:     fs,
		v:      viper.New(),
		out:    stdout,
		errOut: stderr,
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "cp2kinput",
		Short: "Build and render CP2K input files",
		Long: `cp2kinput assembles CP2K input files from nested parameter trees.

Parameter files may be JSON, YAML, TOML or HCL. When several are given they
are merged left to right, later files winning on conflicting keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "configuration file (yaml, json or toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRenderCmd(a), newTreeCmd(a), newPrepareCmd(a))
	return root
}

// init reads configuration and builds the logger.
func (a *app) init() error {
	a.v.SetFs(a.fs)
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	d := prepare.DefaultOptions()
	a.v.SetDefault("project", d.ProjectName)
	a.v.SetDefault("input_file", d.InputFile)
	a.v.SetDefault("output_file", d.OutputFile)
	a.v.SetDefault("coords_file", d.CoordsFile)
	a.v.SetDefault("parent_folder_name", d.ParentFolderName)
	a.v.SetDefault("basis_set_file", d.BasisSetFile)
	a.v.SetDefault("potential_file", d.PotentialFile)

	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", a.configFile, err)
		}
	}

	if a.verbose || a.v.GetBool("verbose") {
		a.logger = newLogger(a.errOut, zapcore.DebugLevel)
	} else {
		a.logger = newLogger(a.errOut, zapcore.InfoLevel)
	}
	return nil
}

// options decodes the prepare options from flags, environment and config.
func (a *app) options() (prepare.Options, error) {
	var opts prepare.Options
	if err := a.v.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("failed to decode options: %w", err)
	}
	return opts, nil
}

func newLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
