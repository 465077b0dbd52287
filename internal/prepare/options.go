package prepare

// Options holds the fixed file names and project name used when
// preparing a job folder. Field tags match the CLI configuration keys.
type Options struct {
	ProjectName      string `mapstructure:"project"`
	InputFile        string `mapstructure:"input_file"`
	OutputFile       string `mapstructure:"output_file"`
	CoordsFile       string `mapstructure:"coords_file"`
	ParentFolderName string `mapstructure:"parent_folder_name"`
	BasisSetFile     string `mapstructure:"basis_set_file"`
	PotentialFile    string `mapstructure:"potential_file"`
}

// DefaultOptions returns the standard AiiDA file layout.
func DefaultOptions() Options {
	return Options{
		ProjectName:      "aiida",
		InputFile:        "aiida.inp",
		OutputFile:       "aiida.out",
		CoordsFile:       "aiida.coords.xyz",
		ParentFolderName: "parent_calc/",
		BasisSetFile:     "BASIS_SETS",
		PotentialFile:    "POTENTIALS",
	}
}

// RestartFile is the restart file CP2K writes for the project.
func (o Options) RestartFile() string {
	return o.ProjectName + "-1.restart"
}

// withDefaults fills empty fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ProjectName == "" {
		o.ProjectName = d.ProjectName
	}
	if o.InputFile == "" {
		o.InputFile = d.InputFile
	}
	if o.OutputFile == "" {
		o.OutputFile = d.OutputFile
	}
	if o.CoordsFile == "" {
		o.CoordsFile = d.CoordsFile
	}
	if o.ParentFolderName == "" {
		o.ParentFolderName = d.ParentFolderName
	}
	if o.BasisSetFile == "" {
		o.BasisSetFile = d.BasisSetFile
	}
	if o.PotentialFile == "" {
		o.PotentialFile = d.PotentialFile
	}
	return o
}
