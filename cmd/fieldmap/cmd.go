package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"go.ngs.io/fieldmap/internal/adapter/output"
	"go.ngs.io/fieldmap/internal/adapter/render"
	"go.ngs.io/fieldmap/internal/adapter/script"
	"go.ngs.io/fieldmap/internal/adapter/store"
	"go.ngs.io/fieldmap/internal/adapter/store/native"
	"go.ngs.io/fieldmap/internal/adapter/store/ncfile"
	"go.ngs.io/fieldmap/internal/usecase"
)

const version = "0.1.0"

// Reader backends.
const (
	ReaderNetCDF = "netcdf"
	ReaderNative = "native"
)

// option is one configuration variable, settable by flag, environment
// variable (FIELDMAP_<NAME>) or configuration file.
type option struct {
	name, shorthand, usage string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// app holds the command tree and the configuration it reads.
type app struct {
	root *cobra.Command
	cfg  *viper.Viper
	log  *logrus.Logger
}

// newApp builds the fieldmap command tree writing to out.
func newApp(out io.Writer) *app {
	a := &app{cfg: viper.New(), log: logrus.New()}
	a.log.SetOutput(out)
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	a.root = &cobra.Command{
		Use:   "fieldmap",
		Short: "Map scalar and vector fields from NetCDF datasets.",
		Long: `fieldmap reads gridded variables from a NetCDF dataset, normalizes them to
[time, depth, lat, lon] order, and draws lat/lon maps and graphs.

Configuration can be changed with command-line flags, with a configuration
file (--config), or with environment variables named 'FIELDMAP_var' where
'var' is the upper-case flag name with dashes replaced by underscores.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setConfig() },
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("fieldmap v%s\n", version)
		},
	}

	variablesCmd := &cobra.Command{
		Use:   "variables",
		Short: "List the variables of the dataset",
		Long:  "variables lists every variable of the dataset and marks the data variables, those that are not coordinate variables.",
		Args:  cobra.NoArgs,
		RunE:  a.runVariables,
	}

	dimsCmd := &cobra.Command{
		Use:   "dims <variable>",
		Short: "Print the dimensions of a variable",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runDims,
	}

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Draw a figure from a plot request file",
		Long: `plot reads a YAML plot request, builds the selected frame and saves the
figure. The request names the coordinate variables, the time/depth dependence,
the slice indices, and either a scalar, a vector pair or a graph x/y pair.`,
		Args: cobra.NoArgs,
		RunE: a.runPlot,
	}

	for _, cmd := range []*cobra.Command{versionCmd, variablesCmd, dimsCmd, plotCmd} {
		cmd.SetOut(out)
		a.root.AddCommand(cmd)
	}
	a.root.SetOut(out)
	a.root.SetErr(out)

	a.bind([]option{
		{
			name:       "config",
			usage:      "config specifies the configuration file location.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{a.root.PersistentFlags()},
		},
		{
			name:       "dataset",
			shorthand:  "d",
			usage:      "dataset is the path to the NetCDF file to read.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{a.root.PersistentFlags()},
		},
		{
			name:       "reader",
			usage:      "reader selects the NetCDF backend: netcdf (libnetcdf) or native (pure Go).",
			defaultVal: ReaderNetCDF,
			flagsets:   []*pflag.FlagSet{a.root.PersistentFlags()},
		},
		{
			name:       "log-level",
			usage:      "log-level sets the logging level (debug, info, warn, error).",
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{a.root.PersistentFlags()},
		},
		{
			name:       "request",
			shorthand:  "r",
			usage:      "request is the YAML plot request to run.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name:       "save-request",
			usage:      "save-request writes the completed request, defaults included, to this path.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name:       "csv",
			usage:      "csv writes the selected slices to this CSV file.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name:       "out",
			shorthand:  "o",
			usage:      "out overrides the figure path built from the request's location, name and format.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name:       "format",
			usage:      "format overrides the request's figure format (png, jpg, svg, pdf, eps, tif).",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
	})

	return a
}

// bind creates the flags of each option and binds them to the configuration.
func (a *app) bind(options []option) {
	a.cfg.SetEnvPrefix("FIELDMAP")
	a.cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.cfg.AutomaticEnv()

	for _, opt := range options {
		for i, set := range opt.flagsets {
			if i != 0 {
				set.AddFlag(opt.flagsets[0].Lookup(opt.name))
				continue
			}
			switch v := opt.defaultVal.(type) {
			case string:
				set.StringP(opt.name, opt.shorthand, v, opt.usage)
			case int:
				set.IntP(opt.name, opt.shorthand, v, opt.usage)
			case bool:
				set.BoolP(opt.name, opt.shorthand, v, opt.usage)
			default:
				panic("invalid argument type")
			}
			if err := a.cfg.BindPFlag(opt.name, set.Lookup(opt.name)); err != nil {
				panic(err)
			}
		}
	}
}

// setConfig reads the configuration file, if there is one, and applies the
// log level.
func (a *app) setConfig() error {
	if path := a.cfg.GetString("config"); path != "" {
		a.cfg.SetConfigFile(path)
		if err := a.cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read configuration file: %w", err)
		}
	}
	level, err := logrus.ParseLevel(a.cfg.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	a.log.SetLevel(level)
	return nil
}

// openReader opens the configured dataset with the configured backend.
func (a *app) openReader() (store.DatasetReader, error) {
	path := a.cfg.GetString("dataset")
	if path == "" {
		return nil, fmt.Errorf("no dataset given (set --dataset or FIELDMAP_DATASET)")
	}
	return openReader(a.cfg.GetString("reader"), path)
}

func openReader(backend, path string) (store.DatasetReader, error) {
	switch strings.ToLower(backend) {
	case ReaderNetCDF, "":
		return ncfile.Open(path)
	case ReaderNative:
		return native.Open(path)
	default:
		return nil, fmt.Errorf("unknown reader %q (want %s or %s)", backend, ReaderNetCDF, ReaderNative)
	}
}

func (a *app) runVariables(cmd *cobra.Command, _ []string) error {
	r, err := a.openReader()
	if err != nil {
		return err
	}
	defer r.Close()

	vars, err := usecase.NewPlotUseCase(r, a.log, nil).Variables()
	if err != nil {
		return err
	}
	data := make(map[string]bool, len(vars.Data))
	for _, name := range vars.Data {
		data[name] = true
	}
	for _, name := range vars.All {
		if data[name] {
			cmd.Printf("%s\tdata\n", name)
		} else {
			cmd.Printf("%s\tcoordinate\n", name)
		}
	}
	return nil
}

func (a *app) runDims(cmd *cobra.Command, args []string) error {
	r, err := a.openReader()
	if err != nil {
		return err
	}
	defer r.Close()

	return printDims(cmd.OutOrStdout(), usecase.NewPlotUseCase(r, a.log, nil), args[0])
}

// printDims writes one line per dimension of variable, with the length of its
// coordinate variable when the dataset has one.
func printDims(w io.Writer, uc *usecase.PlotUseCase, variable string) error {
	dims, err := uc.Dimensions(variable)
	if err != nil {
		return err
	}
	for _, d := range dims {
		n, err := uc.AxisLength(d)
		switch {
		case errors.Is(err, store.ErrVariableNotFound):
			fmt.Fprintf(w, "%s\n", d)
		case err != nil:
			return err
		default:
			fmt.Fprintf(w, "%s\t%d\n", d, n)
		}
	}
	return nil
}

func (a *app) runPlot(cmd *cobra.Command, _ []string) error {
	reqPath := a.cfg.GetString("request")
	if reqPath == "" {
		return fmt.Errorf("no plot request given (set --request)")
	}
	req, err := script.Load(reqPath)
	if err != nil {
		return err
	}
	if format := a.cfg.GetString("format"); format != "" {
		req.Format = format
	}
	req.ApplyDefaults()

	r, err := a.openReader()
	if err != nil {
		return err
	}
	defer r.Close()

	uc := usecase.NewPlotUseCase(r, a.log, nil)
	p, opts, frame, err := uc.Render(req)
	if err != nil {
		return err
	}

	figPath := a.cfg.GetString("out")
	if figPath == "" {
		figPath = output.FigurePath(req.Location, req.Name, req.Format)
	}
	if err := render.Save(p, opts, figPath); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"kind":      frame.Kind,
		"variables": frame.Variables,
		"path":      figPath,
	}).Info("figure saved")

	if csvPath := a.cfg.GetString("csv"); csvPath != "" {
		if err := output.WriteSliceCSVFile(csvPath, frame.Lat, frame.Lon, frameColumns(req, frame)...); err != nil {
			return err
		}
		a.log.WithField("path", csvPath).Info("slice written")
	}

	if savePath := a.cfg.GetString("save-request"); savePath != "" {
		if err := script.Save(savePath, req); err != nil {
			return err
		}
		a.log.WithField("path", savePath).Info("request saved")
	}
	return nil
}

// frameColumns names the slices of a frame for CSV export.
func frameColumns(req usecase.PlotRequest, f *usecase.Frame) []output.Column {
	switch f.Kind {
	case usecase.FieldScalar:
		return []output.Column{{Name: req.Scalar, Values: f.Scalar}}
	case usecase.FieldGraph:
		return []output.Column{{Name: req.X, Values: f.X}, {Name: req.Y, Values: f.Y}}
	default:
		return []output.Column{
			{Name: "lat_component", Values: f.LatComponent},
			{Name: "lon_component", Values: f.LonComponent},
			{Name: "magnitude", Values: f.Magnitude},
		}
	}
}
