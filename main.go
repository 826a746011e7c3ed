package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rtm0/mdk2nc/internal/cftime"
	"github.com/rtm0/mdk2nc/internal/grid"
	"github.com/rtm0/mdk2nc/internal/ncfile"
	"github.com/rtm0/mdk2nc/internal/rel"
)

// cfg holds flag, environment and config file settings.
var cfg = viper.New()

// Logs go to stderr so that dump output on stdout stays clean.
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:   "mdk2nc",
	Short: "Convert Medslik-II .rel exports into NetCDF wind files",
	Long: `mdk2nc converts the .rel text files produced by Medslik-II into NetCDF
files with the same dimensions (lat, lon, time) and variables (lat, lon,
time, U10M, V10M) as the wind files Medslik-II reads.

Every flag can also be set with an MDK2NC_ environment variable, for
example MDK2NC_INPUT, or in the file given by --config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		if path := cfg.GetString("config"); path != "" {
			cfg.SetConfigFile(path)
			if err := cfg.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file: %w", err)
			}
		}
		level := slog.LevelInfo
		if cfg.GetBool("verbose") {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return nil
	},
}

var options = []struct {
	name, usage, shorthand string
	defaultVal             any
	flagsets               []*pflag.FlagSet
}{
	{
		name:       "config",
		usage:      "configuration file (any format viper reads)",
		defaultVal: "",
		flagsets:   []*pflag.FlagSet{rootCmd.PersistentFlags()},
	},
	{
		name:       "verbose",
		usage:      "log debug messages",
		shorthand:  "v",
		defaultVal: false,
		flagsets:   []*pflag.FlagSet{rootCmd.PersistentFlags()},
	},
	{
		name:       "input",
		usage:      "input file",
		shorthand:  "i",
		defaultVal: "",
		flagsets:   []*pflag.FlagSet{convertCmd.Flags(), dumpCmd.Flags(), infoCmd.Flags()},
	},
	{
		name:       "output",
		usage:      "output NetCDF file (default <input>.nc)",
		shorthand:  "o",
		defaultVal: "",
		flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
	},
	{
		name:       "time",
		usage:      "ISO-8601 time of the slice, e.g. 2020-04-21T12:00",
		shorthand:  "t",
		defaultVal: "",
		flagsets:   []*pflag.FlagSet{convertCmd.Flags(), dumpCmd.Flags()},
	},
	{
		name:       "strict",
		usage:      "abort on the first malformed row instead of skipping it",
		defaultVal: false,
		flagsets:   []*pflag.FlagSet{convertCmd.Flags(), dumpCmd.Flags()},
	},
	{
		name:       "channels",
		usage:      "variable names of the two wind components",
		defaultVal: ncfile.DefaultChannels,
		flagsets:   []*pflag.FlagSet{convertCmd.Flags(), dumpCmd.Flags()},
	},
	{
		name:       "format",
		usage:      "dump format: csv or influx",
		defaultVal: "csv",
		flagsets:   []*pflag.FlagSet{dumpCmd.Flags()},
	},
	{
		name:       "lat-var",
		usage:      "name of the latitude variable",
		defaultVal: "lat",
		flagsets:   []*pflag.FlagSet{infoCmd.Flags()},
	},
	{
		name:       "lon-var",
		usage:      "name of the longitude variable",
		defaultVal: "lon",
		flagsets:   []*pflag.FlagSet{infoCmd.Flags()},
	},
}

func init() {
	rootCmd.AddCommand(convertCmd, infoCmd, dumpCmd)

	for _, o := range options {
		for _, set := range o.flagsets {
			switch v := o.defaultVal.(type) {
			case string:
				set.StringP(o.name, o.shorthand, v, o.usage)
			case bool:
				set.BoolP(o.name, o.shorthand, v, o.usage)
			case []string:
				set.StringSliceP(o.name, o.shorthand, v, o.usage)
			default:
				panic(fmt.Sprintf("option %s: unsupported default %T", o.name, v))
			}
		}
	}

	cfg.SetEnvPrefix("MDK2NC")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("mdk2nc failed", "err", err)
		os.Exit(1)
	}
}

func requiredString(name string) (string, error) {
	v := cfg.GetString(name)
	if v == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return v, nil
}

// stringList returns a list setting. Lists from the environment or a config
// file may be comma separated as on the command line.
func stringList(name string) []string {
	var out []string
	for _, v := range cfg.GetStringSlice(name) {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// readGrid reads and densifies the .rel file named by the input setting.
func readGrid() (*grid.Grid, error) {
	input, err := requiredString("input")
	if err != nil {
		return nil, err
	}
	s, err := rel.Open(logger, input, rel.Options{Strict: cfg.GetBool("strict")})
	if err != nil {
		return nil, err
	}
	defer s.Close()
	g, err := rel.Densify(logger, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return g, nil
}

// sliceTime parses the time setting.
func sliceTime() (time.Time, error) {
	v, err := requiredString("time")
	if err != nil {
		return time.Time{}, err
	}
	return cftime.ParseTimestamp(v)
}
