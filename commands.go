package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtm0/mdk2nc/internal/dump"
	"github.com/rtm0/mdk2nc/internal/ncfile"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a .rel file into a NetCDF wind file",
	Long: `convert reads the latitude, longitude and wind components (columns 0, 1,
5 and 6) of every data row of a .rel file and writes them as a single time
slice of a lat x lon grid. Cells without an observation hold NaN. When a
location appears more than once, the first row wins.

Both axes are sorted as text, so coordinates should have the same number
of digits for the grid to come out in numeric order.`,
	Example: "mdk2nc convert -i spill.rel -t 2020-04-21T12:00",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ts, err := sliceTime()
		if err != nil {
			return err
		}
		g, err := readGrid()
		if err != nil {
			return err
		}
		input := cfg.GetString("input")
		output := cfg.GetString("output")
		if output == "" {
			output = input + ".nc"
		}
		return ncfile.Write(logger, output, g, ncfile.WriteOptions{
			Time:     ts,
			Channels: stringList("channels"),
			Source:   filepath.Base(input),
		})
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the grid of a .rel file as text",
	Long: `dump densifies a .rel file exactly like convert and prints one line per
grid cell to standard output, either as CSV or as InfluxDB line protocol.`,
	Example: "mdk2nc dump -i spill.rel -t 2020-04-21T12:00 --format influx",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ts, err := sliceTime()
		if err != nil {
			return err
		}
		g, err := readGrid()
		if err != nil {
			return err
		}
		return dump.Write(cmd.OutOrStdout(), g, ts, cfg.GetString("format"), stringList("channels"))
	},
}

var infoCmd = &cobra.Command{
	Use:     "info",
	Short:   "List the variables and the lat/lon bounds of a NetCDF file",
	Example: "mdk2nc info -i wind.nc --lat-var latitude --lon-var longitude",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, err := requiredString("input")
		if err != nil {
			return err
		}
		inf, err := ncfile.Inspect(input, cfg.GetString("lat-var"), cfg.GetString("lon-var"))
		if err != nil {
			return err
		}
		logger.Debug("NetCDF summary", inf.Summary()...)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "variables: %s\n", strings.Join(inf.Vars, " "))
		fmt.Fprintf(out, "lat: %g .. %g\n", inf.Lat.Min, inf.Lat.Max)
		fmt.Fprintf(out, "lon: %g .. %g\n", inf.Lon.Min, inf.Lon.Max)
		return nil
	},
}
