package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/itohio/gorigol/pkg/scope"
	"github.com/itohio/gorigol/pkg/scpi"
	"github.com/itohio/gorigol/pkg/waveform"
)

var (
	// acquire flags
	channelFlag   int
	modeFlag      string
	formatFlag    string
	startFlag     int
	endFlag       int
	averageFlag   int
	voltsFlag     bool
	outputFlag    string
	previewFlag   int
	edgeFlag      float64
	waitFlag      time.Duration
	usbLocFlag    string
	dataDirFlag   string
	fileNameFlag  string
	saveWaitFlag  bool
	saveWaitLimit time.Duration
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List USB instruments and serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		resources, err := scpi.Resources()
		if err != nil {
			return err
		}
		for _, r := range resources {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show identity and acquisition settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSession(func(s *scope.Session) error {
			id, err := s.Identify()
			if err != nil {
				return err
			}
			depth, err := s.MemoryDepth()
			if err != nil {
				return err
			}
			rate, err := s.SampleRate()
			if err != nil {
				return err
			}
			window, err := s.WindowDuration()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model:        %s %s\n", id.Manufacturer, id.Model)
			fmt.Fprintf(out, "Serial:       %s\n", id.Serial)
			fmt.Fprintf(out, "Firmware:     %s\n", id.Firmware)
			fmt.Fprintf(out, "Memory depth: %d\n", depth)
			fmt.Fprintf(out, "Sample rate:  %g Sa/s\n", rate)
			fmt.Fprintf(out, "Timebase:     %v/div (%v on screen)\n", window/scope.HorizontalGrids, window)
			return nil
		})
	},
}

// controlCommands are the argument-less instrument commands.
var controlCommands = []struct {
	use   string
	short string
	run   func(s *scope.Session) error
}{
	{"run", "Start continuous acquisition", (*scope.Session).Run},
	{"stop", "Stop acquisition", (*scope.Session).Stop},
	{"clear", "Clear the display", (*scope.Session).Clear},
	{"autoscale", "Autoscale all channels", (*scope.Session).Autoscale},
	{"single", "Arm a single trigger", (*scope.Session).Single},
}

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Read a waveform window",
	Long: `acquire stops the instrument, selects the channel, mode, format and point range
and reads the waveform. Without -o a summary and a decimated preview are printed.`,
	Args: cobra.NoArgs,
	RunE: runAcquire,
}

var saveCSVCmd = &cobra.Command{
	Use:   "save-csv",
	Short: "Save the current waveform as CSV on the instrument's USB drive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyExportFlags(cmd)

		mount, err := scope.ParseMountPoint(cfg.Export.USBLocation)
		if err != nil {
			return err
		}

		return withSession(func(s *scope.Session) error {
			c := scope.NewCapture(s, mount, cfg.Export.DataDir, cfg.Export.FileName)
			if err := c.Save(); err != nil {
				return err
			}
			if saveWaitFlag {
				ctx, cancel := context.WithTimeout(cmd.Context(), saveWaitLimit)
				defer cancel()
				if err := s.WaitComplete(ctx); err != nil {
					return fmt.Errorf("failed to wait for %s: %w", c.Path(), err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s on %s\n", c.Path(), mount)
			return nil
		})
	},
}

func init() {
	for _, c := range controlCommands {
		run := c.run
		rootCmd.AddCommand(&cobra.Command{
			Use:   c.use,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return withSession(run)
			},
		})
	}

	f := acquireCmd.Flags()
	f.IntVar(&channelFlag, "channel", 1, "channel 1-4")
	f.StringVarP(&modeFlag, "mode", "m", "", "NORMal, MAXimum or RAW")
	f.StringVarP(&formatFlag, "format", "f", "", "BYTE, WORD or ASCII")
	f.IntVar(&startFlag, "start", 1, "first point")
	f.IntVar(&endFlag, "end", 100, "last point")
	f.IntVarP(&averageFlag, "average", "n", 1, "number of acquisitions to average")
	f.BoolVar(&voltsFlag, "volts", false, "scale samples to volts using the preamble")
	f.StringVarP(&outputFlag, "output", "o", "", "write samples to this host CSV file")
	f.IntVar(&previewFlag, "preview", 20, "number of decimated samples to print")
	f.Float64Var(&edgeFlag, "edge-threshold", 0, "report edges steeper than this many V/s (requires --volts)")
	f.DurationVar(&waitFlag, "wait", 30*time.Second, "maximum time to wait for each averaged frame")

	f = saveCSVCmd.Flags()
	f.StringVarP(&usbLocFlag, "usb-loc", "u", "", "FRONT or BACK USB port")
	f.StringVarP(&dataDirFlag, "data-dir", "d", "", "directory on the USB drive")
	f.StringVar(&fileNameFlag, "filename", "", "file name on the USB drive")
	f.BoolVar(&saveWaitFlag, "wait", false, "wait until the instrument reports completion")
	f.DurationVar(&saveWaitLimit, "wait-timeout", 30*time.Second, "maximum time to wait")

	rootCmd.AddCommand(portsCmd, infoCmd, acquireCmd, saveCSVCmd)
}

// acquireRequest builds the request from flags, falling back to the configuration.
func acquireRequest(cmd *cobra.Command) (scope.AcquireRequest, error) {
	flags := cmd.Flags()
	a := cfg.Acquisition
	if flags.Changed("channel") {
		a.Channel = channelFlag
	}
	if flags.Changed("mode") {
		a.Mode = modeFlag
	}
	if flags.Changed("format") {
		a.Format = formatFlag
	}
	if flags.Changed("start") {
		a.Start = startFlag
	}
	if flags.Changed("end") {
		a.End = endFlag
	}
	if flags.Changed("average") {
		a.Average = averageFlag
	}
	cfg.Acquisition = a

	mode, err := scope.ParseMode(a.Mode)
	if err != nil {
		return scope.AcquireRequest{}, err
	}
	format, err := waveform.ParseFormat(a.Format)
	if err != nil {
		return scope.AcquireRequest{}, fmt.Errorf("%w: %v", scope.ErrInvalidFormat, err)
	}
	return scope.AcquireRequest{
		Channel: scope.Channel(a.Channel),
		Mode:    mode,
		Format:  format,
		Range:   scope.PointRange{Start: a.Start, End: a.End},
	}, nil
}

func runAcquire(cmd *cobra.Command, _ []string) error {
	req, err := acquireRequest(cmd)
	if err != nil {
		return err
	}
	average := max(cfg.Acquisition.Average, 1)

	return withSession(func(s *scope.Session) error {
		if err := s.Validate(req); err != nil {
			return err
		}

		var (
			samples []float64
			trace   *waveform.Trace
		)
		switch {
		case average > 1:
			ctx, cancel := context.WithTimeout(cmd.Context(), waitFlag*time.Duration(average))
			defer cancel()
			samples, err = s.AcquireAveraged(ctx, req, average)
		case voltsFlag:
			var tr waveform.Trace
			tr, err = s.AcquireVolts(req)
			trace = &tr
		default:
			samples, err = s.Acquire(req)
		}
		if err != nil {
			return err
		}

		if voltsFlag && trace == nil {
			pre, err := s.Preamble()
			if err != nil {
				return err
			}
			tr := pre.Trace(samples, req.Format, req.Range.First())
			trace = &tr
		}

		if outputFlag != "" {
			if err := writeSamplesFile(outputFlag, samples, trace); err != nil {
				return err
			}
			log.Info("waveform written", "file", outputFlag, "samples", sampleCount(samples, trace))
		}

		return printSummary(cmd.OutOrStdout(), req, samples, trace, previewFlag, edgeFlag)
	})
}

func applyExportFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("usb-loc") {
		cfg.Export.USBLocation = usbLocFlag
	}
	if flags.Changed("data-dir") {
		cfg.Export.DataDir = dataDirFlag
	}
	if flags.Changed("filename") {
		cfg.Export.FileName = fileNameFlag
	}
}
