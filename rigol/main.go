// rigol controls a Rigol DS/MSO4000 oscilloscope over USB, serial or LAN and reads
// waveforms from it.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/itohio/gorigol/pkg/config"
	"github.com/itohio/gorigol/pkg/logger"
	"github.com/itohio/gorigol/pkg/scope"
	"github.com/itohio/gorigol/pkg/scpi"
)

var (
	// Global flags
	configFlag   string
	kindFlag     string
	addressFlag  string
	timeoutFlag  time.Duration
	chunkFlag    int
	mockFlag     bool
	logLevelFlag string
	metricsFlag  string
)

// Set by the root command before any subcommand runs.
var (
	cfg     *config.Config
	log     logger.Logger
	metrics *scpi.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "rigol",
	Short: "Rigol oscilloscope control and waveform capture",
	Long: `rigol sends SCPI commands to a Rigol DS/MSO4000 oscilloscope and reads waveforms.

Without --address the only attached USB instrument is used. --mock runs every
command against a simulated instrument.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", "rigol.yaml", "configuration file")
	pf.StringVar(&kindFlag, "kind", "", "transport: usb, serial, tcp or mock")
	pf.StringVarP(&addressFlag, "address", "a", "", "instrument resource, e.g. USB0::0x1AB1::0x04B0::DS4A1234::INSTR")
	pf.DurationVarP(&timeoutFlag, "timeout", "t", 0, "per request timeout")
	pf.IntVar(&chunkFlag, "chunk-size", 0, "read buffer size in bytes")
	pf.BoolVar(&mockFlag, "mock", false, "use the simulated instrument")
	pf.StringVar(&logLevelFlag, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&metricsFlag, "metrics-listen", "", "serve prometheus metrics on this address, e.g. :9100")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and initializes logging and metrics.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configFlag)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	opts := logger.Options{Level: level, Console: cfg.Log.Console}
	if cfg.Log.File != "" {
		opts.File = &logger.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
	}
	log = logger.NewSlog(opts)
	logger.SetDefault(log)

	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		metrics = scpi.NewMetrics(reg)
		go serveMetrics(cfg.Metrics.Listen, reg)
	}
	return nil
}

// applyFlags copies explicitly set global flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("kind") {
		c.Transport.Kind = kindFlag
	}
	if flags.Changed("address") {
		c.Transport.Address = addressFlag
		if !flags.Changed("kind") {
			c.Transport.Kind = ""
		}
	}
	if flags.Changed("timeout") {
		c.Transport.Timeout = timeoutFlag
	}
	if flags.Changed("chunk-size") {
		c.Transport.ChunkSize = chunkFlag
	}
	if mockFlag {
		c.Transport.Kind = string(scpi.KindMock)
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevelFlag
	}
	if flags.Changed("metrics-listen") {
		c.Metrics.Listen = metricsFlag
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	log.Info("serving metrics", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server failed", "error", err)
	}
}

// openSession opens the configured transport and wraps it in a session. An empty USB
// address selects the only attached USB instrument.
func openSession() (*scope.Session, error) {
	tc := scpi.ConfigFrom(cfg)
	if tc.Kind == "" && tc.Address == "" {
		tc.Kind = scpi.KindUSB
	}

	if tc.Kind == scpi.KindUSB && tc.Address == "" {
		resources, err := scpi.Resources()
		if err != nil {
			return nil, err
		}
		addr, err := scpi.FindUSB(resources)
		if err != nil {
			return nil, err
		}
		log.Info("using discovered instrument", "address", addr)
		tc.Address = addr
	}

	t, err := scpi.Open(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s transport: %w", strings.ToUpper(string(tc.Kind)), err)
	}
	t = scpi.Instrument(t, metrics)

	return scope.New(t,
		scope.WithLogger(log.With("address", tc.Address)),
		scope.WithHeaderLength(cfg.Acquisition.HeaderLength),
	), nil
}

// withSession runs fn on a freshly opened session and closes it afterwards.
func withSession(fn func(s *scope.Session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}
