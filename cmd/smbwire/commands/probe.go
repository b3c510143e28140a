package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/smbwire/cmd/smbwire/cmdutil"
	"github.com/marmos91/smbwire/internal/bytesize"
	"github.com/marmos91/smbwire/internal/cli/output"
	"github.com/marmos91/smbwire/internal/logger"
	"github.com/marmos91/smbwire/internal/negotiate"
	"github.com/marmos91/smbwire/internal/spnego"
	"github.com/marmos91/smbwire/internal/telemetry"
	"github.com/marmos91/smbwire/pkg/config"
	"github.com/marmos91/smbwire/pkg/metrics"
	"github.com/spf13/cobra"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/smbwire/pkg/metrics/prometheus"
)

var (
	probePort            int
	probeTimeout         time.Duration
	probeDialects        string
	probeSigningRequired bool
	probeClientGUID      string
	probeMaxResponseSize string
	probeCount           int
	probeInterval        time.Duration
	probeMetrics         bool
	probeMetricsPort     int
)

var probeCmd = &cobra.Command{
	Use:   "probe <host[:port]>",
	Short: "Send an SMB2 NEGOTIATE request and show the server's answer",
	Long: `Connect to an SMB server over direct TCP, send an SMB2 NEGOTIATE request
and print the selected dialect, server GUID and transfer limits.

Flags override the probe section of the configuration file, which in turn
can be overridden with SMBWIRE_PROBE_* environment variables.

With --count 0 the probe repeats every --interval until interrupted, which
together with --metrics turns smbwire into a small availability exporter.

Examples:
  # Probe a server on the default port
  smbwire probe fileserver.local

  # Offer only SMB 3.x and require signing
  smbwire probe 10.0.0.5:1445 --dialects 3.0,3.0.2 --signing-required

  # Probe forever and expose Prometheus metrics on :9090
  smbwire probe fileserver.local --count 0 --interval 30s --metrics`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().IntVar(&probePort, "port", 0, "Server port when the address has none (default from config: 445)")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 0, "Timeout for each probe (default from config: 10s)")
	probeCmd.Flags().StringVar(&probeDialects, "dialects", "", "Comma-separated dialects to offer (2.0.2,2.1,3.0,3.0.2)")
	probeCmd.Flags().BoolVar(&probeSigningRequired, "signing-required", false, "Require message signing")
	probeCmd.Flags().StringVar(&probeClientGUID, "client-guid", "", "Client GUID (default: random)")
	probeCmd.Flags().StringVar(&probeMaxResponseSize, "max-response-size", "", "Largest accepted response frame, e.g. 65536 or 64KiB")
	probeCmd.Flags().IntVar(&probeCount, "count", 1, "Number of probes to send (0 = until interrupted)")
	probeCmd.Flags().DurationVar(&probeInterval, "interval", 5*time.Second, "Delay between probes")
	probeCmd.Flags().BoolVar(&probeMetrics, "metrics", false, "Expose Prometheus metrics while probing")
	probeCmd.Flags().IntVar(&probeMetricsPort, "metrics-port", 0, "Metrics HTTP port (default from config: 9090)")
}

type probeResult struct {
	Address         string    `json:"address" yaml:"address"`
	Dialect         string    `json:"dialect" yaml:"dialect"`
	SecurityMode    string    `json:"security_mode" yaml:"security_mode"`
	ServerGUID      string    `json:"server_guid" yaml:"server_guid"`
	Capabilities    []string  `json:"capabilities" yaml:"capabilities"`
	MaxTransactSize uint32    `json:"max_transact_size" yaml:"max_transact_size"`
	MaxReadSize     uint32    `json:"max_read_size" yaml:"max_read_size"`
	MaxWriteSize    uint32    `json:"max_write_size" yaml:"max_write_size"`
	SystemTime      time.Time `json:"system_time" yaml:"system_time"`
	SecurityBlob    int       `json:"security_blob_bytes" yaml:"security_blob_bytes"`
	AuthMechanisms  []string  `json:"auth_mechanisms" yaml:"auth_mechanisms"`
	Elapsed         string    `json:"elapsed" yaml:"elapsed"`
}

func newProbeResult(addr string, resp *negotiate.Response, elapsed time.Duration) probeResult {
	caps := resp.Capabilities.Names()
	if caps == nil {
		caps = []string{}
	}
	mechs := []string{}
	if len(resp.SecurityBlob) > 0 {
		tok, err := spnego.ParseInit(resp.SecurityBlob)
		if err != nil {
			logger.Debug("Unparsable security blob", logger.Address(addr), logger.Err(err))
		} else {
			mechs = tok.Mechanisms()
		}
	}
	return probeResult{
		Address:         addr,
		Dialect:         resp.Dialect.String(),
		SecurityMode:    resp.SecurityMode.String(),
		ServerGUID:      resp.ServerGUID.String(),
		Capabilities:    caps,
		MaxTransactSize: resp.MaxTransactSize,
		MaxReadSize:     resp.MaxReadSize,
		MaxWriteSize:    resp.MaxWriteSize,
		SystemTime:      resp.SystemTime.UTC(),
		SecurityBlob:    len(resp.SecurityBlob),
		AuthMechanisms:  mechs,
		Elapsed:         elapsed.Round(time.Microsecond).String(),
	}
}

func (r probeResult) fields() output.Fields {
	caps := "none"
	if len(r.Capabilities) > 0 {
		caps = strings.Join(r.Capabilities, ", ")
	}
	mechs := "none"
	if len(r.AuthMechanisms) > 0 {
		mechs = strings.Join(r.AuthMechanisms, ", ")
	}
	return output.Fields{}.
		Add("Address", r.Address).
		Add("Dialect", r.Dialect).
		Add("Security Mode", r.SecurityMode).
		Add("Server GUID", r.ServerGUID).
		Add("Capabilities", caps).
		Add("Max Transact", strconv.FormatUint(uint64(r.MaxTransactSize), 10)).
		Add("Max Read", strconv.FormatUint(uint64(r.MaxReadSize), 10)).
		Add("Max Write", strconv.FormatUint(uint64(r.MaxWriteSize), 10)).
		Add("System Time", r.SystemTime.Format(time.RFC3339)).
		Add("Security Blob", fmt.Sprintf("%d bytes", r.SecurityBlob)).
		Add("Auth Mechanisms", mechs).
		Add("Elapsed", r.Elapsed)
}

func (r probeResult) Headers() []string { return r.fields().Headers() }
func (r probeResult) Rows() [][]string  { return r.fields().Rows() }

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	if err := applyProbeFlags(cmd, cfg); err != nil {
		return err
	}

	dialects, err := negotiate.ParseDialects(cfg.Probe.Dialects)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "smbwire",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// Spans are flushed even after ctx was cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Profiling.Enabled,
		ServiceName:    "smbwire",
		ServiceVersion: Version,
		Endpoint:       cfg.Profiling.Endpoint,
		ProfileTypes:   cfg.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	opts := negotiate.Options{
		Timeout:         cfg.Probe.Timeout,
		MaxResponseSize: cfg.Probe.MaxResponseSize.Int(),
	}

	if cfg.Metrics.Enabled {
		wait, err := startMetrics(ctx, cfg.Metrics.Port)
		if err != nil {
			return err
		}
		defer wait()
		opts.StreamMetrics = metrics.NewStreamMetrics()
		opts.Metrics = metrics.NewProbeMetrics()
	}

	req := negotiate.Request{
		SecurityMode: negotiate.SigningEnabled,
		Capabilities: negotiate.CapDFS | negotiate.CapLargeMTU,
		ClientGUID:   cfg.Probe.ClientGUID,
		Dialects:     dialects,
	}
	if cfg.Probe.SigningRequired {
		req.SecurityMode |= negotiate.SigningRequired
	}
	if req.ClientGUID == uuid.Nil {
		req.ClientGUID = uuid.New()
	}

	addr := negotiate.WithDefaultPort(args[0], cfg.Probe.Port)
	printer, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Debug("Probing", logger.Address(addr), "dialects", strings.Join(cfg.Probe.Dialects, ","), "count", probeCount)

	for i := 0; probeCount == 0 || i < probeCount; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(probeInterval):
			}
		}

		start := time.Now()
		resp, err := negotiate.Probe(ctx, addr, req, opts)
		if err != nil {
			if probeCount == 1 {
				return err
			}
			logger.Warn("Probe failed", logger.Address(addr), logger.Err(err))
			printer.Warning(fmt.Sprintf("probe %d: %v", i+1, err))
			continue
		}
		if err := printer.Print(newProbeResult(addr, resp, time.Since(start))); err != nil {
			return err
		}
	}
	return nil
}

// applyProbeFlags copies explicitly set command line flags over cfg and
// re-validates the result.
func applyProbeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Probe.Port = probePort
	}
	if flags.Changed("timeout") {
		cfg.Probe.Timeout = probeTimeout
	}
	if flags.Changed("dialects") {
		cfg.Probe.Dialects = cmdutil.ParseCommaSeparatedList(probeDialects)
	}
	if flags.Changed("signing-required") {
		cfg.Probe.SigningRequired = probeSigningRequired
	}
	if flags.Changed("client-guid") {
		id, err := uuid.Parse(probeClientGUID)
		if err != nil {
			return fmt.Errorf("invalid --client-guid %q: %w", probeClientGUID, err)
		}
		cfg.Probe.ClientGUID = id
	}
	if flags.Changed("max-response-size") {
		size, err := bytesize.Parse(probeMaxResponseSize)
		if err != nil {
			return fmt.Errorf("invalid --max-response-size: %w", err)
		}
		cfg.Probe.MaxResponseSize = size
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Enabled = probeMetrics
	}
	if flags.Changed("metrics-port") {
		cfg.Metrics.Port = probeMetricsPort
	}
	if probeCount < 0 {
		return fmt.Errorf("--count must not be negative")
	}
	return config.Validate(cfg)
}

// startMetrics enables the registry and serves /metrics until ctx ends.
// The returned function blocks until the server has shut down.
func startMetrics(ctx context.Context, port int) (func(), error) {
	metrics.InitRegistry()
	srv, err := metrics.Listen(port)
	if err != nil {
		metrics.Reset()
		return nil, err
	}
	logger.Info("Metrics enabled", logger.Address(srv.Addr().String()))

	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(serveCtx); err != nil {
			logger.Error("Metrics server error", logger.Err(err))
		}
	}()

	return func() {
		cancel()
		<-done
		metrics.Reset()
	}, nil
}
