package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"spahau/internal/engine"
	"spahau/internal/model"
	"spahau/internal/parser"
	"spahau/internal/resolver"
	"spahau/pkg/wellknown"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	version       = "0.1.0"
	defaultDomain = "zen.spamhaus.org"
)

var (
	describe     bool
	hostnameOnly bool
	selfTest     bool
	domain       string
	jsonOutput   bool
	verbose      bool
	provider     string
	server       string
	timeout      time.Duration
	workers      int
	logLevel     string
	logFile      string
	inputFile    string
	listZones    bool
	showFeatures bool
	showVersion  bool
)

// usageError is a problem with the command line as a whole; the run is
// aborted before any address is processed.
type usageError string

func (e usageError) Error() string { return string(e) }

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spahau [flags] address...",
		Short: "Check IPv4 addresses against the Spamhaus DNS blocklists",
		Long: `spahau queries a Spamhaus DNSBL zone for each IPv4 address given and
	reports the blocklists (SBL, XBL, PBL, DBL, ZRD) the address is found in.`,
		Version: version,
		RunE:    run,
	}

	// Modes, at most one
	rootCmd.Flags().BoolVarP(&describe, "describe", "D", false, "describe the specified RBL return codes/addresses")
	rootCmd.Flags().BoolVarP(&hostnameOnly, "hostname", "H", false, "only output the RBL hostnames, do not send queries")
	rootCmd.Flags().BoolVarP(&selfTest, "selftest", "T", false, "run a self test: try to obtain some expected responses")

	rootCmd.Flags().StringVarP(&domain, "domain", "d", envOr("SPAHAU_DOMAIN", defaultDomain), "RBL domain to test against, or a zone alias (see --list-zones)")
	rootCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "display JSON output")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose operation; display diagnostic output")
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read more addresses from a file, one per line or CSV with an 'Address' column ('-' for stdin)")

	// Resolver
	rootCmd.Flags().StringVar(&provider, "provider", envOr("SPAHAU_PROVIDER", resolver.ProviderSystem), "Resolver provider: 'system' or 'direct'")
	rootCmd.Flags().StringVar(&server, "server", envOr("SPAHAU_SERVER", ""), "Nameserver to query, host[:port] (required for 'direct')")
	rootCmd.Flags().DurationVar(&timeout, "timeout", envDuration("SPAHAU_TIMEOUT", 5*time.Second), "Timeout for a single DNS lookup")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of addresses to query concurrently")

	rootCmd.Flags().StringVar(&logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	rootCmd.Flags().BoolVar(&listZones, "list-zones", false, "list the well-known Spamhaus zones and exit")
	rootCmd.Flags().BoolVar(&showFeatures, "features", false, "list the features supported by the program and exit")
	// Replaces cobra's default version flag to get -V.
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "display program version information and exit")

	return rootCmd
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if showFeatures {
		fmt.Fprintf(out, "Features: spahau=%s\n", version)
		return nil
	}
	if listZones {
		for _, z := range wellknown.Zones() {
			fmt.Fprintf(out, "%-8s %-22s %s\n", z.Alias, z.Name, z.Description)
		}
		return nil
	}

	// --- 1. Validate the command line ---
	if inputFile != "" {
		listed, err := readAddressList(cmd, inputFile)
		if err != nil {
			return err
		}
		args = append(args, listed...)
	}
	if len(args) == 0 {
		return usageError("no addresses specified")
	}
	mode, err := selectMode(describe, hostnameOnly, selfTest)
	if err != nil {
		return err
	}

	level := logLevel
	if verbose {
		level = "DEBUG"
	}
	slog.SetDefault(setupLogger(level, logFile))

	cfg, outcomes := newConfig(args, mode)
	if mode == model.ModeSelfTest {
		for _, o := range outcomes {
			if o.err != nil {
				return usageError(fmt.Sprintf("no selftest definition for address '%s'", o.Address))
			}
		}
		for _, addr := range cfg.Addresses {
			if !engine.IsProbe(addr) {
				return usageError(fmt.Sprintf("no selftest definition for address '%s'", addr))
			}
		}
	}
	// Anything after this point is not a usage problem.
	cmd.SilenceUsage = true
	slog.Debug("Configuration", "mode", cfg.Mode.String(), "domain", cfg.Domain, "addresses", len(cfg.Addresses), "provider", cfg.Provider, "server", cfg.Server)

	// --- 2. Set up the resolver, if the mode sends queries ---
	var r resolver.Resolver
	if cfg.Mode == model.ModeQuery || cfg.Mode == model.ModeSelfTest {
		r, err = resolver.New(cfg.Provider, cfg.Server, cfg.Timeout)
		if err != nil {
			return err
		}
	}

	// --- 3. Process the addresses ---
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Mode == model.ModeSelfTest {
		if err := runSelfTest(ctx, cfg, r, outcomes, out); err != nil {
			return err
		}
	} else {
		process(ctx, cfg, r, outcomes)
	}

	// --- 4. Report ---
	if cfg.JSON {
		if err := writeJSON(out, outcomes); err != nil {
			return err
		}
	} else if cfg.Mode != model.ModeSelfTest {
		for _, o := range outcomes {
			writeText(out, cmd.ErrOrStderr(), o)
		}
	}

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d addresses could not be processed", failed, len(outcomes))
	}
	return nil
}

func readAddressList(cmd *cobra.Command, path string) ([]string, error) {
	if path == "-" {
		return parser.ParseAddressList(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.ParseAddressList(f)
}

func selectMode(describe, hostname, selftest bool) (model.Mode, error) {
	mode := model.ModeQuery
	n := 0
	if describe {
		mode = model.ModeDescribe
		n++
	}
	if hostname {
		mode = model.ModeHostname
		n++
	}
	if selftest {
		mode = model.ModeSelfTest
		n++
	}
	if n > 1 {
		return model.ModeQuery, usageError("at most one of -D, -H, or -T may be specified")
	}
	return mode, nil
}

// newConfig parses the address arguments. Every argument gets an outcome, in
// order; arguments that do not parse already carry their error and are left
// out of the config.
func newConfig(args []string, mode model.Mode) (model.Config, []*outcome) {
	cfg := model.Config{
		Domain:   wellknown.ResolveZone(domain),
		Mode:     mode,
		JSON:     jsonOutput,
		Verbose:  verbose,
		Provider: provider,
		Server:   server,
		Timeout:  timeout,
		Workers:  workers,
	}
	outcomes := make([]*outcome, 0, len(args))
	for _, arg := range args {
		o := &outcome{Address: arg}
		addr, err := model.ParseIPAddress(arg)
		if err != nil {
			o.err = err
		} else {
			o.addr = addr
			o.valid = true
			cfg.Addresses = append(cfg.Addresses, addr)
		}
		outcomes = append(outcomes, o)
	}
	return cfg, outcomes
}

// handle is the single dispatch point for the per-address modes.
func handle(ctx context.Context, cfg model.Config, r resolver.Resolver, addr model.IPAddress) (any, error) {
	switch cfg.Mode {
	case model.ModeDescribe:
		return engine.Classify(addr), nil
	case model.ModeHostname:
		return engine.BuildHostname(addr, cfg.Domain), nil
	case model.ModeQuery:
		return engine.Query(ctx, r, addr, cfg.Domain)
	}
	return nil, fmt.Errorf("mode %s is not handled per address", cfg.Mode)
}

// process runs handle for every valid address, at most cfg.Workers at a
// time. Outcomes stay in argument order.
func process(ctx context.Context, cfg model.Config, r resolver.Resolver, outcomes []*outcome) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for _, o := range outcomes {
		if !o.valid {
			continue
		}
		o := o
		g.Go(func() error {
			value, err := handle(gctx, cfg, r, o.addr)
			if err != nil {
				slog.Info("Failed to process address", "address", o.Address, "error", err)
				o.err = err
				return nil
			}
			slog.Debug("Got result", "address", o.Address, "value", value)
			o.Result = value
			return nil
		})
	}
	// Per-address failures are kept in the outcomes, never returned.
	_ = g.Wait()
}

// runSelfTest queries the probes one at a time. Any failure ends the run.
func runSelfTest(ctx context.Context, cfg model.Config, r resolver.Resolver, outcomes []*outcome, out io.Writer) error {
	for _, o := range outcomes {
		expected, err := engine.ExpectedResponses(o.addr)
		if err != nil {
			return err
		}
		if !cfg.JSON {
			fmt.Fprintf(out, "Querying '%s', expecting %d responses%s\n", o.addr, len(expected), responseList(expected))
		}

		_, got, err := engine.SelfTest(ctx, r, o.addr, cfg.Domain)
		if err != nil && !errors.Is(err, engine.ErrSelfTestMismatch) {
			return fmt.Errorf("unexpected problem querying '%s': %w", o.addr, err)
		}
		if !cfg.JSON {
			fmt.Fprintf(out, "...got %d responses%s\n", len(got), responseList(got))
		}
		if err != nil {
			return err
		}
		o.Result = got
	}
	return nil
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// The logger is not set up yet, so an unusable file silently
		// falls back to stderr.
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
