// Package cmd implements the leaselad CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/config"
	"github.com/leaselad/leaselad/internal/demo"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/pipeline"
	"github.com/leaselad/leaselad/internal/store"
	"github.com/leaselad/leaselad/internal/tessie"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagDemo    bool
	flagAsOf    string
	flagNoCache bool
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "leaselad",
	Short: "Lease mileage tracker",
	Long:  "Track your car lease mileage against its allowance using live odometer data from Tessie.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		setupLogging()
		config.LoadDotEnv()
		return nil
	},
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %s\n", cli.FriendlyError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDemo, "demo", false, "Use the built-in demo vehicle and lease")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Compute stats as of this date (YYYY-MM-DD) instead of now")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite reading cache")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details to stderr")
}

// setupLogging routes diagnostic logs to stderr. Warnings only by default.
func setupLogging() {
	level := zerolog.WarnLevel
	switch {
	case flagVerbose:
		level = zerolog.DebugLevel
	case flagQuiet:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// session bundles everything a command needs to load lease data.
type session struct {
	cfg    config.Config
	lease  *pipeline.LeaseRef
	syncer *pipeline.Syncer
	cache  *store.Cache // nil with --no-cache, --demo, or when the cache cannot open
}

func (s *session) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

// openSession loads config, resolves the provider, and opens the cache.
// Lease terms come from demo fixtures with --demo, otherwise from config.
func openSession() (*session, error) {
	return newSession(false)
}

// newSession builds a session. With lenient set, invalid lease terms on
// disk fall back to the defaults and the validation error is returned
// alongside a usable session.
func newSession(lenient bool) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var termsErr error
	var terms model.LeaseConfig
	if flagDemo {
		terms = demo.Lease()
	} else if terms, termsErr = cfg.LeaseTerms(); termsErr != nil {
		if !lenient {
			return nil, termsErr
		}
		if terms, err = config.DefaultConfig().LeaseTerms(); err != nil {
			return nil, err
		}
	}

	ref, err := referenceClock()
	if err != nil {
		return nil, err
	}

	provider, vin, err := connect(cfg)
	if err != nil && !errors.Is(err, pipeline.ErrNoProvider) {
		return nil, err
	}

	s := &session{cfg: cfg, lease: pipeline.NewLeaseRef(terms)}
	// Demo readings never touch the real cache.
	if !flagNoCache && !flagDemo {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			log.Warn().Err(err).Msg("reading cache unavailable")
		} else {
			s.cache = cache
		}
	}

	s.syncer = &pipeline.Syncer{
		Provider: provider,
		VIN:      vin,
		Lease:    s.lease.Get,
		Now:      ref,
	}
	if s.cache != nil {
		s.syncer.Store = s.cache
	}
	return s, termsErr
}

// connect returns the provider for cfg and the VIN it serves.
// Without a token it returns pipeline.ErrNoProvider and a nil provider.
func connect(cfg config.Config) (pipeline.Provider, string, error) {
	if flagDemo {
		return demo.Provider{}, demo.VIN, nil
	}
	vin := config.GetVIN(cfg)
	client := tessie.NewClient(config.GetAPIToken(cfg), vin, tessie.WithBaseURL(cfg.Tessie.BaseURL))
	if client == nil {
		return nil, vin, pipeline.ErrNoProvider
	}
	return client, vin, nil
}

// referenceClock returns the clock used for stats: now, or the --as-of date
// at local noon so the whole day counts.
func referenceClock() (func() time.Time, error) {
	if flagAsOf == "" {
		return time.Now, nil
	}
	d, err := config.ParseDate(flagAsOf)
	if err != nil {
		return nil, fmt.Errorf("--as-of: %w", err)
	}
	at := d.Add(12 * time.Hour)
	return func() time.Time { return at }, nil
}

// progress prints a status line to stderr unless --quiet.
func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
