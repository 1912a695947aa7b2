package cmd

import (
	"errors"
	"fmt"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/pipeline"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit int
	flagHistoryPrune int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Per-cycle mileage from cached odometer readings",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "Number of recent readings to list")
	historyCmd.Flags().IntVar(&flagHistoryPrune, "prune-days", 0, "Delete cached readings older than N days")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if flagDemo {
		return errors.New("demo mode does not record reading history")
	}
	if s.cache == nil {
		return errors.New("reading history needs the cache (drop --no-cache)")
	}

	// Record a fresh reading when possible; history still renders without one.
	res, err := fetch(s)
	if err != nil {
		log.Warn().Err(err).Msg("refresh failed; showing cached history only")
		progress("Could not refresh: %s", cli.FriendlyError(err))
	}

	vin := s.syncer.VIN
	if res != nil {
		vin = res.Vehicle.VIN
	}
	ref := s.syncer.Now()

	if flagHistoryPrune > 0 {
		n, err := s.cache.DeleteBefore(ref.AddDate(0, 0, -flagHistoryPrune))
		if err != nil {
			return fmt.Errorf("pruning readings: %w", err)
		}
		progress("Pruned %d readings", n)
	}

	readings, err := s.cache.Readings(vin, 0)
	if err != nil {
		return fmt.Errorf("loading readings: %w", err)
	}
	if len(readings) == 0 {
		fmt.Println("\n  No readings cached yet. Run `leaselad` a few times over the lease.")
		return nil
	}

	cycles := pipeline.AggregateCycles(s.lease.Get(), readings, ref)

	fmt.Println()
	fmt.Println(cli.RenderTitle("MILEAGE HISTORY"))
	fmt.Println()

	if len(cycles) > 0 {
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Cycles",
			Headers: []string{"#", "Period", "Driven", "Allowed", "Readings"},
			Rows:    cycleRows(cycles),
		}))
		driven := make([]float64, len(cycles))
		for i, c := range cycles {
			driven[i] = c.Driven
		}
		fmt.Printf("  Trend  %s\n\n", cli.RenderSparkline(driven))
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recent Readings",
		Headers: []string{"Observed", "Odometer", "Source"},
		Rows:    readingRows(readings, flagHistoryLimit),
	}))
	return nil
}

func cycleRows(cycles []model.CycleStats) [][]string {
	rows := make([][]string, 0, len(cycles))
	for i := len(cycles) - 1; i >= 0; i-- {
		c := cycles[i]
		driven := cli.FormatMiles(c.Driven)
		if c.Over() {
			driven = cli.Bad(driven)
		}
		idx := fmt.Sprintf("%d", c.Index)
		if c.Current {
			idx += "*"
		}
		period := c.Start.Format("Jan 2") + " – " + c.End.AddDate(0, 0, -1).Format("Jan 2, 2006")
		rows = append(rows, []string{idx, period, driven, cli.FormatMiles(c.Allowed), fmt.Sprintf("%d", c.Readings)})
	}
	return rows
}

// readingRows lists the first limit readings; the cache returns newest first.
func readingRows(readings []model.Reading, limit int) [][]string {
	if limit <= 0 || limit > len(readings) {
		limit = len(readings)
	}
	rows := make([][]string, 0, limit)
	for _, r := range readings[:limit] {
		rows = append(rows, []string{
			r.FetchedAt.Local().Format("2006-01-02 15:04"),
			cli.FormatMiles(r.Odometer),
			r.Source,
		})
	}
	return rows
}
