package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/pipeline"

	"github.com/spf13/cobra"
)

const fetchTimeout = 30 * time.Second

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Lease mileage summary (default command)",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := fetch(s)
	if err != nil {
		return err
	}

	st := res.Stats
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEASE MILEAGE  %s", res.Vehicle.Name)))
	fmt.Println()

	health := cli.Good(st.HealthLabel())
	if st.IsOver {
		health = cli.Bad(st.HealthLabel())
	}
	fmt.Printf("  %s  %s\n", health, cli.VarianceLabel(st))
	fmt.Printf("  %s\n\n", cli.Muted(cli.HealthSentence(st)))

	rows := [][]string{
		{"Current Odometer", cli.FormatMiles(st.CurrentOdo) + " mi"},
		{"Driven Since Start", cli.FormatMiles(st.ActualDriven) + " mi"},
		{"Allowed To Date", cli.FormatMiles(st.ExpectedMileage) + " mi"},
		{"Full Months", fmt.Sprintf("%d", st.TotalMonthsAllowed)},
		{"Variance", cli.FormatSignedMiles(st.Variance) + " mi"},
		{"---"},
		{"Monthly Allowance", cli.FormatMiles(st.MonthlyAllowance) + " mi"},
		{"Daily Allowance", fmt.Sprintf("%.1f mi", st.DailyAllowance)},
		{"Lease Ends", cli.FormatDate(st.EndDate)},
		{"Days Remaining", cli.FormatDays(st.DaysRemaining)},
		{"---"},
		{"Projected Total", cli.FormatMiles(st.ProjectedTotal) + " mi"},
		{"Projection", projectionCell(st)},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Lease",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	fmt.Printf("  Time   %s\n", cli.RenderProgressBar(st.PctTimeElapsed, 30))
	fmt.Printf("  Miles  %s\n\n", cli.RenderProgressBar(cli.MileagePercent(st, res.Lease.TotalMiles), 30))

	printSourceFooter(res)
	return nil
}

func projectionCell(st model.LeaseStats) string {
	if st.ProjectedOver() {
		return cli.Bad(cli.ProjectionLabel(st))
	}
	return cli.Good(cli.ProjectionLabel(st))
}

// fetch runs one refresh through the session's syncer.
func fetch(s *session) (*pipeline.LoadResult, error) {
	progress("Fetching vehicle data...")

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	res, _, err := s.syncer.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// printSourceFooter notes where the numbers came from and any fallback.
func printSourceFooter(res *pipeline.LoadResult) {
	v := res.Vehicle
	line := fmt.Sprintf("  %s · %s · observed %s", model.MaskedVIN(v.VIN), v.Source, cli.FormatAge(v.FetchedAt, time.Now()))
	fmt.Println(cli.Muted(line))
	if res.Stale {
		fmt.Printf("  %s\n", cli.Warn("Showing cached reading: "+cli.FriendlyError(res.FetchErr)))
	}
	if v.Notice != "" {
		fmt.Printf("  %s\n", cli.Warn(v.Notice))
	}
	fmt.Println()
}
