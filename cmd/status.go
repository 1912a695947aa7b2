package cmd

import (
	"fmt"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/model"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vehicle status (battery, range, locks, location)",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := fetch(s)
	if err != nil {
		return err
	}
	v := *res.Vehicle

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("VEHICLE  %s", v.Name)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Status",
		Headers: []string{"Item", "Value"},
		Rows:    vehicleStatusRows(v),
	}))

	printSourceFooter(res)
	return nil
}

func vehicleStatusRows(v model.Vehicle) [][]string {
	battery := cli.BatteryLabel(v)
	if cli.BatteryLow(v) {
		battery = cli.Bad(battery)
	}
	rng := cli.FormatOptional(v.IdealRange, " mi")
	if cli.RangeLow(v) {
		rng = cli.Bad(rng)
	}
	lock := cli.LockLabel(v)
	if v.Locked != nil && !*v.Locked {
		lock = cli.Warn(lock)
	}

	rows := [][]string{
		{"State", v.State},
		{"Odometer", cli.FormatMiles(v.Odometer) + " mi"},
		{"Battery", battery},
		{"Charging", v.ChargingState},
		{"Range", rng},
		{"---"},
		{"Lock", lock},
		{"Sentry", cli.SentryLabel(v)},
		{"Outside", cli.FormatTemp(v.OutsideTemp)},
		{"Inside", cli.FormatTemp(v.InsideTemp)},
	}
	if v.HasLocation() {
		rows = append(rows,
			[]string{"---"},
			[]string{"Location", fmt.Sprintf("%.4f, %.4f", *v.Latitude, *v.Longitude)},
			[]string{"Map", v.MapURL()},
		)
	}
	return rows
}
