package cli

import (
	"fmt"
	"strconv"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/holiday"
	"github.com/spf13/cobra"
)

func newHolidaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "holidays <state> <year>",
		Short:   "List the public holidays of a federal state",
		GroupID: "planning",
		Example: "  planctl holidays BY 2025 --no-cache",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[1])
			}

			var provider holiday.Provider = holiday.NewCalendar()
			if !noCache {
				e, err := openEnv(cmd.Context())
				if err != nil {
					return err
				}
				defer e.close()

				var closeHolidays func()
				provider, closeHolidays = e.holidayProvider()
				defer closeHolidays()
			}

			set, err := provider.Holidays(cmd.Context(), args[0], year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := set.MarshalJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			PrintSection(out, fmt.Sprintf("Holidays %s %d", args[0], year))
			for _, date := range set.Dates() {
				name, _ := set.Name(date)
				PrintLabelValue(out, date.Format(domain.DateLayout), name)
			}
			return nil
		},
	}
}
