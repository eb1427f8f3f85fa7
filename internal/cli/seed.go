package cli

import (
	"fmt"
	"os"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/seed"
	"github.com/dsp-ops/shift-planner/backend/internal/utils"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Load employees into the database",
		GroupID: "data",
	}
	cmd.AddCommand(newSeedRandomCmd())
	cmd.AddCommand(newSeedCSVCmd())
	return cmd
}

func newSeedRandomCmd() *cobra.Command {
	var (
		count       int
		emailDomain string
	)

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Create randomly generated employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			employees := make([]*domain.Employee, 0, count)
			for i := 0; i < count; i++ {
				employees = append(employees, utils.GenerateRandomEmployee(emailDomain))
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			return reportSeed(cmd, seed.SeedRoster(cmd.Context(), e.repo, employees), len(employees))
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of employees to create")
	cmd.Flags().StringVar(&emailDomain, "email-domain", "example.com", "Domain of the generated email addresses")

	return cmd
}

func newSeedCSVCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Import employees from a roster CSV",
		Long: fmt.Sprintf(`Import employees from a roster CSV. The header row must contain the columns
%v. preferred_days is a comma separated list of weekday indices (0 = Monday).`, seed.RosterHeaders),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			// validate the whole file before touching the database
			employees, err := seed.ReadRoster(f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			return reportSeed(cmd, seed.SeedRoster(cmd.Context(), e.repo, employees), len(employees))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the roster CSV")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func reportSeed(cmd *cobra.Command, created, total int) error {
	out := cmd.OutOrStdout()
	if created < total {
		PrintWarning(out, fmt.Sprintf("%d of %d employees failed, see the log above", total-created, total))
	}
	PrintSuccess(out, fmt.Sprintf("Created %d employees", created))
	if created == 0 && total > 0 {
		return fmt.Errorf("no employee could be created")
	}
	return nil
}
