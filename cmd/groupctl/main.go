// Package main provides groupctl, an administration tool that works directly
// against the group database.
//
// Usage:
//
//	groupctl seed --file seed.yaml
//	groupctl stats
//	groupctl approve <intention-id>
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand. Set values override the
// environment and .env file.
type globalFlags struct {
	dataPath  string
	publicURL string
	logLevel  string
	envFile   string
}

// configArgs turns the set flags into arguments for config.Parse.
func (f *globalFlags) configArgs() []string {
	args := []string{"-env-file", f.envFile}
	for name, value := range map[string]string{
		"data-path":  f.dataPath,
		"public-url": f.publicURL,
		"log-level":  f.logLevel,
	} {
		if value != "" {
			args = append(args, "-"+name, value)
		}
	}
	return args
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "groupctl",
		Short:         "Administer a Nexo group database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.dataPath, "data-path", "", "Directory holding nexo.db (default: DATA_PATH or ~/Nexo/data)")
	cmd.PersistentFlags().StringVar(&flags.publicURL, "public-url", "", "Public base URL used in registration links (default: SERVER_PUBLIC_URL)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Path to .env file")

	cmd.AddCommand(seedCmd(flags), statsCmd(flags), approveCmd(flags), rejectCmd(flags))
	return cmd
}

func seedCmd(flags *globalFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load members, meetings and notices from a YAML fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixture, err := loadFixture(file)
			if err != nil {
				return err
			}

			app, err := openApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.seed(cmd.Context(), fixture)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d members, %d meetings, %d notices\n",
				report.Members, report.Meetings, report.Notices)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "Fixture file")
	return cmd
}

func statsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the group dashboard as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.dashboard.GroupStats(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}

func approveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <intention-id>",
		Short: "Approve a pending intention and print the registration link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.intentions.Approve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "approved %s (%s)\nmember: %s\ninvite: %s\n",
				res.Intention.Name, res.Intention.Email, res.Member.ID, res.InviteURL)
			return nil
		},
	}
}

func rejectCmd(flags *globalFlags) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <intention-id>",
		Short: "Reject a pending intention",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			in, err := app.intentions.Reject(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rejected %s (%s)\n", in.Name, in.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason included in the rejection email")
	return cmd
}
