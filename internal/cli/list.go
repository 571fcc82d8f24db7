package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (e *env) filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the user's stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := e.user()
			if err != nil {
				return err
			}
			a, err := e.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.WipeService.List(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(e.out, "No files stored.")
				return nil
			}
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tPATH")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Size, it.Path)
			}
			return tw.Flush()
		},
	}
}

func (e *env) resumesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resumes",
		Short: "List the user's résumé reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := e.user()
			if err != nil {
				return err
			}
			a, err := e.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.ResumesService.List(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(e.out, "No resumes found.")
				return nil
			}
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCOMPANY\tJOB TITLE\tSCORE\tTIER")
			for _, it := range items {
				score := "analyzing"
				if it.OverallScore != nil {
					score = fmt.Sprintf("%d/100", *it.OverallScore)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.CompanyName, it.JobTitle, score, it.Tier)
			}
			return tw.Flush()
		},
	}
}
