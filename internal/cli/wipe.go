package cli

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	promptYes = "Yes"
	promptNo  = "No"

	wipeQuestion = "Are you sure you want to wipe all app data? This action cannot be undone"
)

func promptConfirm(label string) (bool, error) {
	p := promptui.Select{
		Label: label,
		Items: []string{promptNo, promptYes},
	}
	_, choice, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return false, nil
		}
		return false, err
	}
	return choice == promptYes, nil
}

func (e *env) wipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every file and stored record of the user",
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
			fmt.Fprintf(e.out, "%d file(s) stored for %s\n", len(items), user)

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				ok, err := e.confirm(wipeQuestion)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(e.out, "Aborted.")
					return nil
				}
			}

			report, err := a.WipeService.Run(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Deleted %d file(s), %d failed, %d remaining.\n", report.Deleted, report.Failed, len(report.Files))
			if report.Failed > 0 {
				return fmt.Errorf("%d file(s) could not be deleted", report.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}
