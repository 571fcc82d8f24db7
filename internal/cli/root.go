// Package cli implements resuratectl, the operator command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resurate/internal/ai"
	"resurate/internal/bootstrap"
	"resurate/internal/shared/config"
	"resurate/internal/shared/storage/db"
	"resurate/internal/shared/telemetry"
)

const app = "resuratectl"

var errUserRequired = errors.New("--user (or RESURATE_USER) is required")

// Execute runs the root command.
func Execute() error {
	return NewRootCommand(os.Stdout).Execute()
}

// env carries what every subcommand needs.
type env struct {
	v   *viper.Viper
	out io.Writer
	// build is swapped in tests.
	build func(ctx context.Context, cfg config.Config) (*bootstrap.App, error)
	// confirm asks a yes/no question; swapped in tests.
	confirm func(label string) (bool, error)
}

// NewRootCommand builds the command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	e := &env{
		v:       newViper(),
		out:     out,
		build:   buildApp,
		confirm: promptConfirm,
	}
	return e.root()
}

func (e *env) root() *cobra.Command {
	root := &cobra.Command{
		Use:           app,
		Short:         "resuratectl inspects and maintains ResuRate user data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return telemetry.Configure(e.v.GetBool("json"), e.v.GetBool("debug"))
		},
	}
	root.SetOut(e.out)

	root.PersistentFlags().StringP("user", "u", "", "user id to operate on, e.g. dev:alice or google:1234")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = e.v.BindPFlag("user", root.PersistentFlags().Lookup("user"))
	_ = e.v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	_ = e.v.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	_ = e.v.BindEnv("user", "RESURATE_USER")

	root.AddCommand(e.filesCmd(), e.resumesCmd(), e.wipeCmd(), e.migrateCmd())
	return root
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("resurate")
	return v
}

func (e *env) user() (string, error) {
	user := strings.TrimSpace(e.v.GetString("user"))
	if user == "" {
		return "", errUserRequired
	}
	return user, nil
}

func (e *env) app(ctx context.Context) (*bootstrap.App, error) {
	cfg := config.Load()
	a, err := e.build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return a, nil
}

func buildApp(ctx context.Context, cfg config.Config) (*bootstrap.App, error) {
	return bootstrap.Build(ctx, cfg, bootstrap.Options{
		AI:         ai.Placeholder{},
		SkipRouter: true,
		DBProfile:  db.ProfileCLI,
	})
}
