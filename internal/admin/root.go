package admin

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/rabetweb/internal/server/config"
)

type runFunc func(ctx context.Context, env *Env, cmd *cobra.Command, args []string) error

type runner struct {
	open       Opener
	configPath string
	dsn        string
}

// withEnv loads configuration, opens an Env for the duration of fn and
// closes it afterwards.
func (r *runner) withEnv(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg := &config.Config{}
		cfg.LoadDefaults()
		if r.configPath != "" {
			if err := config.LoadFile(r.configPath, cfg); err != nil {
				return err
			}
		}
		if r.dsn != "" {
			cfg.DatabaseDSN = r.dsn
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		env, err := r.open(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, env.Close())
		}()
		return fn(ctx, env, cmd, args)
	}
}

// NewRootCommand assembles the admin command tree.
func NewRootCommand(open Opener) *cobra.Command {
	r := &runner{open: open}

	root := &cobra.Command{
		Use:   "rabetadmin",
		Short: "Administer rabet users",
		Long: `rabetadmin works directly against the rabet database and identity store.

Use it to create the first Administrator, change roles, disable
accounts and upload profile images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&r.configPath, "config", "c", "", "JSON config file (same format as the server)")
	root.PersistentFlags().StringVarP(&r.dsn, "dsn", "d", "", "PostgreSQL DSN, overrides the config file")

	root.AddCommand(
		createUserCmd(r),
		setRoleCmd(r),
		setDisabledCmd(r, true),
		setDisabledCmd(r, false),
		uploadAvatarCmd(r),
	)
	return root
}
