package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.cfg.Store.Driver == "memory" {
				return errors.New("migrate needs --store postgres or sqlite")
			}
			store, err := openStore(cmd.Context(), rt.cfg, true)
			if err != nil {
				return err
			}
			defer store.Close()
			rt.log.Info("schema migrated", "store", rt.cfg.Store.Driver)
			return nil
		},
	}
}
