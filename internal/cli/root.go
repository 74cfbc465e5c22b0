// Package cli собирает cobra-команды сервиса: serve, migrate, seed.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storefront/internal/config"
	"storefront/internal/logging"
)

// runtime общее состояние команд, заполняется в PersistentPreRunE
type runtime struct {
	v   *viper.Viper
	cfg *config.Config
	log *slog.Logger
}

// NewRootCmd возвращает корневую команду со своим экземпляром viper
func NewRootCmd() *cobra.Command {
	rt := &runtime{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront backend: catalog, carts and checkout",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			cfg, err := config.Load(rt.v)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(rt.log)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (yaml, json, toml)")
	pf.String("log-level", "info", "log level: debug|info|warn|error")
	pf.String("store", "memory", "store backend: memory|postgres|sqlite")
	pf.String("dsn", "", "store DSN for postgres or sqlite")

	_ = rt.v.BindPFlag("config", pf.Lookup("config"))
	_ = rt.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = rt.v.BindPFlag("store.driver", pf.Lookup("store"))
	_ = rt.v.BindPFlag("store.dsn", pf.Lookup("dsn"))

	root.AddCommand(newServeCmd(rt), newMigrateCmd(rt), newSeedCmd(rt))
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// Main выполняет корневую команду и завершает процесс с кодом ошибки
func Main() {
	if err := Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
