package cmd

import (
	"context"
	"fmt"

	"taskBoard/internal/client"
	"taskBoard/internal/config"
	"taskBoard/internal/controller"
	"taskBoard/internal/logger"
	"taskBoard/internal/session"
	"taskBoard/internal/tracing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// appFs backs the session file and photo uploads.
var appFs = afero.NewOsFs()

var stopTracing = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Personal task board",
	Long: `tasks signs in to a task board service and lets you add, edit,
complete and delete tasks, and browse them as a list or a month calendar.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if err := logger.InitToStderr(verbose); err != nil {
			return err
		}
		stopTracing = tracing.Setup("taskboard-cli")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := stopTracing(context.Background()); err != nil {
			logger.Warn("CLI: Ошибка остановки трассировки", zap.Error(err))
		}
		logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./config.yml)")
	rootCmd.PersistentFlags().String("api-url", "", "task service base url")
	rootCmd.PersistentFlags().String("session-file", "", "where the signed-in user is stored")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests to stderr")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("client.api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("client.session_file", rootCmd.PersistentFlags().Lookup("session-file"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
	}

	config.BindEnv(viper.GetViper())

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// clientConfig reads the client section, falling back to defaults for
// anything a flag or file left empty.
func clientConfig() config.ClientConfig {
	cfg := config.Default().Client
	if v := viper.GetString("client.api_url"); v != "" {
		cfg.APIURL = v
	}
	if v := viper.GetString("client.session_file"); v != "" {
		cfg.SessionFile = v
	}
	if v := viper.GetDuration("client.timeout"); v > 0 {
		cfg.Timeout = v
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = session.DefaultPath()
	}
	return cfg
}

// newController wires the api client to the stored session and starts it.
// A failed initial load is retried once before giving up.
func newController(ctx context.Context) (*controller.Controller, error) {
	cfg := clientConfig()

	gate := session.NewGate(session.NewStore(appFs, cfg.SessionFile))
	gate.OnChange(func(from, to session.State) {
		logger.Debug("CLI: Смена состояния сессии", zap.String("from", from.String()), zap.String("to", to.String()))
	})
	api := client.New(cfg.APIURL, gate, client.WithTimeout(cfg.Timeout))
	c := controller.New(api, gate)

	if err := c.Start(ctx); err != nil {
		if c.LoadError() == nil {
			return nil, err
		}
		logger.Warn("CLI: Повторная загрузка задач", zap.Error(err))
		if err := c.Retry(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// signedIn is newController for commands that need a user.
func signedIn(ctx context.Context) (*controller.Controller, error) {
	c, err := newController(ctx)
	if err != nil {
		return nil, err
	}
	if c.State() != session.Authenticated {
		return nil, fmt.Errorf("%w: run `tasks login` first", controller.ErrNotAuthenticated)
	}
	return c, nil
}
