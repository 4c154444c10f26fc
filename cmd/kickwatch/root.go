package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Guliveer/kick-watcher-go/internal/config"
	"github.com/Guliveer/kick-watcher-go/internal/logger"
	"github.com/Guliveer/kick-watcher-go/pkg/kickapi"
)

// app carries state shared by every subcommand, set up once in the root's
// PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string
	channel    string
	noColor    bool
	envFile    string

	cfg     *config.Config
	log     *logger.Logger
	colored bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "kickwatch",
		Short:         "Watch Kick livestream chats from the terminal",
		Long:          "kickwatch connects to a Kick channel's chat, prints messages and stream events, and can forward them to Discord or a webhook.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", config.DefaultConfigFile, "Path to the YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR (overrides config)")
	pf.StringVar(&a.channel, "channel", "", "Channel slug (overrides config)")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output (overrides TTY detection)")
	pf.StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before the configuration")

	root.AddCommand(
		newWatchCmd(a),
		newInfoCmd(a),
		newViewersCmd(a),
		newCategoriesCmd(a),
		newFeaturedCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", a.envFile, err)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.channel != "" {
		cfg.Channel = a.channel
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	a.colored = !a.noColor && term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.Colored = a.colored
	logCfg.LogDir = cfg.LogDir
	logCfg.Output = cmd.OutOrStdout()

	log, err := logger.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	return nil
}

// channelArg returns the channel named on the command line, falling back to
// the configured one.
func (a *app) channelArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if a.cfg.Channel != "" {
		return a.cfg.Channel, nil
	}
	return "", errors.New("no channel given: pass one as an argument, with --channel or in the config file")
}

func (a *app) apiClient() *kickapi.Client {
	return kickapi.NewClient(
		kickapi.WithUserAgent(a.cfg.UserAgent),
		kickapi.WithLogger(a.log.Logger),
		kickapi.WithRetries(2, 500*time.Millisecond),
	)
}
