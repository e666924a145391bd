package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/datastore"
	"github.com/ecobalance/ecobalance/internal/provider/resilience"
)

// cli carries the resolved configuration of one invocation.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	var cfgFile string

	root := &cobra.Command{
		Use:          "ecoctl",
		Short:        "Inspect EcoBalance city scores",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.initConfig(cfgFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $HOME/.ecoctl.yaml)")
	pf.String("source", attribution.DefaultLocation, "attribution feed: file path or http(s) URL")
	pf.StringP("output", "o", "table", "output format: table, json or yaml")
	pf.Bool("verbose", false, "log data loading")
	_ = c.v.BindPFlag("source", pf.Lookup("source"))
	_ = c.v.BindPFlag("output", pf.Lookup("output"))
	_ = c.v.BindPFlag("verbose", pf.Lookup("verbose"))

	root.AddCommand(
		c.citiesCmd(),
		c.summaryCmd(),
		c.compareCmd(),
		c.chartCmd(),
		c.sourcesCmd(),
		c.refreshCmd(),
	)
	return root
}

func (c *cli) initConfig(cfgFile string) error {
	c.v.SetEnvPrefix("ECOCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	if cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.SetConfigName(".ecoctl")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath("$HOME")
		c.v.AddConfigPath(".")
	}

	err := c.v.ReadInConfig()
	notFound := viper.ConfigFileNotFoundError{}
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (c *cli) format() (format, error) {
	return parseFormat(c.v.GetString("output"))
}

func (c *cli) logger(w io.Writer) zerolog.Logger {
	if !c.v.GetBool("verbose") {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}

// load builds a store from the configured source and loads it once.
func (c *cli) load(ctx context.Context, cmd *cobra.Command) *datastore.Store {
	location := c.v.GetString("source")
	logger := c.logger(cmd.ErrOrStderr())

	var client *resilience.Client
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		client = resilience.NewClient(resilience.ClientConfig{Name: "attribution", MaxRetries: 1, Logger: logger})
	}

	store := datastore.New(datastore.Config{
		Source: attribution.NewSource(location, client),
		Logger: logger,
	})
	out := store.Load(ctx)
	if out.Err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: using built-in data without attribution: %v\n", out.Err)
	}
	return store
}
