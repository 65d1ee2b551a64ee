package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openkarotz-hq/karotz-go/internal/logger"
	"github.com/openkarotz-hq/karotz-go/pkg/karotz"
)

// cli carries the state shared by every subcommand.
type cli struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "karotzctl",
		Short:         "Control an OpenKarotz robot over its CGI API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("host", "", "device host or host:port (env KAROTZ_HOST)")
	root.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")
	root.PersistentFlags().BoolP("debug", "v", false, "debug logging on stderr")
	_ = c.v.BindPFlags(root.PersistentFlags())
	c.v.SetEnvPrefix("karotz")
	c.v.AutomaticEnv()

	root.AddCommand(
		c.statusCmd(),
		c.freeSpaceCmd(),
		c.wakeupCmd(),
		c.simple("sleep", "Put the robot to sleep", (*karotz.Client).Sleep),
		c.earsCmd(),
		c.ledsCmd(),
		c.cacheCmd(),
		c.ttsCmd(),
		c.soundCmd(),
		c.squeezeboxCmd(),
		c.snapshotCmd(),
		c.rfidCmd(),
		c.moodCmd(),
		c.clockCmd(),
		c.languagesCmd(),
		c.commandsCmd(),
	)
	return root
}

// client builds the device client and the logger it writes to. The caller
// syncs the logger.
func (c *cli) client() (*karotz.Client, *logger.ZapLogger, error) {
	host := strings.TrimSpace(c.v.GetString("host"))
	if host == "" {
		return nil, nil, fmt.Errorf("--host (or KAROTZ_HOST) is required")
	}

	level := "warn"
	if c.v.GetBool("debug") {
		level = "debug"
	}
	log, err := logger.NewWithWriter(level, c.errOut)
	if err != nil {
		return nil, nil, err
	}
	k, err := karotz.New(host, karotz.WithLogger(log), karotz.WithTimeout(c.v.GetDuration("timeout")))
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return k, log, nil
}

// print writes one JSON document per invocation.
func (c *cli) print(command string, result any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"command": command, "result": result})
}

// run resolves the client and prints whatever fn returns.
func (c *cli) run(cmd *cobra.Command, fn func(ctx context.Context, k *karotz.Client) (any, error)) error {
	k, log, err := c.client()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	res, err := fn(cmd.Context(), k)
	if err != nil {
		return err
	}
	return c.print(cmd.CommandPath(), res)
}

// simple builds a subcommand for a no-argument method reporting success.
func (c *cli) simple(use, short string, fn func(*karotz.Client, context.Context) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return fn(k, ctx)
			})
		},
	}
}
