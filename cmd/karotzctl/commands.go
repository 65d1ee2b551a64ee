package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openkarotz-hq/karotz-go/pkg/karotz"
)

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the device summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return k.Status(ctx)
			})
		},
	}
}

func (c *cli) freeSpaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "free-space",
		Short: "Show free storage percentages (usb is -1 without a stick)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				internal, err := k.FreeKarotzSpace(ctx)
				if err != nil {
					return nil, err
				}
				usb, err := k.FreeUSBSpace(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]int{"karotz": internal, "usb": usb}, nil
			})
		},
	}
}

func (c *cli) wakeupCmd() *cobra.Command {
	var silent bool
	cmd := &cobra.Command{
		Use:   "wakeup",
		Short: "Wake the robot up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return k.Wakeup(ctx, silent)
			})
		},
	}
	cmd.Flags().BoolVar(&silent, "silent", false, "wake up without the startup sound")
	return cmd
}

func (c *cli) earsCmd() *cobra.Command {
	ears := &cobra.Command{Use: "ears", Short: "Move or configure the ears"}
	ears.AddCommand(
		c.simple("reset", "Move both ears to the rest position", (*karotz.Client).EarsReset),
		c.simple("random", "Move both ears to random positions", (*karotz.Client).EarsRandom),
		&cobra.Command{
			Use:       "mode <enabled|disabled>",
			Short:     "Enable or disable ear movement",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"enabled", "disabled"},
			RunE: func(cmd *cobra.Command, args []string) error {
				var disabled bool
				switch args[0] {
				case "enabled":
				case "disabled":
					disabled = true
				default:
					return fmt.Errorf("mode must be enabled or disabled, got %q", args[0])
				}
				return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
					return k.EarsMode(ctx, disabled)
				})
			},
		},
	)

	var reset bool
	move := &cobra.Command{
		Use:   "move <left> <right>",
		Short: fmt.Sprintf("Move the ears to absolute positions (%d-%d)", karotz.MinEarPosition, karotz.MaxEarPosition),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("left: %w", err)
			}
			right, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("right: %w", err)
			}
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return k.EarsPosition(ctx, left, right, reset)
			})
		},
	}
	move.Flags().BoolVar(&reset, "reset", false, "reset the ears before moving")
	ears.AddCommand(move)
	return ears
}

func (c *cli) ledsCmd() *cobra.Command {
	var (
		pulse  bool
		speed  int
		color2 string
	)
	cmd := &cobra.Command{
		Use:   "leds <RRGGBB>",
		Short: "Set the belly LED color, optionally pulsing towards a second color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return k.LEDColor(ctx, args[0], pulse, speed, color2)
			})
		},
	}
	cmd.Flags().BoolVar(&pulse, "pulse", false, "pulse between color and --color2")
	cmd.Flags().IntVar(&speed, "speed", 700, "pulse speed")
	cmd.Flags().StringVar(&color2, "color2", "000000", "secondary pulse color")
	return cmd
}

func (c *cli) cacheCmd() *cobra.Command {
	cache := &cobra.Command{Use: "cache", Short: "Inspect or clear the TTS cache"}
	cache.AddCommand(
		&cobra.Command{
			Use:   "display",
			Short: "Show the number of cached TTS entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
					return k.DisplayCache(ctx)
				})
			},
		},
		c.simple("clear", "Clear the TTS cache", (*karotz.Client).ClearCache),
	)
	return cache
}

func (c *cli) ttsCmd() *cobra.Command {
	var (
		female   bool
		language string
	)
	cmd := &cobra.Command{
		Use:   "tts <text...>",
		Short: "Speak a sentence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return k.Speak(ctx, female, language, text)
			})
		},
	}
	cmd.Flags().BoolVar(&female, "female", false, "use the female voice")
	cmd.Flags().StringVarP(&language, "lang", "l", "en-US", "voice language (see languages)")
	return cmd
}

func (c *cli) soundCmd() *cobra.Command {
	sound := &cobra.Command{Use: "sound", Short: "Play and control sounds"}
	sound.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the sounds stored on the device",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
					return k.SoundList(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "play <id>",
			Short: "Play a stored sound",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
					return k.PlaySoundByID(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "play-url <url>",
			Short: "Stream a sound from a URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
					return k.PlaySoundByURL(ctx, args[0])
				})
			},
		},
		c.simple("quit", "Stop the current sound", (*karotz.Client).QuitSound),
		c.simple("pause", "Pause or resume the current sound", (*karotz.Client).PauseSound),
	)
	return sound
}

func (c *cli) squeezeboxCmd() *cobra.Command {
	sq := &cobra.Command{Use: "squeezebox", Short: "Start or stop the Squeezebox player"}
	sq.AddCommand(
		c.simple("start", "Start the Squeezebox player", (*karotz.Client).StartSqueezebox),
		c.simple("stop", "Stop the Squeezebox player", (*karotz.Client).StopSqueezebox),
	)
	return sq
}

func (c *cli) snapshotCmd() *cobra.Command {
	snap := &cobra.Command{Use: "snapshot", Short: "Take and manage camera snapshots"}

	var silent bool
	take := &cobra.Command{
		Use:   "take",
		Short: "Take a picture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return k.TakeSnapshot(ctx, silent)
			})
		},
	}
	take.Flags().BoolVar(&silent, "silent", false, "skip the shutter sound")

	snap.AddCommand(
		take,
		&cobra.Command{
			Use:   "list",
			Short: "List stored snapshots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
					return k.SnapshotList(ctx)
				})
			},
		},
		c.simple("clear", "Delete every stored snapshot", (*karotz.Client).ClearSnapshots),
	)
	return snap
}

func (c *cli) rfidCmd() *cobra.Command {
	rfid := &cobra.Command{Use: "rfid", Short: "Manage RFID tags"}
	tagCmd := func(use, short string, fn func(*karotz.Client, context.Context, string) (bool, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <tag>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
					return fn(k, ctx, args[0])
				})
			},
		}
	}
	rfid.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List known tags",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
					return k.RFIDList(ctx)
				})
			},
		},
		c.simple("record-start", "Start recording new tags", (*karotz.Client).RFIDStartRecord),
		c.simple("record-stop", "Stop recording new tags", (*karotz.Client).RFIDStopRecord),
		tagCmd("delete", "Forget a tag", (*karotz.Client).RFIDDelete),
		tagCmd("unassign", "Remove the action bound to a tag", (*karotz.Client).RFIDUnassign),
	)
	return rfid
}

func (c *cli) moodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mood <id>",
		Short: "Play a mood and print its id (-1 on failure)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("mood id: %w", err)
			}
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return k.Mood(ctx, id)
			})
		},
	}
}

func (c *cli) clockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clock <hour>",
		Short: "Announce the given hour (0-23)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("hour: %w", err)
			}
			return c.run(cmd, func(ctx context.Context, k *karotz.Client) (any, error) {
				return k.Clock(ctx, hour)
			})
		},
	}
}

func (c *cli) languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the TTS languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.print(cmd.CommandPath(), karotz.SupportedLanguages())
		},
	}
}

func (c *cli) commandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the CGI commands this client knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.print(cmd.CommandPath(), karotz.Commands())
		},
	}
}
