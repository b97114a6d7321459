package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pixelpet/internal/ai"
	"pixelpet/internal/chase"
	"pixelpet/internal/config"
	"pixelpet/internal/engine"
	"pixelpet/internal/pet"
	"pixelpet/internal/ui"
)

// printResponse writes what the pet said, prefixed with its face and name.
func printResponse(out io.Writer, e *engine.Engine, resp ai.Response) {
	if resp.Message == "" {
		return
	}
	name := e.Snapshot().Pet.Name
	fmt.Fprintf(out, "%s %s: %s\n", resp.Mood.Emoji(), name, resp.Message)
	if len(resp.LearnedWords) > 0 {
		fmt.Fprintf(out, "📚 New words: %s\n", strings.Join(resp.LearnedWords, ", "))
	}
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the interactive pet screen",
		RunE:  a.runTUI,
	}
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	logFile := a.cfg.LogFile
	if logFile == "" {
		path, err := config.DefaultLogFile()
		if err != nil {
			return err
		}
		logFile = path
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err == nil {
		if f, err := tea.LogToFile(logFile, "pixelpet"); err == nil {
			defer f.Close()
		}
	}

	return a.withEngine(cmd, func(e *engine.Engine) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		program := tea.NewProgram(ui.NewModel(e, ui.SettingsFrom(a.cfg, a.rand)), tea.WithAltScreen())
		e.OnSaveError(func(err error) {
			program.Send(ui.SaveErrorMsg{Err: err})
		})
		if err := config.Watch(ctx, a.configPath, func(cfg config.Config) {
			program.Send(ui.ConfigMsg(cfg))
		}); err != nil {
			log.Printf("Config hot reload disabled: %v", err)
		}

		_, err := program.Run()
		return err
	})
}

func (a *app) statusCmd() *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show your pet's stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(e *engine.Engine) error {
				gs := e.Snapshot()
				if interactive {
					return ui.DisplayStats(gs, e.Relationship())
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, ui.RenderCard(gs, e.Relationship(), pet.TimeNow()))
				printResponse(out, e, e.Describe())
				if status := e.Status(); status != "" {
					fmt.Fprintf(out, "⚠️ %s\n", status)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Show the card full screen until a key is pressed")
	return cmd
}

func (a *app) sayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say <message...>",
		Short: "Talk to your pet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(e *engine.Engine) error {
				printResponse(cmd.OutOrStdout(), e, e.Talk(strings.Join(args, " "), nil))
				return nil
			})
		},
	}
}

func (a *app) feedCmd() *cobra.Command {
	var amount int
	cmd := &cobra.Command{
		Use:   "feed [food]",
		Short: "Feed your pet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			food := pet.DefaultFeedName
			if len(args) == 1 {
				food = args[0]
			}
			if amount <= 0 {
				return fmt.Errorf("--amount must be positive, got %d", amount)
			}
			return a.withEngine(cmd, func(e *engine.Engine) error {
				if e.Snapshot().Pet.IsSleeping {
					return errors.New("your pet is asleep")
				}
				printResponse(cmd.OutOrStdout(), e, e.Feed(amount, food))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&amount, "amount", pet.DefaultFeedAmount, "How much hunger the meal restores")
	return cmd
}

func (a *app) playCmd() *cobra.Command {
	var amount int
	cmd := &cobra.Command{
		Use:   "play [game]",
		Short: "Play with your pet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game := pet.DefaultPlayName
			if len(args) == 1 {
				game = args[0]
			}
			if amount <= 0 {
				return fmt.Errorf("--amount must be positive, got %d", amount)
			}
			return a.withEngine(cmd, func(e *engine.Engine) error {
				if e.Snapshot().Pet.IsSleeping {
					return errors.New("your pet is asleep")
				}
				printResponse(cmd.OutOrStdout(), e, e.Play(amount, game))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&amount, "amount", pet.DefaultPlayAmount, "How much happiness the game gives")
	return cmd
}

// simpleCmd wraps an engine action that takes no arguments.
func (a *app) simpleCmd(use, short string, action func(*engine.Engine) ai.Response) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(e *engine.Engine) error {
				printResponse(cmd.OutOrStdout(), e, action(e))
				return nil
			})
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Give your pet a new name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(e *engine.Engine) error {
				resp, ok := e.Rename(strings.Join(args, " "))
				if !ok {
					return errors.New("name cannot be blank")
				}
				printResponse(cmd.OutOrStdout(), e, resp)
				return nil
			})
		},
	}
}

func (a *app) itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List your pet's items and the ones you can add",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(e *engine.Engine) error {
				out := cmd.OutOrStdout()
				inventory := e.Snapshot().Inventory
				fmt.Fprintln(out, "Inventory:")
				if len(inventory) == 0 {
					fmt.Fprintln(out, "  (empty)")
				}
				for _, item := range inventory {
					fmt.Fprintf(out, "  %-20s %-30s used %d  [%s]\n", item.Name, item.Effect, item.UseCount, item.ID)
				}
				fmt.Fprintln(out, "Available:")
				for _, t := range pet.PresetItems {
					fmt.Fprintf(out, "  %-20s %s\n", t.Name, t.Effect)
				}
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <preset>",
		Short: "Add a preset item to the inventory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			t, ok := pet.FindPreset(name)
			if !ok {
				return fmt.Errorf("no preset item named %q", name)
			}
			return a.withEngine(cmd, func(e *engine.Engine) error {
				_, resp := e.AddItem(t)
				printResponse(cmd.OutOrStdout(), e, resp)
				return nil
			})
		},
	})
	return cmd
}

func (a *app) useCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <item>",
		Short: "Use an inventory item by name or id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.Join(args, " ")
			return a.withEngine(cmd, func(e *engine.Engine) error {
				resp, ok := e.UseItem(key)
				if !ok {
					return fmt.Errorf("no item %q in the inventory", key)
				}
				printResponse(cmd.OutOrStdout(), e, resp)
				return nil
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the whole game as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(e *engine.Engine) error {
				text, err := e.Export()
				if err != nil {
					return err
				}
				if len(args) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), text)
					return nil
				}
				if err := os.WriteFile(args[0], []byte(text), 0o644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
				return nil
			})
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the game with an exported one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read import: %w", err)
			}
			return a.withEngine(cmd, func(e *engine.Engine) error {
				if err := e.Import(string(data)); err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", e.Snapshot().Pet.Name)
				return nil
			})
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Start over with a new pet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes your pet; pass --yes to confirm")
			}
			return a.withEngine(cmd, func(e *engine.Engine) error {
				if err := e.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Say hello to %s!\n", e.Snapshot().Pet.Name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

func (a *app) chaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "chase [target]",
		Short:     "Watch your pet chase something",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: chase.TargetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := "butterfly"
			if len(args) == 1 {
				key = args[0]
			}
			target, err := chase.Lookup(key)
			if err != nil {
				return err
			}
			return a.withEngine(cmd, func(e *engine.Engine) error {
				p := e.Snapshot().Pet
				if p.IsSleeping {
					return errors.New("your pet is asleep")
				}
				outcome, err := chase.Run(p, target)
				if err != nil {
					return err
				}
				log.Printf("Chase of %s ended: %s", target.Name, outcome)
				if outcome == chase.Caught {
					printResponse(cmd.OutOrStdout(), e, e.Play(chase.CatchReward, target.Name))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "The %s got away.\n", strings.ToLower(target.Name))
				return nil
			})
		},
	}
}
