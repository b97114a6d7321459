package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pixelpet/internal/ai"
	"pixelpet/internal/config"
	"pixelpet/internal/engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs: the resolved config and, once
// opened, the engine.
type app struct {
	configPath string
	verbose    bool

	cfg        config.Config
	rand       ai.Rand
	engine     *engine.Engine
	closeStore func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "pixelpet",
		Short:             "PixelPet - a virtual pet that learns how you talk",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runTUI,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default ~/.config/pixelpet/config.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		a.runCmd(),
		a.statusCmd(),
		a.sayCmd(),
		a.feedCmd(),
		a.playCmd(),
		a.simpleCmd("pet", "Pet your pet", (*engine.Engine).Pet),
		a.simpleCmd("clean", "Give your pet a bath", (*engine.Engine).Clean),
		a.simpleCmd("sleep", "Put your pet to bed, or wake it up", (*engine.Engine).ToggleSleep),
		a.simpleCmd("medicine", "Give your pet medicine", (*engine.Engine).GiveMedicine),
		a.renameCmd(),
		a.itemsCmd(),
		a.useCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.resetCmd(),
		a.chaseCmd(),
	)
	return root
}

// setup loads the config and routes logging before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.verbose {
		log.SetOutput(cmd.ErrOrStderr())
	} else {
		log.SetOutput(io.Discard)
	}

	if a.configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.configPath = path
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Seed != 0 {
		a.rand = rand.New(rand.NewSource(cfg.Seed))
	} else {
		a.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return nil
}

// open connects to the configured store and loads the saved game.
func (a *app) open(ctx context.Context) (*engine.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	store, closeStore, err := a.cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	e := engine.New(store,
		engine.WithRand(a.rand),
		engine.WithSaveDelay(a.cfg.SaveDelay.Duration),
	)
	if err := e.Load(ctx); err != nil {
		log.Printf("Continuing with a fresh pet: %v", err)
	}
	a.engine, a.closeStore = e, closeStore
	return e, nil
}

// close writes any pending save and releases the store.
func (a *app) close(ctx context.Context) error {
	if a.engine == nil {
		return nil
	}
	err := a.engine.Close(ctx)
	if cerr := a.closeStore(); err == nil {
		err = cerr
	}
	a.engine = nil
	return err
}

// withEngine runs fn against the loaded game and saves afterwards.
func (a *app) withEngine(cmd *cobra.Command, fn func(e *engine.Engine) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(ctx); err == nil && cerr != nil {
			err = fmt.Errorf("saving game: %w", cerr)
		}
	}()
	return fn(e)
}
