package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/frame"
	"github.com/san-kum/seaglass/internal/scene"
	"github.com/san-kum/seaglass/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runLive drives the scene on the frame loop while the TUI owns the
// terminal. Quitting the TUI stops the loop and the profile watcher.
func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfile()
	if err != nil {
		return err
	}
	log, err := newLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, release, err := openStore(log)
	if err != nil {
		return err
	}
	defer release()

	proj := viz.NewCanvasProjector()
	sc, err := scene.New(scene.Options{
		Config:    cfg,
		Owner:     settings.GetString("owner"),
		Store:     store,
		Projector: proj,
		Logger:    log,
		Width:     width,
		Height:    height,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sc.Close(); err != nil {
			log.Warn("scene close", zap.Error(err))
		}
	}()
	if err := sc.Load(cmd.Context()); err != nil {
		return err
	}

	loop := frame.New(log)
	if err := sc.Start(loop); err != nil {
		return err
	}

	themeName, _ := cmd.Flags().GetString("theme")
	g, ctx := errgroup.WithContext(cmd.Context())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error { return loop.Run(ctx) })
	if profilePath != "" {
		g.Go(func() error {
			return config.Watch(ctx, profilePath, log, func(next *config.Config) {
				if err := loop.Post(func() {
					if err := sc.Tune(next); err != nil {
						log.Warn("profile rejected", zap.Error(err))
					}
				}); err != nil {
					log.Debug("profile dropped, loop stopped", zap.Error(err))
				}
			})
		})
	}
	g.Go(func() error {
		defer cancel()
		m := viz.NewLive(sc, loop, proj, viz.GetTheme(themeName))
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})
	return g.Wait()
}
