// cmd/ffslot/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/display"
	"github.com/tamzrod/ffslot/internal/image"
	"github.com/tamzrod/ffslot/internal/input"
	imodbus "github.com/tamzrod/ffslot/internal/input/modbus"
	"github.com/tamzrod/ffslot/internal/panel"
	"github.com/tamzrod/ffslot/internal/session"
	"github.com/tamzrod/ffslot/internal/status"
	"github.com/tamzrod/ffslot/internal/volume"
)

func newRunCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the navigation session until interrupted",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSession(ctx, rf, cfg)
		},
	}
}

func runSession(ctx context.Context, rf *rootFlags, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vol, err := volume.OpenOS(cfg.Volume.Path)
	if err != nil {
		return err
	}

	// --------------------
	// Displays
	// --------------------

	var (
		displays display.Multi
		front    *panel.Panel
	)
	if cfg.Display.Kind == config.DisplayPanel {
		front, err = panel.New(time.Duration(cfg.Input.HoldMs) * time.Millisecond)
		if err != nil {
			return err
		}
		defer front.Close()
		quietLog(rf)
		displays = append(displays, front)

		go func() {
			select {
			case <-front.Stopped():
				cancel()
			case <-ctx.Done():
			}
		}()
	} else {
		displays = append(displays, display.NewLog())
	}

	sw, closeStatus, err := status.Build(cfg.Status)
	if err != nil {
		return err
	}
	defer closeStatus()
	if sw != nil {
		displays = append(displays, sw)
	}

	// --------------------
	// Buttons
	// --------------------

	var state input.State

	src, closeSrc, err := buildPinSource(cfg.Input, front)
	if err != nil {
		return err
	}
	defer closeSrc()

	interval := time.Duration(cfg.Input.SampleMs) * time.Millisecond
	if src != nil {
		pre, err := input.NewSampler(src, input.NewDecoder(cfg.Navigation.TwoButton, cfg.Navigation.Rotary), &state, interval)
		if err != nil {
			return err
		}
		pre.Prime(ctx)
	}

	// --------------------
	// Session
	// --------------------

	sess, err := session.New(session.Deps{
		Vol:     vol,
		Nav:     cfg.Navigation,
		Images:  image.ByExtension(cfg.Volume.Extensions),
		Buttons: &state,
		Display: displays,
	})
	if err != nil {
		return err
	}
	if err := sess.Initialize(ctx); err != nil {
		return err
	}
	log.Printf("session ready (backend=%s ejected=%v)", sess.Backend(), sess.Ejected())

	if src != nil {
		// FF.CFG may have changed the button mapping.
		nav := sess.Config()
		sampler, err := input.NewSampler(src, input.NewDecoder(nav.TwoButton, nav.Rotary), &state, interval)
		if err != nil {
			return err
		}
		go sampler.Run(ctx)
	}

	err = sess.Run(ctx, &logMounter{buttons: &state, poll: interval})
	if errors.Is(err, context.Canceled) {
		log.Printf("session stopped")
		return nil
	}
	return err
}

// buildPinSource selects the button hardware. A nil source means no
// buttons: the session only commits on timeouts.
func buildPinSource(c config.InputConfig, front *panel.Panel) (input.PinSource, func() error, error) {
	noop := func() error { return nil }

	switch c.Source {
	case config.InputKeyboard:
		if front == nil {
			return nil, nil, fmt.Errorf("input: keyboard needs the panel display")
		}
		return front, noop, nil
	case config.InputModbus:
		src, err := imodbus.Build(c.Modbus)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		return nil, noop, nil
	}
}
