// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Thermoquad/wirefactory/pkg/config"
	"github.com/Thermoquad/wirefactory/pkg/display"
	"github.com/Thermoquad/wirefactory/pkg/hw/sim"
	"github.com/Thermoquad/wirefactory/pkg/machine"
	"github.com/Thermoquad/wirefactory/pkg/padlink"
	"github.com/Thermoquad/wirefactory/pkg/sequencer"
	"github.com/Thermoquad/wirefactory/pkg/session"
	"github.com/Thermoquad/wirefactory/pkg/spoolstore"
	"github.com/Thermoquad/wirefactory/pkg/status"
	"github.com/Thermoquad/wirefactory/pkg/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the machine controller",
	Long: `Start the controller on the simulated rig.

The command link (--port or --url) delivers pad frames. When stdout is a
terminal, a panel shows the machine screen and the keyboard doubles as the
pad: 1-4 select, arrows (or hjkl) are up, down, back and next.

Optional services are enabled from the configuration file:
  persistence.path  save the remaining spool length
  status.listen     HTTP status server (/health, /status, /stream)
  mqtt.url          publish status snapshots to an MQTT broker

Without a terminal the screen is written to the log; add -logtostderr to
follow it.`,
	RunE: runRun,
}

var (
	runTUI      bool
	runNoSpool  bool
	linkBackoff = 2 * time.Second
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runTUI, "tui", true, "Show the terminal panel when stdout is a terminal")
	runCmd.Flags().BoolVar(&runNoSpool, "no-spool", false, "Start the simulated rig with the spool sensor open")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lim := cfg.Limits()
	rigSim := sim.New(cfg.SimRig())
	rigSim.Spool.Set(!runNoSpool)
	rig := rigSim.Rig()

	var spool *spoolstore.Store
	initial := session.New(lim, cfg.Machine.CutAngle)
	if cfg.Persistence.Path != "" {
		spool = spoolstore.New(cfg.Persistence.Path)
		initial.WireLeft = restoreWireLeft(spool, initial.WireLeft)
	}
	store := session.NewStore(session.Validate(initial, lim))

	mailbox := padlink.NewMailbox()
	stats := padlink.NewStatistics()
	seq := sequencer.New(cfg.Sequencer(), rig, store)
	ctl := machine.New(cfg.Controller(), rig, store, mailbox, seq)

	link := newLinkDialer(cfg.Link)
	linkInfo := "keyboard only"
	if link.Configured() {
		linkInfo = link.Describe()
	}

	useTUI := runTUI && term.IsTerminal(int(os.Stdout.Fd()))
	var surface display.Surface
	var program *tea.Program
	if useTUI {
		program = tea.NewProgram(newPanelModel(linkInfo, mailbox, stats), tea.WithContext(ctx))
		surface = &panelSurface{program: program}
	} else {
		surface = display.NewLog()
		if !link.Configured() {
			glog.Warningf("no command link configured and no terminal; the machine cannot be operated")
		}
	}
	screen := display.NewScreen(surface)
	threads := telemetry.New(cfg.Telemetry(), lim, screen, store, ctl, rig.SpoolPresent)
	src := &status.Source{Modes: ctl, Store: store, Limits: lim, Spool: rig.SpoolPresent, Link: stats}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if program != nil {
		g.Go(func() error {
			go func() {
				<-ctx.Done()
				program.Quit()
			}()
			_, err := program.Run()
			cancel()
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("panel: %w", err)
			}
			return nil
		})
	} else {
		fmt.Printf("WireFactory - %s\n", linkInfo)
		fmt.Printf("Press Ctrl+C to exit\n\n")
	}

	g.Go(func() error { return ctl.Run(ctx) })
	g.Go(func() error { return threads.Run(ctx) })

	if link.Configured() {
		g.Go(func() error { return pumpLink(ctx, link, mailbox, stats) })
	}

	if spool != nil {
		saver := &spoolstore.Saver{
			Store:    spool,
			Interval: cfg.Persistence.Interval,
			Source:   func() float64 { return store.Snapshot().WireLeft },
		}
		g.Go(func() error { return saver.Run(ctx) })
	}

	if cfg.Status.Listen != "" {
		srv := status.NewServer(src, cfg.Status.StreamInterval)
		g.Go(func() error { return srv.ListenAndServe(ctx, cfg.Status.Listen) })
	}

	if cfg.MQTT.URL != "" {
		g.Go(func() error { return runMQTT(ctx, cfg.MQTT, src) })
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		glog.Errorf("run: %v", err)
		return err
	}
	glog.Infof("shut down with %.1f ft on the spool after %d screen draws", store.Snapshot().WireLeft, screen.Draws())
	return nil
}

// restoreWireLeft loads the saved spool length, keeping def when there is none
func restoreWireLeft(spool *spoolstore.Store, def float64) float64 {
	feet, err := spool.Load()
	switch {
	case err == nil:
		glog.Infof("restored %.1f ft from %s", feet, spool.Path())
		return feet
	case errors.Is(err, spoolstore.ErrNoValue) || errors.Is(err, os.ErrNotExist):
		glog.Infof("no saved spool length in %s, assuming a full spool", spool.Path())
	default:
		glog.Warningf("spool file unreadable, assuming a full spool: %v", err)
	}
	return def
}

// pumpLink feeds the mailbox from the command link, reconnecting after
// failures until ctx is done
func pumpLink(ctx context.Context, link *linkDialer, mb *padlink.Mailbox, stats *padlink.Statistics) error {
	for {
		conn, err := link.Open(ctx)
		if err != nil {
			glog.Warningf("link: %v", err)
		} else {
			glog.Infof("link: connected (%s)", link.Describe())
			err = padlink.Pump(ctx, conn, padlink.NewDecoder(), mb, stats)
			conn.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.Warningf("link: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(linkBackoff):
		}
	}
}

// runMQTT connects and publishes. A broker that cannot be reached is logged
// and does not stop the machine.
func runMQTT(ctx context.Context, cfg config.MQTTConfig, src *status.Source) error {
	pub, closer, err := status.NewPublisher(ctx, cfg.URL, cfg.Prefix, cfg.Interval, src)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		glog.Errorf("mqtt disabled: %v", err)
		return nil
	}
	defer closer()
	glog.Infof("mqtt: publishing to %s", pub.Topic())
	return pub.Run(ctx)
}
