// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/wirefactory/pkg/padlink"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display pad frames in human-readable format",
	Long: `Continuously decode and display pad frames as they arrive.

Each button event is shown with a timestamp, its name and its code. Dropped
frames are reported with the reason. Statistics are printed periodically and
on exit.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

var (
	monitorStatsInterval int
	monitorShowErrors    bool
)

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 10, "Statistics interval in seconds (0 disables)")
	monitorCmd.Flags().BoolVar(&monitorShowErrors, "errors", true, "Show dropped frames")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	link := newLinkDialer(cfg.Link)
	conn, err := link.Open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("WireFactory - Frame Monitor\n")
	fmt.Printf("Connection: %s\n", link.Describe())
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := padlink.NewStatistics()
	defer func() { fmt.Print("\n" + stats.String()) }()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var ticker <-chan time.Time
	if monitorStatsInterval > 0 {
		t := time.NewTicker(time.Duration(monitorStatsInterval) * time.Second)
		defer t.Stop()
		ticker = t.C
	}

	return monitorStream(ctx, conn, os.Stdout, stats, ticker)
}

// monitorStream decodes r and prints every event to w until the stream ends
func monitorStream(ctx context.Context, r io.Reader, w io.Writer, stats *padlink.Statistics, ticker <-chan time.Time) error {
	decoder := padlink.NewDecoder()
	buf := make([]byte, 128)

	for {
		select {
		case <-ticker:
			fmt.Fprint(w, "\n"+stats.String()+"\n")
		default:
		}

		n, err := r.Read(buf)
		stats.AddBytes(n)
		for i := 0; i < n; i++ {
			ev, ok, decodeErr := decoder.DecodeByte(buf[i])
			if decodeErr != nil {
				stats.Update(decodeErr)
				if monitorShowErrors {
					fmt.Fprintf(w, "[ERROR] %v\n", decodeErr)
				}
				continue
			}
			if ok {
				stats.Update(nil)
				fmt.Fprint(w, padlink.FormatEvent(ev, time.Now()))
			}
		}

		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) {
				fmt.Fprintln(w, "Connection closed")
				return nil
			}
			return err
		}
	}
}
