// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/wirefactory/pkg/padlink"
)

var (
	frameCheckTimeout int
)

var frameCheckCmd = &cobra.Command{
	Use:   "frame_check",
	Short: "Test the link by waiting for a valid pad frame",
	Long: `Wait for a valid pad frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any valid
button frame. Line noise and frames with a bad checksum are skipped.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Press any pad button while the command waits.`,
	RunE: runFrameCheck,
}

func init() {
	rootCmd.AddCommand(frameCheckCmd)
	frameCheckCmd.Flags().IntVar(&frameCheckTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

// errNoFrame is returned by waitForFrame when the timeout passes first
var errNoFrame = errors.New("no valid frame")

func runFrameCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	link := newLinkDialer(cfg.Link)
	conn, err := link.Open(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("WireFactory - Frame Check\n")
	fmt.Printf("Connection: %s\n", link.Describe())
	fmt.Printf("Timeout: %d seconds\n", frameCheckTimeout)
	fmt.Printf("Waiting for a valid frame...\n\n")

	ev, skipped, err := waitForFrame(conn, time.Duration(frameCheckTimeout)*time.Second)
	switch {
	case err == nil:
		if skipped > 0 {
			fmt.Printf("(skipped %d invalid bytes before sync)\n", skipped)
		}
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Event: %s (0x%02X)\n", ev, uint8(ev))
		fmt.Printf("  Frame: % X\n", padlink.MustEncodeFrame(ev))
		os.Exit(0)

	case errors.Is(err, errNoFrame):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", frameCheckTimeout)
		os.Exit(1)

	default:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)
	}
	return nil
}

// waitForFrame reads r until one frame decodes. It returns the event and the
// number of bytes that were rejected before it.
func waitForFrame(r io.Reader, timeout time.Duration) (padlink.ButtonEvent, int, error) {
	type result struct {
		ev      padlink.ButtonEvent
		skipped int
		err     error
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		decoder := padlink.NewDecoder()
		buf := make([]byte, 128)
		skipped := 0
		for {
			n, err := r.Read(buf)
			for i := 0; i < n; i++ {
				ev, ok, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					skipped++
					continue
				}
				if ok {
					done <- result{ev: ev, skipped: skipped}
					return
				}
			}
			if err != nil {
				done <- result{err: err}
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	select {
	case res := <-done:
		return res.ev, res.skipped, res.err
	case <-ctx.Done():
		return padlink.EventInvalid, 0, errNoFrame
	}
}
