// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/wirefactory/pkg/padlink"
)

var padCmd = &cobra.Command{
	Use:   "pad",
	Short: "Use the keyboard as the button pad",
	Long: `Turn key presses into pad frames and send them over the link.

  1-4           select buttons
  arrows, hjkl  up, down, back, next
  Esc, Ctrl+C   exit

Each key sends a pressed frame followed by a released frame. Useful for
driving a controller on another host, or for testing a WebSocket bridge.`,
	RunE: runPad,
}

var padHold time.Duration

func init() {
	rootCmd.AddCommand(padCmd)
	padCmd.Flags().DurationVar(&padHold, "hold", keyRelease, "Time between the pressed and released frames")
}

func runPad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	link := newLinkDialer(cfg.Link)
	conn, err := link.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("failed to open keyboard: %w", err)
	}
	defer keyboard.Close()

	fmt.Printf("WireFactory - Pad\n")
	fmt.Printf("Connection: %s\n", link.Describe())
	fmt.Printf("%s\n\n", keyHelp)

	for {
		char, key, err := keyboard.GetKey()
		if err != nil {
			return fmt.Errorf("keyboard: %w", err)
		}
		if key == keyboard.KeyEsc || key == keyboard.KeyCtrlC || char == 'q' {
			return nil
		}

		b, ok := buttonForKey(keyName(char, key))
		if !ok {
			continue
		}
		if err := sendPress(conn, b, padHold); err != nil {
			return err
		}
		fmt.Printf("sent %s\n", b)
	}
}

// keyName converts a keyboard event to the names used by buttonForKey
func keyName(char rune, key keyboard.Key) string {
	switch key {
	case keyboard.KeyArrowUp:
		return "up"
	case keyboard.KeyArrowDown:
		return "down"
	case keyboard.KeyArrowLeft:
		return "left"
	case keyboard.KeyArrowRight:
		return "right"
	}
	if char != 0 {
		return string(char)
	}
	return ""
}

// sendPress writes the pressed frame, waits hold, then writes the released frame
func sendPress(w io.Writer, b padlink.Button, hold time.Duration) error {
	for _, pressed := range []bool{true, false} {
		frame, err := padlink.EncodeFrame(padlink.NewEvent(b, pressed))
		if err != nil {
			return err
		}
		if _, err := w.Write(frame); err != nil {
			return fmt.Errorf("failed to send frame: %w", err)
		}
		if pressed {
			time.Sleep(hold)
		}
	}
	return nil
}
