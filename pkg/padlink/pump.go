// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package padlink

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"
)

// ErrLinkClosed is returned by Pump when the reader reports end of stream
var ErrLinkClosed = errors.New("command link closed")

// Pump reads the command link until ctx is done or the link fails, decoding
// frames and posting every completed event to mb. Framing errors are counted
// in stats (which may be nil) and otherwise ignored.
func Pump(ctx context.Context, r io.Reader, d *Decoder, mb *Mailbox, stats *Statistics) error {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 && stats != nil {
			stats.AddBytes(n)
		}
		for i := 0; i < n; i++ {
			ev, ok, decodeErr := d.DecodeByte(buf[i])
			if decodeErr != nil {
				glog.V(2).Infof("padlink: frame dropped: %v", decodeErr)
				if stats != nil {
					stats.Update(decodeErr)
				}
				continue
			}
			if !ok {
				continue
			}
			if stats != nil {
				stats.Update(nil)
			}
			glog.V(2).Infof("padlink: %s", ev)
			if mb.Post(ev) {
				glog.V(3).Infof("padlink: pending event overwritten by %s", ev)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrLinkClosed
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return err
		}
		if n == 0 {
			// Serial reads with a timeout return (0, nil); avoid spinning
			time.Sleep(10 * time.Millisecond)
		}
	}
}
