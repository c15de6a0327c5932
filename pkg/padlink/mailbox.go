// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package padlink

import "sync"

// Mailbox is a single-slot, latest-wins hand-off between event producers
// (link reader, terminal panel) and the control loop. Posting while an event
// is still pending replaces it: the control loop only ever sees the most
// recent button transition since its last poll.
type Mailbox struct {
	mu   sync.Mutex
	slot chan ButtonEvent
}

// NewMailbox creates an empty mailbox
func NewMailbox() *Mailbox {
	return &Mailbox{slot: make(chan ButtonEvent, 1)}
}

// Post stores ev, replacing any event not yet taken. Never blocks.
// Returns true if a pending event was overwritten.
func (m *Mailbox) Post(ev ButtonEvent) (dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.slot:
		dropped = true
	default:
	}
	m.slot <- ev
	return dropped
}

// Take returns the pending event, if any, and empties the slot
func (m *Mailbox) Take() (ButtonEvent, bool) {
	select {
	case ev := <-m.slot:
		return ev, true
	default:
		return EventInvalid, false
	}
}
