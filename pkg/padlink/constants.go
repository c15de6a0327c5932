// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package padlink implements the button pad command protocol.
//
// The pad (a BLE UART control pad) sends one 5-byte frame per button
// transition:
//
//	'!' 'B' <button digit '1'..'8'> <hit digit '0'|'1'> <checksum>
//
// where the checksum is the bitwise complement of the low byte of the sum of
// the four preceding bytes. Frames are never acknowledged; malformed frames
// are dropped and the decoder resynchronizes on the next marker.
package padlink

// Protocol framing bytes
const (
	MarkerByte  = '!'
	CommandByte = 'B'
	FrameSize   = 5
)

// Button digit range on the wire
const (
	MinButtonDigit = '1'
	MaxButtonDigit = '8'
)

// Button identifies a physical pad button
type Button uint8

// Button values (wire digit minus '0')
const (
	ButtonOne   Button = 1
	ButtonTwo   Button = 2
	ButtonThree Button = 3
	ButtonFour  Button = 4
	ButtonUp    Button = 5
	ButtonDown  Button = 6
	ButtonLeft  Button = 7
	ButtonRight Button = 8
)

// ButtonEvent is a decoded button transition: button<<4 | hit
type ButtonEvent uint8

// Button event codes
const (
	OnePressed    ButtonEvent = 0x11
	OneReleased   ButtonEvent = 0x10
	TwoPressed    ButtonEvent = 0x21
	TwoReleased   ButtonEvent = 0x20
	ThreePressed  ButtonEvent = 0x31
	ThreeReleased ButtonEvent = 0x30
	FourPressed   ButtonEvent = 0x41
	FourReleased  ButtonEvent = 0x40
	UpPressed     ButtonEvent = 0x51
	UpReleased    ButtonEvent = 0x50
	DownPressed   ButtonEvent = 0x61
	DownReleased  ButtonEvent = 0x60
	LeftPressed   ButtonEvent = 0x71
	LeftReleased  ButtonEvent = 0x70
	RightPressed  ButtonEvent = 0x81
	RightReleased ButtonEvent = 0x80
	EventInvalid  ButtonEvent = 0xFF
)

// Hit digits
const (
	hitReleased = 0
	hitPressed  = 1
)

// DecoderState is the frame decoder position
type DecoderState int

// Decoder states
const (
	StateIdle DecoderState = iota
	StateGotMarker
	StateGotCommandByte
	StateGotButtonByte
	StateGotHitByte
)
