// Package vte implements the ECMA-48 / xterm byte-stream state machine: a
// byte-at-a-time scanner that recognizes C0 controls, ESC sequences, CSI
// sequences (with parameters and subparameters), OSC strings, and DCS
// sequences, dispatching each to a Performer. It carries no terminal
// semantics of its own — package term supplies the Performer that turns
// these dispatches into grid mutations.
package vte

import "fmt"

// State is one node of the parser's finite state machine.
type State uint8

const (
	StateGround State = iota
	StateEscape
	StateEscapeIntermediate
	StateCSIEntry
	StateCSIParam
	StateCSIIntermediate
	StateCSIIgnore
	StateOSCString
	StateDCSEntry
	StateDCSParam
	StateDCSIntermediate
	StateDCSPassthrough
	StateDCSIgnore
	StateSOSPMApcString
)

func (s State) String() string {
	names := []string{
		"Ground",
		"Escape",
		"EscapeIntermediate",
		"CSIEntry",
		"CSIParam",
		"CSIIntermediate",
		"CSIIgnore",
		"OSCString",
		"DCSEntry",
		"DCSParam",
		"DCSIntermediate",
		"DCSPassthrough",
		"DCSIgnore",
		"SOSPMApcString",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return fmt.Sprintf("Unknown(%d)", s)
}
