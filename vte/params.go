package vte

import (
	"fmt"
	"strings"
)

// MaxParams is the maximum number of parameters and subparameters a single
// CSI or DCS sequence can carry. Sequences that would exceed it are
// dispatched with ignore=true rather than rejected outright.
const MaxParams = 32

// Params holds the parsed parameters (and their subparameters, introduced
// by ':') of a CSI or DCS sequence, e.g. "38:2:255:0:0;1" parses to two
// groups: [38 2 255 0 0] and [1].
type Params struct {
	subparams [MaxParams]uint8
	params    [MaxParams]uint16
	len       int
}

// NewParams returns an empty Params ready for reuse via Clear.
func NewParams() *Params {
	return &Params{}
}

// Len returns the total number of stored parameters and subparameters.
func (p *Params) Len() int { return p.len }

// IsEmpty reports whether no parameters have been pushed.
func (p *Params) IsEmpty() bool { return p.len == 0 }

// IsFull reports whether the params buffer has reached MaxParams.
func (p *Params) IsFull() bool { return p.len >= MaxParams }

// Clear resets Params to empty so the parser can reuse it for the next
// sequence without reallocating.
func (p *Params) Clear() {
	p.len = 0
	for i := range p.subparams {
		p.subparams[i] = 0
	}
	for i := range p.params {
		p.params[i] = 0
	}
}

// Push starts a new parameter group with value as its first element.
func (p *Params) Push(value uint16) {
	if p.IsFull() {
		return
	}
	p.params[p.len] = value
	p.subparams[p.len] = 1
	p.len++
}

// Extend appends value as a subparameter of the most recently pushed group.
func (p *Params) Extend(value uint16) {
	if p.IsFull() {
		return
	}
	if p.len == 0 {
		p.Push(value)
		return
	}
	groupStart := p.len - 1
	for groupStart >= 0 && p.subparams[groupStart] == 0 {
		groupStart--
	}
	if groupStart < 0 {
		p.Push(value)
		return
	}
	p.params[p.len] = value
	p.subparams[p.len] = 0
	p.subparams[groupStart]++
	p.len++
}

// Iter returns the parameter groups in order, each a slice of its main
// value followed by any subparameters.
func (p *Params) Iter() [][]uint16 {
	if p.len == 0 {
		return nil
	}
	var result [][]uint16
	i := 0
	for i < p.len {
		count := int(p.subparams[i])
		if count == 0 {
			i++
			continue
		}
		group := make([]uint16, 0, count)
		for j := 0; j < count && i+j < p.len; j++ {
			group = append(group, p.params[i+j])
		}
		result = append(result, group)
		i += count
	}
	return result
}

func (p *Params) String() string {
	iter := p.Iter()
	if len(iter) == 0 {
		return "Params{}"
	}
	var parts []string
	for _, group := range iter {
		if len(group) == 1 {
			parts = append(parts, fmt.Sprintf("%d", group[0]))
			continue
		}
		var subparts []string
		for _, v := range group {
			subparts = append(subparts, fmt.Sprintf("%d", v))
		}
		parts = append(parts, strings.Join(subparts, ":"))
	}
	return fmt.Sprintf("Params{%s}", strings.Join(parts, ";"))
}
