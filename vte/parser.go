package vte

const (
	// MaxIntermediates is the maximum number of intermediate bytes (0x20-0x2F)
	// collected before a final byte. Real sequences never need more than one
	// or two; beyond this the sequence is dispatched with ignore=true.
	MaxIntermediates = 2
	// MaxOSCRaw bounds an OSC string's raw byte buffer. Sized to the
	// 49-byte window-title bound (term's maxTitleLen) plus slack for the
	// "0;"/"1;"/"2;" selector prefix and a safety margin.
	MaxOSCRaw = 128
	// MaxOSCParams is the maximum number of ';'-separated OSC parameters.
	MaxOSCParams = 16
)

// Parser is the byte-level ECMA-48/xterm state machine. It holds no
// terminal semantics: Advance feeds bytes through the FSM and dispatches
// to a Performer, which is where all interpretation happens.
type Parser struct {
	state State

	intermediates []byte

	params          *Params
	currentParam    uint16
	hasCurrentParam bool
	inSubparam      bool

	oscRaw       []byte
	oscParams    []int
	oscNumParams int

	ignoring   bool
	pendingESC bool
}

// NewParser returns a Parser in the Ground state.
func NewParser() *Parser {
	return &Parser{
		state:         StateGround,
		params:        NewParams(),
		intermediates: make([]byte, 0, MaxIntermediates),
		oscRaw:        make([]byte, 0, MaxOSCRaw),
		oscParams:     make([]int, 0, MaxOSCParams*2),
	}
}

// State returns the parser's current FSM state, mainly useful for tests.
func (p *Parser) State() State { return p.state }

// Advance feeds bytes through the state machine, dispatching to performer
// as sequences complete. It never blocks and never returns an error:
// malformed sequences are absorbed by the Ignore states per ECMA-48.
func (p *Parser) Advance(performer Performer, bytes []byte) {
	for _, b := range bytes {
		// CAN/SUB abort whatever sequence is in progress, from any state but
		// Ground and DCSPassthrough (which needs Unhook, handled in its own
		// case below). ECMA-48 treats them as an "anywhere" transition.
		if (b == 0x18 || b == 0x1A) && p.state != StateGround && p.state != StateDCSPassthrough {
			performer.Execute(b)
			p.resetParams()
			p.state = StateGround
			continue
		}
		switch p.state {
		case StateGround:
			p.advanceGround(performer, b)
		case StateEscape:
			p.advanceEscape(performer, b)
		case StateEscapeIntermediate:
			p.advanceEscapeIntermediate(performer, b)
		case StateCSIEntry:
			p.advanceCSIEntry(performer, b)
		case StateCSIParam:
			p.advanceCSIParam(performer, b)
		case StateCSIIntermediate:
			p.advanceCSIIntermediate(performer, b)
		case StateCSIIgnore:
			p.advanceCSIIgnore(performer, b)
		case StateOSCString:
			p.advanceOSCString(performer, b)
		case StateDCSEntry:
			p.advanceDCSEntry(performer, b)
		case StateDCSParam:
			p.advanceDCSParam(performer, b)
		case StateDCSIntermediate:
			p.advanceDCSIntermediate(performer, b)
		case StateDCSPassthrough:
			p.advanceDCSPassthrough(performer, b)
		case StateDCSIgnore:
			p.advanceDCSIgnore(performer, b)
		case StateSOSPMApcString:
			p.advanceSOSPMApcString(performer, b)
		}
	}
}

func (p *Parser) advanceGround(performer Performer, b byte) {
	switch {
	case b == 0x1B:
		p.state = StateEscape
		p.resetParams()
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b < 0x7F:
		performer.Print(b)
	case b == 0x7F:
		// DEL is ignored at Ground.
	case b == 0x90:
		p.state = StateDCSEntry
		p.resetParams()
	case b == 0x9B:
		p.state = StateCSIEntry
		p.resetParams()
	case b == 0x9D:
		p.state = StateOSCString
		p.resetParams()
	case b < 0xA0:
		// Remaining C1 controls (0x80-0x8F, 0x91-0x9A, 0x9C, 0x9E, 0x9F):
		// no core operation uses them, executed as a no-op control.
		performer.Execute(b)
	default:
		// 0xA0-0xFF: printed as-is under the active single-byte charset.
		performer.Print(b)
	}
}

func (p *Parser) advanceEscape(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateEscapeIntermediate
	case b == 0x5B: // [
		p.state = StateCSIEntry
	case b == 0x5D: // ]
		p.state = StateOSCString
	case b == 0x50: // P
		p.state = StateDCSEntry
	case b == 0x58 || b == 0x5E || b == 0x5F: // X, ^, _
		p.state = StateSOSPMApcString
	case b >= 0x30 && b <= 0x7E:
		performer.EscDispatch(p.intermediates, p.ignoring, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceEscapeIntermediate(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x30 && b <= 0x7E:
		performer.EscDispatch(p.intermediates, p.ignoring, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceCSIEntry(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateCSIIntermediate
	case b >= 0x30 && b <= 0x39:
		p.paramDigit(b)
		p.state = StateCSIParam
	case b == 0x3A:
		p.paramSubparam()
		p.state = StateCSIParam
	case b == 0x3B:
		p.paramSeparator()
		p.state = StateCSIParam
	case b >= 0x3C && b <= 0x3F:
		p.collectIntermediate(b)
		p.state = StateCSIParam
	case b >= 0x40 && b <= 0x7E:
		p.csiDispatch(performer, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceCSIParam(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateCSIIntermediate
	case b >= 0x30 && b <= 0x39:
		p.paramDigit(b)
	case b == 0x3A:
		p.paramSubparam()
	case b == 0x3B:
		p.paramSeparator()
	case b >= 0x3C && b <= 0x3F:
		p.ignoring = true
		p.state = StateCSIIgnore
	case b >= 0x40 && b <= 0x7E:
		p.csiDispatch(performer, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceCSIIntermediate(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x30 && b <= 0x3F:
		p.ignoring = true
		p.state = StateCSIIgnore
	case b >= 0x40 && b <= 0x7E:
		p.csiDispatch(performer, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceCSIIgnore(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x3F:
		// Ignore
	case b >= 0x40 && b <= 0x7E:
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceOSCString(performer Performer, b byte) {
	switch {
	case b == 0x07:
		p.oscDispatch(performer, true)
		p.state = StateGround
	case b == 0x1B:
		p.oscPut(b)
	case b == '\\' && len(p.oscRaw) > 0 && p.oscRaw[len(p.oscRaw)-1] == 0x1B:
		p.oscRaw = p.oscRaw[:len(p.oscRaw)-1]
		p.oscDispatch(performer, false)
		p.state = StateGround
	default:
		p.oscPut(b)
	}
}

func (p *Parser) advanceDCSEntry(performer Performer, b byte) {
	switch {
	case b < 0x20:
		// Ignore
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateDCSIntermediate
	case b >= 0x30 && b <= 0x39:
		p.paramDigit(b)
		p.state = StateDCSParam
	case b == 0x3A:
		p.paramSubparam()
		p.state = StateDCSParam
	case b == 0x3B:
		p.paramSeparator()
		p.state = StateDCSParam
	case b >= 0x3C && b <= 0x3F:
		p.collectIntermediate(b)
		p.state = StateDCSParam
	case b >= 0x40 && b <= 0x7E:
		p.finalizeCurrentParam()
		performer.Hook(p.params, p.intermediates, p.ignoring, b)
		p.state = StateDCSPassthrough
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceDCSParam(performer Performer, b byte) {
	switch {
	case b < 0x20:
		// Ignore
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateDCSIntermediate
	case b >= 0x30 && b <= 0x39:
		p.paramDigit(b)
	case b == 0x3A:
		p.paramSubparam()
	case b == 0x3B:
		p.paramSeparator()
	case b >= 0x3C && b <= 0x3F:
		p.ignoring = true
		p.state = StateDCSIgnore
	case b >= 0x40 && b <= 0x7E:
		p.finalizeCurrentParam()
		performer.Hook(p.params, p.intermediates, p.ignoring, b)
		p.state = StateDCSPassthrough
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceDCSIntermediate(performer Performer, b byte) {
	switch {
	case b < 0x20:
		// Ignore
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x30 && b <= 0x3F:
		p.ignoring = true
		p.state = StateDCSIgnore
	case b >= 0x40 && b <= 0x7E:
		p.finalizeCurrentParam()
		performer.Hook(p.params, p.intermediates, p.ignoring, b)
		p.state = StateDCSPassthrough
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceDCSPassthrough(performer Performer, b byte) {
	switch {
	case b == 0x1B:
		p.pendingESC = true
	case b == '\\' && p.pendingESC:
		p.pendingESC = false
		performer.Unhook()
		p.state = StateGround
	case b == 0x07:
		performer.Unhook()
		p.state = StateGround
	case b == 0x18 || b == 0x1A:
		performer.Unhook()
		performer.Execute(b)
		p.state = StateGround
	default:
		if p.pendingESC {
			performer.Put(0x1B)
			p.pendingESC = false
		}
		performer.Put(b)
	}
}

func (p *Parser) advanceDCSIgnore(performer Performer, b byte) {
	switch {
	case b == 0x18 || b == 0x1A:
		p.state = StateGround
	}
}

func (p *Parser) advanceSOSPMApcString(performer Performer, b byte) {
	if b == '\\' {
		p.state = StateGround
	}
}

func (p *Parser) resetParams() {
	p.params.Clear()
	p.intermediates = p.intermediates[:0]
	p.ignoring = false
	p.oscRaw = p.oscRaw[:0]
	p.oscParams = p.oscParams[:0]
	p.oscNumParams = 0
	p.currentParam = 0
	p.hasCurrentParam = false
	p.inSubparam = false
}

func (p *Parser) collectIntermediate(b byte) {
	if len(p.intermediates) < MaxIntermediates {
		p.intermediates = append(p.intermediates, b)
	} else {
		p.ignoring = true
	}
}

func (p *Parser) paramDigit(b byte) {
	digit := uint16(b - '0')
	if !p.hasCurrentParam {
		p.currentParam = digit
		p.hasCurrentParam = true
	} else {
		p.currentParam = p.currentParam*10 + digit
		if p.currentParam > 9999 {
			p.currentParam = 9999
		}
	}
}

func (p *Parser) paramSeparator() {
	if p.hasCurrentParam {
		p.pushOrExtend(p.currentParam)
	} else if !p.inSubparam {
		p.pushOrExtend(0)
	}
	p.currentParam = 0
	p.hasCurrentParam = false
	p.inSubparam = false
}

func (p *Parser) paramSubparam() {
	if p.hasCurrentParam {
		if !p.inSubparam {
			if p.params.IsFull() {
				p.ignoring = true
			} else {
				p.params.Push(p.currentParam)
				p.inSubparam = true
			}
		} else {
			if p.params.IsFull() {
				p.ignoring = true
			} else {
				p.params.Extend(p.currentParam)
			}
		}
		p.currentParam = 0
		p.hasCurrentParam = false
		return
	}

	if !p.inSubparam {
		if p.params.IsFull() {
			p.ignoring = true
		} else {
			p.params.Push(0)
			p.inSubparam = true
		}
	} else {
		if p.params.IsFull() {
			p.ignoring = true
		} else {
			p.params.Extend(0)
		}
	}
}

func (p *Parser) pushOrExtend(value uint16) {
	if p.params.IsFull() {
		p.ignoring = true
		return
	}
	if p.inSubparam {
		p.params.Extend(value)
	} else {
		p.params.Push(value)
	}
}

func (p *Parser) finalizeCurrentParam() {
	if !p.hasCurrentParam {
		// A trailing ';' leaves one more, empty, parameter, which reads as 0.
		if !p.params.IsEmpty() && !p.inSubparam {
			p.pushOrExtend(0)
		}
		return
	}
	p.pushOrExtend(p.currentParam)
}

func (p *Parser) csiDispatch(performer Performer, action byte) {
	p.finalizeCurrentParam()
	performer.CsiDispatch(p.params, p.intermediates, p.ignoring, action)
	p.resetParams()
}

func (p *Parser) oscPut(b byte) {
	if len(p.oscRaw) >= MaxOSCRaw {
		return
	}
	if b == ';' && p.oscNumParams < MaxOSCParams {
		p.oscParams = append(p.oscParams, len(p.oscRaw))
		p.oscNumParams++
		return
	}
	p.oscRaw = append(p.oscRaw, b)
}

func (p *Parser) oscDispatch(performer Performer, bellTerminated bool) {
	params := make([][]byte, 0, p.oscNumParams+1)
	start := 0
	for _, end := range p.oscParams {
		if end > start && end <= len(p.oscRaw) {
			params = append(params, p.oscRaw[start:end])
		} else if end == start {
			params = append(params, nil)
		}
		start = end
	}
	if start <= len(p.oscRaw) {
		params = append(params, p.oscRaw[start:])
	}
	performer.OscDispatch(params, bellTerminated)
	p.resetParams()
}
