// Copyright 2018 by Thorsten von Eicken, see LICENSE file

package gpio

// ActiveLowInputPin adapts an input pin whose active state is electrically low to the
// active-high contract assumed by the rest of this repository. State reports the
// inverse of the wrapped pin's state, everything else passes through.
type ActiveLowInputPin[P InputPin] struct {
	Pin P // the wrapped pin
}

// Initialize initializes the wrapped pin's hardware.
func (p *ActiveLowInputPin[P]) Initialize() error { return p.Pin.Initialize() }

// State returns High if the wrapped pin is low and Low if it is high. Errors from the
// wrapped pin are propagated unchanged.
func (p *ActiveLowInputPin[P]) State() (PinState, error) {
	s, err := p.Pin.State()
	if err != nil {
		return Low, err
	}
	return PinState(s.IsLow()), nil
}

// ActiveLowOutputPin adapts an output pin whose active state is electrically low to the
// active-high contract. Initialize inverts the initial state, the two transitions swap,
// and Toggle is symmetric and passes through.
type ActiveLowOutputPin[P OutputPin] struct {
	Pin P // the wrapped pin
}

// Initialize initializes the wrapped pin's hardware, driving it to the inverse of the
// requested initial state.
func (p *ActiveLowOutputPin[P]) Initialize(initial PinState) error {
	return p.Pin.Initialize(PinState(initial.IsLow()))
}

// TransitionToHigh drives the wrapped pin low.
func (p *ActiveLowOutputPin[P]) TransitionToHigh() error { return p.Pin.TransitionToLow() }

// TransitionToLow drives the wrapped pin high.
func (p *ActiveLowOutputPin[P]) TransitionToLow() error { return p.Pin.TransitionToHigh() }

// Toggle inverts the wrapped pin's state.
func (p *ActiveLowOutputPin[P]) Toggle() error { return p.Pin.Toggle() }

// activeLowIOInput inverts only the input side of an IO pin. The output operations pass
// through untouched so that a second, independent output-inversion layer can be stacked
// on top.
type activeLowIOInput[P IOPin] struct {
	pin P
}

func (p *activeLowIOInput[P]) Initialize(initial PinState) error { return p.pin.Initialize(initial) }

func (p *activeLowIOInput[P]) State() (PinState, error) {
	s, err := p.pin.State()
	if err != nil {
		return Low, err
	}
	return PinState(s.IsLow()), nil
}

func (p *activeLowIOInput[P]) TransitionToHigh() error { return p.pin.TransitionToHigh() }
func (p *activeLowIOInput[P]) TransitionToLow() error  { return p.pin.TransitionToLow() }
func (p *activeLowIOInput[P]) Toggle() error           { return p.pin.Toggle() }

// ActiveLowIOPin adapts an IO pin whose active state is electrically low to the
// active-high contract. It is two composition layers: an input-inversion layer wrapped
// in an output-inversion layer, each preserving its inversion independently.
type ActiveLowIOPin[P IOPin] struct {
	inner activeLowIOInput[P]
}

// NewActiveLowIOPin wraps pin in an active-low IO adapter.
func NewActiveLowIOPin[P IOPin](pin P) *ActiveLowIOPin[P] {
	return &ActiveLowIOPin[P]{inner: activeLowIOInput[P]{pin: pin}}
}

// Initialize initializes the wrapped pin's hardware, driving it to the inverse of the
// requested initial state.
func (p *ActiveLowIOPin[P]) Initialize(initial PinState) error {
	return p.inner.Initialize(PinState(initial.IsLow()))
}

// State returns High if the wrapped pin is low and Low if it is high.
func (p *ActiveLowIOPin[P]) State() (PinState, error) { return p.inner.State() }

// TransitionToHigh drives the wrapped pin low.
func (p *ActiveLowIOPin[P]) TransitionToHigh() error { return p.inner.TransitionToLow() }

// TransitionToLow drives the wrapped pin high.
func (p *ActiveLowIOPin[P]) TransitionToLow() error { return p.inner.TransitionToHigh() }

// Toggle inverts the wrapped pin's state.
func (p *ActiveLowIOPin[P]) Toggle() error { return p.inner.Toggle() }
