// Copyright 2018 by Thorsten von Eicken, see LICENSE file

package mcp23008

import (
	"github.com/tve/hal/gpio"
)

// Pin drivers are lightweight handles borrowing a Dev; each owns exactly one bit of the
// shared register file, identified by its mask. Every mutating operation is a strict
// read-modify-write: obtain the current register byte (cached for registers only this
// driver writes, forced for registers the device drives), change only the mask bit,
// issue exactly one write. A failed read aborts the operation before the write and a
// failed write leaves the cache at the last confirmed value, so bits belonging to other
// pins are never clobbered.
//
// A pin with a zero mask, including the zero value and a released pin, is detached: all
// operations are no-ops returning success and teardown touches no hardware. This lets
// generic code hold an always-valid pin handle without nil checks. Pins are passed
// around by pointer; copying the struct value would create two handles that both
// believe they alone own the bit, so don't.
//
// Go has no destructors, so deterministic teardown is split in two: Release performs
// the hardware restoration and reports its error, Close does the same but absorbs bus
// errors and always detaches. Use Release when teardown confirmation matters, defer
// Close otherwise; the error loss in Close is deliberate and documented, not a bug.

var (
	_ gpio.PulledUpInputPin = (*InputPin)(nil)
	_ gpio.IOPin            = (*IOPin)(nil)
)

// InputPin is an internally pulled-up input pin on an MCP23008. It owns the mask bit of
// the pull-up enable register; the direction register is left at its power-on input
// default.
type InputPin struct {
	dev  *Dev
	mask byte
}

// NewInputPin returns an input pin handle for the mask bit of d. The mask must have
// exactly one bit set; a zero mask yields a detached pin.
func NewInputPin(d *Dev, mask byte) *InputPin {
	return &InputPin{dev: d, mask: mask}
}

func (p *InputPin) detached() bool { return p.dev == nil || p.mask == 0 }

// Initialize initializes the pin's hardware, writing the pull-up register once to
// establish the requested initial pull-up state.
func (p *InputPin) Initialize(initial gpio.PullUpState) error {
	if p.detached() {
		return nil
	}
	if initial == gpio.PullUpEnabled {
		return p.dev.EnablePullUp(p.mask)
	}
	return p.dev.DisablePullUp(p.mask)
}

// EnablePullUp enables the pin's internal pull-up resistor.
func (p *InputPin) EnablePullUp() error {
	if p.detached() {
		return nil
	}
	return p.dev.EnablePullUp(p.mask)
}

// DisablePullUp disables the pin's internal pull-up resistor.
func (p *InputPin) DisablePullUp() error {
	if p.detached() {
		return nil
	}
	return p.dev.DisablePullUp(p.mask)
}

// State returns the pin's level using a forced read of the port register, so externally
// driven changes are observed.
func (p *InputPin) State() (gpio.PinState, error) {
	if p.detached() {
		return gpio.Low, nil
	}
	v, err := p.dev.State(p.mask)
	if err != nil {
		return gpio.Low, err
	}
	return gpio.PinState(v != 0), nil
}

// Release restores the pull-up to its power-on default (disabled) and detaches the pin.
// On error the pin stays attached so the restoration can be retried.
func (p *InputPin) Release() error {
	if p.detached() {
		return nil
	}
	if err := p.dev.DisablePullUp(p.mask); err != nil {
		return err
	}
	p.mask = 0
	return nil
}

// Close restores the pull-up to its power-on default on a best-effort basis and detaches
// the pin. Bus errors are absorbed; use Release to observe them.
func (p *InputPin) Close() error {
	if !p.detached() {
		p.dev.DisablePullUp(p.mask) // unreportable at teardown, see package comment
		p.mask = 0
	}
	return nil
}

// IOPin is a push-pull input/output pin on an MCP23008. It owns the mask bit of the
// direction register and of the port/output-latch register.
type IOPin struct {
	dev  *Dev
	mask byte
}

// NewIOPin returns an IO pin handle for the mask bit of d. The mask must have exactly
// one bit set; a zero mask yields a detached pin.
func NewIOPin(d *Dev, mask byte) *IOPin {
	return &IOPin{dev: d, mask: mask}
}

func (p *IOPin) detached() bool { return p.dev == nil || p.mask == 0 }

// Initialize initializes the pin's hardware, latching the requested initial level before
// flipping the direction bit to output so the pin never glitches through the opposite
// level. This ordering is a hardware-safety contract, verify against the device's glitch
// behavior before changing it.
func (p *IOPin) Initialize(initial gpio.PinState) error {
	if p.detached() {
		return nil
	}
	old := p.dev.GPIO()
	level := old &^ p.mask
	if initial.IsHigh() {
		level = old | p.mask
	}
	if err := p.dev.WriteGPIO(level); err != nil {
		return err
	}
	return p.dev.WriteIODir(p.dev.IODir() &^ p.mask)
}

// State returns the pin's level using a forced read of the port register: an IO pin
// configured as input must see externally driven changes, and even as output the read
// reflects the actual pad level.
func (p *IOPin) State() (gpio.PinState, error) {
	if p.detached() {
		return gpio.Low, nil
	}
	v, err := p.dev.State(p.mask)
	if err != nil {
		return gpio.Low, err
	}
	return gpio.PinState(v != 0), nil
}

// TransitionToHigh drives the pin high, leaving all other port bits unchanged.
func (p *IOPin) TransitionToHigh() error {
	if p.detached() {
		return nil
	}
	return p.dev.setBits(REG_GPIO, p.mask)
}

// TransitionToLow drives the pin low, leaving all other port bits unchanged.
func (p *IOPin) TransitionToLow() error {
	if p.detached() {
		return nil
	}
	return p.dev.clearBits(REG_GPIO, p.mask)
}

// Toggle inverts the pin's latched level.
func (p *IOPin) Toggle() error {
	if p.detached() {
		return nil
	}
	return p.dev.WriteGPIO(p.dev.GPIO() ^ p.mask)
}

// Release drives the pin low and then reverts it to an input, detaching the pin. The
// level is restored before the direction because cutting a push-pull output loose while
// it drives a load is the riskier order; validate against the concrete load if that
// matters. On error the pin stays attached so the restoration can be retried.
func (p *IOPin) Release() error {
	if p.detached() {
		return nil
	}
	if err := p.dev.clearBits(REG_GPIO, p.mask); err != nil {
		return err
	}
	if err := p.dev.setBits(REG_IODIR, p.mask); err != nil {
		return err
	}
	p.mask = 0
	return nil
}

// Close restores the pin to its power-on default (input, latched low) on a best-effort
// basis and detaches the pin. Bus errors are absorbed; use Release to observe them.
func (p *IOPin) Close() error {
	if !p.detached() {
		if p.dev.clearBits(REG_GPIO, p.mask) == nil {
			p.dev.setBits(REG_IODIR, p.mask)
		}
		p.mask = 0
	}
	return nil
}
