// Copyright 2018 by Thorsten von Eicken, see LICENSE file

// The gpio package defines the pin capability contracts consumed by generic code and by
// the device drivers in this repository.
//
// Each contract is a plain Go interface: any pin type exposing the required operation set
// qualifies, there is no registration and no base type. The contracts assume that the
// high pin state is the active state; a pin whose active state is electrically low can be
// adapted with the active-low wrappers in this package.
//
// All operations that touch hardware return an error. Pins backed by a slow bus (such as
// the mcp23008 package's pins) can fail on any operation; pins backed by memory-mapped
// registers typically return nil forever.
package gpio

// PinState is the electrical state of a pin, either High or Low. It carries no error
// state.
type PinState bool

const (
	// Low is the low pin state.
	Low PinState = false
	// High is the high pin state.
	High PinState = true
)

// IsHigh returns true if the pin is high.
func (s PinState) IsHigh() bool { return bool(s) }

// IsLow returns true if the pin is low.
func (s PinState) IsLow() bool { return !bool(s) }

// String returns "high" or "low".
func (s PinState) String() string {
	if s {
		return "high"
	}
	return "low"
}

// PullUpState is the state of a pin's internal pull-up resistor.
type PullUpState bool

const (
	// PullUpDisabled disables the internal pull-up resistor.
	PullUpDisabled PullUpState = false
	// PullUpEnabled enables the internal pull-up resistor.
	PullUpEnabled PullUpState = true
)

// InputPin is the contract for a pin that can be read.
type InputPin interface {
	// Initialize initializes the pin's hardware.
	Initialize() error
	// State returns the state of the pin.
	State() (PinState, error)
}

// PulledUpInputPin is the contract for an input pin with an internal pull-up resistor.
//
// It is deliberately not a superset of InputPin: Initialize takes the initial pull-up
// state, so a type can satisfy one contract or the other but not both.
type PulledUpInputPin interface {
	// Initialize initializes the pin's hardware with the requested initial pull-up
	// resistor state.
	Initialize(initial PullUpState) error
	// EnablePullUp enables the pin's internal pull-up resistor.
	EnablePullUp() error
	// DisablePullUp disables the pin's internal pull-up resistor.
	DisablePullUp() error
	// State returns the state of the pin.
	State() (PinState, error)
}

// OutputPin is the contract for a pin that can be driven.
type OutputPin interface {
	// Initialize initializes the pin's hardware, driving the pin to the requested
	// initial state.
	Initialize(initial PinState) error
	// TransitionToHigh drives the pin high.
	TransitionToHigh() error
	// TransitionToLow drives the pin low.
	TransitionToLow() error
	// Toggle inverts the pin state.
	Toggle() error
}

// IOPin is the contract for a pin that can be both driven and read back. Reading an IOPin
// reflects the externally visible level, not the last driven value.
type IOPin interface {
	// Initialize initializes the pin's hardware, driving the pin to the requested
	// initial state.
	Initialize(initial PinState) error
	// State returns the state of the pin.
	State() (PinState, error)
	// TransitionToHigh drives the pin high.
	TransitionToHigh() error
	// TransitionToLow drives the pin low.
	TransitionToLow() error
	// Toggle inverts the pin state.
	Toggle() error
}
