// Copyright 2018 by Thorsten von Eicken, see LICENSE file

package mcp23008

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tve/hal/gpio"
	"github.com/tve/hal/i2c"
	"github.com/tve/hal/i2c/i2ctest"
)

func TestInputPinInitializeAndState(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewInputPin(d, 0x04)
	if err := pin.Initialize(gpio.PullUpEnabled); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// Exactly one write, to the pull-up register, touching only the pin's bit.
	want := []i2ctest.Txn{{Addr: d.Addr(), Reg: REG_GPPU, PtrSet: true, W: []byte{0x04}}}
	if !reflect.DeepEqual(c.Txns, want) {
		t.Fatalf("initialize traffic got %+v expected %+v", c.Txns, want)
	}

	c.Txns = nil
	c.Regs[REG_GPIO] = 0x04
	s, err := pin.State()
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if s != gpio.High {
		t.Fatalf("got %v expected high", s)
	}
	// State must be a forced read of the port register.
	if len(c.Txns) != 1 || c.Txns[0].Reg != REG_GPIO || len(c.Txns[0].R) != 1 {
		t.Fatalf("state traffic got %+v", c.Txns)
	}
	c.Regs[REG_GPIO] = 0x00
	if s, _ := pin.State(); s != gpio.Low {
		t.Fatalf("got %v expected low", s)
	}
}

func TestInputPinPullUp(t *testing.T) {
	d, c := newTestDev(t)
	if err := d.WriteGPPU(0x81); err != nil { // other pins' pull-ups
		t.Fatalf("unexpected error %v", err)
	}
	pin := NewInputPin(d, 0x04)
	if err := pin.EnablePullUp(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if c.Regs[REG_GPPU] != 0x85 {
		t.Fatalf("got %#02x expected 0x85", c.Regs[REG_GPPU])
	}
	if err := pin.DisablePullUp(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if c.Regs[REG_GPPU] != 0x81 {
		t.Fatalf("other pins' pull-ups disturbed: %#02x", c.Regs[REG_GPPU])
	}
}

func TestInputPinRelease(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewInputPin(d, 0x08)
	if err := pin.Initialize(gpio.PullUpEnabled); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	c.FailOn = "write"
	if err := pin.Release(); !errors.Is(err, i2c.ErrBus) {
		t.Fatalf("got %v expected ErrBus", err)
	}
	// A failed release leaves the pin attached so it can be retried.
	if c.Regs[REG_GPPU] != 0x08 {
		t.Fatalf("pull-up changed by failed release: %#02x", c.Regs[REG_GPPU])
	}
	if err := pin.Release(); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if c.Regs[REG_GPPU] != 0 {
		t.Fatalf("pull-up not restored: %#02x", c.Regs[REG_GPPU])
	}

	// Released pins are detached, further operations are silent no-ops.
	c.Ops = nil
	if err := pin.EnablePullUp(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if s, err := pin.State(); err != nil || s != gpio.Low {
		t.Fatalf("detached state got %v, %v", s, err)
	}
	if len(c.Ops) != 0 {
		t.Fatalf("detached pin caused bus traffic: %v", c.Ops)
	}
}

func TestInputPinClose(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewInputPin(d, 0x01)
	if err := pin.Initialize(gpio.PullUpEnabled); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	c.FailOn = "write"
	if err := pin.Close(); err != nil {
		t.Fatalf("Close must absorb bus errors, got %v", err)
	}
	// Detached even though the restoration write failed.
	c.Ops = nil
	if err := pin.EnablePullUp(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(c.Ops) != 0 {
		t.Fatalf("closed pin caused bus traffic: %v", c.Ops)
	}
}

func TestIOPinInitialize(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewIOPin(d, 0x01)
	if err := pin.Initialize(gpio.Low); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// The level is latched before the direction flips to output so the pin cannot
	// glitch through the opposite level.
	want := []i2ctest.Txn{
		{Addr: d.Addr(), Reg: REG_GPIO, PtrSet: true, W: []byte{0x00}},
		{Addr: d.Addr(), Reg: REG_IODIR, PtrSet: true, W: []byte{0xFE}},
	}
	if !reflect.DeepEqual(c.Txns, want) {
		t.Fatalf("initialize traffic got %+v expected %+v", c.Txns, want)
	}
}

func TestIOPinInitializeHigh(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewIOPin(d, 0x80)
	if err := pin.Initialize(gpio.High); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if c.Regs[REG_GPIO]&0x80 == 0 {
		t.Fatalf("pin not latched high: %#02x", c.Regs[REG_GPIO])
	}
	if c.Regs[REG_IODIR] != 0x7F {
		t.Fatalf("direction got %#02x expected 0x7f", c.Regs[REG_IODIR])
	}
}

func TestIOPinTransitions(t *testing.T) {
	d, c := newTestDev(t)
	if err := d.WriteGPIO(0xF0); err != nil { // other pins' levels
		t.Fatalf("unexpected error %v", err)
	}
	pin := NewIOPin(d, 0x01)
	if err := pin.Initialize(gpio.Low); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	c.Txns = nil
	if err := pin.TransitionToHigh(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if c.Regs[REG_GPIO] != 0xF1 {
		t.Fatalf("got %#02x expected 0xf1", c.Regs[REG_GPIO])
	}
	if err := pin.TransitionToLow(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if c.Regs[REG_GPIO] != 0xF0 {
		t.Fatalf("got %#02x expected 0xf0", c.Regs[REG_GPIO])
	}
	// One write per transition, no forced reads.
	if len(c.Txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d: %+v", len(c.Txns), c.Txns)
	}
	for _, txn := range c.Txns {
		if txn.Reg != REG_GPIO || len(txn.W) != 1 || len(txn.R) != 0 {
			t.Fatalf("unexpected transaction %+v", txn)
		}
	}
}

func TestIOPinToggle(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewIOPin(d, 0x02)
	if err := pin.Initialize(gpio.Low); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := pin.Toggle(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if c.Regs[REG_GPIO] != 0x02 {
		t.Fatalf("got %#02x expected 0x02", c.Regs[REG_GPIO])
	}
	if err := pin.Toggle(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// Two toggles restore the original level.
	if c.Regs[REG_GPIO] != 0x00 {
		t.Fatalf("got %#02x expected 0x00", c.Regs[REG_GPIO])
	}
}

func TestIOPinFailedWriteKeepsRMWBase(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewIOPin(d, 0x01)
	if err := pin.Initialize(gpio.Low); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	c.FailOn = "write"
	if err := pin.TransitionToHigh(); !errors.Is(err, i2c.ErrBus) {
		t.Fatalf("got %v expected ErrBus", err)
	}
	// The cache still holds the last confirmed value, so the retry writes the same
	// target byte instead of compounding the failed update.
	if err := pin.TransitionToHigh(); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if c.Regs[REG_GPIO] != 0x01 {
		t.Fatalf("got %#02x expected 0x01", c.Regs[REG_GPIO])
	}
}

func TestIOPinRelease(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewIOPin(d, 0x02)
	if err := pin.Initialize(gpio.High); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	c.Txns = nil
	if err := pin.Release(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// Latch low first, then revert to input.
	want := []i2ctest.Txn{
		{Addr: d.Addr(), Reg: REG_GPIO, PtrSet: true, W: []byte{0x00}},
		{Addr: d.Addr(), Reg: REG_IODIR, PtrSet: true, W: []byte{0xFF}},
	}
	if !reflect.DeepEqual(c.Txns, want) {
		t.Fatalf("release traffic got %+v expected %+v", c.Txns, want)
	}
	c.Ops = nil
	if err := pin.TransitionToHigh(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(c.Ops) != 0 {
		t.Fatalf("released pin caused bus traffic: %v", c.Ops)
	}
}

func TestIOPinCloseAfterFailure(t *testing.T) {
	d, c := newTestDev(t)
	pin := NewIOPin(d, 0x02)
	if err := pin.Initialize(gpio.High); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	c.FailOn = "write"
	if err := pin.Close(); err != nil {
		t.Fatalf("Close must absorb bus errors, got %v", err)
	}
	// The level write failed, so the direction stays untouched rather than cutting a
	// driven pin loose.
	if c.Regs[REG_IODIR] != 0xFD {
		t.Fatalf("direction changed after failed level restore: %#02x", c.Regs[REG_IODIR])
	}
	c.Ops = nil
	if err := pin.Toggle(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(c.Ops) != 0 {
		t.Fatalf("closed pin caused bus traffic: %v", c.Ops)
	}
}

func TestDetachedPins(t *testing.T) {
	// The zero values and zero-mask pins are detached: every operation succeeds
	// without touching hardware.
	var in InputPin
	var io IOPin
	if err := in.Initialize(gpio.PullUpEnabled); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if s, err := in.State(); err != nil || s != gpio.Low {
		t.Fatalf("got %v, %v", s, err)
	}
	if err := in.Release(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := io.Initialize(gpio.High); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := io.Toggle(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := io.Close(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	d, c := newTestDev(t)
	pin := NewIOPin(d, 0)
	if err := pin.Initialize(gpio.High); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := pin.TransitionToHigh(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(c.Ops) != 0 {
		t.Fatalf("zero-mask pin caused bus traffic: %v", c.Ops)
	}
}

func TestTwoPinsShareOneDev(t *testing.T) {
	d, c := newTestDev(t)
	led := NewIOPin(d, 0x01)
	aux := NewIOPin(d, 0x02)
	if err := led.Initialize(gpio.High); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := aux.Initialize(gpio.Low); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if c.Regs[REG_GPIO] != 0x01 || c.Regs[REG_IODIR] != 0xFC {
		t.Fatalf("got gpio=%#02x iodir=%#02x", c.Regs[REG_GPIO], c.Regs[REG_IODIR])
	}
	if err := aux.TransitionToHigh(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// aux's update must not disturb led's latched level.
	if c.Regs[REG_GPIO] != 0x03 {
		t.Fatalf("got %#02x expected 0x03", c.Regs[REG_GPIO])
	}
}
