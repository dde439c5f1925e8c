// Copyright 2018 by Thorsten von Eicken, see LICENSE file

// The mcp23008 package interfaces with a Microchip MCP23008 8-bit I2C port expander.
//
// The driver keeps an in-memory cache of the device's registers. Every register is
// reachable three ways: a cached read returning the last confirmed value without a bus
// transaction, a forced read issuing a bus transaction and refreshing the cache, and a
// write issuing a bus transaction and updating the cache only on success. Pin drivers use
// cached reads for registers only they write (saving a transaction per operation) and
// forced reads for registers the device drives, such as the port level. Using cached
// reads where external state can change yields stale data; using forced reads everywhere
// burdens the bus for nothing.
//
// A Dev and its cache are owned by a single caller at a time: the read-modify-write
// sequences of the pin drivers are not atomic with respect to the shared registers, so
// concurrent mutation from several goroutines can lose updates. Callers needing to share
// a Dev must serialize access externally.
//
// Datasheet: https://ww1.microchip.com/downloads/en/DeviceDoc/MCP23008-MCP23S08-Data-Sheet-20001919F.pdf
package mcp23008

import (
	"fmt"

	"github.com/tve/hal/i2c"
)

// LogPrintf is a function used by the driver to print logging info.
type LogPrintf func(format string, v ...interface{})

// Opts contains options used when initializing a Dev.
type Opts struct {
	SequentialOperation SequentialOperationMode // address pointer auto-increment
	SlewRate            SlewRateControl         // SDA slew rate limiter
	Interrupt           InterruptMode           // INT output driver configuration
	Logger              LogPrintf               // function to use for logging, nil disables
}

// Dev represents an MCP23008 behind a bus controller. It owns the register cache shared
// by all pin drivers addressing the device; pin drivers borrow the Dev and must not
// outlive it.
type Dev struct {
	bus   i2c.Controller // bus the device is attached to
	addr  i2c.Address    // device address, 0x20..0x27
	cache registerCache  // last confirmed register values
	log   LogPrintf      // function to use for logging
}

// New returns a Dev for the MCP23008 at addr, verifies the device responds, resets the
// register cache to the power-on-reset defaults, and writes the IOCON configuration
// assembled from opts.
//
// New assumes the device itself is in its power-on-reset state. If it has been touched
// since reset the cache will not match the hardware; issue forced reads to resynchronize.
func New(bus i2c.Controller, addr i2c.Address, opts Opts) (*Dev, error) {
	if n := addr.Numeric(); n < AddrMin || n > AddrMax {
		return nil, fmt.Errorf("%w: mcp23008 responds to 0x20..0x27, got %v",
			i2c.ErrInvalidAddress, addr)
	}
	d := &Dev{bus: bus, addr: addr, log: func(format string, v ...interface{}) {}}
	if opts.Logger != nil {
		d.log = func(format string, v ...interface{}) {
			opts.Logger("mcp23008: "+format, v...)
		}
	}
	d.cache.initialize()
	if err := i2c.Ping(bus, addr); err != nil {
		return nil, fmt.Errorf("mcp23008: no device at %v: %w", addr, err)
	}
	if err := d.Configure(opts.SequentialOperation, opts.SlewRate, opts.Interrupt); err != nil {
		return nil, err
	}
	d.log("ready at %v, iocon=%#02x", addr, d.IOCon())
	return d, nil
}

// Configure rewrites the IOCON register from the typed option values.
func (d *Dev) Configure(seq SequentialOperationMode, slew SlewRateControl, intr InterruptMode) error {
	return d.WriteIOCon(byte(seq) | byte(slew) | byte(intr))
}

// Addr returns the device address.
func (d *Dev) Addr() i2c.Address { return d.addr }

// read issues a forced read of reg and refreshes the cache on success.
func (d *Dev) read(reg byte) (byte, error) {
	v, err := i2c.ReadRegister(d.bus, d.addr, reg)
	if err != nil {
		return 0, fmt.Errorf("mcp23008: cannot read register %#02x: %w", reg, err)
	}
	d.cache.set(reg, v)
	return v, nil
}

// write writes reg on the device and updates the cache only once the bus has confirmed
// the write.
func (d *Dev) write(reg, value byte) error {
	if err := i2c.WriteRegister(d.bus, d.addr, reg, value); err != nil {
		return fmt.Errorf("mcp23008: cannot write %#02x to register %#02x: %w", value, reg, err)
	}
	d.cache.set(reg, value)
	return nil
}

// Cached reads: last confirmed value, no bus transaction, cannot fail.

// IODir returns the cached I/O direction register.
func (d *Dev) IODir() byte { return d.cache.get(REG_IODIR) }

// IPol returns the cached input polarity register.
func (d *Dev) IPol() byte { return d.cache.get(REG_IPOL) }

// GPIntEn returns the cached interrupt-on-change enable register.
func (d *Dev) GPIntEn() byte { return d.cache.get(REG_GPINTEN) }

// DefVal returns the cached interrupt default compare register.
func (d *Dev) DefVal() byte { return d.cache.get(REG_DEFVAL) }

// IntCon returns the cached interrupt control register.
func (d *Dev) IntCon() byte { return d.cache.get(REG_INTCON) }

// IOCon returns the cached configuration register.
func (d *Dev) IOCon() byte { return d.cache.get(REG_IOCON) }

// GPPU returns the cached pull-up enable register.
func (d *Dev) GPPU() byte { return d.cache.get(REG_GPPU) }

// GPIO returns the cached port level register. The device drives this register, use
// ReadGPIO when external changes matter.
func (d *Dev) GPIO() byte { return d.cache.get(REG_GPIO) }

// OLat returns the cached output latch register.
func (d *Dev) OLat() byte { return d.cache.get(REG_OLAT) }

// Forced reads: one bus transaction, cache refreshed on success, cache untouched on
// failure.

// ReadIODir reads the I/O direction register from the device.
func (d *Dev) ReadIODir() (byte, error) { return d.read(REG_IODIR) }

// ReadIPol reads the input polarity register from the device.
func (d *Dev) ReadIPol() (byte, error) { return d.read(REG_IPOL) }

// ReadGPIntEn reads the interrupt-on-change enable register from the device.
func (d *Dev) ReadGPIntEn() (byte, error) { return d.read(REG_GPINTEN) }

// ReadDefVal reads the interrupt default compare register from the device.
func (d *Dev) ReadDefVal() (byte, error) { return d.read(REG_DEFVAL) }

// ReadIntCon reads the interrupt control register from the device.
func (d *Dev) ReadIntCon() (byte, error) { return d.read(REG_INTCON) }

// ReadIOCon reads the configuration register from the device.
func (d *Dev) ReadIOCon() (byte, error) { return d.read(REG_IOCON) }

// ReadGPPU reads the pull-up enable register from the device.
func (d *Dev) ReadGPPU() (byte, error) { return d.read(REG_GPPU) }

// ReadGPIO reads the port level register from the device. This is the only way to
// observe externally driven pin levels.
func (d *Dev) ReadGPIO() (byte, error) { return d.read(REG_GPIO) }

// ReadOLat reads the output latch register from the device.
func (d *Dev) ReadOLat() (byte, error) { return d.read(REG_OLAT) }

// ReadINTF reads the interrupt flag register. INTF is device status and is never cached.
func (d *Dev) ReadINTF() (byte, error) {
	v, err := i2c.ReadRegister(d.bus, d.addr, REG_INTF)
	if err != nil {
		return 0, fmt.Errorf("mcp23008: cannot read register %#02x: %w", byte(REG_INTF), err)
	}
	return v, nil
}

// ReadINTCAP reads the interrupt capture register, clearing a pending interrupt. INTCAP
// is device status and is never cached.
func (d *Dev) ReadINTCAP() (byte, error) {
	v, err := i2c.ReadRegister(d.bus, d.addr, REG_INTCAP)
	if err != nil {
		return 0, fmt.Errorf("mcp23008: cannot read register %#02x: %w", byte(REG_INTCAP), err)
	}
	return v, nil
}

// Writes: one bus transaction, cache updated on success, cache untouched on failure.

// WriteIODir writes the I/O direction register, 1=input.
func (d *Dev) WriteIODir(v byte) error { return d.write(REG_IODIR, v) }

// WriteIPol writes the input polarity register, 1=inverted.
func (d *Dev) WriteIPol(v byte) error { return d.write(REG_IPOL, v) }

// WriteGPIntEn writes the interrupt-on-change enable register.
func (d *Dev) WriteGPIntEn(v byte) error { return d.write(REG_GPINTEN, v) }

// WriteDefVal writes the interrupt default compare register.
func (d *Dev) WriteDefVal(v byte) error { return d.write(REG_DEFVAL, v) }

// WriteIntCon writes the interrupt control register.
func (d *Dev) WriteIntCon(v byte) error { return d.write(REG_INTCON, v) }

// WriteIOCon writes the configuration register, see the IOCON_* bits.
func (d *Dev) WriteIOCon(v byte) error { return d.write(REG_IOCON, v) }

// WriteGPPU writes the pull-up enable register, 1=pull-up on.
func (d *Dev) WriteGPPU(v byte) error { return d.write(REG_GPPU, v) }

// WriteGPIO writes the port level register. The device routes the write into the output
// latch, pins configured as outputs follow it.
func (d *Dev) WriteGPIO(v byte) error { return d.write(REG_GPIO, v) }

// WriteOLat writes the output latch register.
func (d *Dev) WriteOLat(v byte) error { return d.write(REG_OLAT, v) }

// Mask operations used by the pin drivers. Each performs one cached or forced read, one
// masked update, and at most one write; bits outside the mask are preserved.

// setBits performs a read-modify-write on reg setting the mask bits, using the cached
// register value.
func (d *Dev) setBits(reg, mask byte) error {
	return d.write(reg, d.cache.get(reg)|mask)
}

// clearBits performs a read-modify-write on reg clearing the mask bits, using the cached
// register value.
func (d *Dev) clearBits(reg, mask byte) error {
	return d.write(reg, d.cache.get(reg)&^mask)
}

// EnablePullUp enables the internal pull-up on the mask pins.
func (d *Dev) EnablePullUp(mask byte) error { return d.setBits(REG_GPPU, mask) }

// DisablePullUp disables the internal pull-up on the mask pins.
func (d *Dev) DisablePullUp(mask byte) error { return d.clearBits(REG_GPPU, mask) }

// EnableInterrupt enables interrupt-on-change for the mask pins.
func (d *Dev) EnableInterrupt(mask byte) error { return d.setBits(REG_GPINTEN, mask) }

// DisableInterrupt disables interrupt-on-change for the mask pins.
func (d *Dev) DisableInterrupt(mask byte) error { return d.clearBits(REG_GPINTEN, mask) }

// EnablePolarityInversion inverts the input polarity of the mask pins.
func (d *Dev) EnablePolarityInversion(mask byte) error { return d.setBits(REG_IPOL, mask) }

// DisablePolarityInversion restores the input polarity of the mask pins.
func (d *Dev) DisablePolarityInversion(mask byte) error { return d.clearBits(REG_IPOL, mask) }

// SetInterruptCompare selects, for the mask pins, whether interrupt-on-change compares
// against DefVal (compare=true) or against the previous pin value.
func (d *Dev) SetInterruptCompare(mask byte, compare bool) error {
	if compare {
		return d.setBits(REG_INTCON, mask)
	}
	return d.clearBits(REG_INTCON, mask)
}

// SetInterruptDefault sets the DefVal compare bits for the mask pins; an interrupt fires
// while a compared pin differs from its DefVal bit.
func (d *Dev) SetInterruptDefault(mask byte, high bool) error {
	if high {
		return d.setBits(REG_DEFVAL, mask)
	}
	return d.clearBits(REG_DEFVAL, mask)
}

// State performs a forced read of the port level register and returns it masked. A pin
// state driven from outside the chip is only visible through this forced form.
func (d *Dev) State(mask byte) (byte, error) {
	v, err := d.ReadGPIO()
	if err != nil {
		return 0, err
	}
	return v & mask, nil
}
