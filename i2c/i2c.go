// Copyright 2018 by Thorsten von Eicken, see LICENSE file

// The i2c package defines the bus controller contract consumed by the device drivers in
// this repository, the 7-bit device address type, and the register transaction helpers
// built on the controller primitives.
//
// The contract is deliberately at the bus primitive level (start, stop, address, byte
// read/write) rather than at the transaction level so that drivers control the exact
// shape of every transaction. Adapters from transaction-level bus handles (periph, embd)
// live in the repository's root package.
package i2c

import (
	"errors"
	"fmt"
)

// Errors reported by bus controllers and the code built on them. Controllers wrap these
// so callers can use errors.Is to distinguish the conditions.
var (
	// ErrInvalidAddress indicates a device address construction argument out of range.
	ErrInvalidAddress = errors.New("i2c: invalid device address")
	// ErrBus indicates a generic failure of a bus primitive.
	ErrBus = errors.New("i2c: bus error")
	// ErrNonresponsiveDevice indicates an addressed device did not acknowledge.
	ErrNonresponsiveDevice = errors.New("i2c: nonresponsive device")
	// ErrArbitrationLost indicates the controller lost a multi-controller arbitration.
	ErrArbitrationLost = errors.New("i2c: arbitration lost")
	// ErrUnsupportedOperation indicates the controller cannot perform the operation.
	ErrUnsupportedOperation = errors.New("i2c: unsupported operation")
)

// Address is a 7-bit I2C device address. The zero value is the general call address.
//
// The address is stored in transmitted form, i.e. shifted left by one with bit 0 clear;
// bit 0 carries the read/write operation flag on the wire. Comparing addresses with ==
// or < therefore compares the transmitted form.
type Address byte

// NewAddress returns the address for a numeric (unshifted, 0..0x7F) value. Values above
// 0x7F are rejected with ErrInvalidAddress.
func NewAddress(numeric uint8) (Address, error) {
	if numeric > 0x7F {
		return 0, fmt.Errorf("%w: numeric form %#x > 0x7f", ErrInvalidAddress, numeric)
	}
	return Address(numeric << 1), nil
}

// NewTransmittedAddress returns the address for a transmitted (shifted) byte. Bit 0 is
// reserved for the read/write operation flag, so odd values are rejected with
// ErrInvalidAddress.
func NewTransmittedAddress(transmitted uint8) (Address, error) {
	if transmitted&0x01 != 0 {
		return 0, fmt.Errorf("%w: transmitted form %#x has bit 0 set", ErrInvalidAddress, transmitted)
	}
	return Address(transmitted), nil
}

// Numeric returns the address in numeric form (0..0x7F).
func (a Address) Numeric() uint8 { return uint8(a) >> 1 }

// Transmitted returns the address in transmitted form with bit 0 clear.
func (a Address) Transmitted() uint8 { return uint8(a) }

// String returns the conventional numeric form, e.g. "0x20".
func (a Address) String() string { return fmt.Sprintf("0x%02x", a.Numeric()) }

// Operation is the operation flag transmitted in bit 0 of an address byte.
type Operation byte

const (
	// Write addresses the device for writing.
	Write Operation = 0
	// Read addresses the device for reading.
	Read Operation = 1
)

// Response is the acknowledgement sent by the controller after reading a byte.
type Response byte

const (
	// Ack acknowledges a read byte, more bytes will be read.
	Ack Response = 0
	// Nack does not acknowledge a read byte, ending the read.
	Nack Response = 1
)

// Controller is the bus controller contract. Every operation blocks until the bus
// activity completes or fails, there is no queuing. A Controller is not safe for
// concurrent use, see SharedController.
type Controller interface {
	// Init initializes the controller's hardware.
	Init() error
	// Start transmits a start condition.
	Start() error
	// RepeatedStart transmits a repeated start condition.
	RepeatedStart() error
	// Stop transmits a stop condition.
	Stop() error
	// Address addresses a device for the given operation. Returns
	// ErrNonresponsiveDevice if the device does not acknowledge and
	// ErrArbitrationLost if bus ownership is lost.
	Address(addr Address, op Operation) error
	// Read reads one byte from the addressed device, then transmits the response.
	Read(response Response) (byte, error)
	// Write writes one byte to the addressed device.
	Write(data byte) error
}

// ReadRegister reads the 8-bit register reg of the device at addr: start, address for
// write, register pointer, repeated start, address for read, one byte read with NACK,
// stop. On failure a best-effort stop is issued and the first error is returned.
func ReadRegister(c Controller, addr Address, reg byte) (byte, error) {
	if err := c.Start(); err != nil {
		return 0, err
	}
	v, err := func() (byte, error) {
		if err := c.Address(addr, Write); err != nil {
			return 0, err
		}
		if err := c.Write(reg); err != nil {
			return 0, err
		}
		if err := c.RepeatedStart(); err != nil {
			return 0, err
		}
		if err := c.Address(addr, Read); err != nil {
			return 0, err
		}
		return c.Read(Nack)
	}()
	if err != nil {
		c.Stop() // best effort, the original error is the interesting one
		return 0, err
	}
	if err := c.Stop(); err != nil {
		return 0, err
	}
	return v, nil
}

// WriteRegister writes value to the 8-bit register reg of the device at addr: start,
// address for write, register pointer, data byte, stop. On failure a best-effort stop is
// issued and the first error is returned.
func WriteRegister(c Controller, addr Address, reg, value byte) error {
	if err := c.Start(); err != nil {
		return err
	}
	err := func() error {
		if err := c.Address(addr, Write); err != nil {
			return err
		}
		if err := c.Write(reg); err != nil {
			return err
		}
		return c.Write(value)
	}()
	if err != nil {
		c.Stop()
		return err
	}
	return c.Stop()
}

// Ping addresses the device at addr for writing and stops, reporting whether the device
// acknowledges its address. Useful to probe for device presence before configuring it.
func Ping(c Controller, addr Address) error {
	if err := c.Start(); err != nil {
		return err
	}
	if err := c.Address(addr, Write); err != nil {
		c.Stop()
		return err
	}
	return c.Stop()
}
