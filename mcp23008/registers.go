// Copyright 2018 by Thorsten von Eicken, see LICENSE file

package mcp23008

// Register addresses, IOCON=BANK does not exist on the MCP23008 so the map is flat.
const (
	REG_IODIR   = 0x00 // I/O direction, 1=input
	REG_IPOL    = 0x01 // input polarity inversion
	REG_GPINTEN = 0x02 // interrupt-on-change enable
	REG_DEFVAL  = 0x03 // default compare value for interrupt-on-change
	REG_INTCON  = 0x04 // interrupt control, 1=compare against DEFVAL
	REG_IOCON   = 0x05 // device configuration
	REG_GPPU    = 0x06 // pull-up enable, 1=100k pull-up
	REG_INTF    = 0x07 // interrupt flags, read-only
	REG_INTCAP  = 0x08 // port capture at interrupt time, read-only
	REG_GPIO    = 0x09 // port level, writes land in OLAT
	REG_OLAT    = 0x0A // output latch

	numRegs = 0x0B

	// IOCON bits.
	IOCON_SEQOP  = 1 << 5 // 1 disables sequential operation
	IOCON_DISSLW = 1 << 4 // 1 disables SDA slew rate control
	IOCON_ODR    = 1 << 2 // 1 makes the INT output open-drain
	IOCON_INTPOL = 1 << 1 // INT polarity when push-pull, 1=active-high

	// The device responds to addresses 0b0100_A2A1A0.
	AddrMin = 0x20
	AddrMax = 0x27
)

// porDefaults are the register values after power-on reset: all pins inputs, no polarity
// inversion, interrupts disabled, pull-ups disabled, outputs latched low.
var porDefaults = [numRegs]byte{REG_IODIR: 0xFF}

// SequentialOperationMode configures whether the address pointer auto-increments.
type SequentialOperationMode byte

const (
	SequentialOperationEnabled  SequentialOperationMode = 0
	SequentialOperationDisabled SequentialOperationMode = IOCON_SEQOP
)

// SlewRateControl configures the SDA output slew rate limiter.
type SlewRateControl byte

const (
	SlewRateControlEnabled  SlewRateControl = 0
	SlewRateControlDisabled SlewRateControl = IOCON_DISSLW
)

// InterruptMode configures the INT output driver.
type InterruptMode byte

const (
	InterruptPushPullActiveLow  InterruptMode = 0
	InterruptPushPullActiveHigh InterruptMode = IOCON_INTPOL
	InterruptOpenDrain          InterruptMode = IOCON_ODR
)
