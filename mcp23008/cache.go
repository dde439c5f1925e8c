// Copyright 2018 by Thorsten von Eicken, see LICENSE file

package mcp23008

// registerCache is the in-memory mirror of the device's register file, the single source
// of truth for the last confirmed hardware state. It is mutated only by Dev, and only
// after a bus transaction has confirmed the value: a failed write never lands here, so
// after any error the cache still equals the last known good device state.
//
// INTF and INTCAP are device status registers and are never cached, their slots stay 0.
type registerCache struct {
	regs [numRegs]byte
}

// initialize resets every register to its power-on-reset default.
func (c *registerCache) initialize() {
	c.regs = porDefaults
}

// get returns the last cached value of reg without touching the bus.
func (c *registerCache) get(reg byte) byte {
	return c.regs[reg]
}

// set overwrites the cached value of reg. Called only after a confirmed write or by a
// forced read.
func (c *registerCache) set(reg, value byte) {
	c.regs[reg] = value
}
