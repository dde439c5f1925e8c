// Copyright 2018 by Thorsten von Eicken, see LICENSE file

// The i2ctest package provides a bus controller backed by an in-memory register file for
// driver tests. It interprets the standard register transaction shapes (register pointer
// write followed by data bytes, or by a repeated start and reads) and keeps a log of
// completed transactions so tests can assert on exact bus traffic.
package i2ctest

import (
	"fmt"

	"github.com/tve/hal/i2c"
)

// Controller is a fake i2c.Controller. The zero value is ready for use.
//
// Regs is the simulated device register file, indexed by register address. Every device
// on the bus shares it, which is fine for single-device tests. Writes move the register
// pointer the way a real device with sequential operation mode enabled would.
type Controller struct {
	Regs [256]byte // simulated registers
	Ops  []string  // log of primitive operations, e.g. "start", "write 0x06"
	Txns []Txn     // completed transactions

	// FailOn, if non-empty, makes the named primitive ("start", "repeated-start",
	// "stop", "address", "read", "write") fail with Err once, then clears itself.
	FailOn string
	// Err is the error injected by FailOn; defaults to i2c.ErrBus.
	Err error

	started bool
	addr    i2c.Address
	op      i2c.Operation
	havePtr bool
	ptr     byte
	nWrites int
	cur     Txn
}

// Txn is one completed start..stop transaction.
type Txn struct {
	Addr   i2c.Address
	Reg    byte // register pointer, valid if PtrSet
	PtrSet bool
	W      []byte // data bytes written after the register pointer
	R      []byte // data bytes read
}

func (c *Controller) logOp(s string) { c.Ops = append(c.Ops, s) }

func (c *Controller) fail(prim string) error {
	if c.FailOn != prim {
		return nil
	}
	c.FailOn = ""
	if c.Err != nil {
		return c.Err
	}
	return fmt.Errorf("%w: injected %s failure", i2c.ErrBus, prim)
}

// Init implements i2c.Controller.
func (c *Controller) Init() error { return nil }

// Start implements i2c.Controller.
func (c *Controller) Start() error {
	c.logOp("start")
	if err := c.fail("start"); err != nil {
		return err
	}
	c.started = true
	c.havePtr = false
	c.nWrites = 0
	c.cur = Txn{}
	return nil
}

// RepeatedStart implements i2c.Controller.
func (c *Controller) RepeatedStart() error {
	c.logOp("repeated-start")
	if err := c.fail("repeated-start"); err != nil {
		return err
	}
	if !c.started {
		return fmt.Errorf("%w: repeated start without start", i2c.ErrBus)
	}
	return nil
}

// Stop implements i2c.Controller.
func (c *Controller) Stop() error {
	c.logOp("stop")
	if err := c.fail("stop"); err != nil {
		return err
	}
	if c.started {
		c.Txns = append(c.Txns, c.cur)
	}
	c.started = false
	return nil
}

// Address implements i2c.Controller.
func (c *Controller) Address(addr i2c.Address, op i2c.Operation) error {
	c.logOp(fmt.Sprintf("address %v %d", addr, op))
	if err := c.fail("address"); err != nil {
		return err
	}
	if !c.started {
		return fmt.Errorf("%w: address without start", i2c.ErrBus)
	}
	c.addr = addr
	c.op = op
	c.cur.Addr = addr
	c.nWrites = 0
	return nil
}

// Write implements i2c.Controller. The first byte written after addressing for write is
// latched as the register pointer, subsequent bytes are stored in Regs, auto-incrementing
// the pointer.
func (c *Controller) Write(data byte) error {
	c.logOp(fmt.Sprintf("write 0x%02x", data))
	if err := c.fail("write"); err != nil {
		return err
	}
	if !c.started || c.op != i2c.Write {
		return fmt.Errorf("%w: write outside write transaction", i2c.ErrBus)
	}
	if c.nWrites == 0 && !c.havePtr {
		c.ptr = data
		c.havePtr = true
		c.cur.Reg = data
		c.cur.PtrSet = true
	} else {
		c.Regs[c.ptr] = data
		c.cur.W = append(c.cur.W, data)
		c.ptr++
	}
	c.nWrites++
	return nil
}

// Read implements i2c.Controller, returning the register at the current pointer and
// auto-incrementing it.
func (c *Controller) Read(response i2c.Response) (byte, error) {
	c.logOp(fmt.Sprintf("read %d", response))
	if err := c.fail("read"); err != nil {
		return 0, err
	}
	if !c.started || c.op != i2c.Read {
		return 0, fmt.Errorf("%w: read outside read transaction", i2c.ErrBus)
	}
	v := c.Regs[c.ptr]
	c.cur.R = append(c.cur.R, v)
	c.ptr++
	return v, nil
}
