// Copyright 2018 by Thorsten von Eicken, see LICENSE file

package hal

// stuff in here adapts transaction-level bus handles (periph, embd) to the primitive
// start/stop/address controller contract the drivers consume...

import (
	"fmt"

	"github.com/kidoman/embd"
	periphi2c "periph.io/x/conn/v3/i2c"

	"github.com/tve/hal/i2c"
)

// txBus is the transaction shape both periph and embd can execute: an optional write
// followed by an optional read, as one bus transaction.
type txBus interface {
	tx(addr uint8, w []byte, r int) ([]byte, error)
}

// txnController implements i2c.Controller on top of a txBus by buffering the primitive
// calls of a transaction and executing them in one piece.
//
// Writes are accumulated from Start to Stop and flushed as a single write transaction.
// A Read executes the pending write plus a one-byte read as a combined transaction,
// which is exactly the register-pointer-then-read shape the drivers issue. Multi-byte
// reads are not supported: the underlying handles need the full read length up front,
// which the primitive contract cannot provide, so a second Read in one transaction
// reports i2c.ErrUnsupportedOperation.
type txnController struct {
	bus       txBus
	started   bool
	addressed bool
	addr      i2c.Address
	op        i2c.Operation
	wbuf      []byte
	didRead   bool
}

func (c *txnController) Init() error { return nil }

func (c *txnController) Start() error {
	if c.started {
		return fmt.Errorf("%w: start within transaction", i2c.ErrBus)
	}
	c.started = true
	c.addressed = false
	c.wbuf = nil
	c.didRead = false
	return nil
}

// RepeatedStart only marks a transaction boundary here, the underlying handle glues the
// write and read halves together itself.
func (c *txnController) RepeatedStart() error {
	if !c.started {
		return fmt.Errorf("%w: repeated start without start", i2c.ErrBus)
	}
	return nil
}

func (c *txnController) Stop() error {
	if !c.started {
		return fmt.Errorf("%w: stop without start", i2c.ErrBus)
	}
	c.started = false
	// Flush a pending write transaction. An addressed-for-write transaction with no
	// data bytes is still flushed as a zero-length write so that i2c.Ping probes the
	// device address.
	if c.addressed && c.op == i2c.Write && !c.didRead {
		w := c.wbuf
		c.wbuf = nil
		if _, err := c.bus.tx(c.addr.Numeric(), w, 0); err != nil {
			return fmt.Errorf("%w: %v", i2c.ErrBus, err)
		}
	}
	return nil
}

func (c *txnController) Address(addr i2c.Address, op i2c.Operation) error {
	if !c.started {
		return fmt.Errorf("%w: address without start", i2c.ErrBus)
	}
	c.addressed = true
	c.addr = addr
	c.op = op
	return nil
}

func (c *txnController) Write(data byte) error {
	if !c.started || c.op != i2c.Write {
		return fmt.Errorf("%w: write outside write transaction", i2c.ErrBus)
	}
	c.wbuf = append(c.wbuf, data)
	return nil
}

func (c *txnController) Read(response i2c.Response) (byte, error) {
	if !c.started || c.op != i2c.Read {
		return 0, fmt.Errorf("%w: read outside read transaction", i2c.ErrBus)
	}
	if c.didRead {
		return 0, fmt.Errorf("%w: multi-byte reads", i2c.ErrUnsupportedOperation)
	}
	c.didRead = true
	w := c.wbuf
	c.wbuf = nil
	r, err := c.bus.tx(c.addr.Numeric(), w, 1)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", i2c.ErrBus, err)
	}
	return r[0], nil
}

//===== periph.io shim

type periphBus struct {
	bus periphi2c.Bus
}

func (b periphBus) tx(addr uint8, w []byte, r int) ([]byte, error) {
	var rbuf []byte
	if r > 0 {
		rbuf = make([]byte, r)
	}
	if err := b.bus.Tx(uint16(addr), w, rbuf); err != nil {
		return nil, err
	}
	return rbuf, nil
}

// NewPeriphController returns an i2c.Controller backed by a periph.io I2C bus, e.g. one
// obtained from i2creg.Open.
func NewPeriphController(bus periphi2c.Bus) i2c.Controller {
	return &txnController{bus: periphBus{bus}}
}

//===== embd shim

type embdBus struct {
	bus embd.I2CBus
}

func (b embdBus) tx(addr uint8, w []byte, r int) ([]byte, error) {
	switch {
	case r == 0:
		return nil, b.bus.WriteBytes(addr, w)
	case len(w) == 1 && r == 1:
		// register pointer followed by a single read, embd spells this ReadByteFromReg
		v, err := b.bus.ReadByteFromReg(addr, w[0])
		if err != nil {
			return nil, err
		}
		return []byte{v}, nil
	case len(w) == 0:
		return b.bus.ReadBytes(addr, r)
	default:
		return nil, fmt.Errorf("%w: embd cannot combine %d written bytes with a read",
			i2c.ErrUnsupportedOperation, len(w))
	}
}

// NewEmbdController returns an i2c.Controller backed by an embd I2C bus, e.g. one
// obtained from embd.NewI2CBus.
func NewEmbdController(bus embd.I2CBus) i2c.Controller {
	return &txnController{bus: embdBus{bus}}
}
