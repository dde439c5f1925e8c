// Copyright 2018 by Thorsten von Eicken, see LICENSE file

package i2c

import "sync"

// SharedController serializes access to one underlying Controller so that several
// drivers, each owning their own SharedController handle, can live on the same physical
// bus without interleaving transactions.
//
// The lock is held from Start to Stop, i.e. a full transaction is the unit of exclusion.
// Within one driver the usual single-owner discipline still applies: a driver's
// read-modify-write sequence spans multiple transactions and is only consistent if no
// other handle touches the same device's registers in between.
type SharedController struct {
	mu *sync.Mutex
	c  Controller
}

// NewShared returns n independent handles sharing the controller c under one lock.
func NewShared(c Controller, n int) []*SharedController {
	mu := &sync.Mutex{}
	hs := make([]*SharedController, n)
	for i := range hs {
		hs[i] = &SharedController{mu: mu, c: c}
	}
	return hs
}

// Init initializes the underlying controller.
func (s *SharedController) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Init()
}

// Start acquires the bus and transmits a start condition. The bus is held until Stop.
func (s *SharedController) Start() error {
	s.mu.Lock()
	if err := s.c.Start(); err != nil {
		s.mu.Unlock()
		return err
	}
	return nil
}

// RepeatedStart transmits a repeated start condition.
func (s *SharedController) RepeatedStart() error { return s.c.RepeatedStart() }

// Stop transmits a stop condition and releases the bus.
func (s *SharedController) Stop() error {
	err := s.c.Stop()
	s.mu.Unlock()
	return err
}

// Address addresses a device for the given operation.
func (s *SharedController) Address(addr Address, op Operation) error { return s.c.Address(addr, op) }

// Read reads one byte from the addressed device, then transmits the response.
func (s *SharedController) Read(response Response) (byte, error) { return s.c.Read(response) }

// Write writes one byte to the addressed device.
func (s *SharedController) Write(data byte) error { return s.c.Write(data) }
