// Copyright 2018 by Thorsten von Eicken, see LICENSE file

package mcp23008

import "testing"

func TestCacheDefaults(t *testing.T) {
	var c registerCache
	c.initialize()
	for reg := byte(0); reg < numRegs; reg++ {
		want := byte(0)
		if reg == REG_IODIR {
			want = 0xFF // all pins inputs after power-on reset
		}
		if got := c.get(reg); got != want {
			t.Fatalf("register %#02x got %#02x expected %#02x", reg, got, want)
		}
	}
}

func TestCacheSetGet(t *testing.T) {
	var c registerCache
	c.initialize()
	c.set(REG_GPPU, 0xA5)
	if got := c.get(REG_GPPU); got != 0xA5 {
		t.Fatalf("got %#02x expected 0xa5", got)
	}
	if got := c.get(REG_IODIR); got != 0xFF {
		t.Fatalf("neighbors disturbed, IODIR got %#02x", got)
	}
	c.initialize()
	if got := c.get(REG_GPPU); got != 0 {
		t.Fatalf("initialize did not reset, got %#02x", got)
	}
}
