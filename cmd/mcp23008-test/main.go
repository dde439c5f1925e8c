// Copyright (c) 2018 by Thorsten von Eicken, see LICENSE file for details

// mcp23008-test exercises an MCP23008 port expander: it blinks a push-pull output pin
// and polls an internally pulled-up input pin, printing state changes.
package main

import (
	"flag"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/tve/hal"
	"github.com/tve/hal/gpio"
	"github.com/tve/hal/i2c"
	"github.com/tve/hal/mcp23008"
)

func panicIf(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	busName := flag.String("bus", "", "I2C bus name, empty selects the first available")
	addrNum := flag.Uint("addr", 0x20, "MCP23008 device address")
	outBit := flag.Uint("out", 0, "output pin number 0..7 to blink")
	inBit := flag.Uint("in", 1, "input pin number 0..7 to watch")
	blinks := flag.Int("blinks", 10, "number of blinks before exiting")
	debug := flag.Bool("debug", false, "enable debug output")
	flag.Parse()

	_, err := host.Init()
	panicIf(err)
	bus, err := i2creg.Open(*busName)
	panicIf(err)
	defer bus.Close()

	addr, err := i2c.NewAddress(uint8(*addrNum))
	panicIf(err)

	opts := mcp23008.Opts{SlewRate: mcp23008.SlewRateControlEnabled}
	if *debug {
		opts.Logger = log.Printf
	}
	dev, err := mcp23008.New(hal.NewPeriphController(bus), addr, opts)
	panicIf(err)
	log.Printf("MCP23008 ready at %v", addr)

	led := mcp23008.NewIOPin(dev, byte(1)<<*outBit)
	panicIf(led.Initialize(gpio.Low))
	defer led.Close()

	button := mcp23008.NewInputPin(dev, byte(1)<<*inBit)
	panicIf(button.Initialize(gpio.PullUpEnabled))
	defer button.Close()

	last := gpio.Low
	for i := 0; i < *blinks; i++ {
		panicIf(led.Toggle())
		s, err := button.State()
		panicIf(err)
		if s != last {
			log.Printf("input pin %d is now %v", *inBit, s)
			last = s
		}
		time.Sleep(250 * time.Millisecond)
	}

	// Observable teardown for the output pin, the deferred Close would swallow errors.
	panicIf(led.Release())
	log.Printf("Bye...")
}
