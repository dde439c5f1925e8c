// Copyright (c) 2018 by Thorsten von Eicken, see LICENSE file for details

// mqttpins is a small gateway between an MQTT broker and the pins of an MCP23008 port
// expander. Output pins are driven by messages on <prefix>/out/<pin>/set with payload
// "high", "low" or "toggle"; input pin state changes are published as JSON on
// <prefix>/in/<pin>.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all"

	"github.com/tve/hal"
	"github.com/tve/hal/gpio"
	"github.com/tve/hal/i2c"
	"github.com/tve/hal/mcp23008"
)

type LogPrintf func(format string, v ...interface{})

// pinEvent is the JSON payload published for an input pin state change.
type pinEvent struct {
	Pin   uint   `json:"pin"`
	State string `json:"state"`
	At    int64  `json:"at"` // unix milliseconds
}

// gateway couples the expander pins to the broker connection.
type gateway struct {
	conn    mqtt.Client
	prefix  string
	mu      sync.Mutex // a Dev is single-owner, serialize paho callbacks vs the poll loop
	outputs map[uint]*mcp23008.IOPin
	inputs  map[uint]*mcp23008.InputPin
	last    map[uint]gpio.PinState
	debug   LogPrintf
}

// newMQ connects to the broker. The connection is persistent, i.e. re-establishes itself
// if there is a disconnect, and subscriptions get renewed after a reconnect.
func newMQ(broker, user, pass string, debug LogPrintf) (mqtt.Client, error) {
	hostname, _ := os.Hostname()
	id := "mqttpins-" + hostname
	debug("Configuring MQTT with client id %s", id)
	mqtt.ERROR = log.New(os.Stderr, "", 0)
	opts := mqtt.NewClientOptions().AddBroker("tcp://" + broker)
	opts.ClientID = id
	opts.Username = user
	opts.Password = pass
	opts.AutoReconnect = true

	conn := mqtt.NewClient(opts)
	if token := conn.Connect(); !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	} else if token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("MQTT connected to %s", broker)
	return conn, nil
}

// subscribe registers the command topic for every output pin.
func (gw *gateway) subscribe() error {
	topic := gw.prefix + "/out/+/set"
	token := gw.conn.Subscribe(topic, 1, gw.handleSet)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt subscribe timeout for %s", topic)
	}
	return token.Error()
}

// handleSet drives an output pin in response to a command message.
func (gw *gateway) handleSet(_ mqtt.Client, msg mqtt.Message) {
	parts := strings.Split(msg.Topic(), "/")
	if len(parts) < 2 {
		return
	}
	var pin uint
	if _, err := fmt.Sscanf(parts[len(parts)-2], "%d", &pin); err != nil {
		log.Printf("Bad pin in topic %s", msg.Topic())
		return
	}
	p, ok := gw.outputs[pin]
	if !ok {
		log.Printf("Pin %d is not configured as output", pin)
		return
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	var err error
	switch cmd := strings.ToLower(strings.TrimSpace(string(msg.Payload()))); cmd {
	case "high", "1", "on":
		err = p.TransitionToHigh()
	case "low", "0", "off":
		err = p.TransitionToLow()
	case "toggle":
		err = p.Toggle()
	default:
		log.Printf("Bad command %q for pin %d", cmd, pin)
		return
	}
	if err != nil {
		log.Printf("Pin %d: %s", pin, err)
		return
	}
	gw.debug("out/%d <- %s", pin, msg.Payload())
}

// poll reads every input pin and publishes changes.
func (gw *gateway) poll() {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	for n, p := range gw.inputs {
		s, err := p.State()
		if err != nil {
			log.Printf("Pin %d: %s", n, err)
			continue
		}
		if prev, ok := gw.last[n]; ok && prev == s {
			continue
		}
		gw.last[n] = s
		ev := pinEvent{Pin: n, State: s.String(), At: time.Now().UnixMilli()}
		payload, _ := json.Marshal(ev)
		topic := fmt.Sprintf("%s/in/%d", gw.prefix, n)
		gw.conn.Publish(topic, 1, true, payload)
		gw.debug("%s -> %s", topic, payload)
	}
}

func main() {
	mqttHost := flag.String("mqtt", "localhost:1883", "host:port of MQTT broker")
	user := flag.String("user", "", "MQTT username")
	pass := flag.String("pass", "", "MQTT password")
	prefix := flag.String("prefix", "pins", "MQTT topic prefix")
	busNum := flag.Int("bus", 1, "I2C bus number")
	addrNum := flag.Uint("addr", 0x20, "MCP23008 device address")
	outMask := flag.Uint("outputs", 0x0F, "bit mask of push-pull output pins")
	inMask := flag.Uint("inputs", 0xF0, "bit mask of pulled-up input pins")
	period := flag.Duration("period", 100*time.Millisecond, "input poll period")
	debug := flag.Bool("debug", false, "enable debug output")
	flag.Parse()

	logger := LogPrintf(func(format string, v ...interface{}) {})
	if *debug {
		logger = log.Printf
	}
	if *outMask&*inMask != 0 {
		log.Fatalf("Pin masks overlap: outputs=%#02x inputs=%#02x", *outMask, *inMask)
	}

	bus := embd.NewI2CBus(byte(*busNum))
	defer bus.Close()
	addr, err := i2c.NewAddress(uint8(*addrNum))
	if err != nil {
		log.Fatal(err)
	}
	opts := mcp23008.Opts{}
	if *debug {
		opts.Logger = log.Printf
	}
	dev, err := mcp23008.New(hal.NewEmbdController(bus), addr, opts)
	if err != nil {
		log.Fatal(err)
	}

	gw := &gateway{
		prefix:  *prefix,
		outputs: map[uint]*mcp23008.IOPin{},
		inputs:  map[uint]*mcp23008.InputPin{},
		last:    map[uint]gpio.PinState{},
		debug:   logger,
	}
	for n := uint(0); n < 8; n++ {
		switch {
		case *outMask&(1<<n) != 0:
			p := mcp23008.NewIOPin(dev, byte(1)<<n)
			if err := p.Initialize(gpio.Low); err != nil {
				log.Fatal(err)
			}
			defer p.Close()
			gw.outputs[n] = p
		case *inMask&(1<<n) != 0:
			p := mcp23008.NewInputPin(dev, byte(1)<<n)
			if err := p.Initialize(gpio.PullUpEnabled); err != nil {
				log.Fatal(err)
			}
			defer p.Close()
			gw.inputs[n] = p
		}
	}

	gw.conn, err = newMQ(*mqttHost, *user, *pass, logger)
	if err != nil {
		log.Fatal(err)
	}
	if err := gw.subscribe(); err != nil {
		log.Fatal(err)
	}

	log.Printf("Gateway ready, %d outputs, %d inputs", len(gw.outputs), len(gw.inputs))
	for range time.Tick(*period) {
		gw.poll()
	}
}
