// github.com/tve/hal contains a hardware abstraction layer for microcontroller-style
// peripherals: pin capability contracts and active-low adapters in gpio, the I2C bus
// controller contract and device addressing in i2c, and a register-cached driver for the
// Microchip MCP23008 port expander in mcp23008. Adapters from the bus libraries people
// actually run on Linux boards (periph, embd) to the i2c contract live in this package.
// Simple commands to exercise the devices can be found in the cmd directory tree.
package hal
