// Package is31fl3741 controls an IS31FL3741 RGB LED matrix controller via I2C.
//
// The IS31FL3741 is a 39×9 matrix driver: 351 constant-current channels with
// 8-bit PWM each, enough for 117 RGB pixels. This driver implements the
// display.Drawer interface from periph.io.
//
// # Chip Characteristics
//
// - 351 PWM channels (39 current sinks × 9 switch rows), 8 bits per channel
// - Per-channel current scaling registers, preloaded during initialization
// - Global current control register for master brightness
// - Paged register file: two PWM pages, two scaling pages, one function page
// - I2C interface with four strap-selectable addresses (0x30..0x33)
// - Hardware shutdown pin (SDB)
//
// # Hardware Connection
//
// Connect the IS31FL3741 to your system via I2C:
//
//	Chip     System
//	GND      GND
//	VCC      3.3V or 5V
//	SCL      I2C clock
//	SDA      I2C data
//	SDB      GPIO (shutdown, any available pin)
//	ADDR     GND/VCC/SCL/SDA (selects 0x30/0x31/0x32/0x33)
//
// # Basic Usage
//
// Example of creating and driving the device:
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/devices/v3/is31fl3741"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open the I2C bus
//		bus, _ := i2creg.Open("")
//
//		// Get the shutdown GPIO pin
//		sdb := gpioreg.ByName("GPIO22")
//
//		// Create the device
//		dev, _ := is31fl3741.NewI2C(bus, sdb, &is31fl3741.Opts{
//			Addr:  0x30,
//			Gamma: is31fl3741.GammaRamp(2.2),
//		})
//		defer dev.Halt()
//
//		// Light the first pixel white, the second red
//		dev.UpdateRGB([]is31fl3741.RGB{
//			{R: 255, G: 255, B: 255},
//			{R: 255},
//		})
//	}
//
// # Wiring Maps
//
// Boards rarely wire LEDs to consecutive channels. The wiring map in
// Opts.Map lists, per logical pixel, the channel offsets of its red, green
// and blue anodes; the ledmap package builds such maps from datasheet
// (switch row, current sink) coordinates:
//
//	m := ledmap.RGB(2, 3, 2, 1)              // pixel 0 on SW2, CS3/CS2/CS1
//	m = append(m, ledmap.RGB(2, 6, 5, 4)...) // pixel 1
//
//	dev, _ := is31fl3741.NewI2C(bus, sdb, &is31fl3741.Opts{Map: m})
//
// With a nil map every channel is addressable as 117 consecutive pixels.
//
// # Brightness Control
//
// Three mechanisms stack:
//
// - Per-pixel 8-bit PWM values, set by UpdateRGB/Draw/Write through the
// gamma table (GammaRamp builds power-law tables).
// - Per-channel current scaling, fixed at initialization via Opts.ScaleRed,
// ScaleGreen and ScaleBlue.
// - The global current control register, set at initialization from
// Opts.GlobalCurrent and adjustable at runtime with SetGlobalCurrent. The
// GlobalCurrent function derives the register value from the board's R_ISO
// resistor and the wanted peak LED current.
//
// # Raw Channel Access
//
// UpdateChannels bypasses the map and gamma table and writes PWM bytes in
// chip-native channel order, for callers that precompute frames. A full
// frame costs two page selects and one burst per touched PWM page; frames
// up to 180 channels fit a single page and cost one select and one burst.
//
// # Concurrency
//
// Dev methods are synchronous and blocking and must be serialized by the
// caller; the driver holds no internal locks. Bus-level sharing between
// devices is handled by periph.io's bus implementations.
//
// # Errors
//
// Updates that do not fit the chip's channel space fail with ErrTooLarge
// before any bus traffic. An I2C failure mid-update can leave the chip
// showing a partially written frame; the channel image is consistent again
// after the next successful full update.
//
// # Datasheet
//
// https://www.lumissil.com/assets/pdf/core/IS31FL3741_DS.pdf
//
// # Compatibility with periph.io
//
// This driver implements the display.Drawer interface from periph.io:
// https://pkg.go.dev/periph.io/x/conn/v3/display
//
// The matrix is exposed as a one-pixel-high image in wiring map order, the
// usual shape for addressable LED chains.
package is31fl3741
