// Package ledmap builds wiring maps for the IS31FL3741 matrix controller.
//
// The IS31FL3741 drives a 39×9 LED matrix: 39 current sinks (CS1..CS39) by 9
// switch rows (SW1..SW9), one PWM byte per crossing, 351 channels in total.
// A wiring map translates logical RGB pixels into those channel offsets as
// consecutive (red, green, blue) triples, encoding how a board routes its
// LEDs.
//
// Channel offsets follow the chip's register file layout rather than plain
// row-major order:
//
//	SW1..SW9 × CS1..CS30  →  offsets 0..269   (30 sinks per row)
//	SW1..SW9 × CS31..CS39 →  offsets 270..350 (9 sinks per row)
//
// Example: a board wires pixel 0 to switch row 2 with red on CS3, green on
// CS2 and blue on CS1, and pixel 1 next to it:
//
//	m := ledmap.RGB(2, 3, 2, 1)
//	m = append(m, ledmap.RGB(2, 6, 5, 4)...)
//
// Boards that simply use consecutive channels can take the identity map:
//
//	m := ledmap.Identity(117) // pixel 0 on channels 0,1,2 and so on
//
// Maps are static configuration: build them once at startup and hand them to
// the driver, which validates the shape and never mutates them.
package ledmap
