// Package is31fl3741 controls an IS31FL3741 RGB LED matrix controller via I2C.
//
// The IS31FL3741 drives up to 351 LED channels as a 39×9 matrix with 8-bit
// PWM per channel, per-channel current scaling and a paged register file.
//
// See the examples for how to use this package.
package is31fl3741

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/is31fl3741/ledmap"
)

const (
	// NumChannels is the size of the chip's PWM register file: 39 current
	// sinks by 9 switch rows, one byte per channel.
	NumChannels = 39 * 9

	// MaxPixels is the number of RGB pixels a full wiring map can address.
	MaxPixels = NumChannels / 3
)

// defaultAddr is the I2C address with the ADDR pin tied to GND. Strapping
// ADDR selects 0x30 to 0x33.
const defaultAddr = 0x30

// The command registers live outside the paged address space and control
// which page the following transactions hit.
const (
	regPage     = 0xFD // page select
	regPageLock = 0xFE // page select write lock
	pageUnlock  = 0xC5 // unlocks regPage for one write
)

// page is one of the chip's banked register address spaces. The chip itself
// remembers the selected page across writes; the driver never mirrors that
// state and re-selects before every dependent transfer.
type page byte

const (
	pagePWMA     page = 0x00 // PWM, channels 0..179
	pagePWMB     page = 0x01 // PWM, channels 180..350
	pageScalingA page = 0x02 // current scaling, channels 0..179
	pageScalingB page = 0x03 // current scaling, channels 180..350
	pageFunction page = 0x04 // configuration and control
)

// pageBreak is the number of channels held by the first page of a banked
// pair; longer transfers continue on the second page, which is addressed
// from zero again.
const pageBreak = 0xB4

// Function page registers.
const (
	regConfiguration = 0x00
	regGlobalCurrent = 0x01
	regReset         = 0x3F

	resetValue = 0xAE // writing this to regReset restores power-on state

	cfgNormalOperation = 0x01   // leave software shutdown
	cfgLogicHigh       = 1 << 3 // SWx/CSy logic level for supplies above 3.3V
)

// ErrTooLarge is returned when an update does not fit the chip's channel
// space. Nothing is written to the bus for such updates.
var ErrTooLarge = errors.New("is31fl3741: update larger than the channel buffer")

// RGB is the color of one logical pixel. Values are linear intensities; the
// driver routes them through its gamma table when writing PWM registers.
type RGB struct {
	R, G, B uint8
}

// Opts is the configuration for the IS31FL3741.
type Opts struct {
	// Addr is the chip's I2C address, 0x30 to 0x33 depending on the ADDR
	// pin strapping. Zero selects the default 0x30.
	Addr uint16

	// SWSetting narrows how many switch rows the chip scans. The value
	// lands in the upper nibble of the configuration register; zero scans
	// all nine rows.
	SWSetting byte

	// GlobalCurrent is the initial global current control value. Zero
	// selects 0xFF (maximum). See the GlobalCurrent function to derive a
	// value from the board's current-setting resistor.
	GlobalCurrent byte

	// ScaleRed, ScaleGreen and ScaleBlue are the per-color current scaling
	// bytes preloaded for every mapped pixel during initialization. Zero
	// selects 0xFF.
	ScaleRed   byte
	ScaleGreen byte
	ScaleBlue  byte

	// Map translates logical pixels into channel offsets as consecutive
	// (red, green, blue) triples, encoding the board's LED wiring. Nil
	// selects ledmap.Identity(MaxPixels).
	Map []uint16

	// Gamma is a 256-entry brightness lookup applied to every pixel value.
	// Nil selects a linear table. See GammaRamp.
	Gamma []byte
}

// Dev is a handle to an initialized IS31FL3741.
type Dev struct {
	// Communication
	c   i2c.Dev
	sdb gpio.PinOut

	// Static configuration
	rgbMap []uint16
	gamma  []byte
	pixels int

	// Buffers
	buf   [NumChannels]byte   // channel image in chip-native order
	tx    [pageBreak + 1]byte // bus scratch: start register plus one page
	frame []RGB               // pixel image backing Draw and Write

	// State
	halted bool
}

// NewI2C returns a Dev driving an IS31FL3741 on the given bus, with the chip
// taken out of shutdown, reset and fully configured.
//
// sdb is the chip's shutdown pin; it is driven high to enable the chip.
// opts can be nil to use defaults (address 0x30, every channel mapped,
// linear gamma, maximum current and scaling).
//
// Initialization is fail-fast: the first transport error aborts and is
// returned, leaving the chip in an undefined state.
func NewI2C(bus i2c.Bus, sdb gpio.PinOut, opts *Opts) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("is31fl3741: no bus provided")
	}
	if sdb == nil {
		return nil, errors.New("is31fl3741: no shutdown pin provided")
	}
	if opts == nil {
		opts = &Opts{}
	}

	addr := opts.Addr
	if addr == 0 {
		addr = defaultAddr
	}
	m := opts.Map
	if m == nil {
		m = ledmap.Identity(MaxPixels)
	}
	if err := ledmap.Validate(m); err != nil {
		return nil, fmt.Errorf("is31fl3741: invalid map: %w", err)
	}
	g := opts.Gamma
	if g == nil {
		g = linearGamma
	}
	if len(g) != 256 {
		return nil, errors.New("is31fl3741: gamma table must have 256 entries")
	}

	d := &Dev{
		c:      i2c.Dev{Bus: bus, Addr: addr},
		sdb:    sdb,
		rgbMap: append([]uint16(nil), m...),
		gamma:  append([]byte(nil), g...),
		pixels: len(m) / 3,
	}
	d.frame = make([]RGB, d.pixels)

	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// init drives the power-up sequence: enable, reset, mode and current
// configuration, scaling preload.
func (d *Dev) init(opts *Opts) error {
	gcc := opts.GlobalCurrent
	if gcc == 0 {
		gcc = 0xFF
	}
	sr, sg, sb := opts.ScaleRed, opts.ScaleGreen, opts.ScaleBlue
	if sr == 0 {
		sr = 0xFF
	}
	if sg == 0 {
		sg = 0xFF
	}
	if sb == 0 {
		sb = 0xFF
	}

	// Take the chip out of hardware shutdown.
	if err := d.sdb.Out(gpio.High); err != nil {
		return fmt.Errorf("is31fl3741: failed to drive SDB high: %w", err)
	}

	// Software reset. Reset clears the chip's page select state along with
	// everything else, so the function page must be selected again before
	// writing configuration.
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}
	if err := d.writeRegister(regReset, resetValue); err != nil {
		return err
	}
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}

	cfg := opts.SWSetting<<4 | cfgLogicHigh | cfgNormalOperation
	if err := d.writeRegister(regConfiguration, cfg); err != nil {
		return err
	}
	if err := d.writeRegister(regGlobalCurrent, gcc); err != nil {
		return err
	}

	// The scaling registers mirror the PWM channel offsets on their own
	// pages. Seed the working buffer with the scaling bytes, push it through
	// the scaling pages, then clear it for PWM use.
	for i := 0; i+2 < len(d.rgbMap); i += 3 {
		d.buf[d.rgbMap[i]] = sr
		d.buf[d.rgbMap[i+1]] = sg
		d.buf[d.rgbMap[i+2]] = sb
	}
	if err := d.transfer(pageScalingA, pageScalingB, d.buf[:]); err != nil {
		return err
	}
	clear(d.buf[:])
	return nil
}

// selectPage unlocks and rewrites the chip's page select register. A failed
// unlock aborts without attempting the select.
func (d *Dev) selectPage(p page) error {
	if err := d.writeRegister(regPageLock, pageUnlock); err != nil {
		return err
	}
	return d.writeRegister(regPage, byte(p))
}

// writeRegister writes a single register on the currently selected page, or
// a command register.
func (d *Dev) writeRegister(reg, value byte) error {
	if err := d.c.Tx([]byte{reg, value}, nil); err != nil {
		return wrap(err)
	}
	return nil
}

// burstWrite writes a contiguous register range starting at start. The bus
// transaction is atomic-or-failed; partial transfers surface as errors.
func (d *Dev) burstWrite(start byte, data []byte) error {
	d.tx[0] = start
	n := copy(d.tx[1:], data)
	if err := d.c.Tx(d.tx[:1+n], nil); err != nil {
		return wrap(err)
	}
	return nil
}

// transfer writes channels across a banked page pair, splitting at the page
// break. The second page's device address restarts at zero. A failure on
// the first page aborts before any second page traffic.
func (d *Dev) transfer(a, b page, channels []byte) error {
	if err := d.selectPage(a); err != nil {
		return err
	}
	n := len(channels)
	if n > pageBreak {
		n = pageBreak
	}
	if err := d.burstWrite(0, channels[:n]); err != nil {
		return err
	}
	if len(channels) <= pageBreak {
		return nil
	}
	if err := d.selectPage(b); err != nil {
		return err
	}
	return d.burstWrite(0, channels[pageBreak:])
}

// UpdateRGB maps pixels through the gamma table and wiring map into the
// channel buffer and pushes the whole buffer to the PWM pages.
//
// Pixel i consumes map triple i: positions not referenced by the first
// len(pixels) triples keep their previous bytes and are sent again as-is.
// More pixels than the map describes fail with ErrTooLarge before any bus
// traffic.
func (d *Dev) UpdateRGB(pixels []RGB) error {
	if d.halted {
		return errors.New("is31fl3741: halted")
	}
	if len(pixels) > d.pixels {
		return ErrTooLarge
	}
	for i, p := range pixels {
		d.buf[d.rgbMap[3*i]] = d.gamma[p.R]
		d.buf[d.rgbMap[3*i+1]] = d.gamma[p.G]
		d.buf[d.rgbMap[3*i+2]] = d.gamma[p.B]
	}
	return d.transfer(pagePWMA, pagePWMB, d.buf[:])
}

// UpdateChannels writes raw PWM bytes in chip-native channel order,
// bypassing the wiring map and gamma table. Registers beyond len(channels)
// are left untouched on the chip. More than NumChannels bytes fail with
// ErrTooLarge before any bus traffic.
func (d *Dev) UpdateChannels(channels []byte) error {
	if d.halted {
		return errors.New("is31fl3741: halted")
	}
	if len(channels) > NumChannels {
		return ErrTooLarge
	}
	return d.transfer(pagePWMA, pagePWMB, channels)
}

// Write updates pixels from packed RGB values, three bytes per pixel
// starting at the first mapped pixel, and pushes the frame to the chip.
func (d *Dev) Write(p []byte) (int, error) {
	if d.halted {
		return 0, errors.New("is31fl3741: halted")
	}
	if len(p)%3 != 0 {
		return 0, errors.New("is31fl3741: write length must be a multiple of 3")
	}
	px := len(p) / 3
	if px > d.pixels {
		return 0, ErrTooLarge
	}
	for i := 0; i < px; i++ {
		d.frame[i] = RGB{R: p[3*i], G: p[3*i+1], B: p[3*i+2]}
	}
	if err := d.UpdateRGB(d.frame[:px]); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ColorModel returns the color model of the device.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds returns the image bounds of the device: the mapped pixels exposed
// as a single row.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.pixels, 1)
}

// Draw draws an image onto the pixel row. The destination rectangle is
// clipped to the device bounds; pixels outside it keep their previous color.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("is31fl3741: halted")
	}
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		c := color.NRGBAModel.Convert(src.At(sp.X+x-r.Min.X, sp.Y)).(color.NRGBA)
		d.frame[x] = RGB{R: c.R, G: c.G, B: c.B}
	}
	return d.UpdateRGB(d.frame)
}

// SetGlobalCurrent rewrites the global current control register, scaling
// the brightness of every channel without touching PWM state.
func (d *Dev) SetGlobalCurrent(gcc byte) error {
	if d.halted {
		return errors.New("is31fl3741: halted")
	}
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}
	return d.writeRegister(regGlobalCurrent, gcc)
}

// Halt puts the chip in hardware shutdown by pulling SDB low. After Halt
// the device no longer responds; create a new Dev to use it again.
func (d *Dev) Halt() error {
	d.halted = true
	if err := d.sdb.Out(gpio.Low); err != nil {
		return fmt.Errorf("is31fl3741: failed to drive SDB low: %w", err)
	}
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("is31fl3741.Dev{%dpx}", d.pixels)
}

// GlobalCurrent computes the global current control register value for a
// board's current-setting resistor R_ISO and the wanted peak LED current,
// following the datasheet relation with truncating fixed-point math.
// Results beyond the register range saturate at 0xFF.
func GlobalCurrent(rISO physic.ElectricResistance, peak physic.ElectricCurrent) byte {
	n := int64(rISO/physic.Ohm) * int64(peak/physic.MilliAmpere)
	gcc := n * 65536 / (383 * 255 * 1000)
	if gcc < 0 {
		return 0
	}
	if gcc > 0xFF {
		return 0xFF
	}
	return byte(gcc)
}

// GammaRamp returns a 256-entry lookup table following a power-law curve.
// LEDs are typically driven around gamma 2.2; GammaRamp(1) is linear. It
// panics if gamma is not positive.
func GammaRamp(gamma float64) []byte {
	if gamma <= 0 {
		panic("is31fl3741: gamma must be positive")
	}
	t := make([]byte, 256)
	for i := range t {
		t[i] = byte(math.Round(255 * math.Pow(float64(i)/255, gamma)))
	}
	return t
}

// linearGamma is used when Opts.Gamma is nil.
var linearGamma = GammaRamp(1)

func wrap(err error) error {
	return fmt.Errorf("is31fl3741: %w", err)
}
