// Package hal defines the peripheral contracts the driver actors are
// written against. Real targets satisfy these with register-level
// implementations; host builds and tests use the in-memory ones.
package hal

// Active describes the electrical polarity of a discrete signal.
type Active int

const (
	// High means the signal asserts at logic high.
	High Active = iota
	// Low means the signal asserts at logic low.
	Low
)

func (a Active) String() string {
	if a == Low {
		return "active-low"
	}
	return "active-high"
}

// Pin is a single discrete output line.
type Pin interface {
	// Set drives the pin to its asserted or deasserted state,
	// honoring the pin's configured polarity.
	Set(asserted bool) error
	// Asserted reports the last driven state.
	Asserted() bool
}

// I2C is a blocking master on a single bus. Addresses are 7-bit.
// Implementations may block for the duration of the transfer; callers on
// the supervisor loop must hand transfers to the background executor.
type I2C interface {
	// Read fills buf from the device at addr.
	Read(addr uint8, buf []byte) error
	// Write sends buf to the device at addr.
	Write(addr uint8, buf []byte) error
	// WriteRead performs a write followed by a repeated-start read.
	WriteRead(addr uint8, out []byte, in []byte) error
}

// UART is a blocking byte stream peripheral.
type UART interface {
	// Read fills buf and returns the number of bytes read. It blocks
	// until at least one byte is available.
	Read(buf []byte) (int, error)
	// Write sends buf and returns the number of bytes written.
	Write(buf []byte) (int, error)
}
