package hal

import (
	"errors"
	"io"
	"sync"
)

var (
	// ErrNoDevice is returned when no simulated device answers at the
	// requested bus address.
	ErrNoDevice = errors.New("hal: no device at address")
	// ErrClosed is returned after a simulated peripheral is shut down.
	ErrClosed = errors.New("hal: peripheral closed")
)

// autoIncrement is the register-pointer auto-increment flag carried in the
// high bit of the register address, as used by ST sensor parts.
const autoIncrement = 0x80

// MemPin is an in-memory Pin.
type MemPin struct {
	mu       sync.Mutex
	polarity Active
	asserted bool
}

func NewMemPin(polarity Active) *MemPin {
	return &MemPin{polarity: polarity}
}

func (p *MemPin) Set(asserted bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asserted = asserted
	return nil
}

func (p *MemPin) Asserted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asserted
}

// Polarity reports the configured signal polarity.
func (p *MemPin) Polarity() Active {
	return p.polarity
}

// regFile is one simulated device's register map plus its pointer state.
type regFile struct {
	regs [256]byte
	ptr  uint8
	inc  bool
}

// MemI2C simulates an I2C bus with register-map devices. The first byte of
// every write selects the register pointer; subsequent bytes and reads move
// through consecutive registers when the auto-increment bit is set.
type MemI2C struct {
	mu      sync.Mutex
	devices map[uint8]*regFile
}

func NewMemI2C() *MemI2C {
	return &MemI2C{devices: make(map[uint8]*regFile)}
}

// AddDevice attaches a fresh register map at addr.
func (b *MemI2C) AddDevice(addr uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr] = &regFile{}
}

// SetRegisters loads data into consecutive registers starting at start.
// Used by tests and simulators to stage sensor output and calibration.
func (b *MemI2C) SetRegisters(addr uint8, start uint8, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[addr]
	if !ok {
		return ErrNoDevice
	}
	for i, v := range data {
		dev.regs[start+uint8(i)] = v
	}
	return nil
}

// Register reads one register directly, bypassing the pointer protocol.
func (b *MemI2C) Register(addr uint8, reg uint8) (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[addr]
	if !ok {
		return 0, ErrNoDevice
	}
	return dev.regs[reg], nil
}

func (b *MemI2C) Read(addr uint8, buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[addr]
	if !ok {
		return ErrNoDevice
	}
	dev.read(buf)
	return nil
}

func (b *MemI2C) Write(addr uint8, buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[addr]
	if !ok {
		return ErrNoDevice
	}
	dev.write(buf)
	return nil
}

func (b *MemI2C) WriteRead(addr uint8, out []byte, in []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[addr]
	if !ok {
		return ErrNoDevice
	}
	dev.write(out)
	dev.read(in)
	return nil
}

func (f *regFile) write(buf []byte) {
	if len(buf) == 0 {
		return
	}
	f.ptr = buf[0] &^ autoIncrement
	f.inc = buf[0]&autoIncrement != 0
	for _, v := range buf[1:] {
		f.regs[f.ptr] = v
		if f.inc {
			f.ptr++
		}
	}
}

func (f *regFile) read(buf []byte) {
	for i := range buf {
		buf[i] = f.regs[f.ptr]
		if f.inc {
			f.ptr++
		}
	}
}

// MemUART is an in-memory UART with a host side. The device side implements
// the UART interface; the host side feeds input and collects output, as a
// stand-in for the far end of the wire.
type MemUART struct {
	toDevice   chan byte
	fromDevice chan byte

	closeOnce sync.Once
	closed    chan struct{}
}

func NewMemUART(buffer int) *MemUART {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemUART{
		toDevice:   make(chan byte, buffer),
		fromDevice: make(chan byte, buffer),
		closed:     make(chan struct{}),
	}
}

// Read blocks until at least one byte arrives, then drains whatever else is
// already buffered without blocking.
func (u *MemUART) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	select {
	case b := <-u.toDevice:
		buf[0] = b
	case <-u.closed:
		return 0, io.EOF
	}
	n := 1
	for n < len(buf) {
		select {
		case b := <-u.toDevice:
			buf[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

func (u *MemUART) Write(buf []byte) (int, error) {
	for i, b := range buf {
		select {
		case u.fromDevice <- b:
		case <-u.closed:
			return i, ErrClosed
		}
	}
	return len(buf), nil
}

// HostWrite pushes bytes toward the device, as if typed by the peer.
func (u *MemUART) HostWrite(buf []byte) (int, error) {
	for i, b := range buf {
		select {
		case u.toDevice <- b:
		case <-u.closed:
			return i, ErrClosed
		}
	}
	return len(buf), nil
}

// HostRead blocks until the device has written at least one byte, then
// drains the rest of the buffered output.
func (u *MemUART) HostRead(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	select {
	case b := <-u.fromDevice:
		buf[0] = b
	case <-u.closed:
		return 0, io.EOF
	}
	n := 1
	for n < len(buf) {
		select {
		case b := <-u.fromDevice:
			buf[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

// Close unblocks both sides.
func (u *MemUART) Close() error {
	u.closeOnce.Do(func() { close(u.closed) })
	return nil
}

var (
	_ Pin  = (*MemPin)(nil)
	_ I2C  = (*MemI2C)(nil)
	_ UART = (*MemUART)(nil)
)
