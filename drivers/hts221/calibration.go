package hts221

import "errors"

// Calibration is the factory trim block burned into registers 0x30..0x3F.
// Raw ADC counts convert to physical units by linear interpolation between
// the two calibration points the block describes.
type Calibration struct {
	h0rH   float64
	h1rH   float64
	t0DegC float64
	t1DegC float64

	h0T0Out int16
	h1T0Out int16
	t0Out   int16
	t1Out   int16
}

// calibrationLen is the size of the raw trim block.
const calibrationLen = 16

// errBadCalibration rejects trim blocks whose calibration points coincide;
// interpolating over them would divide by zero. An erased or absent part
// reads back all zeroes, which this catches.
var errBadCalibration = errors.New("hts221: degenerate calibration block")

func parseCalibration(b []byte) (Calibration, error) {
	t0 := uint16(b[2]) | uint16(b[5]&0x03)<<8
	t1 := uint16(b[3]) | uint16(b[5]>>2&0x03)<<8

	c := Calibration{
		h0rH:   float64(b[0]) / 2,
		h1rH:   float64(b[1]) / 2,
		t0DegC: float64(t0) / 8,
		t1DegC: float64(t1) / 8,

		h0T0Out: int16(uint16(b[6]) | uint16(b[7])<<8),
		h1T0Out: int16(uint16(b[10]) | uint16(b[11])<<8),
		t0Out:   int16(uint16(b[12]) | uint16(b[13])<<8),
		t1Out:   int16(uint16(b[14]) | uint16(b[15])<<8),
	}
	if c.t0Out == c.t1Out || c.h0T0Out == c.h1T0Out {
		return Calibration{}, errBadCalibration
	}
	return c, nil
}

// Temperature converts a raw T_OUT sample to degrees Celsius.
func (c Calibration) Temperature(tOut int16) float64 {
	return c.t0DegC +
		float64(tOut-c.t0Out)*(c.t1DegC-c.t0DegC)/float64(c.t1Out-c.t0Out)
}

// Humidity converts a raw H_OUT sample to percent relative humidity.
func (c Calibration) Humidity(hOut int16) float64 {
	return c.h0rH +
		float64(hOut-c.h0T0Out)*(c.h1rH-c.h0rH)/float64(c.h1T0Out-c.h0T0Out)
}
