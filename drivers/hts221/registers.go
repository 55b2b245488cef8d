package hts221

import "github.com/lunarpulse/drogue-device/ports/hal"

// DefaultAddr is the part's fixed 7-bit bus address.
const DefaultAddr uint8 = 0x5F

const (
	regWhoAmI          uint8 = 0x0F
	regCtrl1           uint8 = 0x20
	regCtrl2           uint8 = 0x21
	regCtrl3           uint8 = 0x22
	regStatus          uint8 = 0x27
	regHumidityOutL    uint8 = 0x28
	regTemperatureOutL uint8 = 0x2A
	regCalibration     uint8 = 0x30

	// autoIncrement in the register address advances the pointer across
	// multi-byte transfers.
	autoIncrement uint8 = 0x80
)

const (
	whoAmIValue byte = 0xBC

	ctrl1PowerActive     byte = 0x80
	ctrl1BlockDataUpdate byte = 0x04
	ctrl1ODR1Hz          byte = 0x01

	ctrl2Boot byte = 0x80

	ctrl3DataReadyEnable byte = 0x04

	statusTemperatureAvailable byte = 0x01
	statusHumidityAvailable    byte = 0x02
)

// Blocking transfer helpers. These run on the background executor, never on
// the supervisor loop.

func readRegister(bus hal.I2C, addr uint8, reg uint8) (byte, error) {
	var buf [1]byte
	if err := bus.WriteRead(addr, []byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeRegister(bus hal.I2C, addr uint8, reg uint8, value byte) error {
	return bus.Write(addr, []byte{reg, value})
}

func readRegisters(bus hal.I2C, addr uint8, start uint8, buf []byte) error {
	return bus.WriteRead(addr, []byte{start | autoIncrement}, buf)
}

func readInt16(bus hal.I2C, addr uint8, reg uint8) (int16, error) {
	var buf [2]byte
	if err := readRegisters(bus, addr, reg, buf[:]); err != nil {
		return 0, err
	}
	return int16(uint16(buf[0]) | uint16(buf[1])<<8), nil
}
