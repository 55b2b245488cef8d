// Package hts221 drives the ST HTS221 humidity and temperature sensor as an
// actor. The sensor shares its I2C bus through a runtime mutex and publishes
// calibrated acquisitions on the device event bus whenever the part raises
// its data-ready line.
package hts221

import (
	"fmt"
	"log/slog"

	"github.com/lunarpulse/drogue-device/core/runtime"
	"github.com/lunarpulse/drogue-device/ports/hal"
)

// DataReady is the event the data-ready interrupt turns into.
type DataReady struct{}

// SensorAcquisition is one calibrated sample, published on the event bus.
type SensorAcquisition struct {
	// Temperature in degrees Celsius.
	Temperature float64
	// RelativeHumidity in percent.
	RelativeHumidity float64
}

// Fahrenheit converts the sample's temperature.
func (a SensorAcquisition) Fahrenheit() float64 {
	return a.Temperature*9/5 + 32
}

type Options struct {
	// Addr is the sensor's bus address. Zero means DefaultAddr.
	Addr uint8
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Sensor is the driver actor. Bind it to a mounted Mutex[hal.I2C] and wire
// its data-ready interrupt with Supervisor.BindInterrupt.
type Sensor struct {
	log  *slog.Logger
	addr uint8

	self runtime.Address[*Sensor]
	bus  *runtime.EventBus
	i2c  runtime.Address[*runtime.Mutex[hal.I2C]]

	calibration *Calibration
}

func New(opt Options) *Sensor {
	if opt.Addr == 0 {
		opt.Addr = DefaultAddr
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Sensor{
		log:  opt.Logger.With(slog.String("driver", "hts221")),
		addr: opt.Addr,
	}
}

func (s *Sensor) OnMount(self runtime.Address[*Sensor], bus *runtime.EventBus) runtime.Completion {
	s.self = self
	s.bus = bus
	return runtime.Immediate()
}

func (s *Sensor) OnBind(dep runtime.Address[*runtime.Mutex[hal.I2C]]) {
	s.i2c = dep
}

func (s *Sensor) OnLifecycle(phase runtime.Lifecycle) runtime.Completion {
	switch phase {
	case runtime.Initialize:
		return s.initialize()
	case runtime.Start:
		return s.start()
	default:
		return runtime.Immediate()
	}
}

// OnInterrupt runs in interrupt context: it only enqueues, the actual bus
// traffic happens under ordinary dispatch.
func (s *Sensor) OnInterrupt(int) {
	_ = runtime.Notify(s.self, DataReady{})
}

// OnNotification reads one sample under the bus guard and publishes the
// calibrated acquisition.
func (s *Sensor) OnNotification(DataReady) runtime.Completion {
	return runtime.Defer(func(task *runtime.Task) (any, error) {
		if s.calibration == nil {
			s.log.Info("no calibration data available")
			return nil, nil
		}
		cal := *s.calibration

		guard, err := runtime.AwaitGuard(task, s.i2c)
		if err != nil {
			return nil, err
		}
		defer guard.Release()
		bus := guard.Resource()

		v, err := task.Await(task.Background(func() (any, error) {
			tOut, err := readInt16(bus, s.addr, regTemperatureOutL)
			if err != nil {
				return nil, err
			}
			hOut, err := readInt16(bus, s.addr, regHumidityOutL)
			if err != nil {
				return nil, err
			}
			return SensorAcquisition{
				Temperature:      cal.Temperature(tOut),
				RelativeHumidity: cal.Humidity(hOut),
			}, nil
		}))
		if err != nil {
			s.log.Error("sample read failed", slog.Any("error", err))
			return nil, err
		}

		s.bus.Publish(v.(SensorAcquisition))
		return nil, nil
	})
}

// initialize boots the part, powers it on at 1 Hz with block data update,
// enables the data-ready line, and drains stale samples so the first edge
// after start actually fires.
func (s *Sensor) initialize() runtime.Completion {
	return runtime.Defer(func(task *runtime.Task) (any, error) {
		guard, err := runtime.AwaitGuard(task, s.i2c)
		if err != nil {
			return nil, err
		}
		defer guard.Release()
		bus := guard.Resource()

		if _, err := task.Await(task.Background(func() (any, error) {
			return nil, s.boot(bus)
		})); err != nil {
			s.log.Error("initialize failed", slog.Any("error", err))
			return nil, err
		}
		return nil, nil
	})
}

func (s *Sensor) boot(bus hal.I2C) error {
	who, err := readRegister(bus, s.addr, regWhoAmI)
	if err != nil {
		return err
	}
	if who != whoAmIValue {
		return fmt.Errorf("hts221: unexpected WHO_AM_I 0x%02X at 0x%02X", who, s.addr)
	}

	if err := writeRegister(bus, s.addr, regCtrl2, ctrl2Boot); err != nil {
		return err
	}
	if err := writeRegister(bus, s.addr, regCtrl1,
		ctrl1PowerActive|ctrl1BlockDataUpdate|ctrl1ODR1Hz); err != nil {
		return err
	}
	if err := writeRegister(bus, s.addr, regCtrl3, ctrl3DataReadyEnable); err != nil {
		return err
	}

	// Drain whatever the part sampled before configuration; the data-ready
	// line stays asserted until both outputs are read.
	for {
		status, err := readRegister(bus, s.addr, regStatus)
		if err != nil {
			return err
		}
		if status&(statusTemperatureAvailable|statusHumidityAvailable) == 0 {
			return nil
		}
		if _, err := readInt16(bus, s.addr, regHumidityOutL); err != nil {
			return err
		}
		if _, err := readInt16(bus, s.addr, regTemperatureOutL); err != nil {
			return err
		}
	}
}

// start loads the factory calibration block. Acquisitions before this phase
// completes are skipped.
func (s *Sensor) start() runtime.Completion {
	return runtime.Defer(func(task *runtime.Task) (any, error) {
		guard, err := runtime.AwaitGuard(task, s.i2c)
		if err != nil {
			return nil, err
		}
		defer guard.Release()
		bus := guard.Resource()

		v, err := task.Await(task.Background(func() (any, error) {
			buf := make([]byte, calibrationLen)
			if err := readRegisters(bus, s.addr, regCalibration, buf); err != nil {
				return nil, err
			}
			c, err := parseCalibration(buf)
			if err != nil {
				return nil, err
			}
			return &c, nil
		}))
		if err != nil {
			s.log.Error("calibration read failed", slog.Any("error", err))
			return nil, err
		}

		s.calibration = v.(*Calibration)
		s.log.Debug("calibration loaded")
		return nil, nil
	})
}

var (
	_ runtime.Actor[*Sensor]     = (*Sensor)(nil)
	_ runtime.LifecycleHandler   = (*Sensor)(nil)
	_ runtime.Handler[DataReady] = (*Sensor)(nil)
	_ runtime.InterruptHandler   = (*Sensor)(nil)
)
