// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package stts75

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Resolution is the number of significant bits of a temperature conversion.
type Resolution uint8

// ThermostatMode selects how the OS pin reacts to the T_OS/T_HYS limits.
type ThermostatMode byte

// Polarity is the active level of the OS pin.
type Polarity byte

// FaultQueue is the number of consecutive out of limit conversions required
// before the OS pin is asserted.
type FaultQueue byte

const (
	Resolution9Bit  Resolution = 9
	Resolution10Bit Resolution = 10
	Resolution11Bit Resolution = 11
	Resolution12Bit Resolution = 12

	// ModeComparator keeps the OS pin asserted while the temperature is above
	// T_OS, until it falls below T_HYS.
	ModeComparator ThermostatMode = 0
	// ModeInterrupt asserts the OS pin on each crossing. Reading any register
	// clears it.
	ModeInterrupt ThermostatMode = 1

	ActiveLow  Polarity = 0
	ActiveHigh Polarity = 1

	FaultQueue1 FaultQueue = 0
	FaultQueue2 FaultQueue = 1
	FaultQueue4 FaultQueue = 2
	FaultQueue6 FaultQueue = 3

	// DefaultAddress is the address with A2, A1 and A0 tied to ground.
	DefaultAddress uint16 = 0x48
	// The address pins select one of 8 addresses starting at DefaultAddress.
	maxAddress uint16 = 0x4f

	// Register pointers.
	regTemperature   byte = 0
	regConfiguration byte = 1
	regHysteresis    byte = 2
	regOvertemp      byte = 3

	// Configuration register bits.
	bitShutdown     byte = 1 << 0
	bitThermostat        = 1
	bitPolarity          = 2
	posFaultQueue        = 3
	posResolution        = 5
	maskTwoBits     byte = 0x03

	// Thermostat registers are 9 bits wide.
	thresholdResolution = physic.Kelvin / 2

	// MinimumTemperature is the lowest temperature the device reports.
	MinimumTemperature physic.Temperature = physic.ZeroCelsius - 55*physic.Kelvin
	// MaximumTemperature is the highest temperature the device reports.
	MaximumTemperature physic.Temperature = physic.ZeroCelsius + 125*physic.Kelvin

	// Power-on values of T_HYS and T_OS.
	defaultHysteresis physic.Temperature = physic.ZeroCelsius + 75*physic.Kelvin
	defaultOvertemp   physic.Temperature = physic.ZeroCelsius + 80*physic.Kelvin
)

// Opts holds the configuration options for the device. Zero values select
// the device defaults.
type Opts struct {
	// Addr is the I²C address, between 0x48 and 0x4f. Default is 0x48.
	Addr       uint16
	Resolution Resolution
	Mode       ThermostatMode
	Polarity   Polarity
	FaultQueue FaultQueue
	// Hysteresis and Alarm are written to T_HYS and T_OS when either is
	// set. The unset one takes its power-on value (75°C and 80°C).
	Hysteresis physic.Temperature
	Alarm      physic.Temperature
}

// DefaultOpts is the recommended configuration: highest resolution,
// comparator mode, and the power-on thermostat limits.
var DefaultOpts = Opts{
	Addr:       DefaultAddress,
	Resolution: Resolution12Bit,
	Mode:       ModeComparator,
	Polarity:   ActiveLow,
	FaultQueue: FaultQueue1,
}

// Config is the content of the configuration register.
type Config struct {
	Resolution Resolution
	Mode       ThermostatMode
	Polarity   Polarity
	FaultQueue FaultQueue
	Shutdown   bool
}

func (c *Config) String() string {
	return fmt.Sprintf("{Resolution: %d bits, Mode: %d, Polarity: %d, FaultQueue: %d, Shutdown: %t}",
		c.Resolution, c.Mode, c.Polarity, c.FaultQueue, c.Shutdown)
}

func (c *Config) validate() error {
	if c.Resolution < Resolution9Bit || c.Resolution > Resolution12Bit {
		return fmt.Errorf("stts75: invalid resolution %d, must be 9-12 bits", c.Resolution)
	}
	if c.Mode > ModeInterrupt {
		return errors.New("stts75: invalid thermostat mode")
	}
	if c.Polarity > ActiveHigh {
		return errors.New("stts75: invalid polarity")
	}
	if c.FaultQueue > FaultQueue6 {
		return errors.New("stts75: invalid fault queue")
	}
	return nil
}

func (c *Config) encode() byte {
	b := byte(c.Resolution-Resolution9Bit) << posResolution
	b |= byte(c.FaultQueue) << posFaultQueue
	b |= byte(c.Polarity) << bitPolarity
	b |= byte(c.Mode) << bitThermostat
	if c.Shutdown {
		b |= bitShutdown
	}
	return b
}

func decodeConfig(b byte) *Config {
	return &Config{
		Resolution: Resolution9Bit + Resolution((b>>posResolution)&maskTwoBits),
		FaultQueue: FaultQueue((b >> posFaultQueue) & maskTwoBits),
		Polarity:   Polarity((b >> bitPolarity) & 1),
		Mode:       ThermostatMode((b >> bitThermostat) & 1),
		Shutdown:   b&bitShutdown != 0,
	}
}

// ConversionTime returns the maximum duration of one conversion at this
// resolution.
func (r Resolution) ConversionTime() time.Duration {
	switch r {
	case Resolution9Bit:
		return 37500 * time.Microsecond
	case Resolution10Bit:
		return 75 * time.Millisecond
	case Resolution11Bit:
		return 150 * time.Millisecond
	default:
		return 300 * time.Millisecond
	}
}

// step returns the temperature of one LSB at this resolution.
func (r Resolution) step() physic.Temperature {
	return physic.Kelvin >> (r - 8)
}

// Dev represents an STTS75 sensor.
type Dev struct {
	d        *i2c.Dev
	mu       sync.Mutex
	cfg      Config
	shutdown chan struct{}
}

// NewI2C returns a new STTS75 sensor on the bus. If opts is nil, DefaultOpts
// is used.
//
// The device is probed by reading its configuration register. If it does not
// answer, a *DeviceNotFoundError is returned.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddress
	}
	if addr < DefaultAddress || addr > maxAddress {
		return nil, fmt.Errorf("stts75: invalid address 0x%02x, must be 0x%02x-0x%02x", addr, DefaultAddress, maxAddress)
	}
	cfg := Config{
		Resolution: opts.Resolution,
		Mode:       opts.Mode,
		Polarity:   opts.Polarity,
		FaultQueue: opts.FaultQueue,
	}
	if cfg.Resolution == 0 {
		cfg.Resolution = Resolution12Bit
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	dev := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}}
	if err := dev.probe(); err != nil {
		return nil, &DeviceNotFoundError{Addr: addr, Err: err}
	}
	if err := dev.writeConfig(&cfg); err != nil {
		return nil, err
	}
	if opts.Hysteresis != 0 || opts.Alarm != 0 {
		hyst, alarm := opts.Hysteresis, opts.Alarm
		if hyst == 0 {
			hyst = defaultHysteresis
		}
		if alarm == 0 {
			alarm = defaultOvertemp
		}
		if err := dev.SetThresholds(hyst, alarm); err != nil {
			return nil, err
		}
	}
	return dev, nil
}

func (dev *Dev) readReg(reg byte, r []byte) error {
	if err := dev.d.Tx([]byte{reg}, r); err != nil {
		return &BusError{Op: "read", Reg: reg, Err: err}
	}
	return nil
}

func (dev *Dev) writeReg(reg byte, data ...byte) error {
	w := append([]byte{reg}, data...)
	if err := dev.d.Tx(w, nil); err != nil {
		return &BusError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

// probe checks that the device acknowledges by reading the configuration
// register.
func (dev *Dev) probe() error {
	return dev.readReg(regConfiguration, make([]byte, 1))
}

func (dev *Dev) writeConfig(cfg *Config) error {
	if err := dev.writeReg(regConfiguration, cfg.encode()); err != nil {
		return err
	}
	dev.cfg = *cfg
	return nil
}

// wake clears the shutdown bit and waits for the first conversion.
func (dev *Dev) wake() error {
	cfg := dev.cfg
	cfg.Shutdown = false
	if err := dev.writeConfig(&cfg); err != nil {
		return err
	}
	time.Sleep(cfg.Resolution.ConversionTime())
	return nil
}

// readTemperature reads and decodes the temperature register. The caller
// must hold dev.mu.
func (dev *Dev) readTemperature() (physic.Temperature, error) {
	if dev.cfg.Shutdown {
		if err := dev.wake(); err != nil {
			return MinimumTemperature, dev.checkPresent(err)
		}
	}
	r := make([]byte, 2)
	if err := dev.readReg(regTemperature, r); err != nil {
		return MinimumTemperature, dev.checkPresent(err)
	}
	return countToTemperature(r, dev.cfg.Resolution), nil
}

// checkPresent probes the device after the failed transfer err. It returns
// a *DeviceNotFoundError wrapping err if the device doesn't answer anymore,
// err otherwise.
func (dev *Dev) checkPresent(err error) error {
	if dev.probe() != nil {
		return &DeviceNotFoundError{Addr: dev.d.Addr, Err: err}
	}
	return err
}

// countToTemperature decodes the two temperature register bytes, MSB first,
// keeping the upper res bits. The result is clamped to the device range.
func countToTemperature(b []byte, res Resolution) physic.Temperature {
	count := int16(uint16(b[0])<<8|uint16(b[1])) >> (16 - res)
	t := physic.ZeroCelsius + physic.Temperature(count)*res.step()
	if t < MinimumTemperature {
		t = MinimumTemperature
	} else if t > MaximumTemperature {
		t = MaximumTemperature
	}
	return t
}

// temperatureToThreshold encodes a temperature in the 9-bit format of the
// T_OS and T_HYS registers, rounded to the nearest 0.5°C.
func temperatureToThreshold(t physic.Temperature) []byte {
	d := t - physic.ZeroCelsius
	if d >= 0 {
		d += thresholdResolution / 2
	} else {
		d -= thresholdResolution / 2
	}
	raw := uint16(int16(d/thresholdResolution) << 7)
	return []byte{byte(raw >> 8), byte(raw & 0x80)}
}

func thresholdToTemperature(b []byte) physic.Temperature {
	count := int16(uint16(b[0])<<8|uint16(b[1])) >> 7
	return physic.ZeroCelsius + physic.Temperature(count)*thresholdResolution
}

// ReadTemperature reads the temperature register and returns the value in
// degrees Celsius.
//
// A failed transfer returns a *BusError. If the device then no longer
// answers, the error is a *DeviceNotFoundError wrapping the *BusError.
func (dev *Dev) ReadTemperature() (float64, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	t, err := dev.readTemperature()
	if err != nil {
		return 0, err
	}
	return t.Celsius(), nil
}

// Sense reads the temperature from the device and writes it to env.
// Implements physic.SenseEnv.
func (dev *Dev) Sense(env *physic.Env) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	t, err := dev.readTemperature()
	if err == nil {
		env.Temperature = t
	}
	return err
}

// senseRunning is Sense for the SenseContinuous loop. It reports false once
// the loop identified by shutdown has been halted.
func (dev *Dev) senseRunning(shutdown chan struct{}, env *physic.Env) (bool, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != shutdown {
		return false, nil
	}
	t, err := dev.readTemperature()
	if err == nil {
		env.Temperature = t
	}
	return true, err
}

// SenseContinuous reads the temperature every interval and sends it to the
// returned channel. The interval can't be shorter than the conversion time of
// the configured resolution. Call Halt to stop.
// Implements physic.SenseEnv.
func (dev *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		return nil, errors.New("stts75: SenseContinuous already running")
	}
	if minInterval := dev.cfg.Resolution.ConversionTime(); interval < minInterval {
		return nil, fmt.Errorf("stts75: invalid interval %s, minimum is %s", interval, minInterval)
	}
	dev.shutdown = make(chan struct{})
	ch := make(chan physic.Env, 16)
	go dev.senseLoop(interval, ch, dev.shutdown)
	return ch, nil
}

func (dev *Dev) senseLoop(interval time.Duration, ch chan<- physic.Env, shutdown chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(ch)
	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			e := physic.Env{}
			running, err := dev.senseRunning(shutdown, &e)
			if !running {
				return
			}
			if err != nil {
				continue
			}
			select {
			case ch <- e:
			case <-shutdown:
				return
			}
		}
	}
}

// Precision returns the smallest temperature step at the configured
// resolution. Implements physic.SenseEnv.
func (dev *Dev) Precision(env *physic.Env) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	env.Temperature = dev.cfg.Resolution.step()
	env.Pressure = 0
	env.Humidity = 0
}

// Halt stops a running SenseContinuous and puts the device in shutdown. The
// next read wakes it up. Implements conn.Resource.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		close(dev.shutdown)
		dev.shutdown = nil
	}
	cfg := dev.cfg
	cfg.Shutdown = true
	return dev.writeConfig(&cfg)
}

// Configuration reads the configuration register.
func (dev *Dev) Configuration() (*Config, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	r := make([]byte, 1)
	if err := dev.readReg(regConfiguration, r); err != nil {
		return nil, err
	}
	return decodeConfig(r[0]), nil
}

// SetConfiguration writes the configuration register. Setting Shutdown puts
// the device to sleep until the next read.
func (dev *Dev) SetConfiguration(cfg *Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.writeConfig(cfg)
}

// Thresholds returns the hysteresis (T_HYS) and alarm (T_OS) temperatures.
func (dev *Dev) Thresholds() (hysteresis, alarm physic.Temperature, err error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	hysteresis, alarm = MinimumTemperature, MaximumTemperature
	r := make([]byte, 2)
	if err = dev.readReg(regHysteresis, r); err != nil {
		return
	}
	hysteresis = thresholdToTemperature(r)
	if err = dev.readReg(regOvertemp, r); err != nil {
		return
	}
	alarm = thresholdToTemperature(r)
	return
}

// SetThresholds sets the thermostat limits. The OS pin is asserted above
// alarm and released below hysteresis. Values are rounded to 0.5°C and
// must still differ once rounded.
func (dev *Dev) SetThresholds(hysteresis, alarm physic.Temperature) error {
	if hysteresis < MinimumTemperature || alarm > MaximumTemperature {
		return errors.New("stts75: invalid temperature range")
	}
	hystBits := temperatureToThreshold(hysteresis)
	alarmBits := temperatureToThreshold(alarm)
	if thresholdToTemperature(hystBits) >= thresholdToTemperature(alarmBits) {
		return fmt.Errorf("stts75: hysteresis %s must be below alarm %s after rounding to 0.5°C", hysteresis, alarm)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if err := dev.writeReg(regHysteresis, hystBits...); err != nil {
		return err
	}
	return dev.writeReg(regOvertemp, alarmBits...)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("stts75: %s", dev.d.String())
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
