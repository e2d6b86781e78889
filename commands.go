package sphero

import (
	"time"

	"github.com/robomote/sphero/protocol"
)

// Wait pauses the command chain for the duration.
func (s *Sphero) Wait(d time.Duration) *Sphero {
	time.Sleep(d)

	return s
}

// GetLastError returns the most recent command failure, or nil when the
// whole chain succeeded.
func (s *Sphero) GetLastError() error {
	return s.lastError
}

// Ping checks the robot is awake and responding.
func (s *Sphero) Ping() *Sphero {
	s.log.Debug("Ping")
	_, err := s.send(protocol.Ping{})
	if err != nil {
		s.log.Error("unable to ping sphero", "error", err)
		s.lastError = err
	}

	return s
}

// GetVersioning requests the firmware version record and returns the raw
// response payload.
func (s *Sphero) GetVersioning() ([]byte, error) {
	s.log.Debug("GetVersioning")
	resp, err := s.send(protocol.GetVersioning{})
	if err != nil {
		s.log.Error("unable to get versioning information", "error", err)
		s.lastError = err
		return nil, err
	}

	return resp.Data, nil
}

// GetBluetoothInfo requests the device name and Bluetooth address record
// and returns the raw response payload.
func (s *Sphero) GetBluetoothInfo() ([]byte, error) {
	s.log.Debug("GetBluetoothInfo")
	resp, err := s.send(protocol.GetBluetoothInfo{})
	if err != nil {
		s.log.Error("unable to get bluetooth info", "error", err)
		s.lastError = err
		return nil, err
	}

	return resp.Data, nil
}

// SetLEDColor sets the main LED color for the current session.
func (s *Sphero) SetLEDColor(r, g, b uint8) *Sphero {
	s.log.Debug("Enabling LED", "r", r, "g", g, "b", b)

	_, err := s.send(protocol.SetRGBLEDOutput{Red: r, Green: g, Blue: b})
	if err != nil {
		s.log.Error("unable to set LED color", "error", err)
		s.lastError = err
	}

	return s
}

// SetBackLED sets the brightness of the rear aiming LED.
func (s *Sphero) SetBackLED(brightness uint8) *Sphero {
	s.log.Debug("Setting back LED", "brightness", brightness)

	_, err := s.send(protocol.SetBackLEDOutput{Brightness: brightness})
	if err != nil {
		s.log.Error("unable to set back LED", "error", err)
		s.lastError = err
	}

	return s
}

// Roll drives the robot at the given speed along a heading in degrees,
// 0..359.
func (s *Sphero) Roll(speed uint8, heading uint16) *Sphero {
	s.log.Debug("Roll", "speed", speed, "heading", heading)

	_, err := s.send(protocol.Roll{Speed: speed, Heading: heading, State: true})
	if err != nil {
		s.log.Error("unable to roll sphero", "error", err)
		s.lastError = err
	}

	return s
}

// Stop halts the control system on its current heading.
func (s *Sphero) Stop() *Sphero {
	s.log.Debug("Stop")

	_, err := s.send(protocol.Roll{Speed: 0, Heading: 0, State: false})
	if err != nil {
		s.log.Error("unable to stop sphero", "error", err)
		s.lastError = err
	}

	return s
}

// SetDataStreaming configures sensor streaming; samples arrive on the
// Events channel. n divides the 400Hz sample rate, m sets frames per
// packet, mask1 selects the data sources and pcnt of 0 streams forever.
func (s *Sphero) SetDataStreaming(n, m uint16, mask1 uint32, pcnt uint8) *Sphero {
	s.log.Debug("SetDataStreaming", "n", n, "m", m, "mask1", mask1, "pcnt", pcnt)

	_, err := s.send(protocol.SetDataStreaming{N: n, M: m, Mask1: mask1, PacketCount: pcnt})
	if err != nil {
		s.log.Error("unable to configure data streaming", "error", err)
		s.lastError = err
	}

	return s
}
