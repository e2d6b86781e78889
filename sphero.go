// Package sphero drives SPRK-era Sphero robots over Bluetooth LE using
// the v1.20 command protocol implemented in the protocol package. The
// transport here is thin glue: discovery, the characteristic wake-up
// dance, frame reassembly and sequence correlation. All byte layout
// lives in protocol.
package sphero

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"tinygo.org/x/bluetooth"

	"github.com/robomote/sphero/protocol"
)

var discoverTimeout = 60 * time.Second
var responseTimeout = 10 * time.Second

// Robot control service characteristics.
const (
	uuidCommand  = "22bb746f-2ba1-7554-2d6f-726568705327"
	uuidResponse = "22bb746f-2ba6-7554-2d6f-726568705327"
	uuidAntiDOS  = "22bb746f-2bbd-7554-2d6f-726568705327"
	uuidTXPower  = "22bb746f-2bb2-7554-2d6f-726568705327"
	uuidWake     = "22bb746f-2bbf-7554-2d6f-726568705327"
)

// antiDOSKey unlocks the command interface; the robot ignores writes
// until it has been sent.
var antiDOSKey = []byte("011i3")

// Sphero is a connected robot. Commands are issued through the fluent
// methods in commands.go; failures accumulate in lastError so chains can
// run to completion and be checked once with GetLastError.
type Sphero struct {
	device       *bluetooth.Device
	charCommand  bluetooth.DeviceCharacteristic
	charResponse bluetooth.DeviceCharacteristic
	charAntiDOS  bluetooth.DeviceCharacteristic
	charTXPower  bluetooth.DeviceCharacteristic
	charWake     bluetooth.DeviceCharacteristic

	log hclog.Logger

	mu        sync.Mutex
	seq       byte
	assembler frameAssembler

	responses chan *protocol.ResponsePacket
	events    chan *protocol.AsyncPacket

	lastError error
}

// NewSphero connects to the robot at addr, which may be either a MAC
// address or the advertised device name, and prepares it to receive
// commands.
//
// example:
//
//	logger := hclog.Default()
//
//	adapter, err := sphero.NewBluetoothAdapter(logger)
//	if err != nil {
//		fmt.Printf("Unable to create a bluetooth adapter: %s\n", err)
//		os.Exit(1)
//	}
//
//	ball, err := sphero.NewSphero("SK-1234", adapter, logger)
//	if err != nil {
//		fmt.Printf("Unable to create a new sphero: %s\n", err)
//		os.Exit(1)
//	}
//
//	ball.
//		SetLEDColor(235, 64, 52).
//		Wait(1*time.Second).
//		SetLEDColor(52, 122, 235)
func NewSphero(addr string, adapter *BluetoothAdapter, l hclog.Logger) (*Sphero, error) {
	var device *bluetooth.Device
	var err error

	// try multiple times as Darwin bluetooth is flakey
	for i := 0; i < 5; i++ {
		l.Debug("Connecting to device", "address", addr, "attempt", i+1)

		device, err = setupConnection(addr, adapter, l)
		if device != nil && err == nil {
			break
		}
	}

	if err != nil || device == nil {
		l.Error("Unable to connect to bluetooth device", "address", addr, "error", err)
		return nil, err
	}

	var services []bluetooth.DeviceService

	for i := 0; i < 5; i++ {
		l.Debug("Attempting to discover services", "address", addr, "attempt", i+1)

		services, err = device.DiscoverServices([]bluetooth.UUID{})
		if err == nil && len(services) > 0 {
			break
		}
	}

	if err != nil {
		l.Error("Unable to get services for bluetooth device", "address", addr, "error", err)
		return nil, err
	}

	s := &Sphero{
		device:    device,
		log:       l,
		responses: make(chan *protocol.ResponsePacket, 1),
		events:    make(chan *protocol.AsyncPacket, 16),
	}

	if err := s.bindCharacteristics(services); err != nil {
		l.Error("Unable to find robot control characteristics", "address", addr, "error", err)
		return nil, err
	}

	if err := s.setup(); err != nil {
		return nil, err
	}

	return s, nil
}

func setupConnection(addr string, adapter *BluetoothAdapter, l hclog.Logger) (*bluetooth.Device, error) {
	var bleAddress bluetooth.Addresser

	ac := make(chan bluetooth.Addresser)
	to := time.After(discoverTimeout)

	sr := adapter.Scan()
	defer adapter.StopScanning()

	go func() {
		for r := range sr {
			if r.Name == addr || r.Address.String() == addr {
				ac <- r.Address
			}
		}
	}()

	select {
	case bleAddress = <-ac:
		l.Trace("Found device", "address", addr)
	case <-to:
		return nil, fmt.Errorf("timeout while trying to find device: %s", addr)
	}

	l.Trace("Connecting", "device", addr)

	device, err := adapter.Connect(bleAddress)
	if err != nil {
		l.Trace("Unable to connect to bluetooth device", "address", addr, "error", err)
		return nil, err
	}

	return device, nil
}

func (s *Sphero) bindCharacteristics(services []bluetooth.DeviceService) error {
	chars := map[string]*bluetooth.DeviceCharacteristic{
		uuidCommand:  &s.charCommand,
		uuidResponse: &s.charResponse,
		uuidAntiDOS:  &s.charAntiDOS,
		uuidTXPower:  &s.charTXPower,
		uuidWake:     &s.charWake,
	}

	for uuid, target := range chars {
		c, err := findCharacteristic(services, uuid)
		if err != nil {
			return err
		}
		*target = c
	}

	return nil
}

func findCharacteristic(ds []bluetooth.DeviceService, uuid string) (bluetooth.DeviceCharacteristic, error) {
	uu, err := bluetooth.ParseUUID(uuid)
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("invalid characteristic uuid %s: %s", uuid, err)
	}

	for _, s := range ds {
		c, err := s.DiscoverCharacteristics([]bluetooth.UUID{uu})
		if err == nil && len(c) > 0 {
			return c[0], nil
		}
	}

	return bluetooth.DeviceCharacteristic{}, fmt.Errorf("characteristic %s not found", uuid)
}

// setup performs the wake-up dance: subscribe to responses, unlock the
// command interface, raise transmit power, then wake the robot.
func (s *Sphero) setup() error {
	s.log.Debug("Setup Sphero")

	err := s.charResponse.EnableNotifications(s.handleNotification)
	if err != nil {
		s.log.Error("Unable to receive notifications for response characteristic", "error", err)
		return err
	}

	if _, err := s.charAntiDOS.WriteWithoutResponse(antiDOSKey); err != nil {
		return fmt.Errorf("unable to write anti-DOS key: %s", err)
	}

	if _, err := s.charTXPower.WriteWithoutResponse([]byte{0x07}); err != nil {
		return fmt.Errorf("unable to set tx power: %s", err)
	}

	if _, err := s.charWake.WriteWithoutResponse([]byte{0x01}); err != nil {
		return fmt.Errorf("unable to wake device: %s", err)
	}

	return nil
}

// handleNotification reassembles notification chunks into frames and
// routes decoded messages: synchronous responses to the pending send,
// asynchronous messages to the Events channel.
func (s *Sphero) handleNotification(chunk []byte) {
	s.mu.Lock()
	frames := s.assembler.feed(chunk)
	s.mu.Unlock()

	for _, frame := range frames {
		m, err := protocol.Decode(frame)
		if err != nil {
			s.log.Error("Unable to decode inbound frame", "bytes", frame, "error", err)
			continue
		}

		switch p := m.(type) {
		case *protocol.ResponsePacket:
			select {
			case s.responses <- p:
			default:
				s.log.Trace("Got response, disposed", "seq", p.Seq)
			}
		case *protocol.AsyncPacket:
			select {
			case s.events <- p:
			default:
				s.log.Trace("Async message dropped, channel full", "idcode", p.IDCode)
			}
		}
	}
}

// Events returns the stream of asynchronous messages from the robot,
// such as sensor data configured with SetDataStreaming. Interpreting the
// id code is up to the consumer.
func (s *Sphero) Events() <-chan *protocol.AsyncPacket {
	return s.events
}

// send renders the command with the next sequence number, writes it to
// the command characteristic and waits for the matching response.
// Correlating responses by sequence number is this layer's job; the
// codec stays stateless.
func (s *Sphero) send(cmd protocol.Command) (*protocol.ResponsePacket, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	pkt, err := cmd.Packet(seq)
	if err != nil {
		return nil, err
	}

	data := pkt.Encode()
	s.log.Trace("Sending command", "name", protocol.CommandName(pkt.DID, pkt.CID), "bytes", data)

	if _, err := s.charCommand.WriteWithoutResponse(data); err != nil {
		return nil, fmt.Errorf("unable to write command: %s", err)
	}

	timeout := time.After(responseTimeout)
	for {
		select {
		case <-timeout:
			s.log.Error("Timeout waiting for response", "seq", seq)
			return nil, fmt.Errorf("timeout waiting for response to sequence %d", seq)
		case resp := <-s.responses:
			if resp.Seq != seq {
				s.log.Trace("Got response for stale sequence, disposed", "seq", resp.Seq)
				continue
			}

			s.log.Debug("Got response", "seq", resp.Seq, "status", resp.MRSP.String())

			if err := resp.MRSP.Err(); err != nil {
				return resp, err
			}
			return resp, nil
		}
	}
}
