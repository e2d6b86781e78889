package protocol

// Command is an operation that renders to a v1 command packet once the
// caller assigns a sequence number. Builders are pure: no I/O, no state.
// Sequence allocation and response correlation belong to the caller.
type Command interface {
	Packet(seq byte) (*CommandPacket, error)
}

// Ping checks that the device is awake and responding.
type Ping struct{}

// Packet implements Command.
func (Ping) Packet(seq byte) (*CommandPacket, error) {
	return NewCommandPacket(DeviceCore, CoreCmdPing, seq, nil)
}

// GetVersioning requests the firmware version record.
type GetVersioning struct{}

// Packet implements Command.
func (GetVersioning) Packet(seq byte) (*CommandPacket, error) {
	return NewCommandPacket(DeviceCore, CoreCmdGetVersioning, seq, nil)
}

// GetBluetoothInfo requests the device name and Bluetooth address.
type GetBluetoothInfo struct{}

// Packet implements Command.
func (GetBluetoothInfo) Packet(seq byte) (*CommandPacket, error) {
	return NewCommandPacket(DeviceCore, CoreCmdGetBluetoothInfo, seq, nil)
}

// SetRGBLEDOutput sets the main LED color. With Persist set the color
// survives power cycles.
type SetRGBLEDOutput struct {
	Red     uint8
	Green   uint8
	Blue    uint8
	Persist bool
}

// Packet implements Command.
func (c SetRGBLEDOutput) Packet(seq byte) (*CommandPacket, error) {
	return NewCommandPacket(DeviceSphero, SpheroCmdSetRGBLEDOutput, seq,
		[]byte{c.Red, c.Green, c.Blue, boolByte(c.Persist)})
}

// SetBackLEDOutput sets the brightness of the fixed-color aiming LED.
type SetBackLEDOutput struct {
	Brightness uint8
}

// Packet implements Command.
func (c SetBackLEDOutput) Packet(seq byte) (*CommandPacket, error) {
	return NewCommandPacket(DeviceSphero, SpheroCmdSetBackLEDOutput, seq,
		[]byte{c.Brightness})
}

// Roll commands the control system to drive at Speed along Heading.
// Heading is degrees, 0..359. On CES firmware State selects between
// rolling (true) and stopping (false).
type Roll struct {
	Speed   uint8
	Heading uint16
	State   bool
}

// Packet implements Command.
func (c Roll) Packet(seq byte) (*CommandPacket, error) {
	if c.Heading > 359 {
		return nil, &BadParameterError{Param: "heading", Value: int(c.Heading)}
	}
	return NewCommandPacket(DeviceSphero, SpheroCmdRoll, seq,
		[]byte{c.Speed, byte(c.Heading >> 8), byte(c.Heading), boolByte(c.State)})
}

// SetDataStreaming configures sensor streaming. The control system runs
// at 400Hz; N divides that rate down (N = 2 yields 200Hz samples). M is
// the number of sample frames collected before a packet is emitted.
// PacketCount of 0 streams forever. Mask2, when non-nil, selects
// additional data sources.
type SetDataStreaming struct {
	N           uint16
	M           uint16
	Mask1       uint32
	PacketCount uint8
	Mask2       *uint32
}

// Packet implements Command.
func (c SetDataStreaming) Packet(seq byte) (*CommandPacket, error) {
	data := []byte{
		byte(c.N >> 8), byte(c.N),
		byte(c.M >> 8), byte(c.M),
		byte(c.Mask1 >> 24), byte(c.Mask1 >> 16), byte(c.Mask1 >> 8), byte(c.Mask1),
		c.PacketCount,
	}
	if c.Mask2 != nil {
		m2 := *c.Mask2
		data = append(data, byte(m2>>24), byte(m2>>16), byte(m2>>8), byte(m2))
	}
	return NewCommandPacket(DeviceSphero, SpheroCmdSetDataStreaming, seq, data)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
