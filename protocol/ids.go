package protocol

import "fmt"

// DeviceID addresses one of the virtual devices implemented inside the
// robot's core software. The (device id, command id) pair is the only
// valid addressing unit; command code spaces are distinct per device.
// https://docs.gosphero.com/api/Sphero_API_1.20.pdf
type DeviceID uint8

const (
	// DeviceCore encapsulates actions fundamental to all Orbotix devices.
	DeviceCore DeviceID = 0x00
	// DeviceBootloader handles firmware reflash operations.
	DeviceBootloader DeviceID = 0x01
	// DeviceSphero is the chassis itself: driving, LEDs, sensors, macros.
	DeviceSphero DeviceID = 0x02
)

// Valid reports whether d is one of the documented virtual devices.
func (d DeviceID) Valid() bool {
	return d == DeviceCore || d == DeviceBootloader || d == DeviceSphero
}

func (d DeviceID) String() string {
	switch d {
	case DeviceCore:
		return "core"
	case DeviceBootloader:
		return "bootloader"
	case DeviceSphero:
		return "sphero"
	}
	return fmt.Sprintf("unknown device (0x%02X)", uint8(d))
}

// Core command ids (DID 00h).
const (
	CoreCmdPing                     = 0x01
	CoreCmdGetVersioning            = 0x02
	CoreCmdSetDeviceName            = 0x10
	CoreCmdGetBluetoothInfo         = 0x11
	CoreCmdSetAutoReconnect         = 0x12
	CoreCmdGetAutoReconnect         = 0x13
	CoreCmdGetPowerState            = 0x20
	CoreCmdSetPowerNotification     = 0x21
	CoreCmdSleep                    = 0x22
	CoreCmdGetVoltageTripPoints     = 0x23
	CoreCmdSetVoltageTripPoints     = 0x24
	CoreCmdSetInactivityTimeout     = 0x25
	CoreCmdJumpToBootloader         = 0x30
	CoreCmdPerformLevel1Diagnostics = 0x40
	CoreCmdPerformLevel2Diagnostics = 0x41
	CoreCmdClearCounters            = 0x42
	CoreCmdAssignTimeValue          = 0x50
	CoreCmdPollPacketTimes          = 0x51
)

// Bootloader command ids (DID 01h).
const (
	BootCmdReflash         = 0x02
	BootCmdHereIsPage      = 0x03
	BootCmdLeaveBootloader = 0x04
	BootCmdIsPageBlank     = 0x05
	BootCmdEraseUserConfig = 0x06
)

// Sphero command ids (DID 02h).
const (
	SpheroCmdSetHeading                  = 0x01
	SpheroCmdSetStabilization            = 0x02
	SpheroCmdSetRotationRate             = 0x03
	SpheroCmdSetAppConfigBlock           = 0x04
	SpheroCmdGetAppConfigBlock           = 0x05
	SpheroCmdReEnableDemo                = 0x06
	SpheroCmdGetChassisID                = 0x07
	SpheroCmdSetChassisID                = 0x08
	SpheroCmdSelfLevel                   = 0x09
	SpheroCmdSetDataStreaming            = 0x11
	SpheroCmdConfigureCollisionDetection = 0x12
	SpheroCmdSetRGBLEDOutput             = 0x20
	SpheroCmdSetBackLEDOutput            = 0x21
	SpheroCmdGetRGBLEDOutput             = 0x22
	SpheroCmdRoll                        = 0x30
	SpheroCmdSetBoostWithTime            = 0x31
	SpheroCmdSetRawMotorValues           = 0x33
	SpheroCmdSetMotionTimeout            = 0x34
	SpheroCmdSetOptionsFlags             = 0x35
	SpheroCmdGetOptionsFlags             = 0x36
	SpheroCmdGetConfigBlock              = 0x40
	SpheroCmdSetDeviceMode               = 0x42
	SpheroCmdSetConfigBlock              = 0x43
	SpheroCmdGetDeviceMode               = 0x44
	SpheroCmdRunMacro                    = 0x50
	SpheroCmdSaveTemporaryMacro          = 0x51
	SpheroCmdSaveMacro                   = 0x52
	SpheroCmdReinitMacroExecutive        = 0x54
	SpheroCmdAbortMacro                  = 0x55
	SpheroCmdGetMacroStatus              = 0x56
	SpheroCmdSetMacroParameter           = 0x57
	SpheroCmdAppendMacroChunk            = 0x58
	SpheroCmdEraseOrbbasicStorage        = 0x60
	SpheroCmdAppendOrbbasicFragment      = 0x61
	SpheroCmdExecuteOrbbasicProgram      = 0x62
	SpheroCmdAbortOrbbasicProgram        = 0x63
)

var coreCommands = map[byte]string{
	CoreCmdPing:                     "Ping",
	CoreCmdGetVersioning:            "Get Versioning Information",
	CoreCmdSetDeviceName:            "Set Device Name",
	CoreCmdGetBluetoothInfo:         "Get Bluetooth Info",
	CoreCmdSetAutoReconnect:         "Set Auto Reconnect",
	CoreCmdGetAutoReconnect:         "Get Auto Reconnect",
	CoreCmdGetPowerState:            "Get Power State",
	CoreCmdSetPowerNotification:     "Set Power Notification",
	CoreCmdSleep:                    "Sleep",
	CoreCmdGetVoltageTripPoints:     "Get Voltage Trip Points",
	CoreCmdSetVoltageTripPoints:     "Set Voltage Trip Points",
	CoreCmdSetInactivityTimeout:     "Set Inactivity Timeout",
	CoreCmdJumpToBootloader:         "Jump To Bootloader",
	CoreCmdPerformLevel1Diagnostics: "Perform Level 1 Diagnostics",
	CoreCmdPerformLevel2Diagnostics: "Perform Level 2 Diagnostics",
	CoreCmdClearCounters:            "Clear Counters",
	CoreCmdAssignTimeValue:          "Assign Time Value",
	CoreCmdPollPacketTimes:          "Poll Packet Times",
}

var bootloaderCommands = map[byte]string{
	BootCmdReflash:         "Reflash",
	BootCmdHereIsPage:      "Here Is Page",
	BootCmdLeaveBootloader: "Leave Bootloader",
	BootCmdIsPageBlank:     "Is Page Blank",
	BootCmdEraseUserConfig: "Erase User Config",
}

var spheroCommands = map[byte]string{
	SpheroCmdSetHeading:                  "Set Heading",
	SpheroCmdSetStabilization:            "Set Stabilization",
	SpheroCmdSetRotationRate:             "Set Rotation Rate",
	SpheroCmdSetAppConfigBlock:           "Set Application Configuration Block",
	SpheroCmdGetAppConfigBlock:           "Get Application Configuration Block",
	SpheroCmdReEnableDemo:                "Re-Enable Demo",
	SpheroCmdGetChassisID:                "Get Chassis ID",
	SpheroCmdSetChassisID:                "Set Chassis ID",
	SpheroCmdSelfLevel:                   "Self Level",
	SpheroCmdSetDataStreaming:            "Set Data Streaming",
	SpheroCmdConfigureCollisionDetection: "Configure Collision Detection",
	SpheroCmdSetRGBLEDOutput:             "Set RGB LED Output",
	SpheroCmdSetBackLEDOutput:            "Set Back LED Output",
	SpheroCmdGetRGBLEDOutput:             "Get RGB LED Output",
	SpheroCmdRoll:                        "Roll",
	SpheroCmdSetBoostWithTime:            "Set Boost With Time",
	SpheroCmdSetRawMotorValues:           "Set Raw Motor Values",
	SpheroCmdSetMotionTimeout:            "Set Motion Timeout",
	SpheroCmdSetOptionsFlags:             "Set Options Flags",
	SpheroCmdGetOptionsFlags:             "Get Options Flags",
	SpheroCmdGetConfigBlock:              "Get Configuration Block",
	SpheroCmdSetDeviceMode:               "Set Device Mode",
	SpheroCmdSetConfigBlock:              "Set Configuration Block",
	SpheroCmdGetDeviceMode:               "Get Device Mode",
	SpheroCmdRunMacro:                    "Run Macro",
	SpheroCmdSaveTemporaryMacro:          "Save Temporary Macro",
	SpheroCmdSaveMacro:                   "Save Macro",
	SpheroCmdReinitMacroExecutive:        "Reinit Macro Executive",
	SpheroCmdAbortMacro:                  "Abort Macro",
	SpheroCmdGetMacroStatus:              "Get Macro Status",
	SpheroCmdSetMacroParameter:           "Set Macro Parameter",
	SpheroCmdAppendMacroChunk:            "Append Macro Chunk",
	SpheroCmdEraseOrbbasicStorage:        "Erase Orbbasic Storage",
	SpheroCmdAppendOrbbasicFragment:      "Append Orbbasic Fragment",
	SpheroCmdExecuteOrbbasicProgram:      "Execute Orbbasic Program",
	SpheroCmdAbortOrbbasicProgram:        "Abort Orbbasic Program",
}

func commandsFor(did DeviceID) map[byte]string {
	switch did {
	case DeviceCore:
		return coreCommands
	case DeviceBootloader:
		return bootloaderCommands
	case DeviceSphero:
		return spheroCommands
	}
	return nil
}

// ValidCommandID reports whether cid is a documented command in the
// device's code space.
func ValidCommandID(did DeviceID, cid byte) bool {
	_, ok := commandsFor(did)[cid]
	return ok
}

// CommandName returns the documented name of a (device id, command id)
// pair, or a hex placeholder for undocumented codes.
func CommandName(did DeviceID, cid byte) string {
	if name, ok := commandsFor(did)[cid]; ok {
		return name
	}
	return fmt.Sprintf("unknown command (0x%02X)", cid)
}

// ResponseStatus is the MRSP byte carried in a synchronous response
// frame. Codes outside the documented set decode losslessly; callers can
// distinguish them with Known.
type ResponseStatus uint8

// Documented response status codes. General errors occupy 0x01-0x09,
// flash and macro errors 0x31-0x35.
const (
	StatusOk                 ResponseStatus = 0x00
	StatusGeneralError       ResponseStatus = 0x01
	StatusChecksumError      ResponseStatus = 0x02
	StatusFragmentError      ResponseStatus = 0x03
	StatusUnknownCommand     ResponseStatus = 0x04
	StatusUnsupportedCommand ResponseStatus = 0x05
	StatusBadMessageFormat   ResponseStatus = 0x06
	StatusInvalidParameter   ResponseStatus = 0x07
	StatusExecuteFailed      ResponseStatus = 0x08
	StatusUnknownDevice      ResponseStatus = 0x09
	StatusLowVoltage         ResponseStatus = 0x31
	StatusIllegalPage        ResponseStatus = 0x32
	StatusFlashFail          ResponseStatus = 0x33
	StatusMainAppCorrupt     ResponseStatus = 0x34
	StatusMsgTimeout         ResponseStatus = 0x35
)

var statusNames = map[ResponseStatus]string{
	StatusOk:                 "command succeeded",
	StatusGeneralError:       "general, non-specific error",
	StatusChecksumError:      "received a bad checksum",
	StatusFragmentError:      "received command fragment",
	StatusUnknownCommand:     "unknown command id",
	StatusUnsupportedCommand: "command currently unsupported",
	StatusBadMessageFormat:   "bad message format",
	StatusInvalidParameter:   "parameter value invalid",
	StatusExecuteFailed:      "failed to execute command",
	StatusUnknownDevice:      "unknown device id",
	StatusLowVoltage:         "voltage too low for reflash",
	StatusIllegalPage:        "illegal page number",
	StatusFlashFail:          "page did not reprogram correctly",
	StatusMainAppCorrupt:     "main application corrupt",
	StatusMsgTimeout:         "message state machine timed out",
}

// Known reports whether s is one of the documented status codes.
func (s ResponseStatus) Known() bool {
	_, ok := statusNames[s]
	return ok
}

func (s ResponseStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unused status (0x%02X)", uint8(s))
}

// Err converts a status into an error: nil for StatusOk, otherwise a
// *StatusError. Unknown codes are carried through, not rejected.
func (s ResponseStatus) Err() error {
	if s == StatusOk {
		return nil
	}
	return &StatusError{Status: s}
}
