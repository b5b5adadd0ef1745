package status

// Request Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotRequestCode holds the requested mode.
const SlotRequestCode = 0

// SlotRebootCount holds the consecutive reboot count (saturating).
const SlotRebootCount = 1

// SlotLastStartupHi / Lo hold the previous startup time, epoch seconds, big-endian words.
const SlotLastStartupHi = 2
const SlotLastStartupLo = 3

// SlotDetectedAtHi / Lo hold the detection time, epoch seconds, big-endian words.
const SlotDetectedAtHi = 4
const SlotDetectedAtLo = 5

// ---- RESERVED RANGE ----

// Slots 6-10 are reserved for future use.
const SlotReservedStart = 6
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- REQUEST CODES ----

// RequestNone means no mode change is requested.
const RequestNone uint16 = 0

// RequestMalfunction asks the mode controller to enter MALF.
const RequestMalfunction uint16 = 1

// RequestShutdown asks the mode controller to shut the device down.
const RequestShutdown uint16 = 2
