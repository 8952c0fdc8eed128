// Package spd2010 provides constants for register addresses and bitfields used
// by the SPD2010 capacitive touch controller.
package spd2010

import "time"

const (
	// 7-bit I2C address.
	AddressDefault = 0x53

	// --- Register addresses (16-bit, sent high byte first) ---

	regStatus    = 0x2000 // R, 4 bytes: status low, status high, read length LE
	regPointData = 0x0003 // R, point/gesture payload (HDP)
	regHDPStatus = 0xFC02 // R, 8 bytes
	regFirmware  = 0x2600 // R, 18 bytes

	// Command registers, each written with a 2-byte payload.
	regCmdPointMode = 0x5000
	regCmdStart     = 0x4600
	regCmdCPUStart  = 0x0400
	regCmdClearInt  = 0x0200

	// --- Status low byte ---
	stPointExists = 1 << 0
	stGesture     = 1 << 1
	stKey         = 1 << 2
	stAux         = 1 << 3
	stKeep        = 1 << 4
	stRawOrPoint  = 1 << 5

	// --- Status high byte ---
	stCPURunning = 1 << 3
	stIntLow     = 1 << 4
	stInCPU      = 1 << 5
	stInBIOS     = 1 << 6
	stBusy       = 1 << 7

	// --- HDP status (byte 5 of regHDPStatus) ---
	hdpDone = 0x82
	hdpMore = 0x00

	// --- Payload framing ---
	statusLen    = 4
	hdpStatusLen = 8
	firmwareLen  = 18
	headerLen    = 4
	recordLen    = 6

	// First record id above this value is not a touch slot.
	maxSlotID = 0x0A
	// First record id tagging a gesture packet.
	gestureTag = 0xF6

	// MaxStoredPoints is the storage capacity of a Report.
	MaxStoredPoints = 10
	// DefaultMaxPoints is how many points a Report carries unless configured.
	DefaultMaxPoints = 5

	// Scratch capacity for one assembled report.
	scratchLen = headerLen + MaxStoredPoints*recordLen
	// Bound on HDP continuation rounds per report.
	maxHDPRounds = 8

	// Command turnaround time.
	DefaultSettle = 200 * time.Microsecond
	// Reset pulse timing.
	resetPulse = 50 * time.Millisecond
)

// Command payloads.
var (
	payloadZero = [2]byte{0x00, 0x00}
	payloadOne  = [2]byte{0x01, 0x00}
)
