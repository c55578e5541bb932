// Package memmap defines the fixed layout of the thm address space: the
// base constants and the zones derived from them. Every other package that
// needs to know where RAM ends or ROM begins imports this package rather
// than repeating the arithmetic.
package memmap

import "time"

const (
	// RegCount is the number of general-purpose registers.
	RegCount = 32

	// MaxRegister is the highest valid general-purpose register ordinal.
	MaxRegister = RegCount - 1

	// Special register ordinals, fixed by the instruction encoding.
	RegPC = 256 - 1
	RegSP = 254
	RegCS = 253

	// InterruptsCount is the number of PIC lines.
	InterruptsCount = 256

	// IntAPI and IntClock are the two reserved interrupt lines.
	IntAPI   = 0
	IntClock = 1
)

// ClockSpeed is the default interval between clock-driven INT_CLOCK ticks.
const ClockSpeed = time.Microsecond

const (
	// StackLen is the stack size in 32-bit words.
	StackLen = 1024

	// StackSize is the stack size in bytes.
	StackSize = StackLen * 4

	// MinRAMSize is the minimum amount of RAM a VM must be constructed
	// with: enough to hold the full stack.
	MinRAMSize = StackSize

	// MaxAddress is the highest addressable byte (a 32-bit address space).
	MaxAddress = 0xFFFFFFFF

	// ROMSize is the size of the ROM region: the top 32 MiB of the
	// address space.
	ROMSize = 32 * 1024 * 1024

	// ROMStart is the first address of the ROM region.
	ROMStart = MaxAddress - ROMSize + 1

	// IVSize is the size of the interrupt vector table, 4 bytes per line.
	IVSize = InterruptsCount * 4

	// IVStart is the first address of the interrupt vector table,
	// immediately below ROM.
	IVStart = ROMStart - IVSize

	// Video geometry: a fixed 320x200 framebuffer at 4 bytes/pixel.
	VideoWidth       = 320
	VideoHeight      = 200
	VideoPixelDepth  = 4
	VideoBufferSize  = VideoWidth * VideoHeight * VideoPixelDepth
	VideoControlSize = 28 // 4-byte buffer index + 6 big-endian u32 fields

	// VideoBuffer1 and VideoBuffer0 are the two framebuffers, immediately
	// below the interrupt vector table.
	VideoBuffer1 = IVStart - VideoBufferSize
	VideoBuffer0 = VideoBuffer1 - VideoBufferSize

	// VideoStart is the address of the video control block, RestAPISize
	// bytes below VideoBuffer0; the REST-API window lies immediately
	// below it.
	VideoStart = VideoBuffer0 - RestAPISize

	// RestAPISize is the size of the REST-API window.
	RestAPISize = 1024

	// RestAPIStart is the first address of the REST-API window.
	RestAPIStart = VideoStart - RestAPISize
)

// ZoneMode describes the access mode of a memory zone.
type ZoneMode int

const (
	ModeR ZoneMode = iota
	ModeW
	ModeRW
)

func (m ZoneMode) String() string {
	switch m {
	case ModeR:
		return "R"
	case ModeW:
		return "W"
	case ModeRW:
		return "RW"
	default:
		return "?"
	}
}

func (m ZoneMode) Readable() bool {
	return m == ModeR || m == ModeRW
}

func (m ZoneMode) Writable() bool {
	return m == ModeW || m == ModeRW
}

// Zone describes one named, disjoint region of the address space. End is
// exclusive and held as uint64 since the ROM zone runs up to and including
// MaxAddress (0xFFFFFFFF), one past which does not fit in a uint32.
type Zone struct {
	Name  string
	Start uint64
	End   uint64 // exclusive
	Mode  ZoneMode
}

func (z Zone) Contains(addr uint32) bool {
	a := uint64(addr)
	return a >= z.Start && a < z.End
}

// Zones returns the fixed zone list for a VM constructed with the given
// amount of RAM. ramSize must be at least MinRAMSize; callers are expected
// to enforce that before calling Zones.
func Zones(ramSize uint32) []Zone {
	return []Zone{
		{Name: "ram", Start: 0, End: uint64(ramSize), Mode: ModeRW},
		{Name: "rest-api", Start: RestAPIStart, End: RestAPIStart + RestAPISize, Mode: ModeRW},
		{Name: "video-control", Start: VideoStart, End: VideoStart + VideoControlSize, Mode: ModeRW},
		{Name: "video-buffer-0", Start: VideoBuffer0, End: VideoBuffer0 + VideoBufferSize, Mode: ModeRW},
		{Name: "video-buffer-1", Start: VideoBuffer1, End: VideoBuffer1 + VideoBufferSize, Mode: ModeRW},
		{Name: "interrupt-vectors", Start: IVStart, End: IVStart + IVSize, Mode: ModeRW},
		{Name: "rom", Start: ROMStart, End: MaxAddress + 1, Mode: ModeR},
	}
}
