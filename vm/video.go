package vm

import "github.com/thoriumlang/thm/memmap"

// VideoControl is a read/write view over the video control block at
// memmap.VideoStart: a 4-byte current-buffer index followed by six
// big-endian u32 fields describing the fixed framebuffer geometry
// (spec §4.6). It is a thin adapter, not a rendering surface — the
// actual pixel data lives in the two video-buffer zones and is read
// straight out of Memory by a host-side video-copy loop.
type VideoControl struct {
	mem *Memory
}

// NewVideoControl returns a view over mem's video control block,
// initialized with the fixed geometry constants.
func NewVideoControl(mem *Memory) *VideoControl {
	v := &VideoControl{mem: mem}
	v.mem.SetWord(memmap.VideoStart+4, memmap.VideoWidth)
	v.mem.SetWord(memmap.VideoStart+8, memmap.VideoHeight)
	v.mem.SetWord(memmap.VideoStart+12, memmap.VideoPixelDepth)
	v.mem.SetWord(memmap.VideoStart+16, memmap.VideoBufferSize)
	v.mem.SetWord(memmap.VideoStart+20, memmap.VideoBuffer0)
	v.mem.SetWord(memmap.VideoStart+24, memmap.VideoBuffer1)
	return v
}

// ActiveBuffer reports which of the two framebuffers (0 or 1) the CPU
// currently wants displayed.
func (v *VideoControl) ActiveBuffer() uint32 {
	idx, _ := v.mem.GetWord(memmap.VideoStart)
	return idx
}

// SetActiveBuffer flips the displayed buffer; the CPU writes this field
// to request a swap after finishing a frame.
func (v *VideoControl) SetActiveBuffer(i uint32) {
	v.mem.SetWord(memmap.VideoStart, i)
}

// ActiveBufferAddress returns the base address of the currently active
// framebuffer, for a host-side copy loop to read from.
func (v *VideoControl) ActiveBufferAddress() uint32 {
	if v.ActiveBuffer() == 0 {
		return memmap.VideoBuffer0
	}
	return memmap.VideoBuffer1
}

// Frame returns a copy of the currently active framebuffer's raw pixel
// bytes (spec: WIDTH*HEIGHT*PIXEL_DEPTH bytes, row-major).
func (v *VideoControl) Frame() ([]byte, error) {
	b, ok := v.mem.GetBytes(v.ActiveBufferAddress(), memmap.VideoBufferSize)
	if !ok {
		return nil, &Fault{Message: "video: active framebuffer is unreadable"}
	}
	return b, nil
}
