package vm

import (
	"testing"

	"github.com/thoriumlang/thm/memmap"
)

func TestNewVideoControlWritesGeometry(t *testing.T) {
	mem := NewMemory(memmap.MinRAMSize, nil)
	NewVideoControl(mem)

	width, _ := mem.GetWord(memmap.VideoStart + 4)
	height, _ := mem.GetWord(memmap.VideoStart + 8)
	depth, _ := mem.GetWord(memmap.VideoStart + 12)
	size, _ := mem.GetWord(memmap.VideoStart + 16)
	buf0, _ := mem.GetWord(memmap.VideoStart + 20)
	buf1, _ := mem.GetWord(memmap.VideoStart + 24)

	if width != memmap.VideoWidth || height != memmap.VideoHeight {
		t.Errorf("geometry = %dx%d, want %dx%d", width, height, memmap.VideoWidth, memmap.VideoHeight)
	}
	if depth != memmap.VideoPixelDepth {
		t.Errorf("depth = %d, want %d", depth, memmap.VideoPixelDepth)
	}
	if size != memmap.VideoBufferSize {
		t.Errorf("size = %d, want %d", size, memmap.VideoBufferSize)
	}
	if buf0 != memmap.VideoBuffer0 || buf1 != memmap.VideoBuffer1 {
		t.Errorf("buffers = (%d,%d), want (%d,%d)", buf0, buf1, memmap.VideoBuffer0, memmap.VideoBuffer1)
	}
}

func TestVideoControlActiveBufferSwap(t *testing.T) {
	mem := NewMemory(memmap.MinRAMSize, nil)
	v := NewVideoControl(mem)

	if v.ActiveBuffer() != 0 {
		t.Fatalf("ActiveBuffer() = %d, want 0 initially", v.ActiveBuffer())
	}
	if v.ActiveBufferAddress() != memmap.VideoBuffer0 {
		t.Fatalf("ActiveBufferAddress() = 0x%X, want buffer 0", v.ActiveBufferAddress())
	}

	v.SetActiveBuffer(1)
	if v.ActiveBuffer() != 1 {
		t.Fatalf("ActiveBuffer() = %d, want 1 after swap", v.ActiveBuffer())
	}
	if v.ActiveBufferAddress() != memmap.VideoBuffer1 {
		t.Fatalf("ActiveBufferAddress() = 0x%X, want buffer 1", v.ActiveBufferAddress())
	}
}

func TestVideoControlFrameReturnsActiveBufferBytes(t *testing.T) {
	mem := NewMemory(memmap.MinRAMSize, nil)
	v := NewVideoControl(mem)

	mem.Set(memmap.VideoBuffer0, 0xAB)
	frame, err := v.Frame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frame) != memmap.VideoBufferSize {
		t.Fatalf("len(frame) = %d, want %d", len(frame), memmap.VideoBufferSize)
	}
	if frame[0] != 0xAB {
		t.Errorf("frame[0] = 0x%X, want 0xAB", frame[0])
	}
}
