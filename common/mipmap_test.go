package common

import (
	"bytes"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestMipLevelCount(t *testing.T) {
	tests := []struct {
		name string
		dims []uint32
		want uint32
	}{
		{"1x1", []uint32{1, 1}, 1},
		{"2x2", []uint32{2, 2}, 2},
		{"3x1", []uint32{3, 1}, 2},
		{"256x64", []uint32{256, 64}, 9},
		{"2048 shadow map", []uint32{2048, 2048}, 12},
		{"non power of two", []uint32{1000, 600}, 10},
		{"volume", []uint32{4, 4, 16}, 5},
		{"empty", nil, 1},
		{"zero", []uint32{0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MipLevelCount(tt.dims...); got != tt.want {
				t.Errorf("MipLevelCount(%v) = %d, want %d", tt.dims, got, tt.want)
			}
		})
	}
}

func TestDownsample(t *testing.T) {
	t.Run("2x2 block mean", func(t *testing.T) {
		src := TextureStagingData{
			Pixels: []byte{
				0, 0, 0, 255, 100, 0, 0, 255, 255, 255, 255, 255, 255, 255, 255, 255,
				200, 0, 0, 255, 100, 0, 0, 255, 255, 255, 255, 255, 255, 255, 255, 255,
			},
			Width:  4,
			Height: 2,
		}
		got := src.Downsample()
		if got.Width != 2 || got.Height != 1 {
			t.Fatalf("size = %dx%d, want 2x1", got.Width, got.Height)
		}
		want := []byte{100, 0, 0, 255, 255, 255, 255, 255}
		if !bytes.Equal(got.Pixels, want) {
			t.Errorf("pixels = %v, want %v", got.Pixels, want)
		}
	})

	t.Run("uniform stays uniform", func(t *testing.T) {
		src := TextureStagingData{Pixels: bytes.Repeat([]byte{10, 20, 30, 40}, 5*3), Width: 5, Height: 3}
		got := src.Downsample()
		if got.Width != 2 || got.Height != 1 {
			t.Fatalf("size = %dx%d, want 2x1", got.Width, got.Height)
		}
		if !bytes.Equal(got.Pixels, bytes.Repeat([]byte{10, 20, 30, 40}, 2)) {
			t.Errorf("pixels = %v", got.Pixels)
		}
	})

	t.Run("1x1 stays 1x1", func(t *testing.T) {
		src := TextureStagingData{Pixels: []byte{1, 2, 3, 4}, Width: 1, Height: 1}
		got := src.Downsample()
		if got.Width != 1 || got.Height != 1 || !bytes.Equal(got.Pixels, src.Pixels) {
			t.Errorf("got %+v", got)
		}
	})
}

func TestGenerateMips(t *testing.T) {
	src := TextureStagingData{Pixels: bytes.Repeat([]byte{255, 0, 0, 255}, 8*4), Width: 8, Height: 4}
	levels := src.GenerateMips()
	if len(levels) != 4 {
		t.Fatalf("levels = %d, want 4", len(levels))
	}
	wantSizes := [][2]uint32{{8, 4}, {4, 2}, {2, 1}, {1, 1}}
	for i, l := range levels {
		if l.Width != wantSizes[i][0] || l.Height != wantSizes[i][1] {
			t.Errorf("level %d = %dx%d, want %dx%d", i, l.Width, l.Height, wantSizes[i][0], wantSizes[i][1])
		}
		if len(l.Pixels) != int(l.Width*l.Height*4) {
			t.Errorf("level %d has %d bytes", i, len(l.Pixels))
		}
		if l.Texel(0, 0) != [4]float32{1, 0, 0, 1} {
			t.Errorf("level %d texel = %v", i, l.Texel(0, 0))
		}
	}
}

func TestMipSampler(t *testing.T) {
	s := MipSampler()
	if s.MagFilter != wgpu.FilterModeLinear || s.Compare != wgpu.CompareFunctionUndefined {
		t.Errorf("sampler = %+v", s)
	}
	if s.AddressModeU != wgpu.AddressModeClampToEdge || s.AddressModeV != wgpu.AddressModeClampToEdge {
		t.Errorf("address modes = %v/%v", s.AddressModeU, s.AddressModeV)
	}
}
