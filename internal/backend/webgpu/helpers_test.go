package webgpu

import (
	"encoding/binary"
	"testing"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/slate-ml/slate/internal/permute"
)

func TestAdapterLabel(t *testing.T) {
	if got := adapterLabel(nil); got != "unknown adapter" {
		t.Errorf("adapterLabel(nil) = %q", got)
	}
	info := &wgpu.AdapterInfoGo{Device: "RTX 4090", Vendor: "NVIDIA"}
	if got := adapterLabel(info); got != "RTX 4090 NVIDIA" {
		t.Errorf("adapterLabel = %q, want %q", got, "RTX 4090 NVIDIA")
	}
	if got := adapterLabel(&wgpu.AdapterInfoGo{}); got != "unknown adapter" {
		t.Errorf("adapterLabel(empty) = %q", got)
	}
}

func TestAlignUp(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 4, 3: 4, 4: 4, 5: 8, 1023: 1024}
	for in, want := range cases {
		if got := alignUp(in); got != want {
			t.Errorf("alignUp(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestWorkgroups(t *testing.T) {
	cases := map[int]uint32{1: 1, 255: 1, 256: 1, 257: 2, 4096: 16}
	for n, want := range cases {
		if got := workgroups(n); got != want {
			t.Errorf("workgroups(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 1000: 1024}
	for n, want := range cases {
		if got := nextPow2(n); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestParams_LittleEndian(t *testing.T) {
	data := params(1, 0xdeadbeef)
	if len(data) != 8 {
		t.Fatalf("len = %d, want 8", len(data))
	}
	if binary.LittleEndian.Uint32(data[0:]) != 1 {
		t.Error("word 0 mismatch")
	}
	if binary.LittleEndian.Uint32(data[4:]) != 0xdeadbeef {
		t.Error("word 1 mismatch")
	}
}

// The uniform layout is fixed by the shader struct: size, rank, two pad
// words, then dims, source strides and output strides as vec4 lanes.
func TestTransposeParams_Layout(t *testing.T) {
	d, err := permute.New([]int{2, 3, 4}, []int{2, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	data := transposeParams(d)
	if len(data) != 64 {
		t.Fatalf("len = %d, want 64", len(data))
	}
	word := func(i int) uint32 { return binary.LittleEndian.Uint32(data[4*i:]) }

	if word(0) != 24 {
		t.Errorf("size = %d, want 24", word(0))
	}
	if word(1) != 3 {
		t.Errorf("rank = %d, want 3", word(1))
	}
	// OutDims = dims[perm] = (4, 2, 3); unused lane padded to 1.
	for i, want := range []uint32{4, 2, 3, 1} {
		if word(4+i) != want {
			t.Errorf("out_dims[%d] = %d, want %d", i, word(4+i), want)
		}
	}
	// SrcStrides = strides(dims)[perm] = (1, 12, 4).
	for i, want := range []uint32{1, 12, 4} {
		if word(8+i) != want {
			t.Errorf("src_strides[%d] = %d, want %d", i, word(8+i), want)
		}
	}
	// OutStrides = row-major strides over (4, 2, 3).
	for i, want := range []uint32{6, 3, 1} {
		if word(12+i) != want {
			t.Errorf("out_strides[%d] = %d, want %d", i, word(12+i), want)
		}
	}
}
