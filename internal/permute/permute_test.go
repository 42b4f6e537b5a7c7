package permute

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStrides(t *testing.T) {
	got := Strides([]int{2, 3, 4})
	want := []int{12, 4, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Strides mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RejectsBadPerm(t *testing.T) {
	cases := [][]int{
		{0, 0, 1},
		{0, 1, 3},
		{0, -1, 2},
		{0, 1},
	}
	for _, perm := range cases {
		if _, err := New([]int{2, 3, 4}, perm); err == nil {
			t.Errorf("New with perm %v should fail", perm)
		}
	}
}

func TestApply_Matrix(t *testing.T) {
	// 2x3 row-major matrix, transposed to 3x2.
	in := []float32{
		1, 2, 3,
		4, 5, 6,
	}
	d, err := New([]int{2, 3}, []int{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	out := make([]float32, 6)
	Apply(d, in, out)

	want := []float32{
		1, 4,
		2, 5,
		3, 6,
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("transpose mismatch (-want +got):\n%s", diff)
	}
}

// TestApply_4D pins one hand-computed rank-4 remap: with perm {0,2,3,1}
// the element at source coordinates (a,b,c,d) lands at (a,c,d,b).
func TestApply_4D(t *testing.T) {
	dims := []int{2, 3, 4, 5}
	perm := []int{0, 2, 3, 1}
	n := 2 * 3 * 4 * 5

	in := make([]int32, n)
	for i := range in {
		in[i] = int32(i)
	}
	d, err := New(dims, perm)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]int32, n)
	Apply(d, in, out)

	srcStrides := Strides(dims)
	outStrides := Strides([]int{2, 4, 5, 3})
	for a := 0; a < 2; a++ {
		for b := 0; b < 3; b++ {
			for c := 0; c < 4; c++ {
				for e := 0; e < 5; e++ {
					src := a*srcStrides[0] + b*srcStrides[1] + c*srcStrides[2] + e*srcStrides[3]
					dst := a*outStrides[0] + c*outStrides[1] + e*outStrides[2] + b*outStrides[3]
					if out[dst] != in[src] {
						t.Fatalf("out[%d] = %d, want in[%d] = %d", dst, out[dst], src, in[src])
					}
				}
			}
		}
	}
}

func TestInverse_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		rank := 2 + rng.Intn(3)
		dims := make([]int, rank)
		for i := range dims {
			dims[i] = 1 + rng.Intn(5)
		}
		perm := rng.Perm(rank)

		d, err := New(dims, perm)
		if err != nil {
			t.Fatal(err)
		}
		inv, err := New(d.OutDims, Inverse(perm))
		if err != nil {
			t.Fatal(err)
		}

		n := d.NumElements()
		in := make([]int32, n)
		for i := range in {
			in[i] = int32(i)
		}
		mid := make([]int32, n)
		back := make([]int32, n)
		Apply(d, in, mid)
		Apply(inv, mid, back)

		if diff := cmp.Diff(in, back); diff != "" {
			t.Fatalf("dims %v perm %v: round trip mismatch (-want +got):\n%s", dims, perm, diff)
		}
	}
}

func TestSourceIndex_Identity(t *testing.T) {
	d, err := New([]int{3, 4, 5}, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < d.NumElements(); i++ {
		if d.SourceIndex(i) != i {
			t.Fatalf("identity permutation moved index %d to %d", i, d.SourceIndex(i))
		}
	}
}
