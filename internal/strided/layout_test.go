package strided

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robert-malhotra/go-batched/internal/index"
	"github.com/robert-malhotra/go-batched/internal/shape"
)

func resolve(t *testing.T, l Layout, terms ...index.Term) *index.Selection {
	t.Helper()
	sel, err := index.Resolve(terms, l.Shape)
	if err != nil {
		t.Fatalf("Resolve(%s) error = %v", index.Format(terms), err)
	}
	return sel
}

func TestDense(t *testing.T) {
	l := Dense(shape.Shape{2, 3, 4})
	if diff := cmp.Diff([]int{12, 4, 1}, l.Strides); diff != "" {
		t.Errorf("Strides mismatch (-want +got):\n%s", diff)
	}
	if !l.IsContiguous() {
		t.Errorf("dense layout is not contiguous")
	}
	if l.NumElements() != 24 || l.Rank() != 3 {
		t.Errorf("NumElements() = %d, Rank() = %d", l.NumElements(), l.Rank())
	}
}

func TestBroadcastTo(t *testing.T) {
	l := Dense(shape.Shape{3, 1})

	b, err := l.BroadcastTo(shape.Shape{2, 3, 4})
	if err != nil {
		t.Fatalf("BroadcastTo() error = %v", err)
	}
	if diff := cmp.Diff([]int{0, 1, 0}, b.Strides); diff != "" {
		t.Errorf("Strides mismatch (-want +got):\n%s", diff)
	}
	if b.IsContiguous() {
		t.Errorf("broadcast layout reported contiguous")
	}
	if got := b.Offsets(); len(got) != 24 || got[4] != 1 || got[12] != 0 {
		t.Errorf("Offsets() = %v", got)
	}

	if _, err := l.BroadcastTo(shape.Shape{2, 4}); !errors.Is(err, ErrBroadcast) {
		t.Errorf("BroadcastTo([2 4]) error = %v, want ErrBroadcast", err)
	}
}

func TestSelect(t *testing.T) {
	l := Dense(shape.Shape{3, 4, 2})

	tests := []struct {
		name    string
		terms   []index.Term
		shape   shape.Shape
		offsets []int
	}{
		{"Int", []index.Term{index.Int(1)}, shape.Shape{4, 2}, []int{8, 9, 10, 11, 12, 13, 14, 15}},
		{"Range", []index.Term{index.Range(1, 3), index.Int(0)}, shape.Shape{2, 2}, []int{8, 9, 16, 17}},
		{"Reverse", []index.Term{index.Full().WithStep(-1), index.Int(3), index.Int(1)}, shape.Shape{3}, []int{23, 15, 7}},
		{"Step", []index.Term{index.Int(0), index.Full().WithStep(3)}, shape.Shape{2, 2}, []int{0, 1, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Select(resolve(t, l, tt.terms...))
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if diff := cmp.Diff(tt.shape, got.Shape); diff != "" {
				t.Errorf("Shape mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.offsets, got.Offsets()); diff != "" {
				t.Errorf("Offsets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectCarriesTrailingAxes(t *testing.T) {
	l := Dense(shape.Shape{3, 4, 2})
	sel, err := index.Resolve([]index.Term{index.Int(2)}, shape.Shape{3, 4})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	got, err := l.Select(sel)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if diff := cmp.Diff(shape.Shape{4, 2}, got.Shape); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}
	if got.Offset != 16 {
		t.Errorf("Offset = %d, want 16", got.Offset)
	}
}

func TestSelectRejectsMask(t *testing.T) {
	l := Dense(shape.Shape{2, 2})
	sel := resolve(t, l, index.Mask(shape.Shape{2}, []bool{true, false}))
	if _, err := l.Select(sel); !errors.Is(err, ErrMask) {
		t.Errorf("Select() error = %v, want ErrMask", err)
	}

	wide, err := index.Resolve(nil, shape.Shape{2, 2, 2})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := l.Select(wide); !errors.Is(err, ErrRank) {
		t.Errorf("Select() error = %v, want ErrRank", err)
	}
}

func TestReshape(t *testing.T) {
	tests := []struct {
		name     string
		layout   func(t *testing.T) Layout
		target   shape.Shape
		wantOK   bool
		wantStrd []int
	}{
		{
			name:     "DenseSplit",
			layout:   func(*testing.T) Layout { return Dense(shape.Shape{4, 6}) },
			target:   shape.Shape{2, 2, 3, 2},
			wantOK:   true,
			wantStrd: []int{12, 6, 2, 1},
		},
		{
			name:     "DenseMerge",
			layout:   func(*testing.T) Layout { return Dense(shape.Shape{2, 3, 4}) },
			target:   shape.Shape{6, 4},
			wantOK:   true,
			wantStrd: []int{4, 1},
		},
		{
			name:     "TrailingOnes",
			layout:   func(*testing.T) Layout { return Dense(shape.Shape{6}) },
			target:   shape.Shape{6, 1, 1},
			wantOK:   true,
			wantStrd: []int{1, 1, 1},
		},
		{
			name: "SlicedRowsMerge",
			layout: func(t *testing.T) Layout {
				l := Dense(shape.Shape{4, 6})
				got, err := l.Select(resolve(t, l, index.Full().WithStep(2)))
				if err != nil {
					t.Fatalf("Select() error = %v", err)
				}
				return got
			},
			target:   shape.Shape{2, 2, 3},
			wantOK:   true,
			wantStrd: []int{12, 3, 1},
		},
		{
			name: "SlicedRowsFlatten",
			layout: func(t *testing.T) Layout {
				l := Dense(shape.Shape{4, 6})
				got, err := l.Select(resolve(t, l, index.Full().WithStep(2)))
				if err != nil {
					t.Fatalf("Select() error = %v", err)
				}
				return got
			},
			target: shape.Shape{12},
			wantOK: false,
		},
		{
			name: "BroadcastFlatten",
			layout: func(t *testing.T) Layout {
				got, err := Dense(shape.Shape{3}).BroadcastTo(shape.Shape{2, 3})
				if err != nil {
					t.Fatalf("BroadcastTo() error = %v", err)
				}
				return got
			},
			target: shape.Shape{6},
			wantOK: false,
		},
		{
			name: "BroadcastKeepsAxes",
			layout: func(t *testing.T) Layout {
				got, err := Dense(shape.Shape{3}).BroadcastTo(shape.Shape{2, 3})
				if err != nil {
					t.Fatalf("BroadcastTo() error = %v", err)
				}
				return got
			},
			target:   shape.Shape{2, 1, 3},
			wantOK:   true,
			wantStrd: []int{0, 3, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.layout(t)
			got, ok := l.Reshape(tt.target)
			if ok != tt.wantOK {
				t.Fatalf("Reshape() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.wantStrd, got.Strides); diff != "" {
				t.Errorf("Strides mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(l.Offsets(), got.Offsets()); diff != "" {
				t.Errorf("reshaped view reads different elements (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGather(t *testing.T) {
	l := Dense(shape.Shape{2, 3, 2})
	sel := resolve(t, l, index.Mask(shape.Shape{2, 3}, []bool{true, false, false, false, true, true}))

	s, offsets, err := l.Gather(sel)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if diff := cmp.Diff(shape.Shape{3, 2}, s); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 8, 9, 10, 11}, offsets); diff != "" {
		t.Errorf("Offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestGatherMixed(t *testing.T) {
	l := Dense(shape.Shape{2, 3, 4})
	sel := resolve(t, l,
		index.Int(1),
		index.Mask(shape.Shape{3}, []bool{true, false, true}),
		index.Range(1, 4).WithStep(2),
	)

	s, offsets, err := l.Gather(sel)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if diff := cmp.Diff(shape.Shape{2, 2}, s); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{13, 15, 21, 23}, offsets); diff != "" {
		t.Errorf("Offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestOffsetsEmptyAndScalar(t *testing.T) {
	if got := Dense(shape.Shape{0, 3}).Offsets(); len(got) != 0 {
		t.Errorf("Offsets() of empty layout = %v", got)
	}
	if diff := cmp.Diff([]int{0}, Dense(shape.Shape{}).Offsets()); diff != "" {
		t.Errorf("Offsets() of scalar (-want +got):\n%s", diff)
	}
}
