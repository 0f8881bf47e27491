package common

import (
	"math"
	"testing"
)

func approxEqual(a, b [16]float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			return false
		}
	}
	return true
}

func TestIdentity(t *testing.T) {
	m := [16]float32{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}
	Identity(&m)
	want := Scale(1, 1, 1)
	if m != want {
		t.Errorf("Identity() = %v, want %v", m, want)
	}
}

func TestTranslationColumnMajor(t *testing.T) {
	m := Translation(1, 2, 3)
	if m[12] != 1 || m[13] != 2 || m[14] != 3 || m[15] != 1 {
		t.Errorf("Translation(1,2,3) last column = %v, want [1 2 3 1]", m[12:16])
	}
}

func TestMul4Identity(t *testing.T) {
	var id [16]float32
	Identity(&id)
	m := Translation(0.5, -0.25, 0)
	if got := Mul4(id, m); got != m {
		t.Errorf("Mul4(I, m) = %v, want %v", got, m)
	}
	if got := Mul4(m, id); got != m {
		t.Errorf("Mul4(m, I) = %v, want %v", got, m)
	}
}

func TestBuildModelMatrix2D(t *testing.T) {
	tests := []struct {
		name string
		got  [16]float32
		want [16]float32
	}{
		{
			name: "translate only",
			got:  BuildModelMatrix2D(0.5, 0.5, 0, 1, 1),
			want: Translation(0.5, 0.5, 0),
		},
		{
			name: "scale only",
			got:  BuildModelMatrix2D(0, 0, 0, 2, 3),
			want: Scale(2, 3, 1),
		},
		{
			name: "quarter turn",
			got:  BuildModelMatrix2D(0, 0, math.Pi/2, 1, 1),
			want: [16]float32{0, 1, 0, 0, -1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !approxEqual(tt.got, tt.want) {
				t.Errorf("BuildModelMatrix2D = %v, want %v", tt.got, tt.want)
			}
		})
	}
}
