package geometry

import "testing"

func TestSampleQuad(t *testing.T) {
	q := SampleQuad()
	if len(q.Vertices) != 4 {
		t.Errorf("len(Vertices) = %d, want 4", len(q.Vertices))
	}
	if q.IndexCount() != 6 {
		t.Errorf("IndexCount() = %d, want 6", q.IndexCount())
	}
	for i, idx := range q.Indices {
		if int(idx) >= len(q.Vertices) {
			t.Errorf("index %d = %d out of range", i, idx)
		}
	}

	// Every triangle must wind counter-clockwise to survive back-face culling.
	for tri := 0; tri < len(q.Indices); tri += 3 {
		a := q.Vertices[q.Indices[tri]].Position
		b := q.Vertices[q.Indices[tri+1]].Position
		c := q.Vertices[q.Indices[tri+2]].Position
		cross := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
		if cross <= 0 {
			t.Errorf("triangle %d is not counter-clockwise (cross = %v)", tri/3, cross)
		}
	}
}

func TestAsset(t *testing.T) {
	a := NewAsset("Quad", SampleQuad())
	if a.Label() != "Quad" {
		t.Errorf("Label() = %q, want %q", a.Label(), "Quad")
	}
	if a.Mesh().IndexCount() != 6 {
		t.Errorf("Mesh().IndexCount() = %d, want 6", a.Mesh().IndexCount())
	}
}
