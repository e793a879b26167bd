package delay

import (
	"math"
	"testing"
)

func TestNewRejectsInvalidCapacity(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("New(0) should fail")
	}
	if _, err := New(-4); err == nil {
		t.Fatal("New(-4) should fail")
	}
}

func TestReadIntegerDelay(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 1; i <= 8; i++ {
		d.Write(float64(i))
	}

	// Most recent sample is delay 1.
	if got := d.Read(1); got != 8 {
		t.Errorf("Read(1) = %v, want 8", got)
	}
	if got := d.Read(4); got != 5 {
		t.Errorf("Read(4) = %v, want 5", got)
	}
}

func TestReadWrapsAroundCapacity(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 1; i <= 10; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(1); got != 10 {
		t.Errorf("Read(1) after wrap = %v, want 10", got)
	}
	if got := d.Read(4); got != 7 {
		t.Errorf("Read(4) after wrap = %v, want 7", got)
	}
}

func TestReadFractionalInterpolatesLinearly(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 16; i++ {
		d.Write(float64(i))
	}

	// Halfway between delay 2 (value 14) and delay 3 (value 13).
	got := d.ReadFractional(2.5)
	if math.Abs(got-13.5) > 1e-12 {
		t.Errorf("ReadFractional(2.5) = %v, want 13.5", got)
	}

	// Integer offsets match plain reads.
	if got := d.ReadFractional(5); math.Abs(got-d.Read(5)) > 1e-12 {
		t.Errorf("ReadFractional(5) = %v, want %v", got, d.Read(5))
	}
}

func TestReadFractionalClampsToCapacity(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 1; i <= 8; i++ {
		d.Write(float64(i))
	}

	// Requests beyond capacity-2 clamp instead of wrapping into fresh data.
	want := d.ReadFractional(6)
	if got := d.ReadFractional(100); got != want {
		t.Errorf("ReadFractional(100) = %v, want clamped %v", got, want)
	}

	if got := d.ReadFractional(-3); got != d.ReadFractional(1) {
		t.Errorf("negative delay should clamp to 1, got %v", got)
	}
}

func TestReadFractionalHermite(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// A linear ramp is reproduced exactly by the cubic kernel.
	for i := 0; i < 16; i++ {
		d.Write(float64(i))
	}

	got := d.ReadFractionalHermite(3.25)
	if math.Abs(got-12.75) > 1e-12 {
		t.Errorf("ReadFractionalHermite(3.25) = %v, want 12.75", got)
	}

	// Integer offsets match plain reads.
	if got := d.ReadFractionalHermite(5); math.Abs(got-d.Read(5)) > 1e-12 {
		t.Errorf("ReadFractionalHermite(5) = %v, want %v", got, d.Read(5))
	}

	// Requests outside [2, capacity-3] clamp.
	if got := d.ReadFractionalHermite(100); got != d.ReadFractionalHermite(13) {
		t.Errorf("ReadFractionalHermite(100) = %v, want clamped", got)
	}
	if got := d.ReadFractionalHermite(0); got != d.ReadFractionalHermite(2) {
		t.Errorf("ReadFractionalHermite(0) = %v, want clamped to 2", got)
	}
}

func TestResetClearsState(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	d.Write(1)
	d.Write(2)
	d.Reset()

	for i := 1; i <= 8; i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("Read(%d) after Reset = %v, want 0", i, got)
		}
	}
}
