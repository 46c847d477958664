package voxel

import "testing"

func TestUsageBitsMarkIsIdempotent(t *testing.T) {
	u := NewUsageBits(100)
	u.Mark(42)
	u.Mark(42)
	if !u.Test(42) {
		t.Fatalf("expected bit 42 set after Mark")
	}
	if u.Test(41) || u.Test(43) {
		t.Fatalf("neighbouring bits must remain clear")
	}
}

func TestUsageBitsClear(t *testing.T) {
	u := NewUsageBits(64)
	u.Mark(3)
	u.Mark(60)
	u.Clear()
	for i := uint32(0); i < 64; i++ {
		if u.Test(i) {
			t.Fatalf("bit %d still set after Clear", i)
		}
	}
}
