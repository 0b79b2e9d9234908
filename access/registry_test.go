package access

import "testing"

func TestRegistry_RejectsUnsupportedLengths(t *testing.T) {
	r := NewRegistry()
	r.SeedDefaults()

	for n := 0; n <= 10; n++ {
		if n == UIDLength4 || n == UIDLength7 {
			continue
		}
		uid := make(UID, n)
		for i := range uid {
			uid[i] = 0xB4
		}
		r.Add(uid)
		if r.IsAuthorized(uid) {
			t.Errorf("IsAuthorized(len=%d) = true, want false", n)
		}
	}

	n4, n7 := r.Len()
	if n4 != 1 || n7 != 2 {
		t.Errorf("Len() = %d, %d, want 1, 2", n4, n7)
	}
}

func TestRegistry_AddThenAuthorize(t *testing.T) {
	tests := []struct {
		name string
		uid  UID
	}{
		{name: "four byte", uid: UID{0xDE, 0xAD, 0xBE, 0xEF}},
		{name: "seven byte", uid: UID{0x04, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			r.Add(tt.uid)
			if !r.IsAuthorized(tt.uid) {
				t.Fatalf("IsAuthorized(%s) = false after Add", tt.uid)
			}

			// No prefix or partial matching
			if r.IsAuthorized(tt.uid[:len(tt.uid)-1]) {
				t.Errorf("IsAuthorized(prefix of %s) = true", tt.uid)
			}

			flipped := tt.uid.Clone()
			flipped[len(flipped)-1] ^= 0xFF
			if r.IsAuthorized(flipped) {
				t.Errorf("IsAuthorized(%s) = true, want false", flipped)
			}
		})
	}
}

func TestRegistry_CapacityIsNeverExceeded(t *testing.T) {
	r := NewRegistry()
	first := UID{0x01, 0x02, 0x03, 0x04}
	extra := UID{0x05, 0x06, 0x07, 0x08}

	r.Add(first)
	r.Add(extra)

	if !r.IsAuthorized(first) {
		t.Error("first uid lost after overflow add")
	}
	if r.IsAuthorized(extra) {
		t.Error("uid added beyond capacity is authorized")
	}
	if n4, _ := r.Len(); n4 != DefaultCapacity4 {
		t.Errorf("4-byte count = %d, want %d", n4, DefaultCapacity4)
	}
}

func TestRegistry_StoresCopy(t *testing.T) {
	r := NewRegistry()
	uid := UID{0xB4, 0x12, 0x34, 0x56}
	r.Add(uid)
	uid[0] = 0x00

	if !r.IsAuthorized(UID{0xB4, 0x12, 0x34, 0x56}) {
		t.Error("registry aliased the caller's slice")
	}
}

func TestRegistry_CustomCapacity(t *testing.T) {
	r := NewRegistry(WithCapacity4(3), WithCapacity7(0))
	for i := byte(0); i < 5; i++ {
		r.Add(UID{i, i, i, i})
	}
	r.Add(UID{1, 2, 3, 4, 5, 6, 7})

	n4, n7 := r.Len()
	if n4 != 3 || n7 != 0 {
		t.Errorf("Len() = %d, %d, want 3, 0", n4, n7)
	}
	if r.IsAuthorized(UID{4, 4, 4, 4}) {
		t.Error("fifth uid should have been dropped")
	}
}

func TestRegistry_SeedDefaults(t *testing.T) {
	r := NewRegistry()
	r.SeedDefaults()
	for _, uid := range DefaultUIDs {
		if !r.IsAuthorized(uid) {
			t.Errorf("default uid %s not authorized", uid)
		}
	}

	r.Reset()
	if r.IsAuthorized(DefaultUIDs[0]) {
		t.Error("Reset() kept entries")
	}
}
