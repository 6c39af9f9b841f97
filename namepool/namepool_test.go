package namepool

import "testing"

func TestInternLookupRoundTrip(t *testing.T) {
	p := New()
	id, err := p.Intern([]byte("frobnicate"))
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	got, ok := p.Lookup(id)
	if !ok || string(got) != "frobnicate" {
		t.Fatalf("lookup(%d) = %q, %v; want frobnicate, true", id, got, ok)
	}

	id2, err := p.Intern([]byte("frobnicate"))
	if err != nil {
		t.Fatalf("second intern: %v", err)
	}
	if id2 != id {
		t.Fatalf("intern not idempotent: got %d, want %d", id2, id)
	}
}

func TestMagicNamesReservedFirst(t *testing.T) {
	p := New()
	if p.LastMagic() != Name(len(MagicNames)) {
		t.Fatalf("LastMagic() = %d, want %d", p.LastMagic(), len(MagicNames))
	}
	for i, m := range MagicNames {
		id, err := p.Intern([]byte(m))
		if err != nil {
			t.Fatalf("intern magic %q: %v", m, err)
		}
		if int(id) != i+1 {
			t.Fatalf("magic %q got id %d, want %d", m, id, i+1)
		}
		if !p.IsMagic(id) {
			t.Fatalf("IsMagic(%d) = false for magic name %q", id, m)
		}
	}

	ordinary, err := p.Intern([]byte("my_custom_attr"))
	if err != nil {
		t.Fatalf("intern ordinary: %v", err)
	}
	if p.IsMagic(ordinary) {
		t.Fatalf("IsMagic(%d) = true for ordinary name", ordinary)
	}
}

func TestLookupUnknownID(t *testing.T) {
	p := New()
	if _, ok := p.Lookup(0); ok {
		t.Fatalf("Lookup(0) should never be valid")
	}
	if _, ok := p.Lookup(Name(p.Len() + 1000)); ok {
		t.Fatalf("Lookup of out-of-range id should fail")
	}
}

func TestReflectedOf(t *testing.T) {
	cases := []struct {
		op, want Name
	}{
		{MagicAdd, MagicRAdd},
		{MagicLt, MagicGt},
		{MagicGe, MagicLe},
		{MagicEq, MagicEq},
	}
	for _, c := range cases {
		got, ok := ReflectedOf(c.op)
		if !ok || got != c.want {
			t.Fatalf("ReflectedOf(%d) = (%d, %v); want (%d, true)", c.op, got, ok, c.want)
		}
	}
	if _, ok := ReflectedOf(MagicIter); ok {
		t.Fatalf("ReflectedOf(__iter__) should have no reflected pair")
	}
}
