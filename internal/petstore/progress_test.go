package petstore

import "testing"

func TestProgress_Sequence(t *testing.T) {
	var seen []int
	p := NewProgress(func(v int) { seen = append(seen, v) })

	p.Begin(3)
	got := []int{p.Advance(), p.Advance(), p.Advance()}
	want := []int{33, 67, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("advance %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if seen[0] != 0 {
		t.Fatalf("expected Begin to report 0, got %v", seen)
	}
}

func TestProgress_NeverHundredBeforeLast(t *testing.T) {
	p := NewProgress(nil)
	p.Begin(400)
	for i := 0; i < 399; i++ {
		if v := p.Advance(); v >= 100 {
			t.Fatalf("reached %d after %d of 400", v, i+1)
		}
	}
	if v := p.Advance(); v != 100 {
		t.Fatalf("expected 100 at the end, got %d", v)
	}
}

func TestProgress_FailResets(t *testing.T) {
	p := NewProgress(nil)
	p.Begin(4)
	p.Advance()
	p.Advance()
	if v := p.Value(); v != 50 {
		t.Fatalf("expected 50, got %d", v)
	}

	p.Fail()
	if v := p.Value(); v != 0 {
		t.Fatalf("expected 0 after Fail, got %d", v)
	}
	// Sin secuencia activa Advance no mueve nada.
	if v := p.Advance(); v != 0 {
		t.Fatalf("expected 0 without Begin, got %d", v)
	}
}
