package invariant

import "testing"

func TestPreconditionPasses(t *testing.T) {
	Precondition(true, "should not panic")
}

func TestPreconditionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on false precondition")
		}
	}()
	Precondition(false, "boom %d", 1)
}

func TestInvariantPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on false invariant")
		}
	}()
	Invariant(false, "cursor did not advance at %d", 4)
}

func TestPostconditionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on false postcondition")
		}
	}()
	Postcondition(false, "result must be non-nil")
}

func TestNotNilTypedNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on typed nil")
		}
	}()
	var p *int
	NotNil(p, "p")
}

func TestInRange(t *testing.T) {
	InRange(5, 0, 10, "x")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic out of range")
		}
	}()
	InRange(11, 0, 10, "x")
}
