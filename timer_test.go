package zcpu

import "testing"

func TestTimerDisabledDoesNotAdvance(t *testing.T) {
	timer := NewTimer(7)
	ic := NewInterruptController(0)
	for i := 0; i < 10; i++ {
		timer.Cycle(ic)
	}
	if timer.Value != 0 {
		t.Fatalf("disabled timer advanced: Value = %d", timer.Value)
	}
}

func TestTimerOverflowRequestsIRQ(t *testing.T) {
	timer := NewTimer(3)
	timer.Enabled = true
	timer.InterruptEnabled = true
	timer.Value = 0xFFFF_FFFF
	ic := NewInterruptController(0)

	timer.Cycle(ic)

	if timer.Value != 0 {
		t.Fatalf("expected wraparound to 0, got %d", timer.Value)
	}
	if !timer.Overflow {
		t.Fatalf("expected sticky Overflow flag to be set")
	}
	if !ic.IsPending() {
		t.Fatalf("expected overflow to request an interrupt")
	}
	irq, _ := ic.TakeSource()
	if irq != 3 {
		t.Fatalf("TakeSource() = %d, want 3", irq)
	}
}

func TestTimerOverflowWithoutInterruptEnabledDoesNotRequest(t *testing.T) {
	timer := NewTimer(3)
	timer.Enabled = true
	timer.Value = 0xFFFF_FFFF
	ic := NewInterruptController(0)

	timer.Cycle(ic)

	if !timer.Overflow {
		t.Fatalf("expected Overflow to still be set")
	}
	if ic.IsPending() {
		t.Fatalf("expected no interrupt request when InterruptEnabled is false")
	}
}

func TestTimerPrescaler(t *testing.T) {
	timer := NewTimer(1)
	timer.Enabled = true
	timer.Prescaler = 4
	ic := NewInterruptController(0)

	for i := 0; i < 3; i++ {
		timer.Cycle(ic)
	}
	if timer.Value != 0 {
		t.Fatalf("expected no tick before the 4th cycle, Value = %d", timer.Value)
	}
	timer.Cycle(ic)
	if timer.Value != 1 {
		t.Fatalf("expected exactly one tick on the 4th cycle, Value = %d", timer.Value)
	}
}

func TestTimerClearOverflow(t *testing.T) {
	timer := NewTimer(1)
	timer.Overflow = true
	timer.ClearOverflow()
	if timer.Overflow {
		t.Fatalf("expected Overflow cleared")
	}
}
