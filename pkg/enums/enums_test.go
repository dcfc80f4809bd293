package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"cash", "card", "transfer"} {
		got, err := ParsePaymentMethod(raw)
		if err != nil {
			t.Fatalf("ParsePaymentMethod(%q) error: %v", raw, err)
		}
		if got.String() != raw {
			t.Fatalf("expected %q, got %q", raw, got)
		}
	}
	if _, err := ParsePaymentMethod("efectivo"); err == nil {
		t.Fatal("expected error for unknown payment method")
	}
}

func TestSaleStatusValidity(t *testing.T) {
	if !SaleStatusCompleted.IsValid() || !SaleStatusCancelled.IsValid() {
		t.Fatal("expected canonical statuses to be valid")
	}
	if SaleStatus("refunded").IsValid() {
		t.Fatal("expected refunded to be invalid")
	}
	if _, err := ParseSaleStatus(""); err == nil {
		t.Fatal("expected empty status to fail")
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("seller")
	if err != nil || role != UserRoleSeller {
		t.Fatalf("expected seller, got %q (%v)", role, err)
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatal("expected owner to be rejected")
	}
}

func TestSaleEventTypes(t *testing.T) {
	if _, err := ParseSaleEventType("sale_deleted"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if SaleEventType("order_created").IsValid() {
		t.Fatal("expected foreign event type to be invalid")
	}
}
