package models

import "testing"

func TestSettlementOf(t *testing.T) {
	tests := []struct {
		name    string
		status  BookingStatus
		payment PaymentStatus
		want    SettlementState
		wantErr bool
	}{
		{"fresh booking", BookingStatusPending, PaymentStatusPending, SettlementAwaitingPayment, false},
		{"deposit first leg", BookingStatusConfirmed, PaymentStatusPaidDeposit, SettlementDepositPaid, false},
		{"deposit second leg", BookingStatusConfirmed, PaymentStatusPaidDepositCompleted, SettlementDepositCompleted, false},
		{"full payment", BookingStatusConfirmed, PaymentStatusPaidFull, SettlementFullyPaid, false},
		{"cancelled wins over payment fields", BookingStatusCancelled, PaymentStatusPaidDeposit, SettlementCancelled, false},
		{"completed wins over payment fields", BookingStatusCompleted, PaymentStatusPaidFull, SettlementClosed, false},
		{"failed payment is not an engine state", BookingStatusPending, PaymentStatusFailed, 0, true},
		{"refunded is not an engine state", BookingStatusConfirmed, PaymentStatusRefunded, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.status, PaymentStatus: tt.payment}
			got, err := SettlementOf(b)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("SettlementOf(%s/%s) = %v, want error", tt.status, tt.payment, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SettlementOf: %v", err)
			}
			if got != tt.want {
				t.Errorf("SettlementOf(%s/%s) = %v, want %v", tt.status, tt.payment, got, tt.want)
			}
		})
	}
}

func TestStatusesRoundTrip(t *testing.T) {
	states := []SettlementState{
		SettlementAwaitingPayment,
		SettlementDepositPaid,
		SettlementDepositCompleted,
		SettlementFullyPaid,
	}
	for _, s := range states {
		status, paymentStatus := s.Statuses()
		b := &Booking{Status: status, PaymentStatus: paymentStatus}
		got, err := SettlementOf(b)
		if err != nil {
			t.Fatalf("SettlementOf(%s/%s): %v", status, paymentStatus, err)
		}
		if got != s {
			t.Errorf("round trip of %v produced %v", s, got)
		}
	}
}

func TestIsSettled(t *testing.T) {
	settled := []PaymentStatus{PaymentStatusPaidFull, PaymentStatusPaidDepositCompleted}
	for _, ps := range settled {
		b := &Booking{PaymentStatus: ps}
		if !b.IsSettled() {
			t.Errorf("IsSettled() = false for %s", ps)
		}
	}
	unsettled := []PaymentStatus{PaymentStatusPending, PaymentStatusPaidDeposit, PaymentStatusFailed}
	for _, ps := range unsettled {
		b := &Booking{PaymentStatus: ps}
		if b.IsSettled() {
			t.Errorf("IsSettled() = true for %s", ps)
		}
	}
}
