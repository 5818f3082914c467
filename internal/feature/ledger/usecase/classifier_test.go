package usecase

import (
	"errors"
	"testing"

	brokerentity "broker_importer/internal/feature/broker/domain/entity"
	"broker_importer/internal/feature/ledger/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		opType          brokerentity.OperationType
		status          brokerentity.OperationStatus
		wantIntent      Intent
		wantDisposition Disposition
		wantErr         error
	}{
		{
			name:            "PayIn becomes a deposit account transaction",
			opType:          brokerentity.OpPayIn,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentDeposit,
			wantDisposition: AsAccountTransaction,
		},
		{
			name:            "ServiceCommission becomes a service fee account transaction",
			opType:          brokerentity.OpServiceCommission,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentServiceFee,
			wantDisposition: AsAccountTransaction,
		},
		{
			name:            "Buy becomes a buy security transaction",
			opType:          brokerentity.OpBuy,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentBuy,
			wantDisposition: AsSecurityTransaction,
		},
		{
			name:            "BuyCard is treated like Buy",
			opType:          brokerentity.OpBuyCard,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentBuy,
			wantDisposition: AsSecurityTransaction,
		},
		{
			name:            "Sell becomes a sell security transaction",
			opType:          brokerentity.OpSell,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentSell,
			wantDisposition: AsSecurityTransaction,
		},
		{
			name:            "Coupon becomes interest income",
			opType:          brokerentity.OpCoupon,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentCoupon,
			wantDisposition: AsSecurityTransaction,
		},
		{
			name:            "TaxCoupon becomes a tax expense on the security",
			opType:          brokerentity.OpTaxCoupon,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentTaxCoupon,
			wantDisposition: AsSecurityTransaction,
		},
		{
			name:            "Dividend becomes investment income",
			opType:          brokerentity.OpDividend,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentDividend,
			wantDisposition: AsSecurityTransaction,
		},
		{
			name:            "BrokerCommission is skipped as already netted into trades",
			opType:          brokerentity.OpBrokerCommission,
			status:          brokerentity.StatusDone,
			wantIntent:      IntentBrokerFee,
			wantDisposition: SkipAlreadyAccounted,
		},
		{
			name:            "declined operations are skipped regardless of type",
			opType:          brokerentity.OpBuy,
			status:          brokerentity.StatusDecline,
			wantDisposition: SkipNonTerminal,
		},
		{
			name:    "unknown type is an error, not a silent skip",
			opType:  "MarginCommission",
			status:  brokerentity.StatusDone,
			wantErr: domain.ErrUnknownOperationType,
		},
		{
			name:    "unknown status is an error, not a silent skip",
			opType:  brokerentity.OpBuy,
			status:  "Progress",
			wantErr: domain.ErrUnknownOperationStatus,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			op := brokerentity.Operation{ID: "op-1", Type: tt.opType, Status: tt.status}
			got, err := Classify(op)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Disposition != tt.wantDisposition {
				t.Errorf("disposition mismatch: got %d, want %d", got.Disposition, tt.wantDisposition)
			}
			if !got.Skip() && got.Intent != tt.wantIntent {
				t.Errorf("intent mismatch: got %d, want %d", got.Intent, tt.wantIntent)
			}
		})
	}
}

func TestClassification_Skip(t *testing.T) {
	t.Parallel()

	if (Classification{Disposition: AsAccountTransaction}).Skip() {
		t.Error("account transactions must not be skipped")
	}
	if (Classification{Disposition: AsSecurityTransaction}).Skip() {
		t.Error("security transactions must not be skipped")
	}
	if !(Classification{Disposition: SkipAlreadyAccounted}).Skip() {
		t.Error("already-accounted operations must be skipped")
	}
	if !(Classification{Disposition: SkipNonTerminal}).Skip() {
		t.Error("non-terminal operations must be skipped")
	}
}
