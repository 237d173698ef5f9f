package model

import (
	"encoding/json"
	"testing"
)

func TestResultRowDecodesNullAndMissing(t *testing.T) {
	var row ResultRow
	if err := json.Unmarshal([]byte(`{"swap_volume":1234,"affiliate_fee_paid":null}`), &row); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !row.SwapVolume.Valid || row.SwapVolume.Decimal.String() != "1234" {
		t.Fatalf("swap_volume mismatch: %+v", row.SwapVolume)
	}
	if row.NumSwaps.Valid {
		t.Fatalf("n_swaps should be invalid when absent")
	}
	if row.AffiliateFeePaid.Valid {
		t.Fatalf("affiliate_fee_paid should be invalid when null")
	}
}

func TestQueryRequestJSONFieldNames(t *testing.T) {
	req := QueryRequest{
		SQL:            "SELECT 1",
		ResultTTLHours: 1,
		MaxAgeMinutes:  0,
		Tags:           map[string]string{"env": "production"},
		DataSource:     "snowflake-default",
		DataProvider:   "flipside",
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"sql", "resultTTLHours", "maxAgeMinutes", "tags", "dataSource", "dataProvider"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing field %s in %s", key, data)
		}
	}
}

func TestRunStateTerminal(t *testing.T) {
	if !RunStateSuccess.IsSuccess() || RunStateSuccess.IsFailure() {
		t.Fatalf("success state misclassified")
	}
	for _, state := range []RunState{RunStateFailed, RunStateCanceled} {
		if !state.IsFailure() {
			t.Fatalf("%s should be a failure", state)
		}
	}
	for _, state := range []RunState{RunStateReady, RunStateRunning, RunStateStreamingResults, RunState("QUERY_STATE_PENDING")} {
		if state.IsSuccess() || state.IsFailure() {
			t.Fatalf("%s should not be terminal", state)
		}
	}
}
