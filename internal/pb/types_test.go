package pb

import "testing"

func TestBatchStatusStringCoversEveryVariant(t *testing.T) {
	cases := map[BatchStatus]string{
		BatchStatus_IN_PROGRESS:         "in_progress",
		BatchStatus_COMPLETE:            "complete",
		BatchStatus_PROVING:             "proving",
		BatchStatus_PROVEN:              "proven",
		BatchStatus_UPLOADING_TO_WALRUS: "uploading_to_walrus",
		BatchStatus_BLOB_UPLOADED:       "blob_uploaded",
		BatchStatus_SUBMITTING_ONCHAIN:  "submitting_onchain",
		BatchStatus_ON_CHAIN:            "on_chain",
		BatchStatus_FAILED:              "failed",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("BatchStatus(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestBatchStatusStringUnknownValue(t *testing.T) {
	if got := BatchStatus(99).String(); got != "unknown" {
		t.Fatalf("expected an out-of-range status to stringify as unknown, got %q", got)
	}
}
