package action

import "testing"

func TestAggregate(t *testing.T) {
	cases := []struct {
		name  string
		steps []SubStepResult
		want  Status
	}{
		{
			name: "all success",
			steps: []SubStepResult{
				{Status: StatusSuccess},
				{Status: StatusSuccess},
			},
			want: StatusSuccess,
		},
		{
			name: "all failed",
			steps: []SubStepResult{
				{Status: StatusFailure},
				{Status: StatusFailure},
			},
			want: StatusFailure,
		},
		{
			name: "mixed success and failure",
			steps: []SubStepResult{
				{Status: StatusSuccess},
				{Status: StatusFailure},
			},
			want: StatusPartial,
		},
		{
			name: "all skipped",
			steps: []SubStepResult{
				{Status: StatusSkipped},
				{Status: StatusSkipped},
			},
			want: StatusSkipped,
		},
		{
			name: "success then canceled remainder",
			steps: []SubStepResult{
				{Status: StatusSuccess},
				{Status: StatusSkipped},
			},
			want: StatusPartial,
		},
		{
			name: "failure then canceled remainder",
			steps: []SubStepResult{
				{Status: StatusFailure},
				{Status: StatusSkipped},
			},
			want: StatusFailure,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := aggregate(tc.steps); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestBatchResult(t *testing.T) {
	batch := BatchResult{Results: []ActionResult{
		{ActionID: "a", Status: StatusSuccess},
		{ActionID: "b", Status: StatusPartial},
		{ActionID: "c", Status: StatusFailure},
		{ActionID: "d", Status: StatusSkipped},
	}}

	if batch.AllSucceeded() {
		t.Errorf("Expected AllSucceeded to be false")
	}

	failed := batch.Failed()
	if len(failed) != 2 {
		t.Fatalf("Expected 2 failed results, got %d", len(failed))
	}
	if failed[0].ActionID != "b" || failed[1].ActionID != "c" {
		t.Errorf("Expected failed results b and c, got %v", failed)
	}
}
