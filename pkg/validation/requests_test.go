package validation

import (
	"strings"
	"testing"
)

func validSimulate() SimulateRequest {
	return SimulateRequest{
		City:      "Chicago, Illinois, USA",
		Scenario:  "Targeted Attack",
		Severity:  0.1,
		PairCount: 40,
	}
}

func TestValidateSimulateRequest(t *testing.T) {
	req := validSimulate()
	if err := ValidateSimulateRequest(&req); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestValidateSimulateRequestNil(t *testing.T) {
	if err := ValidateSimulateRequest(nil); err == nil {
		t.Error("nil request accepted")
	}
}

func TestValidateSimulateRequestErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*SimulateRequest)
		wantMsg string
	}{
		{"missing city", func(r *SimulateRequest) { r.City = "" }, "City is required"},
		{"missing scenario", func(r *SimulateRequest) { r.Scenario = "" }, "Scenario is required"},
		{"negative severity", func(r *SimulateRequest) { r.Severity = -0.1 }, "Severity must be >= 0"},
		{"severity above one", func(r *SimulateRequest) { r.Severity = 1.5 }, "Severity must be <= 1"},
		{"pair count too high", func(r *SimulateRequest) { r.PairCount = 501 }, "PairCount must be <= 500"},
		{"city too long", func(r *SimulateRequest) { r.City = strings.Repeat("x", 121) }, "City exceeds maximum 120"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := validSimulate()
			c.mutate(&req)
			err := ValidateSimulateRequest(&req)
			if err == nil {
				t.Fatal("invalid request accepted")
			}
			if !strings.Contains(err.Error(), c.wantMsg) {
				t.Errorf("err = %q, want substring %q", err, c.wantMsg)
			}
		})
	}
}

func TestValidateSimulateRequestPairCountOptional(t *testing.T) {
	req := validSimulate()
	req.PairCount = 0
	if err := ValidateSimulateRequest(&req); err != nil {
		t.Errorf("zero pair count should be allowed: %v", err)
	}
}

func TestValidateSweepRequest(t *testing.T) {
	req := SweepRequest{
		City:               "Chicago, Illinois, USA",
		Scenario:           "Random Failure",
		Severities:         []float64{0.05, 0.1, 0.2},
		RepeatsPerSeverity: 3,
	}
	if err := ValidateSweepRequest(&req); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	req.Severities = nil
	if err := ValidateSweepRequest(&req); err == nil {
		t.Error("empty severity list accepted")
	}

	req.Severities = []float64{0.1, 1.2}
	if err := ValidateSweepRequest(&req); err == nil {
		t.Error("out-of-range severity accepted")
	}

	req.Severities = []float64{0.1}
	req.RepeatsPerSeverity = 26
	if err := ValidateSweepRequest(&req); err == nil {
		t.Error("excessive repeat count accepted")
	}
}

func TestValidateVisualizeRequest(t *testing.T) {
	req := VisualizeRequest{
		City:     "Chicago, Illinois, USA",
		Scenario: "Bridges Only",
		Severity: 0.25,
		Seed:     7,
	}
	if err := ValidateVisualizeRequest(&req); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	req.Severity = 2
	if err := ValidateVisualizeRequest(&req); err == nil {
		t.Error("out-of-range severity accepted")
	}
	if err := ValidateVisualizeRequest(nil); err == nil {
		t.Error("nil request accepted")
	}
}
