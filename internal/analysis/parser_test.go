package analysis

import "testing"

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Here is the result: {"a":1} hope it helps`, `{"a":1}`},
		{"no braces", "not json at all", "not json at all"},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.in); got != tt.want {
				t.Errorf("CleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeStage(t *testing.T) {
	var report RiskReport
	raw := "```json\n{\"contractType\":\"lease\",\"riskScore\":72,\"issues\":[{\"id\":1,\"title\":\"deposit\"}]}\n```"
	if err := decodeStage("risk review", raw, &report); err != nil {
		t.Fatalf("decodeStage: %v", err)
	}
	if report.ContractType != "lease" || report.RiskScore != 72 || len(report.Issues) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestDecodeStage_BadOutput(t *testing.T) {
	var report RiskReport
	err := decodeStage("risk review", "the model rambled", &report)
	if err == nil {
		t.Fatal("decodeStage should fail on non-JSON")
	}
}
