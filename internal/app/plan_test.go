package app

import "testing"

func TestPlanCommand(t *testing.T) {
	if planCmd.Use != "plan" {
		t.Errorf("expected Use to be 'plan', got '%s'", planCmd.Use)
	}

	if planCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if planCmd.Example == "" {
		t.Error("expected Example to be set")
	}

	if planCmd.RunE == nil {
		t.Error("expected RunE to be set")
	}
}

func TestPlanCommandFlags(t *testing.T) {
	for _, name := range []string{
		"source",
		"keep-hours", "keep-days", "keep-weeks", "keep-months", "keep-years",
	} {
		if planCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag '%s' to be registered", name)
		}
	}
}
