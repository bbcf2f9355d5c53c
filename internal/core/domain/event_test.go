package domain

import "testing"

func TestEventValid(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"both set", Event{Action: "click", Category: "engagement"}, true},
		{"missing action", Event{Category: "engagement"}, false},
		{"missing category", Event{Action: "click"}, false},
		{"empty", Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConversionValid(t *testing.T) {
	c := Conversion{Name: "signup"}
	if !c.Valid() {
		t.Error("named conversion should be valid")
	}

	empty := Conversion{}
	if empty.Valid() {
		t.Error("nameless conversion should be invalid")
	}
}

func TestParamValueInterface(t *testing.T) {
	if got := StringParam("hero").Interface(); got != "hero" {
		t.Errorf("StringParam.Interface() = %v", got)
	}
	if got := NumberParam(42).Interface(); got != float64(42) {
		t.Errorf("NumberParam.Interface() = %v", got)
	}
	if got := BoolParam(true).Interface(); got != true {
		t.Errorf("BoolParam.Interface() = %v", got)
	}
}
