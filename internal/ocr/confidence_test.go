package ocr

import "testing"

func TestHeuristicConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		min  float32
		max  float32
	}{
		{
			name: "full receipt text scores high",
			text: "SUPERMERCATO ROSSI SRL\n23/12/2024 18:32\nPANE 1,20\nTOTALE 15,00\nIVA 22% 2,71\nGRAZIE E ARRIVEDERCI, VI ASPETTIAMO PRESTO DI NUOVO QUI",
			min:  0.75,
			max:  1.0,
		},
		{
			name: "empty text stays at base",
			text: "",
			min:  0.15,
			max:  0.25,
		},
		{
			name: "prose with no receipt artifacts",
			text: "qualcosa di scritto senza numeri",
			min:  0.2,
			max:  0.3,
		},
		{
			name: "amounts without date",
			text: "TOTALE 12,50",
			min:  0.45,
			max:  0.55,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heuristicConfidence(tt.text)
			if got < tt.min || got > tt.max {
				t.Errorf("heuristicConfidence(%q) = %v, want within [%v, %v]", tt.text, got, tt.min, tt.max)
			}
		})
	}
}
