package dataset

import (
	"reflect"
	"testing"
)

func TestAnalyzeHeaders(t *testing.T) {
	tests := []struct {
		name        string
		input       []string
		wantHeaders []string
		wantIsData  bool
	}{
		{
			name:        "HRV and TDA headers",
			input:       []string{"Age_Group", "mean_RR", "SDNN_RR", "N1", "mu1"},
			wantHeaders: []string{"Age_Group", "mean_RR", "SDNN_RR", "N1", "mu1"},
		},
		{
			name:        "Numeric data",
			input:       []string{"123", "456", "789", "101"},
			wantHeaders: []string{"column_1", "column_2", "column_3", "column_4"},
			wantIsData:  true,
		},
		{
			name:        "Date data",
			input:       []string{"2024-01-01", "2024-01-02", "2024-01-03"},
			wantHeaders: []string{"column_1", "column_2", "column_3"},
			wantIsData:  true,
		},
		{
			name:        "Spaces and special characters",
			input:       []string{"Age Group", " mean RR ", "PNN50 (%)"},
			wantHeaders: []string{"Age_Group", "mean_RR", "PNN50"},
		},
		{
			name:        "Byte order mark",
			input:       []string{"\ufeffAge_Group", "mean_RR"},
			wantHeaders: []string{"Age_Group", "mean_RR"},
		},
		{
			name:        "Non ASCII letters",
			input:       []string{"Âge_Group", "Größe"},
			wantHeaders: []string{"Age_Group", "Grosse"},
		},
		{
			name:        "Duplicate headers",
			input:       []string{"N1", "N1", "N1", "TP1"},
			wantHeaders: []string{"N1", "N1_1", "N1_2", "TP1"},
		},
		{
			name:        "Empty headers",
			input:       []string{"", "", "", ""},
			wantHeaders: []string{"column_1", "column_2", "column_3", "column_4"},
			wantIsData:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeHeaders(tt.input)
			if !reflect.DeepEqual(got.Headers, tt.wantHeaders) {
				t.Errorf("AnalyzeHeaders() headers = %v, want %v", got.Headers, tt.wantHeaders)
			}
			if got.FirstRowIsData != tt.wantIsData {
				t.Errorf("AnalyzeHeaders() isData = %v, want %v", got.FirstRowIsData, tt.wantIsData)
			}
			if !reflect.DeepEqual(got.FirstDataRow, tt.input) {
				t.Errorf("AnalyzeHeaders() firstDataRow = %v, want %v", got.FirstDataRow, tt.input)
			}
		})
	}
}

func TestAnalyzeHeadersEmpty(t *testing.T) {
	if got := AnalyzeHeaders(nil); got != nil {
		t.Errorf("AnalyzeHeaders(nil) = %v, want nil", got)
	}
}

func TestIsLikelyHeader(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"RMSSD_RR", true},
		{"PE1", true},
		{"123", false},
		{"12.5", false},
		{"2024-01-01", false},
		{"2024-01-01 10:00:00", false},
		{"", false},
		{"   ", false},
		{"a1234567", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isLikelyHeader(tt.input); got != tt.want {
				t.Errorf("isLikelyHeader(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"no duplicates", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"with duplicates", []string{"a", "a", "b", "b"}, []string{"a", "a_1", "b", "b_1"}},
		{"suffix collision", []string{"a", "a_1", "a"}, []string{"a", "a_1", "a_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateHeaders(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ValidateHeaders() = %v, want %v", got, tt.want)
			}
		})
	}
}
