package watch

import "testing"

// TestIsCSV verifies case-insensitive extension matching.
func TestIsCSV(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"data.csv", true},
		{"data.CSV", true},
		{"dir/report.Csv", true},
		{"data.csv.bak", false},
		{"data.txt", false},
		{"csv", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsCSV(tc.path); got != tc.want {
			t.Errorf("IsCSV(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

// TestIsTempArtifact verifies the exact prefix and suffix exclusion sets.
func TestIsTempArtifact(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{".~lock.data.csv", true},
		{"~$data.csv", true},
		{".hidden.csv", true},
		{"data.csv.tmp", true},
		{"data.csv.partial", true},
		{"data.csv.part", true},
		{"data.csv.crdownload", true},
		{"data.csv", false},
		{"dir/.hidden.csv", true},
		{".dir/data.csv", false}, // only the basename matters
		{"tilde~$middle.csv", false},
	}
	for _, tc := range cases {
		if got := IsTempArtifact(tc.path); got != tc.want {
			t.Errorf("IsTempArtifact(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

// TestEligible verifies that only non-temp CSV paths pass the boundary filter.
func TestEligible(t *testing.T) {
	if !Eligible("in/data.csv") {
		t.Error("plain CSV path should be eligible")
	}
	if Eligible("in/data.json") {
		t.Error("non-CSV path should not be eligible")
	}
	if Eligible("in/~$data.csv") {
		t.Error("lock-file prefix should not be eligible")
	}
	if Eligible("in/data.csv.crdownload") {
		t.Error("partial-download suffix should not be eligible")
	}
}
