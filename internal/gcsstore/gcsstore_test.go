package gcsstore

import "testing"

func TestFilename(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/reports/aging.xlsx", "aging.xlsx"},
		{"gs://bucket/aging.xlsx", "aging.xlsx"},
		{"gs://bucket", "bucket"},
	}
	for _, tt := range tests {
		if got := Filename(tt.uri); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestSplitURI(t *testing.T) {
	bucket, object, err := splitURI("gs://bucket/reports/aging.xlsx")
	if err != nil {
		t.Fatalf("splitURI: %v", err)
	}
	if bucket != "bucket" || object != "reports/aging.xlsx" {
		t.Errorf("splitURI = (%q, %q)", bucket, object)
	}

	for _, bad := range []string{"bucket/object", "gs://bucket", "gs://bucket/"} {
		if _, _, err := splitURI(bad); err == nil {
			t.Errorf("splitURI(%q) accepted an invalid URI", bad)
		}
	}
}

func TestIsURI(t *testing.T) {
	if !IsURI("gs://bucket/object") {
		t.Error("gs:// path not recognized")
	}
	if IsURI("/tmp/aging.xlsx") {
		t.Error("local path recognized as GCS URI")
	}
}
