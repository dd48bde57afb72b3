package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSumSHA256(t *testing.T) {
	got, err := Sum([]byte("hello world"), SHA256)
	if err != nil {
		t.Fatalf("Sum error: %v", err)
	}
	if !strings.HasPrefix(got, "sha256:") {
		t.Errorf("missing prefix: %s", got)
	}
	// "sha256:" + 64 hex chars
	if len(got) != 7+64 {
		t.Errorf("length = %d, want %d", len(got), 7+64)
	}
	// Known digest for "hello world"
	want := "sha256:b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Errorf("Sum = %s, want %s", got, want)
	}
}

func TestSumSHA512(t *testing.T) {
	got, err := Sum([]byte("hello world"), SHA512)
	if err != nil {
		t.Fatalf("Sum error: %v", err)
	}
	if !strings.HasPrefix(got, "sha512:") {
		t.Errorf("missing prefix: %s", got)
	}
	if len(got) != 7+128 {
		t.Errorf("length = %d, want %d", len(got), 7+128)
	}
}

func TestSumUnsupportedAlgorithm(t *testing.T) {
	if _, err := Sum([]byte("x"), Algorithm("md5")); err == nil {
		t.Error("md5 should be rejected")
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, algo := range []Algorithm{SHA256, SHA512} {
		sum, err := Sum([]byte("data"), algo)
		if err != nil {
			t.Fatalf("Sum error: %v", err)
		}
		gotAlgo, gotHex, err := Parse(sum)
		if err != nil {
			t.Fatalf("Parse(%s) error: %v", sum, err)
		}
		if gotAlgo != algo {
			t.Errorf("algorithm = %s, want %s", gotAlgo, algo)
		}
		if Format(gotAlgo, gotHex) != sum {
			t.Errorf("Format(Parse(x)) != x for %s", sum)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{"", "abc123", "md5:abc123", ":abc"}
	for _, c := range cases {
		if _, _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) should fail", c)
		}
	}
}

func TestSumReaderMatchesSum(t *testing.T) {
	data := []byte("streaming and buffered digests must agree")
	fromBytes, _ := Sum(data, SHA256)
	fromReader, err := SumReader(strings.NewReader(string(data)), SHA256)
	if err != nil {
		t.Fatalf("SumReader error: %v", err)
	}
	if fromBytes != fromReader {
		t.Errorf("SumReader = %s, Sum = %s", fromReader, fromBytes)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.jar")
	if err := os.WriteFile(path, []byte("jar bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := File(path, SHA512)
	if err != nil {
		t.Fatalf("File error: %v", err)
	}
	fromBytes, _ := Sum([]byte("jar bytes"), SHA512)
	if fromFile != fromBytes {
		t.Errorf("File = %s, Sum = %s", fromFile, fromBytes)
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing.jar"), SHA256); err == nil {
		t.Error("missing file should error")
	}
}
