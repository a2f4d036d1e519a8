package core

import (
	"bytes"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	win1252, err := LookupCharset("windows-1252")
	if err != nil {
		t.Fatalf("LookupCharset: %v", err)
	}

	tests := []struct {
		name     string
		input    []byte
		fallback bool
		want     string
	}{
		{"ascii unchanged", []byte("a,b\n1,2"), false, "a,b\n1,2"},
		{"valid utf-8 unchanged", []byte("naïve,ü"), false, "naïve,ü"},
		{"utf-8 bom removed", []byte("\xEF\xBB\xBFa,b"), false, "a,b"},
		{"utf-16le with bom", []byte{0xFF, 0xFE, 'a', 0, ',', 0, 'b', 0}, false, "a,b"},
		{"utf-16be with bom", []byte{0xFE, 0xFF, 0, 'a', 0, ',', 0, 'b'}, false, "a,b"},
		{"invalid bytes replaced", []byte("a\xffb"), false, "a�b"},
		{"fallback charset", []byte("\xc5lesund"), true, "Ålesund"},
		{"empty", []byte{}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []byte
			var err error
			if tt.fallback {
				got, err = NormalizeText(tt.input, win1252)
			} else {
				got, err = NormalizeText(tt.input, nil)
			}
			if err != nil {
				t.Fatalf("NormalizeText() error: %v", err)
			}
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("NormalizeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookupCharset(t *testing.T) {
	if enc, err := LookupCharset(""); enc != nil || err != nil {
		t.Errorf("LookupCharset(\"\") = %v, %v; want nil, nil", enc, err)
	}
	if _, err := LookupCharset("iso-8859-1"); err != nil {
		t.Errorf("LookupCharset(iso-8859-1) error: %v", err)
	}
	if _, err := LookupCharset("klingon"); err == nil {
		t.Error("LookupCharset(klingon) succeeded, want error")
	}
}

func TestIsAllASCII(t *testing.T) {
	if !isAllASCII([]byte("plain, text\n")) {
		t.Error("isAllASCII(plain) = false")
	}
	if isAllASCII([]byte("caf\xc3\xa9")) {
		t.Error("isAllASCII(utf-8) = true")
	}
}
