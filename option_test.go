package sane

import "testing"

func TestInfoFromWordBits(t *testing.T) {
	tests := []struct {
		word Word
		want Info
	}{
		{0, Info{}},
		{1, Info{Inexact: true}},
		{2, Info{ReloadOptions: true}},
		{4, Info{ReloadParameters: true}},
		{7, Info{Inexact: true, ReloadOptions: true, ReloadParameters: true}},
	}
	for _, tt := range tests {
		if got := infoFromWord(tt.word); got != tt.want {
			t.Errorf("infoFromWord(%d) = %+v, want %+v", tt.word, got, tt.want)
		}
	}
}

func TestEncodeDecodeBoolOption(t *testing.T) {
	opt := Option{Name: "preview", Type: TypeBool, ElementSize: 4}
	payload, err := encodeOptionValue(opt, true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeOptionValue(TypeBool, payload)
	if err != nil {
		t.Fatal(err)
	}
	if got != true {
		t.Errorf("decoded = %v, want true", got)
	}
}

func TestEncodeDecodeIntOption(t *testing.T) {
	opt := Option{Name: "resolution", Type: TypeInt, ElementSize: 4}
	payload, err := encodeOptionValue(opt, 300)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeOptionValue(TypeInt, payload)
	if err != nil {
		t.Fatal(err)
	}
	if got != 300 {
		t.Errorf("decoded = %v, want 300", got)
	}
}

func TestEncodeDecodeFixedOption(t *testing.T) {
	opt := Option{Name: "tl-x", Type: TypeFixed, ElementSize: 4}
	payload, err := encodeOptionValue(opt, -4.0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeOptionValue(TypeFixed, payload)
	if err != nil {
		t.Fatal(err)
	}
	gf, ok := got.(float64)
	if !ok || gf < -4.001 || gf > -3.999 {
		t.Errorf("decoded = %v, want ~-4.0", got)
	}
}

func TestEncodeDecodeStringOption(t *testing.T) {
	opt := Option{Name: "mode", Type: TypeString, ElementSize: 8}
	payload, err := encodeOptionValue(opt, "Color")
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) != 8 {
		t.Fatalf("payload length = %d, want 8", len(payload))
	}
	got, err := decodeOptionValue(TypeString, payload)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Color" {
		t.Errorf("decoded = %q, want %q", got, "Color")
	}
}

func TestEncodeOptionValueTypeMismatch(t *testing.T) {
	opt := Option{Name: "preview", Type: TypeBool, ElementSize: 4}
	if _, err := encodeOptionValue(opt, "not a bool"); err == nil {
		t.Fatal("expected a constraint violation")
	} else if serr, ok := err.(*Error); !ok || serr.Kind != KindConstraintViolation {
		t.Fatalf("err = %v, want KindConstraintViolation", err)
	}
}
