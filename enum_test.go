package sane

import "testing"

func TestCapabilitySetRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		word Word
	}{
		{"none", 0},
		{"soft select only", Word(CapSoftSelect)},
		{"soft detect and inactive", Word(CapSoftDetect | CapInactive)},
		{"all bits", Word(CapSoftSelect | CapHardSelect | CapSoftDetect | CapEmulated | CapAutomatic | CapInactive | CapAdvanced)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := decodeCapabilities(tt.word)
			if got := set.encode(); got != tt.word {
				t.Errorf("decode(%#x).encode() = %#x, want %#x", tt.word, got, tt.word)
			}
		})
	}
}

func TestCapabilitySetReadableWritable(t *testing.T) {
	tests := []struct {
		name         string
		word         Word
		wantReadable bool
		wantWritable bool
	}{
		{"soft detect only", Word(CapSoftDetect), true, false},
		{"soft select only", Word(CapSoftSelect), false, true},
		{"inactive overrides both", Word(CapSoftDetect | CapSoftSelect | CapInactive), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := decodeCapabilities(tt.word)
			if got := set.Readable(); got != tt.wantReadable {
				t.Errorf("Readable() = %v, want %v", got, tt.wantReadable)
			}
			if got := set.Writable(); got != tt.wantWritable {
				t.Errorf("Writable() = %v, want %v", got, tt.wantWritable)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if got := StatusGood.String(); got != "good" {
		t.Errorf("StatusGood.String() = %q", got)
	}
	if got := Status(999).String(); got != "unknown status" {
		t.Errorf("Status(999).String() = %q, want fallback", got)
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := []struct {
		ft   FrameType
		name string
	}{
		{FrameGray, "gray"},
		{FrameRGB, "rgb"},
		{FrameRed, "red"},
		{FrameGreen, "green"},
		{FrameBlue, "blue"},
	}
	for _, tt := range tests {
		if got := tt.ft.String(); got != tt.name {
			t.Errorf("FrameType(%d).String() = %q, want %q", tt.ft, got, tt.name)
		}
	}
}
