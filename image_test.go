package sane

import "testing"

func frameOf(ft FrameType, last bool, n int) Frame {
	return Frame{
		Parameters: Parameters{Format: ft, IsLast: last, BytesPerLine: n, PixelsPerLine: n, Lines: 1, Depth: 8},
		Data:       make([]byte, n),
	}
}

func TestImageBuilderSingletonGray(t *testing.T) {
	b := newImageBuilder()
	if err := b.add(frameOf(FrameGray, true, 10)); err != nil {
		t.Fatal(err)
	}
	img, err := b.build()
	if err != nil {
		t.Fatal(err)
	}
	if len(img.Frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(img.Frames))
	}
}

func TestImageBuilderThreeColorAnyOrder(t *testing.T) {
	orders := [][]FrameType{
		{FrameRed, FrameGreen, FrameBlue},
		{FrameBlue, FrameGreen, FrameRed},
		{FrameGreen, FrameRed, FrameBlue},
	}
	for _, order := range orders {
		b := newImageBuilder()
		for i, ft := range order {
			last := i == len(order)-1
			if err := b.add(frameOf(ft, last, 10)); err != nil {
				t.Fatal(err)
			}
		}
		img, err := b.build()
		if err != nil {
			t.Fatal(err)
		}
		ordered := img.Ordered()
		if len(ordered) != 3 {
			t.Fatalf("ordered = %d, want 3", len(ordered))
		}
		want := []FrameType{FrameRed, FrameGreen, FrameBlue}
		for i, f := range ordered {
			if f.Parameters.Format != want[i] {
				t.Errorf("position %d = %v, want %v", i, f.Parameters.Format, want[i])
			}
		}
	}
}

func TestImageBuilderRejectsDuplicateType(t *testing.T) {
	b := newImageBuilder()
	if err := b.add(frameOf(FrameRed, false, 10)); err != nil {
		t.Fatal(err)
	}
	err := b.add(frameOf(FrameRed, false, 10))
	if err == nil {
		t.Fatal("expected duplicate frame type to be rejected")
	}
	// rejection must be non-destructive
	if len(b.frames) != 1 || !hasFrame(b.frames, FrameRed) {
		t.Fatalf("rejected add changed the builder: %d frames held", len(b.frames))
	}
	if _, err := b.build(); err == nil {
		t.Fatal("incomplete three-color set should not build")
	}
}

func TestImageBuilderRejectsSingletonAfterColorPlane(t *testing.T) {
	b := newImageBuilder()
	if err := b.add(frameOf(FrameRed, false, 10)); err != nil {
		t.Fatal(err)
	}
	if err := b.add(frameOf(FrameGray, true, 10)); err == nil {
		t.Fatal("expected singleton frame to be rejected after a color plane")
	}
}

func TestImageBuilderRejectsSecondFrameAfterSingleton(t *testing.T) {
	b := newImageBuilder()
	if err := b.add(frameOf(FrameRGB, true, 10)); err != nil {
		t.Fatal(err)
	}
	if err := b.add(frameOf(FrameRed, false, 10)); err == nil {
		t.Fatal("expected rejection of a second frame after a singleton")
	}
}

func TestImageBuilderRejectsMismatchedLength(t *testing.T) {
	b := newImageBuilder()
	if err := b.add(frameOf(FrameRed, false, 10)); err != nil {
		t.Fatal(err)
	}
	mismatched := frameOf(FrameGreen, false, 10)
	mismatched.Data = make([]byte, 5)
	if err := b.add(mismatched); err == nil {
		t.Fatal("expected rejection of a frame whose buffer length disagrees")
	}
}

func TestImageBuilderIncompleteFails(t *testing.T) {
	b := newImageBuilder()
	_ = b.add(frameOf(FrameRed, false, 10))
	_ = b.add(frameOf(FrameGreen, false, 10))
	if _, err := b.build(); err == nil {
		t.Fatal("expected build to fail with only two of three color planes")
	}
}
