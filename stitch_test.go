package stitch

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

// solidFrame creates a w×h frame filled with one color and no declared
// anchor.
func solidFrame(t *testing.T, w, h int, c color.NRGBA) Frame {
	t.Helper()
	b, err := NewBuffer(w, h)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	b.Fill(c)
	return Frame{Buffer: b}
}

func TestStitchConcreteScenario(t *testing.T) {
	// Base: 16x16, transparent except an opaque red 4x4 square at
	// (6,6)-(9,9), anchored at (8,8). Overlay: opaque blue 4x4 anchored at
	// its own top-left corner, no rotation, no offset. The blue square's
	// top-left must land exactly on the base anchor.
	baseBuf, _ := NewBuffer(16, 16)
	for y := 6; y <= 9; y++ {
		for x := 6; x <= 9; x++ {
			baseBuf.Set(x, y, testRed)
		}
	}
	baseAnchor := image.Pt(8, 8)
	base := NewSprite("base", Frame{Buffer: baseBuf, Anchor: &baseAnchor})

	overlayBuf, _ := NewBuffer(4, 4)
	overlayBuf.Fill(testBlue)
	overlayAnchor := image.Pt(0, 0)
	overlay := NewSprite("overlay", Frame{Buffer: overlayBuf, Anchor: &overlayAnchor})

	res, err := Stitch(base, overlay, []Placement{{}})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	if len(res.Sprite.Frames) != 1 {
		t.Fatalf("len(Frames) = %d, want 1", len(res.Sprite.Frames))
	}

	out := res.Sprite.Frames[0].Buffer
	if out.Width() != 16 || out.Height() != 16 {
		t.Fatalf("output dims = %dx%d, want 16x16", out.Width(), out.Height())
	}

	blueRect := image.Rect(8, 8, 12, 12)
	redRect := image.Rect(6, 6, 10, 10)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			got := out.Get(x, y)
			var want color.NRGBA
			switch p := image.Pt(x, y); {
			case p.In(blueRect):
				want = testBlue
			case p.In(redRect):
				want = testRed
			}
			if got != want {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestStitchBroadcast(t *testing.T) {
	base := NewSprite("base",
		solidFrame(t, 8, 8, testRed),
		solidFrame(t, 8, 8, testGreen),
		solidFrame(t, 8, 8, color.NRGBA{R: 255, G: 255, A: 255}),
	)
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	// One placement broadcasts to all three frames.
	res, err := Stitch(base, overlay, []Placement{{Offset: image.Pt(2, 1)}})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	if len(res.Sprite.Frames) != 3 {
		t.Fatalf("len(Frames) = %d, want 3", len(res.Sprite.Frames))
	}

	// Base anchor (4,4) + offset (2,1) - overlay anchor (1,1) = (5,4).
	for i, f := range res.Sprite.Frames {
		out := f.Buffer
		if got := out.Get(5, 4); got != testBlue {
			t.Errorf("frame %d: pixel (5, 4) = %v, want blue", i, got)
		}
		if got := out.Get(6, 5); got != testBlue {
			t.Errorf("frame %d: pixel (6, 5) = %v, want blue", i, got)
		}
		if got := out.Get(0, 0); got != base.Frames[i].Buffer.Get(0, 0) {
			t.Errorf("frame %d: pixel (0, 0) = %v, want base color", i, got)
		}
	}
}

func TestStitchPerFramePlacements(t *testing.T) {
	base := NewSprite("base",
		solidFrame(t, 8, 8, testRed),
		solidFrame(t, 8, 8, testRed),
	)
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	res, err := Stitch(base, overlay, []Placement{
		{Offset: image.Pt(-3, -3)},
		{Offset: image.Pt(3, 3)},
	})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}

	// Frame 0: top-left (4-3-1, 4-3-1) = (0, 0); frame 1: (6, 6).
	if got := res.Sprite.Frames[0].Buffer.Get(0, 0); got != testBlue {
		t.Errorf("frame 0: pixel (0, 0) = %v, want blue", got)
	}
	if got := res.Sprite.Frames[0].Buffer.Get(6, 6); got != testRed {
		t.Errorf("frame 0: pixel (6, 6) = %v, want red", got)
	}
	if got := res.Sprite.Frames[1].Buffer.Get(6, 6); got != testBlue {
		t.Errorf("frame 1: pixel (6, 6) = %v, want blue", got)
	}
	if got := res.Sprite.Frames[1].Buffer.Get(0, 0); got != testRed {
		t.Errorf("frame 1: pixel (0, 0) = %v, want red", got)
	}
}

func TestStitchPlacementLengthMismatch(t *testing.T) {
	base := NewSprite("base",
		solidFrame(t, 4, 4, testRed),
		solidFrame(t, 4, 4, testRed),
		solidFrame(t, 4, 4, testRed),
	)
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	for _, count := range []int{0, 2, 4} {
		placements := make([]Placement, count)
		if _, err := Stitch(base, overlay, placements); !errors.Is(err, ErrPlacementLength) {
			t.Errorf("%d placements for 3 frames: error = %v, want ErrPlacementLength", count, err)
		}
	}
}

func TestStitchOverlayCycles(t *testing.T) {
	base := NewSprite("base",
		solidFrame(t, 4, 4, color.NRGBA{}),
		solidFrame(t, 4, 4, color.NRGBA{}),
		solidFrame(t, 4, 4, color.NRGBA{}),
		solidFrame(t, 4, 4, color.NRGBA{}),
	)
	overlay := NewSprite("overlay",
		solidFrame(t, 1, 1, testRed),
		solidFrame(t, 1, 1, testGreen),
	)

	res, err := Stitch(base, overlay, []Placement{{}})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}

	// Overlay frame i mod 2: red, green, red, green. A 1x1 overlay's
	// default anchor is (0,0), so it lands on the base anchor (2,2).
	want := []color.NRGBA{testRed, testGreen, testRed, testGreen}
	for i, f := range res.Sprite.Frames {
		if got := f.Buffer.Get(2, 2); got != want[i] {
			t.Errorf("frame %d: pixel (2, 2) = %v, want %v", i, got, want[i])
		}
	}
}

func TestStitchBelow(t *testing.T) {
	// Base: left column opaque red, right column transparent.
	baseBuf, _ := NewBuffer(2, 2)
	baseBuf.Set(0, 0, testRed)
	baseBuf.Set(0, 1, testRed)
	origin := image.Pt(0, 0)
	base := NewSprite("base", Frame{Buffer: baseBuf, Anchor: &origin})

	overlayBuf, _ := NewBuffer(2, 2)
	overlayBuf.Fill(testBlue)
	overlay := NewSprite("overlay", Frame{Buffer: overlayBuf, Anchor: &origin})

	above, err := Stitch(base, overlay, []Placement{{}})
	if err != nil {
		t.Fatalf("Stitch above: %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if got := above.Sprite.Frames[0].Buffer.Get(p.X, p.Y); got != testBlue {
			t.Errorf("above: pixel %v = %v, want blue", p, got)
		}
	}

	below, err := Stitch(base, overlay, []Placement{{Below: true}})
	if err != nil {
		t.Fatalf("Stitch below: %v", err)
	}
	out := below.Sprite.Frames[0].Buffer
	if got := out.Get(0, 0); got != testRed {
		t.Errorf("below: pixel (0, 0) = %v, want red (base covers overlay)", got)
	}
	if got := out.Get(1, 0); got != testBlue {
		t.Errorf("below: pixel (1, 0) = %v, want blue (visible through transparency)", got)
	}
}

func TestStitchClipsSilently(t *testing.T) {
	base := NewSprite("base", solidFrame(t, 4, 4, color.NRGBA{}))

	overlayBuf, _ := NewBuffer(4, 4)
	overlayBuf.Fill(testRed)
	origin := image.Pt(0, 0)
	overlay := NewSprite("overlay", Frame{Buffer: overlayBuf, Anchor: &origin})

	// Top-left resolves to (-2, -2): half the overlay hangs off the frame.
	res, err := Stitch(base, overlay, []Placement{{Offset: image.Pt(-4, -4)}})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}

	out := res.Sprite.Frames[0].Buffer
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := color.NRGBA{}
			if x < 2 && y < 2 {
				want = testRed
			}
			if got := out.Get(x, y); got != want {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestStitchInputsUnchanged(t *testing.T) {
	baseBuf, _ := NewBuffer(8, 8)
	baseBuf.Fill(testRed)
	base := NewSprite("base", Frame{Buffer: baseBuf})

	overlayBuf, _ := NewBuffer(4, 4)
	overlayBuf.Fill(testBlue)
	overlay := NewSprite("overlay", Frame{Buffer: overlayBuf})

	baseSnap := append([]uint8(nil), baseBuf.Data()...)
	overlaySnap := append([]uint8(nil), overlayBuf.Data()...)

	_, err := Stitch(base, overlay, []Placement{{Angle: 30, Scale: 2}})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}

	if !bytes.Equal(baseBuf.Data(), baseSnap) {
		t.Error("Stitch modified the base sprite")
	}
	if !bytes.Equal(overlayBuf.Data(), overlaySnap) {
		t.Error("Stitch modified the overlay sprite")
	}
}

func TestStitchAnchorOutOfBounds(t *testing.T) {
	outside := image.Pt(10, 10)

	badBase, _ := NewBuffer(4, 4)
	base := NewSprite("base", Frame{Buffer: badBase, Anchor: &outside})
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	if _, err := Stitch(base, overlay, []Placement{{}}); !errors.Is(err, ErrAnchorOutOfBounds) {
		t.Errorf("base anchor error = %v, want ErrAnchorOutOfBounds", err)
	}

	goodBase := NewSprite("base", solidFrame(t, 4, 4, testRed))
	badOverlayBuf, _ := NewBuffer(2, 2)
	badOverlay := NewSprite("overlay", Frame{Buffer: badOverlayBuf, Anchor: &outside})

	if _, err := Stitch(goodBase, badOverlay, []Placement{{}}); !errors.Is(err, ErrAnchorOutOfBounds) {
		t.Errorf("overlay anchor error = %v, want ErrAnchorOutOfBounds", err)
	}
}

func TestStitchEmptySprites(t *testing.T) {
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	if _, err := Stitch(nil, overlay, []Placement{{}}); !errors.Is(err, ErrEmptySprite) {
		t.Errorf("nil base error = %v, want ErrEmptySprite", err)
	}
	if _, err := Stitch(NewSprite("empty"), overlay, []Placement{{}}); !errors.Is(err, ErrEmptySprite) {
		t.Errorf("empty base error = %v, want ErrEmptySprite", err)
	}

	base := NewSprite("base", solidFrame(t, 4, 4, testRed))
	if _, err := Stitch(base, NewSprite("empty"), []Placement{{}}); !errors.Is(err, ErrEmptySprite) {
		t.Errorf("empty overlay error = %v, want ErrEmptySprite", err)
	}
}

func TestStitchInvalidFrame(t *testing.T) {
	base := NewSprite("base", Frame{})
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	if _, err := Stitch(base, overlay, []Placement{{}}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("nil frame buffer error = %v, want ErrInvalidDimensions", err)
	}
}

func TestStitchNegativeScale(t *testing.T) {
	base := NewSprite("base", solidFrame(t, 4, 4, testRed))
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	if _, err := Stitch(base, overlay, []Placement{{Scale: -2}}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("negative scale error = %v, want ErrInvalidDimensions", err)
	}
}

func TestStitchResultRects(t *testing.T) {
	base := NewSprite("base",
		solidFrame(t, 8, 8, testRed),
		solidFrame(t, 8, 8, testGreen),
	)
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	res, err := Stitch(base, overlay, []Placement{{}})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}

	sheet, err := Pack(res.Sprite.Frames)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(res.Rects) != len(sheet.Rects) {
		t.Fatalf("len(Rects) = %d, want %d", len(res.Rects), len(sheet.Rects))
	}
	for i := range res.Rects {
		if res.Rects[i] != sheet.Rects[i] {
			t.Errorf("Rects[%d] = %v, Pack gives %v", i, res.Rects[i], sheet.Rects[i])
		}
	}
}

func TestStitchKeepsBaseAnchor(t *testing.T) {
	baseBuf, _ := NewBuffer(8, 8)
	anchor := image.Pt(1, 2)
	base := NewSprite("base", Frame{Buffer: baseBuf, Anchor: &anchor})
	overlay := NewSprite("overlay", solidFrame(t, 2, 2, testBlue))

	res, err := Stitch(base, overlay, []Placement{{}})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}

	got := res.Sprite.Frames[0].Anchor
	if got == nil || *got != anchor {
		t.Fatalf("result anchor = %v, want %v", got, anchor)
	}
	if got == &anchor {
		t.Error("result anchor aliases the input anchor")
	}
}

func TestStitchSerialMatchesParallel(t *testing.T) {
	frames := make([]Frame, 6)
	for i := range frames {
		b, _ := NewBuffer(12, 12)
		for y := 0; y < 12; y++ {
			for x := 0; x < 12; x++ {
				if (x+y+i)%3 == 0 {
					b.Set(x, y, testRed)
				}
			}
		}
		frames[i] = Frame{Buffer: b}
	}
	base := NewSprite("base", frames...)
	overlay := NewSprite("overlay", solidFrame(t, 5, 3, testBlue))

	placements := []Placement{{Angle: 30}}

	serial, err := Stitch(base, overlay, placements, WithWorkers(1))
	if err != nil {
		t.Fatalf("Stitch serial: %v", err)
	}
	parallel, err := Stitch(base, overlay, placements, WithWorkers(4))
	if err != nil {
		t.Fatalf("Stitch parallel: %v", err)
	}

	for i := range serial.Sprite.Frames {
		assertEqualBuffers(t, parallel.Sprite.Frames[i].Buffer, serial.Sprite.Frames[i].Buffer)
	}
}

func TestStitchFastVariantDeterministic(t *testing.T) {
	base := NewSprite("base", solidFrame(t, 16, 16, testRed))
	overlay := NewSprite("overlay", solidFrame(t, 6, 4, testBlue))

	placements := []Placement{{Angle: 45, Offset: image.Pt(1, -2)}}

	first, err := Stitch(base, overlay, placements, WithVariant(Fast))
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	second, err := Stitch(base, overlay, placements, WithVariant(Fast))
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	assertEqualBuffers(t, second.Sprite.Frames[0].Buffer, first.Sprite.Frames[0].Buffer)
}

func TestStitchFrame(t *testing.T) {
	base := NewSprite("base",
		solidFrame(t, 8, 8, testRed),
		solidFrame(t, 8, 8, testGreen),
	)
	overlayFrame := solidFrame(t, 2, 2, testBlue)

	res, err := StitchFrame(base, overlayFrame, []Placement{{}})
	if err != nil {
		t.Fatalf("StitchFrame: %v", err)
	}
	if len(res.Sprite.Frames) != 2 {
		t.Fatalf("len(Frames) = %d, want 2", len(res.Sprite.Frames))
	}
	// The single overlay frame lands on every base frame.
	for i, f := range res.Sprite.Frames {
		if got := f.Buffer.Get(4, 4); got != testBlue {
			t.Errorf("frame %d: pixel (4, 4) = %v, want blue", i, got)
		}
	}
}

func BenchmarkStitchHighQuality(b *testing.B) {
	frames := make([]Frame, 4)
	for i := range frames {
		buf, _ := NewBuffer(32, 32)
		buf.Fill(testRed)
		frames[i] = Frame{Buffer: buf}
	}
	base := NewSprite("base", frames...)

	overlayBuf, _ := NewBuffer(16, 16)
	overlayBuf.Fill(testBlue)
	overlay := NewSprite("overlay", Frame{Buffer: overlayBuf})

	placements := []Placement{{Angle: 37}}

	b.ResetTimer()
	for range b.N {
		_, _ = Stitch(base, overlay, placements)
	}
}

func BenchmarkStitchFast(b *testing.B) {
	frames := make([]Frame, 4)
	for i := range frames {
		buf, _ := NewBuffer(32, 32)
		buf.Fill(testRed)
		frames[i] = Frame{Buffer: buf}
	}
	base := NewSprite("base", frames...)

	overlayBuf, _ := NewBuffer(16, 16)
	overlayBuf.Fill(testBlue)
	overlay := NewSprite("overlay", Frame{Buffer: overlayBuf})

	placements := []Placement{{Angle: 37}}

	b.ResetTimer()
	for range b.N {
		_, _ = Stitch(base, overlay, placements, WithVariant(Fast))
	}
}
