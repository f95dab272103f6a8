package pixel

import "testing"

func TestCompare_Identical(t *testing.T) {
	a := patternBuffer(t, 10, 10, 4)

	result, err := Compare(a, a.Clone())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !result.Identical {
		t.Error("identical buffers should compare as identical")
	}
	if result.SimilarityScore != 1.0 {
		t.Errorf("SimilarityScore: got %f, want 1.0", result.SimilarityScore)
	}
	if result.TotalPixels != 100 {
		t.Errorf("TotalPixels: got %d, want 100", result.TotalPixels)
	}
}

func TestCompare_Different(t *testing.T) {
	a, _ := New(10, 10, 1)
	b, _ := New(10, 10, 1)
	// Half the pixels differ strongly, one pixel differs below threshold.
	for i := 0; i < 50; i++ {
		b.Pix[i] = 200
	}
	b.Pix[99] = 5

	result, err := Compare(a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.PixelsDifferent != 50 {
		t.Errorf("PixelsDifferent: got %d, want 50", result.PixelsDifferent)
	}
	if result.SimilarityScore != 0.5 {
		t.Errorf("SimilarityScore: got %f, want 0.5", result.SimilarityScore)
	}
	if result.MaxChannelDiff != 200 {
		t.Errorf("MaxChannelDiff: got %d, want 200", result.MaxChannelDiff)
	}
	if result.Identical {
		t.Error("different buffers reported identical")
	}
}

func TestCompare_ShapeMismatch(t *testing.T) {
	a, _ := New(10, 10, 1)
	b, _ := New(10, 10, 3)
	if _, err := Compare(a, b); err == nil {
		t.Error("Compare should fail for mismatched shapes")
	}
}
