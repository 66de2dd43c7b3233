package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(-3) != DefaultLimit {
		t.Fatal("expected default limit")
	}
	if NormalizeLimit(MaxLimit+1) != MaxLimit {
		t.Fatal("expected max limit")
	}
	if NormalizeLimit(7) != 7 {
		t.Fatal("expected passthrough")
	}
}

func TestWindow(t *testing.T) {
	start, end, page := Params{Limit: 10, Offset: 5}.Window(12)
	if start != 5 || end != 12 || page.HasMore {
		t.Fatalf("unexpected window %d-%d %+v", start, end, page)
	}
	start, end, page = Params{Limit: 2, Offset: 0}.Window(12)
	if start != 0 || end != 2 || !page.HasMore || page.Total != 12 {
		t.Fatalf("unexpected window %d-%d %+v", start, end, page)
	}
	start, end, _ = Params{Limit: 2, Offset: 50}.Window(3)
	if start != 3 || end != 3 {
		t.Fatalf("offset beyond total should yield empty window, got %d-%d", start, end)
	}
}
