package intent

import (
	"testing"
)

func TestClassify_EmptyText(t *testing.T) {
	c := NewClassifier(nil)

	if got := c.Classify(""); got != DefaultIntent {
		t.Errorf("expected %s for empty text, got %s", DefaultIntent, got)
	}
	if got := c.Classify("   "); got != DefaultIntent {
		t.Errorf("expected %s for blank text, got %s", DefaultIntent, got)
	}
}

func TestClassify_NoKeywordHits(t *testing.T) {
	c := NewClassifier(nil)

	if got := c.Classify("hello there"); got != DefaultIntent {
		t.Errorf("expected %s, got %s", DefaultIntent, got)
	}
}

func TestClassify_HighestScoreWins(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify("My points from the purchase are missing and not credited")
	if got != "missing_points" {
		t.Errorf("expected missing_points, got %s", got)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify("I CANNOT LOGIN, my ACCOUNT is LOCKED")
	if got != "account_access" {
		t.Errorf("expected account_access, got %s", got)
	}
}

func TestClassify_TieKeepsFirstSeen(t *testing.T) {
	c := NewClassifier([]Category{
		{Label: "first", Keywords: []string{"alpha"}},
		{Label: "second", Keywords: []string{"alpha"}},
	})

	if got := c.Classify("alpha"); got != "first" {
		t.Errorf("expected declaration-order tie-break, got %s", got)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := NewClassifier(nil)
	text := "I want to redeem my reward voucher"

	first := c.Classify(text)
	second := c.Classify(text)
	if first != second {
		t.Errorf("classification not idempotent: %s vs %s", first, second)
	}
}
