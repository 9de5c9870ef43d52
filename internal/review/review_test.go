package review

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlund/cardbox/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "cardbox.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func stepOf(t *testing.T, db *storage.DB, front string) int {
	t.Helper()
	cards, err := db.AllCards()
	if err != nil {
		t.Fatalf("AllCards failed: %v", err)
	}
	for _, c := range cards {
		if c.Front == front {
			return c.StepIndex
		}
	}
	t.Fatalf("card %q not found", front)
	return 0
}

func TestRunPassingReview(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertCard("What is Go?", "A programming language."); err != nil {
		t.Fatalf("InsertCard failed: %v", err)
	}

	var out bytes.Buffer
	s := NewSession(db, strings.NewReader("\ny\n"), &out)
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "What is Go?") {
		t.Errorf("expected the front to be shown, got %q", got)
	}
	if !strings.Contains(got, "A programming language.") {
		t.Errorf("expected the back to be revealed, got %q", got)
	}
	if !strings.Contains(got, "Ok? (Y/n) ") {
		t.Errorf("expected the judgment prompt, got %q", got)
	}

	if step := stepOf(t, db, "What is Go?"); step != 1 {
		t.Errorf("expected the card to advance to step 1, got %d", step)
	}

	// A card freshly moved to step 1 is not due for another day.
	fronts, err := s.DueFronts()
	if err != nil {
		t.Fatalf("DueFronts failed: %v", err)
	}
	if len(fronts) != 0 {
		t.Errorf("expected no due cards after the review, got %v", fronts)
	}
}

func TestRunFailingReviewDropsToStepOne(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertCard("Q", "A"); err != nil {
		t.Fatalf("InsertCard failed: %v", err)
	}

	var out bytes.Buffer
	s := NewSession(db, strings.NewReader("\nn\n"), &out)
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Failing even a step-0 card lands on step 1, not 0.
	if step := stepOf(t, db, "Q"); step != 1 {
		t.Errorf("expected step 1 after a fail, got %d", step)
	}
}

func TestRunEmptyReplyCountsAsPass(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertCard("Q", "A"); err != nil {
		t.Fatalf("InsertCard failed: %v", err)
	}

	var out bytes.Buffer
	s := NewSession(db, strings.NewReader("\n\n"), &out)
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if step := stepOf(t, db, "Q"); step != 1 {
		t.Errorf("expected an empty reply to count as a pass, got step %d", step)
	}
}

func TestRunEndOfInputCountsAsEmpty(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertCard("Q", "A"); err != nil {
		t.Fatalf("InsertCard failed: %v", err)
	}

	var out bytes.Buffer
	s := NewSession(db, strings.NewReader(""), &out)
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if step := stepOf(t, db, "Q"); step != 1 {
		t.Errorf("expected EOF to behave like an empty pass, got step %d", step)
	}
}

func TestRunNoDueCardsIsSilent(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertCard("Q", "A"); err != nil {
		t.Fatalf("InsertCard failed: %v", err)
	}
	// Move the card to step 1; it was just updated, so it is due tomorrow.
	if err := db.UpdateCardStep("Q", 1); err != nil {
		t.Fatalf("UpdateCardStep failed: %v", err)
	}

	var out bytes.Buffer
	s := NewSession(db, strings.NewReader("\ny\n"), &out)
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output when nothing is due, got %q", out.String())
	}
	if step := stepOf(t, db, "Q"); step != 1 {
		t.Errorf("expected the card to be untouched, got step %d", step)
	}
}

func TestDueFronts(t *testing.T) {
	db := openTestDB(t)
	for _, front := range []string{"a", "b", "c"} {
		if err := db.InsertCard(front, "back"); err != nil {
			t.Fatalf("InsertCard failed: %v", err)
		}
	}
	// Park one card on a later rung so it is no longer due.
	if err := db.UpdateCardStep("b", 2); err != nil {
		t.Fatalf("UpdateCardStep failed: %v", err)
	}

	s := NewSession(db, strings.NewReader(""), &bytes.Buffer{})
	fronts, err := s.DueFronts()
	if err != nil {
		t.Fatalf("DueFronts failed: %v", err)
	}

	if len(fronts) != 2 {
		t.Fatalf("expected 2 due cards, got %v", fronts)
	}
	for _, f := range fronts {
		if f == "b" {
			t.Error("card 'b' should not be due")
		}
	}
}

func TestDueFrontsEmptyStore(t *testing.T) {
	db := openTestDB(t)

	s := NewSession(db, strings.NewReader(""), &bytes.Buffer{})
	fronts, err := s.DueFronts()
	if err != nil {
		t.Fatalf("DueFronts failed: %v", err)
	}
	if len(fronts) != 0 {
		t.Errorf("expected nothing due on an empty store, got %v", fronts)
	}
}
