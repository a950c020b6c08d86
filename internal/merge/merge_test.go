package merge

import (
	"strings"
	"testing"
)

func TestThreeWay_UnionOfNonConflictingChanges(t *testing.T) {
	base := `{"id":"a","updated_at":1000}`
	ours := base + "\n" + `{"id":"a","updated_at":1500}` + "\n" + `{"id":"b","updated_at":1200}`
	theirs := base + "\n" + `{"id":"a","updated_at":2000}` + "\n" + `{"id":"c","updated_at":1300}`

	result, err := ThreeWay(strings.NewReader(base), strings.NewReader(ours), strings.NewReader(theirs))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.ExitCode() != 0 {
		t.Fatalf("expected exit 0, got conflicts: %+v", result.Conflicts)
	}

	want := `{"id":"a","updated_at":2000}` + "\n" +
		`{"id":"b","updated_at":1200}` + "\n" +
		`{"id":"c","updated_at":1300}` + "\n"
	if string(result.Merged) != want {
		t.Errorf("merged mismatch:\ngot:  %q\nwant: %q", result.Merged, want)
	}
}

func TestThreeWay_ConflictOnEqualTimestampsDifferentBodies(t *testing.T) {
	base := `{"id":"a","updated_at":1000,"v":"base"}`
	ours := `{"id":"a","updated_at":1500,"v":"x"}`
	theirs := `{"id":"a","updated_at":1500,"v":"y"}`

	result, err := ThreeWay(strings.NewReader(base), strings.NewReader(ours), strings.NewReader(theirs))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.ExitCode() != 1 {
		t.Fatal("expected exit code 1 on conflict")
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].ID != "a" {
		t.Fatalf("expected single conflict for id=a, got %+v", result.Conflicts)
	}
	merged := string(result.Merged)
	if !strings.Contains(merged, "<<<<<<< ours") || !strings.Contains(merged, ">>>>>>> theirs") {
		t.Errorf("expected conflict markers in output, got %q", merged)
	}
	if !strings.Contains(merged, ours) || !strings.Contains(merged, theirs) {
		t.Errorf("expected both candidate lines present, got %q", merged)
	}
}

func TestThreeWay_EqualTimestampSameBodyIsNotAConflict(t *testing.T) {
	line := `{"id":"a","updated_at":1500,"v":"x"}`
	result, err := ThreeWay(strings.NewReader(""), strings.NewReader(line), strings.NewReader(line))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.ExitCode() != 0 {
		t.Fatalf("expected identical revisions to merge cleanly, got conflicts: %+v", result.Conflicts)
	}
}

func TestThreeWay_Idempotent(t *testing.T) {
	lines := `{"id":"a","updated_at":1000}` + "\n" + `{"id":"b","updated_at":2000}`
	result, err := ThreeWay(strings.NewReader(""), strings.NewReader(lines), strings.NewReader(lines))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := `{"id":"a","updated_at":1000}` + "\n" + `{"id":"b","updated_at":2000}` + "\n"
	if string(result.Merged) != want {
		t.Errorf("merge(base, X, X) should equal X:\ngot:  %q\nwant: %q", result.Merged, want)
	}
}

func TestThreeWay_Commutative(t *testing.T) {
	base := ""
	ours := `{"id":"a","updated_at":1000}` + "\n" + `{"id":"b","updated_at":3000}`
	theirs := `{"id":"a","updated_at":2000}` + "\n" + `{"id":"c","updated_at":1500}`

	forward, err := ThreeWay(strings.NewReader(base), strings.NewReader(ours), strings.NewReader(theirs))
	if err != nil {
		t.Fatalf("merge forward: %v", err)
	}
	backward, err := ThreeWay(strings.NewReader(base), strings.NewReader(theirs), strings.NewReader(ours))
	if err != nil {
		t.Fatalf("merge backward: %v", err)
	}
	if string(forward.Merged) != string(backward.Merged) {
		t.Errorf("expected commutative merge with distinct timestamps:\nforward:  %q\nbackward: %q",
			forward.Merged, backward.Merged)
	}
}

func TestThreeWay_DeletionSafe_GreaterTimestampTombstoneWins(t *testing.T) {
	ours := `{"id":"a","updated_at":2000,"deleted":true}`
	theirs := `{"id":"a","updated_at":1000,"v":"resurrected"}`

	result, err := ThreeWay(strings.NewReader(""), strings.NewReader(ours), strings.NewReader(theirs))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.ExitCode() != 0 {
		t.Fatalf("expected clean merge, got conflicts: %+v", result.Conflicts)
	}
	if string(result.Merged) != ours+"\n" {
		t.Errorf("expected tombstone to win by timestamp, got %q", result.Merged)
	}
}

func TestThreeWay_AbsentFromBothSidesDroppedEvenIfInBase(t *testing.T) {
	base := `{"id":"a","updated_at":1000}`
	ours := `{"id":"b","updated_at":1000}`
	theirs := `{"id":"c","updated_at":1000}`

	result, err := ThreeWay(strings.NewReader(base), strings.NewReader(ours), strings.NewReader(theirs))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if strings.Contains(string(result.Merged), `"id":"a"`) {
		t.Errorf("expected identity absent from both sides to be dropped, got %q", result.Merged)
	}
}

func TestThreeWay_MalformedLineSkipped(t *testing.T) {
	ours := `{"id":"a","updated_at":1000}` + "\nnot json\n" + `{"id":"b","updated_at":1000}`
	result, err := ThreeWay(strings.NewReader(""), strings.NewReader(ours), strings.NewReader(""))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if strings.Contains(string(result.Merged), "not json") {
		t.Errorf("expected malformed line to be skipped, got %q", result.Merged)
	}
	if !strings.Contains(string(result.Merged), `"id":"a"`) || !strings.Contains(string(result.Merged), `"id":"b"`) {
		t.Errorf("expected both well-formed lines to survive, got %q", result.Merged)
	}
}
