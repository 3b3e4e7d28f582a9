package trials

import (
	"encoding/json"
	"testing"
)

func TestTallyKeepsFirstSeenOrder(t *testing.T) {
	tally := NewTally()
	for _, k := range []string{"Cancer", "Asthma", "Cancer", "Unknown", "Asthma", "Cancer"} {
		tally.Add(k)
	}

	keys := tally.Keys()
	want := []string{"Cancer", "Asthma", "Unknown"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected key %d to be %q, got %q", i, want[i], keys[i])
		}
	}
	if tally.Get("Cancer") != 3 {
		t.Fatalf("expected Cancer=3, got %d", tally.Get("Cancer"))
	}
	if tally.Sum() != 6 {
		t.Fatalf("expected sum 6, got %d", tally.Sum())
	}
}

func TestTallyJSONPreservesOrder(t *testing.T) {
	tally := NewTally()
	tally.Add("zeta")
	tally.Add("alpha")
	tally.Add("zeta")

	raw, err := json.Marshal(tally)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"zeta":2,"alpha":1}` {
		t.Fatalf("unexpected encoding %s", raw)
	}

	var decoded Tally
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if keys := decoded.Keys(); len(keys) != 2 || keys[0] != "zeta" || keys[1] != "alpha" {
		t.Fatalf("expected order to survive decode, got %v", keys)
	}
	if decoded.Get("zeta") != 2 {
		t.Fatalf("expected zeta=2, got %d", decoded.Get("zeta"))
	}
}

func TestZeroTallyIsUsable(t *testing.T) {
	var tally Tally
	if tally.Len() != 0 || tally.Sum() != 0 {
		t.Fatal("expected empty zero tally")
	}
	tally.Add("x")
	if tally.Get("x") != 1 {
		t.Fatalf("expected x=1, got %d", tally.Get("x"))
	}
	raw, _ := json.Marshal(Tally{})
	if string(raw) != "{}" {
		t.Fatalf("expected empty object, got %s", raw)
	}
}

func TestSourceSelectorMatches(t *testing.T) {
	if !SelectBoth.Matches(SourceEU) || !SelectBoth.Matches(SourceUS) {
		t.Fatal("expected BOTH to match every source")
	}
	if SelectUS.Matches(SourceEU) {
		t.Fatal("expected US selector to reject EU trials")
	}
	if !SelectEU.Matches(SourceEU) {
		t.Fatal("expected EU selector to accept EU trials")
	}
}

func TestLookupStatusKey(t *testing.T) {
	status, ok := LookupStatusKey("UNKNOWN")
	if !ok || status != StatusUnknown {
		t.Fatalf("expected UNKNOWN key to resolve to %q, got %q", StatusUnknown, status)
	}
	if _, ok := LookupStatusKey("completed"); ok {
		t.Fatal("expected key lookup to be case-sensitive")
	}
}
