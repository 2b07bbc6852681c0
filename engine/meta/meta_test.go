package meta

import "testing"

func TestExtract_FlagAndValue(t *testing.T) {
	bag := Extract("swamp tile <slow> <speed:2>\n<label:Mire of Sorrow>")

	if bag["slow"] != true {
		t.Errorf("slow = %v, want true", bag["slow"])
	}
	if bag["speed"] != "2" {
		t.Errorf("speed = %v, want %q", bag["speed"], "2")
	}
	if bag["label"] != "Mire of Sorrow" {
		t.Errorf("label = %v", bag["label"])
	}
}

func TestExtract_EmptyNote(t *testing.T) {
	bag := Extract("")
	if bag == nil {
		t.Fatal("expected empty bag, got nil")
	}
	if len(bag) != 0 {
		t.Errorf("expected no keys, got %v", bag)
	}
}

func TestExtract_EmptyValue(t *testing.T) {
	bag := Extract("<key:>")
	if v, ok := bag["key"]; !ok || v != "" {
		t.Errorf("key = %v (present %v), want empty string", v, ok)
	}
}

func TestExtract_LaterTagWins(t *testing.T) {
	bag := Extract("<mood:calm><mood:angry>")
	if bag["mood"] != "angry" {
		t.Errorf("mood = %v, want angry", bag["mood"])
	}
}

func TestExtract_IgnoresMalformed(t *testing.T) {
	bag := Extract("<> <:x> plain text")
	if len(bag) != 0 {
		t.Errorf("expected no keys, got %v", bag)
	}
}
