package syntax

import "testing"

func TestParseColorsKeywordAndString(t *testing.T) {
	spans := Parse(`function main()
	return "hi"
end`)
	if len(spans) == 0 {
		t.Fatalf("expected at least one span")
	}
	var sawKeyword, sawString bool
	for _, s := range spans {
		if s.Color == ColorKeyword {
			sawKeyword = true
		}
		if s.Color == ColorString {
			sawString = true
		}
	}
	if !sawKeyword {
		t.Errorf("expected a keyword span")
	}
	if !sawString {
		t.Errorf("expected a string span")
	}
}

func TestGetOutlineFindsTopLevelFunctions(t *testing.T) {
	entries := GetOutline(`function init()
end

function update()
end
`)
	if len(entries) != 2 {
		t.Fatalf("GetOutline returned %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Name != "init" || entries[1].Name != "update" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestParseEmptySource(t *testing.T) {
	if spans := Parse(""); len(spans) != 0 {
		t.Errorf("Parse(\"\") = %+v, want empty", spans)
	}
}
