package game

import (
	"testing"

	"castfast/internal/domain"
)

func TestStateRoundTrip(t *testing.T) {
	states := []domain.SessionState{
		domain.NewSessionState(""),
		{Round: 2, Score: 85, QuestionIndex: 7, PlayerID: "12345"},
		{Round: 3, Score: 0, QuestionIndex: 14, PlayerID: ""},
	}
	for _, want := range states {
		got := DecodeState(EncodeState(want))
		if got != want {
			t.Fatalf("round trip mismatch: want %+v, got %+v", want, got)
		}
	}
}

func TestDecodeStateDefaultsOnGarbage(t *testing.T) {
	initial := domain.NewSessionState("")
	inputs := []string{
		"",
		"not json at all",
		"%ZZbroken-escape",
		"%7B%22round%22%3A%22x%22%7D",
		`{"round":null,"score":"lots","questionIndex":[1]}`,
		`{"round":-3,"score":-10,"questionIndex":-1}`,
	}
	for _, raw := range inputs {
		got := DecodeState(raw)
		if got != initial {
			t.Fatalf("decode(%q): want initial state %+v, got %+v", raw, initial, got)
		}
	}
}

func TestDecodeStateAcceptsRawAndEscapedJSON(t *testing.T) {
	// POST bodies carry raw JSON state; GET query params carry it URL-escaped.
	raw := `{"round":2,"score":40,"questionIndex":6,"playerFid":"77"}`
	fromRaw := DecodeState(raw)
	fromEscaped := DecodeState(EncodeState(fromRaw))
	if fromRaw != fromEscaped {
		t.Fatalf("raw vs escaped decode mismatch: %+v vs %+v", fromRaw, fromEscaped)
	}
	if fromRaw.Score != 40 || fromRaw.QuestionIndex != 6 {
		t.Fatalf("unexpected decode: %+v", fromRaw)
	}
}

func TestDecodeStateNumericPlayerID(t *testing.T) {
	// Hosts send fid as a JSON number; it normalizes to a string.
	got := DecodeState(`{"round":1,"score":0,"questionIndex":0,"playerFid":9152}`)
	if got.PlayerID != "9152" {
		t.Fatalf("expected playerFid 9152, got %q", got.PlayerID)
	}
}
