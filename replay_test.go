package bancho

import (
	"testing"

	"bancho/internal/packet"
	"bancho/internal/streams"
)

func TestReplayFrameRoundTrip(t *testing.T) {
	f := ReplayFrame{Buttons: packet.Left1 | packet.Right1, Time: 1234, X: 100.5, Y: -50.25}

	out := streams.NewOut()
	f.Encode(out)

	got, err := DecodeReplayFrame(streams.NewIn(out.Bytes()))
	if err != nil {
		t.Fatalf("DecodeReplayFrame: %v", err)
	}
	if got != f {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestScoreFrameRoundTripWithoutV2(t *testing.T) {
	s := ScoreFrame{
		Time: 5000, ID: 1,
		Count300: 10, Count100: 2, Count50: 1, CountMiss: 1,
		TotalScore: 123456, MaxCombo: 50, CurrentCombo: 10,
		Perfect: false, CurrentHP: 100, TagByte: 0, ScoreV2: false,
	}

	out := streams.NewOut()
	s.Encode(out)

	got, err := DecodeScoreFrame(streams.NewIn(out.Bytes()))
	if err != nil {
		t.Fatalf("DecodeScoreFrame: %v", err)
	}
	if got != s {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, s)
	}
	if got.TotalHits() != 14 {
		t.Errorf("expected TotalHits 14, got %d", got.TotalHits())
	}
}

func TestScoreFrameRoundTripWithV2(t *testing.T) {
	s := ScoreFrame{
		Time: 1, ID: 2,
		TotalScore: 999, ScoreV2: true,
		ComboPortion: 0.75, BonusPortion: 0.25,
	}

	out := streams.NewOut()
	s.Encode(out)

	got, err := DecodeScoreFrame(streams.NewIn(out.Bytes()))
	if err != nil {
		t.Fatalf("DecodeScoreFrame: %v", err)
	}
	if got.ComboPortion != 0.75 || got.BonusPortion != 0.25 {
		t.Errorf("expected v2 combo/bonus portions preserved, got %+v", got)
	}
}
