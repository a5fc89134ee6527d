package bancho

import (
	"testing"

	"bancho/internal/packet"
)

func TestParseComment(t *testing.T) {
	c, err := ParseComment("12\tmap\tplain\tnice map")
	if err != nil {
		t.Fatalf("ParseComment: %v", err)
	}
	if c.Time != 12 || c.Target != CommentMap || c.Format != "plain" || c.Text != "nice map" {
		t.Errorf("unexpected comment: %+v", c)
	}
}

func TestParseCommentWrongFieldCount(t *testing.T) {
	if _, err := ParseComment("not\tenough"); err == nil {
		t.Error("expected an error for a malformed comment line")
	}
}

func TestParseScore(t *testing.T) {
	line := "1|alice|1000000|500|1|2|300|0|0|0|1|16|7|3|1700000000|1"
	s, err := ParseScore(line, packet.ModeOsu)
	if err != nil {
		t.Fatalf("ParseScore: %v", err)
	}
	if s.ID != 1 || s.Username != "alice" || s.TotalScore != 1000000 {
		t.Errorf("unexpected score: %+v", s)
	}
	if s.Mods != packet.HardRock {
		t.Errorf("expected mods HardRock (16), got %v", s.Mods)
	}
	if !s.Perfect {
		t.Error("expected perfect=true")
	}
	if !s.HasReplay {
		t.Error("expected has_replay=true")
	}
	if s.UserID != 7 || s.Rank != 3 {
		t.Errorf("unexpected user id/rank: %d %d", s.UserID, s.Rank)
	}
}

func TestParseScoreWrongFieldCount(t *testing.T) {
	if _, err := ParseScore("too|few|fields", packet.ModeOsu); err == nil {
		t.Error("expected an error for a malformed score line")
	}
}

func TestParseScoreResponseWithPersonalBestAndScores(t *testing.T) {
	body := "2|false|111|222|2\n" +
		"5\n" +
		"osu_file_format_v14\n" +
		"9.5\n" +
		"1|alice|500|1|0|0|10|0|0|0|0|0|7|1|1700000000|0\n" +
		"2|bob|400|1|0|0|9|0|0|0|0|0|8|2|1700000001|0"

	resp, err := ParseScoreResponse(body, packet.ModeOsu)
	if err != nil {
		t.Fatalf("ParseScoreResponse: %v", err)
	}
	if resp.Status != Ranked {
		t.Errorf("expected status Ranked, got %v", resp.Status)
	}
	if resp.BeatmapID != 111 || resp.BeatmapsetID != 222 {
		t.Errorf("unexpected beatmap ids: %+v", resp)
	}
	if resp.PersonalBest == nil || resp.PersonalBest.Username != "alice" {
		t.Fatalf("expected personal best alice, got %+v", resp.PersonalBest)
	}
	if len(resp.Scores) != 1 || resp.Scores[0].Username != "bob" {
		t.Fatalf("expected one leaderboard score (bob), got %+v", resp.Scores)
	}
}

func TestParseScoreResponseUnknownStatus(t *testing.T) {
	if _, err := ParseScoreResponse("99|false\n", packet.ModeOsu); err == nil {
		t.Error("expected an error for an unrecognized submission status code")
	}
}
