package bancho

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"bancho/internal/packet"
)

// SubmissionStatus is a beatmap's ranked state as reported by the score
// leaderboard response.
type SubmissionStatus int8

const (
	NotSubmitted SubmissionStatus = -1
	Pending      SubmissionStatus = 0
	StatusUnknown SubmissionStatus = 1
	Ranked       SubmissionStatus = 2
	Approved     SubmissionStatus = 3
	Qualified    SubmissionStatus = 4
	Loved        SubmissionStatus = 5
)

// CommentTarget is what a Comment is attached to.
type CommentTarget string

const (
	CommentSong    CommentTarget = "song"
	CommentMap     CommentTarget = "map"
	CommentMapset  CommentTarget = "mapset"
)

// Comment is one tab-delimited line of a beatmap's comment feed. Only the
// struct and its parser are in scope — fetching/posting comments is the
// REST helper's job (§1, out of scope).
type Comment struct {
	Time   int
	Target CommentTarget
	Format string
	Text   string
}

// ParseComment parses one tab-delimited comment line.
func ParseComment(line string) (Comment, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return Comment{}, errors.Errorf("comment line has %d fields, want 4", len(fields))
	}
	t, err := strconv.Atoi(fields[0])
	if err != nil {
		return Comment{}, errors.Wrap(err, "parse comment time")
	}
	return Comment{Time: t, Target: CommentTarget(fields[1]), Format: fields[2], Text: fields[3]}, nil
}

// Score is one pipe-delimited leaderboard line.
type Score struct {
	ID         int64
	Username   string
	TotalScore int64
	MaxCombo   int32
	Count50    int32
	Count100   int32
	Count300   int32
	CountMiss  int32
	CountKatu  int32
	CountGeki  int32
	Perfect    bool
	Mods       packet.Mods
	UserID     int32
	Rank       int32
	Date       time.Time
	Mode       packet.Mode
	HasReplay  bool
}

// ParseScore parses one pipe-delimited score line, matching Score.from_string.
func ParseScore(line string, mode packet.Mode) (Score, error) {
	f := strings.Split(line, "|")
	if len(f) != 16 {
		return Score{}, errors.Errorf("score line has %d fields, want 16", len(f))
	}
	atoi := func(s string) int64 {
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	}
	var rank int64
	if len(f[13]) > 0 {
		rank = atoi(f[13])
	}
	return Score{
		ID:         atoi(f[0]),
		Username:   f[1],
		TotalScore: atoi(f[2]),
		MaxCombo:   int32(atoi(f[3])),
		Count50:    int32(atoi(f[4])),
		Count100:   int32(atoi(f[5])),
		Count300:   int32(atoi(f[6])),
		CountMiss:  int32(atoi(f[7])),
		CountKatu:  int32(atoi(f[8])),
		CountGeki:  int32(atoi(f[9])),
		Perfect:    f[10] == "1",
		Mods:       packet.Mods(atoi(f[11])),
		UserID:     int32(atoi(f[12])),
		Rank:       int32(rank),
		Date:       time.Unix(atoi(f[14]), 0),
		Mode:       mode,
		HasReplay:  f[15] == "1",
	}, nil
}

// ScoreResponse is a parsed leaderboard: beatmap status, optional personal
// best, and the ranked score list.
type ScoreResponse struct {
	Status         SubmissionStatus
	BeatmapID      int64
	BeatmapsetID   int64
	TotalScores    int64
	GlobalOffset   int64
	BeatmapFormat  string
	Rating         float64
	PersonalBest   *Score
	Scores         []Score
}

var submissionStatusByCode = map[string]SubmissionStatus{
	"-1": NotSubmitted,
	"0":  Pending,
	"1":  StatusUnknown,
	"2":  Ranked,
	"3":  Approved,
	"4":  Qualified,
	"5":  Loved,
}

// ParseScoreResponse parses the historical newline/pipe-delimited leaderboard
// format, matching ScoreResponse.from_string.
func ParseScoreResponse(body string, mode packet.Mode) (*ScoreResponse, error) {
	lines := strings.Split(body, "\n")
	if len(lines) == 0 {
		return nil, errors.New("empty score response")
	}

	header := strings.Split(lines[0], "|")
	status, ok := submissionStatusByCode[header[0]]
	if !ok {
		return nil, errors.Errorf("unknown submission status code %q", header[0])
	}

	resp := &ScoreResponse{Status: status}
	if len(header) > 4 {
		resp.BeatmapID, _ = strconv.ParseInt(header[2], 10, 64)
		resp.BeatmapsetID, _ = strconv.ParseInt(header[3], 10, 64)
		resp.TotalScores, _ = strconv.ParseInt(header[4], 10, 64)
	}

	if len(lines) > 1 {
		resp.GlobalOffset, _ = strconv.ParseInt(lines[1], 10, 64)
		resp.BeatmapFormat = lines[2]
		resp.Rating, _ = strconv.ParseFloat(lines[3], 64)
	}

	if len(lines) > 4 {
		if lines[4] != "" {
			pb, err := ParseScore(lines[4], mode)
			if err != nil {
				return nil, errors.Wrap(err, "parse personal best")
			}
			resp.PersonalBest = &pb
		}
		for _, line := range lines[5:] {
			if line == "" {
				continue
			}
			s, err := ParseScore(line, mode)
			if err != nil {
				return nil, errors.Wrap(err, "parse score line")
			}
			resp.Scores = append(resp.Scores, s)
		}
	}

	return resp, nil
}
