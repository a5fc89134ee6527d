package bancho

import (
	"bancho/internal/packet"
	"bancho/internal/streams"
)

// ReplayFrame is one sampled instant of input during spectated gameplay.
type ReplayFrame struct {
	Buttons packet.ButtonState
	Time    int32
	X, Y    float32
}

// DecodeReplayFrame reads a frame in the exact field order the historical
// decoder uses: button-state byte, a legacy signed byte whose positive
// value folds into Right1 for back-compat, then x, then y, then time.
func DecodeReplayFrame(in *streams.In) (ReplayFrame, error) {
	var f ReplayFrame

	b, err := in.U8()
	if err != nil {
		return f, err
	}
	f.Buttons = packet.ButtonState(b)

	legacy, err := in.S8()
	if err != nil {
		return f, err
	}
	if legacy > 0 && f.Buttons&packet.Right1 == 0 {
		f.Buttons |= packet.Right1
	}

	if f.X, err = in.Float32(); err != nil {
		return f, err
	}
	if f.Y, err = in.Float32(); err != nil {
		return f, err
	}
	if f.Time, err = in.S32(); err != nil {
		return f, err
	}
	return f, nil
}

// Encode writes the frame back in decode order; the legacy byte is written
// as 0 since Right1 is already carried in Buttons.
func (f ReplayFrame) Encode(out *streams.Out) {
	out.U8(uint8(f.Buttons))
	out.S8(0)
	out.Float32(f.X)
	out.Float32(f.Y)
	out.S32(f.Time)
}

// ScoreFrame is a snapshot of in-progress score during spectated gameplay.
type ScoreFrame struct {
	Time int32
	ID   uint8

	Count300  uint16
	Count100  uint16
	Count50   uint16
	CountGeki uint16
	CountKatu uint16
	CountMiss uint16

	TotalScore    int32
	MaxCombo      uint16
	CurrentCombo  uint16
	Perfect       bool
	CurrentHP     uint8
	TagByte       uint8

	ScoreV2       bool
	ComboPortion  float32
	BonusPortion  float32
}

// TotalHits is the sum of every non-miss-adjacent hit count (300/100/50 plus
// misses), matching the total_hits property in the original.
func (s ScoreFrame) TotalHits() int {
	return int(s.Count50) + int(s.Count100) + int(s.Count300) + int(s.CountMiss)
}

// DecodeScoreFrame reads a score frame in the exact field order of the
// historical decoder: time, id, six u16 hit counters, total score, combo
// fields, perfect/hp/tag bytes, the v2 flag, then (only if v2) two floats.
func DecodeScoreFrame(in *streams.In) (ScoreFrame, error) {
	var s ScoreFrame
	var err error

	if s.Time, err = in.S32(); err != nil {
		return s, err
	}
	if s.ID, err = in.U8(); err != nil {
		return s, err
	}
	if s.Count300, err = in.U16(); err != nil {
		return s, err
	}
	if s.Count100, err = in.U16(); err != nil {
		return s, err
	}
	if s.Count50, err = in.U16(); err != nil {
		return s, err
	}
	if s.CountGeki, err = in.U16(); err != nil {
		return s, err
	}
	if s.CountKatu, err = in.U16(); err != nil {
		return s, err
	}
	if s.CountMiss, err = in.U16(); err != nil {
		return s, err
	}
	if s.TotalScore, err = in.S32(); err != nil {
		return s, err
	}
	if s.MaxCombo, err = in.U16(); err != nil {
		return s, err
	}
	if s.CurrentCombo, err = in.U16(); err != nil {
		return s, err
	}
	if s.Perfect, err = in.Bool(); err != nil {
		return s, err
	}
	if s.CurrentHP, err = in.U8(); err != nil {
		return s, err
	}
	if s.TagByte, err = in.U8(); err != nil {
		return s, err
	}
	if s.ScoreV2, err = in.Bool(); err != nil {
		return s, err
	}
	if s.ScoreV2 {
		if s.ComboPortion, err = in.Float32(); err != nil {
			return s, err
		}
		if s.BonusPortion, err = in.Float32(); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Encode writes the frame back in decode order.
func (s ScoreFrame) Encode(out *streams.Out) {
	out.S32(s.Time)
	out.U8(s.ID)
	out.U16(s.Count300)
	out.U16(s.Count100)
	out.U16(s.Count50)
	out.U16(s.CountGeki)
	out.U16(s.CountKatu)
	out.U16(s.CountMiss)
	out.S32(s.TotalScore)
	out.U16(s.MaxCombo)
	out.U16(s.CurrentCombo)
	out.Bool(s.Perfect)
	out.U8(s.CurrentHP)
	out.U8(s.TagByte)
	out.Bool(s.ScoreV2)
	if s.ScoreV2 {
		out.Float32(s.ComboPortion)
		out.Float32(s.BonusPortion)
	}
}
