package bancho

import (
	"bancho/internal/packet"
	"bancho/internal/streams"
)

// BeatmapInfo is one entry of a BeatmapInfoReply batch.
type BeatmapInfo struct {
	ID            int16
	BeatmapID     int32
	BeatmapsetID  int32
	ThreadID      int32
	Ranked        uint8
	OsuRank       packet.Grade
	FruitsRank    packet.Grade
	TaikoRank     packet.Grade
	ManiaRank     packet.Grade
	Checksum      string
}

// DecodeBeatmapInfo reads one record in the exact field order of the
// historical decoder.
func DecodeBeatmapInfo(in *streams.In) (BeatmapInfo, error) {
	var b BeatmapInfo
	var err error

	if b.ID, err = in.S16(); err != nil {
		return b, err
	}
	if b.BeatmapID, err = in.S32(); err != nil {
		return b, err
	}
	if b.BeatmapsetID, err = in.S32(); err != nil {
		return b, err
	}
	if b.ThreadID, err = in.S32(); err != nil {
		return b, err
	}
	if b.Ranked, err = in.U8(); err != nil {
		return b, err
	}
	for _, dst := range []*packet.Grade{&b.OsuRank, &b.FruitsRank, &b.TaikoRank, &b.ManiaRank} {
		g, err := in.U8()
		if err != nil {
			return b, err
		}
		*dst = packet.Grade(g)
	}
	if b.Checksum, err = in.String(); err != nil {
		return b, err
	}
	return b, nil
}
