package bancho

import (
	"github.com/samber/lo"

	"bancho/internal/packet"
)

// acronyms mirrors the historical Mods.acronyms table: individual bit mods
// map to their canonical two-letter (or short) abbreviation. NoVideo, Key9
// and LastMod have no entry; composite aliases (ScoreIncreaseMods, KeyMod,
// FreeModAllowed) and NoMod are deliberately absent, matching the original.
var acronyms = map[packet.Mods]string{
	packet.NoFail:      "NF",
	packet.Easy:        "EZ",
	packet.Hidden:      "HD",
	packet.HardRock:    "HR",
	packet.SuddenDeath: "SD",
	packet.DoubleTime:  "DT",
	packet.Relax:       "Relax",
	packet.HalfTime:    "HT",
	packet.Nightcore:   "NC",
	packet.Flashlight:  "FL",
	packet.SpunOut:     "SO",
	packet.Autopilot:   "AP",
	packet.Perfect:     "PF",
	packet.Key1:        "K1",
	packet.Key2:        "K2",
	packet.Key3:        "K3",
	packet.Key4:        "K4",
	packet.Key5:        "K5",
	packet.Key6:        "K6",
	packet.Key7:        "K7",
	packet.Key8:        "K8",
	packet.KeyCoopMod:  "2P",
	packet.FadeIn:      "FI",
	packet.Random:      "RD",
	packet.ScoreV2:     "ScoreV2",
	packet.Cinema:      "Cinema",
	packet.Autoplay:    "Auto",
	packet.Target:      "TP",
}

// allModBits enumerates every individual (non-composite) flag, in
// ascending bit order, for Members/Acronyms iteration.
var allModBits = []packet.Mods{
	packet.NoFail, packet.Easy, packet.NoVideo, packet.Hidden, packet.HardRock,
	packet.SuddenDeath, packet.DoubleTime, packet.Relax, packet.HalfTime,
	packet.Nightcore, packet.Flashlight, packet.Autoplay, packet.SpunOut,
	packet.Autopilot, packet.Perfect, packet.Key4, packet.Key5, packet.Key6,
	packet.Key7, packet.Key8, packet.FadeIn, packet.Random, packet.Cinema,
	packet.Target, packet.Key9, packet.KeyCoopMod, packet.Key1, packet.Key3,
	packet.Key2, packet.ScoreV2, packet.LastMod,
}

// Members returns every individual flag set in mods.
func Members(mods packet.Mods) []packet.Mods {
	return lo.Filter(allModBits, func(bit packet.Mods, _ int) bool {
		return mods&bit != 0
	})
}

// Acronyms converts mods to its canonical list of short names, skipping any
// member with no entry in the table (NoVideo, Key9, LastMod).
func Acronyms(mods packet.Mods) []string {
	members := lo.Filter(Members(mods), func(bit packet.Mods, _ int) bool {
		_, ok := acronyms[bit]
		return ok
	})
	return lo.Map(members, func(bit packet.Mods, _ int) string {
		return acronyms[bit]
	})
}
