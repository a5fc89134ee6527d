// Package packet holds the bancho wire vocabulary: the fixed numeric packet
// IDs the client sends and receives, the small value enumerations carried
// inside packet payloads, and the length-prefixed frame codec built on top
// of internal/streams. None of it knows about Player/Channel/Match — those
// live in the root package, built on top of these primitives.
package packet

// ClientPacket identifies an outbound (client → server) packet kind.
type ClientPacket uint16

// The 49 client-sent packet kinds defined here, numerically stable per the
// historical bancho protocol. Client ids not listed have no constant.
const (
	ChangeAction            ClientPacket = 0
	SendPublicMessage       ClientPacket = 1
	Logout                  ClientPacket = 2
	RequestStatusUpdate     ClientPacket = 3
	Ping                    ClientPacket = 4
	StartSpectating         ClientPacket = 16
	StopSpectating          ClientPacket = 17
	SpectateFrames          ClientPacket = 18
	ErrorReport             ClientPacket = 20
	CantSpectate            ClientPacket = 21
	SendPrivateMessage      ClientPacket = 25
	PartLobby               ClientPacket = 29
	JoinLobby               ClientPacket = 30
	CreateMatch             ClientPacket = 31
	JoinMatch               ClientPacket = 32
	PartMatch               ClientPacket = 33
	MatchChangeSlot         ClientPacket = 38
	MatchReady              ClientPacket = 39
	MatchLock               ClientPacket = 40
	MatchChangeSettings     ClientPacket = 41
	MatchStart              ClientPacket = 44
	MatchScoreUpdate        ClientPacket = 47
	MatchComplete           ClientPacket = 49
	MatchChangeMods         ClientPacket = 51
	MatchLoadComplete       ClientPacket = 52
	MatchNoBeatmap          ClientPacket = 54
	MatchNotReady           ClientPacket = 55
	MatchFailed             ClientPacket = 56
	MatchHasBeatmap         ClientPacket = 59
	MatchSkipRequest        ClientPacket = 60
	ChannelJoin             ClientPacket = 63
	BeatmapInfoRequest      ClientPacket = 68
	MatchTransferHost       ClientPacket = 70
	FriendAdd               ClientPacket = 73
	FriendRemove            ClientPacket = 74
	MatchChangeTeam         ClientPacket = 77
	ChannelPart             ClientPacket = 78
	ReceiveUpdates          ClientPacket = 79
	SetAwayMessage          ClientPacket = 82
	IrcOnly                 ClientPacket = 84
	UserStatsRequest        ClientPacket = 85
	MatchInviteClient       ClientPacket = 87
	MatchChangePasswordOut  ClientPacket = 90
	TourneyMatchInfoRequest ClientPacket = 93
	UserPresenceRequest     ClientPacket = 97
	UserPresenceRequestAll  ClientPacket = 98
	ToggleBlockNonFriendDMs ClientPacket = 99
	TourneyJoinMatchChannel ClientPacket = 108
	TourneyLeaveMatchChannel ClientPacket = 109
)

// ServerPacket identifies an inbound (server → client) packet kind.
type ServerPacket uint16

// The 59 server-sent packet kinds defined here; server ids not listed have no
// constant. Four are marked "unused" in the historical
// source (HandleIRCChangeUsername, Unauthorized, Monitor, RTX) and kept only
// for numeric stability — nothing here sends or specially handles them.
const (
	UserID                   ServerPacket = 5
	SendMessage              ServerPacket = 7
	Pong                     ServerPacket = 8
	HandleIRCChangeUsername  ServerPacket = 9 // unused
	HandleIRCQuit            ServerPacket = 10
	UserStats                ServerPacket = 11
	UserLogout               ServerPacket = 12
	SpectatorJoined          ServerPacket = 13
	SpectatorLeft            ServerPacket = 14
	SpectateFrames           ServerPacket = 15
	VersionUpdate            ServerPacket = 19
	SpectatorCantSpectate    ServerPacket = 22
	GetAttention             ServerPacket = 23
	Notification             ServerPacket = 24
	UpdateMatch              ServerPacket = 26
	NewMatch                 ServerPacket = 27
	DisposeMatch             ServerPacket = 28
	ToggleBlockNonFriendDMsSv ServerPacket = 34
	MatchJoinSuccess         ServerPacket = 36
	MatchJoinFail            ServerPacket = 37
	FellowSpectatorJoined    ServerPacket = 42
	FellowSpectatorLeft      ServerPacket = 43
	AllPlayersLoaded         ServerPacket = 45
	MatchStartSv             ServerPacket = 46
	MatchScoreUpdateSv       ServerPacket = 48
	MatchTransferHostSv      ServerPacket = 50
	MatchAllPlayersLoaded    ServerPacket = 53
	MatchPlayerFailed        ServerPacket = 57
	MatchCompleteSv          ServerPacket = 58
	MatchSkip                ServerPacket = 61
	Unauthorized             ServerPacket = 62 // unused
	ChannelJoinSuccess       ServerPacket = 64
	ChannelInfo              ServerPacket = 65
	ChannelKick              ServerPacket = 66
	ChannelAutoJoin          ServerPacket = 67
	BeatmapInfoReply         ServerPacket = 69
	Privileges               ServerPacket = 71
	FriendsList              ServerPacket = 72
	ProtocolVersion          ServerPacket = 75
	MainMenuIcon             ServerPacket = 76
	Monitor                  ServerPacket = 80 // unused
	MatchPlayerSkipped       ServerPacket = 81
	UserPresence             ServerPacket = 83
	Restart                  ServerPacket = 86
	MatchInvite              ServerPacket = 88
	ChannelInfoEnd           ServerPacket = 89
	MatchChangePassword      ServerPacket = 91
	SilenceEnd               ServerPacket = 92
	UserSilenced             ServerPacket = 94
	UserPresenceSingle       ServerPacket = 95
	UserPresenceBundle       ServerPacket = 96
	UserDmBlocked            ServerPacket = 100
	TargetIsSilenced         ServerPacket = 101
	VersionUpdateForced      ServerPacket = 102
	SwitchServer             ServerPacket = 103
	AccountRestricted        ServerPacket = 104
	RTX                      ServerPacket = 105 // unused
	MatchAbort               ServerPacket = 106
	SwitchTournamentServer   ServerPacket = 107
)

// LoginCode is the s32 payload of a UserID reply: non-negative is the new
// user id, negative is one of the codes below.
type LoginCode int32

const (
	AuthenticationError LoginCode = -1
	UpdateNeeded        LoginCode = -2
	Restricted          LoginCode = -3
	NotActivated        LoginCode = -4
	ServerError         LoginCode = -5
	NeedSupporter       LoginCode = -6
	PasswordReset       LoginCode = -7
	VerificationNeeded  LoginCode = -8
)

// Description returns the user-facing message for a negative login code.
func (c LoginCode) Description() string {
	switch c {
	case AuthenticationError:
		return "Authentication failed. Please check your username/password!"
	case UpdateNeeded:
		return "It seems like this version of osu! is too old. Please check for any updates!"
	case Restricted:
		return "You are banned."
	case NotActivated:
		return "Your account was either restricted or is not activated."
	case ServerError:
		return "A server error occured."
	case NeedSupporter:
		return "You need to be a supporter to use tourney clients."
	case PasswordReset:
		return "Your account password has been reset."
	case VerificationNeeded:
		return ""
	default:
		return "Unknown login error."
	}
}

// StatusAction is the player's current high-level activity.
type StatusAction uint8

const (
	Idle StatusAction = iota
	Afk
	Playing
	Editing
	Modding
	Multiplayer
	Watching
	Unknown
	Testing
	Submitting
	Paused
	Lobby
	Multiplaying
	OsuDirect
)

// Mods is a 31-bit flag set of in-game score/behavior modifiers.
type Mods uint32

const (
	NoMod       Mods = 0
	NoFail      Mods = 1 << 0
	Easy        Mods = 1 << 1
	NoVideo     Mods = 1 << 2
	Hidden      Mods = 1 << 3
	HardRock    Mods = 1 << 4
	SuddenDeath Mods = 1 << 5
	DoubleTime  Mods = 1 << 6
	Relax       Mods = 1 << 7
	HalfTime    Mods = 1 << 8
	Nightcore   Mods = 1 << 9
	Flashlight  Mods = 1 << 10
	Autoplay    Mods = 1 << 11
	SpunOut     Mods = 1 << 12
	Autopilot   Mods = 1 << 13
	Perfect     Mods = 1 << 14
	Key4        Mods = 1 << 15
	Key5        Mods = 1 << 16
	Key6        Mods = 1 << 17
	Key7        Mods = 1 << 18
	Key8        Mods = 1 << 19
	FadeIn      Mods = 1 << 20
	Random      Mods = 1 << 21
	Cinema      Mods = 1 << 22
	Target      Mods = 1 << 23
	Key9        Mods = 1 << 24
	KeyCoopMod  Mods = 1 << 25
	Key1        Mods = 1 << 26
	Key3        Mods = 1 << 27
	Key2        Mods = 1 << 28
	ScoreV2     Mods = 1 << 29
	LastMod     Mods = 1 << 30
)

// Composite aliases, matching the historical IntFlag combinations exactly.
const (
	ScoreIncreaseMods = Hidden | HardRock | DoubleTime | Flashlight | FadeIn
	KeyMod            = Key1 | Key2 | Key3 | Key4 | Key5 | Key6 | Key7 | Key8 | Key9 | KeyCoopMod
	FreeModAllowed    = NoFail | Easy | Hidden | HardRock | SuddenDeath | Flashlight | FadeIn | Relax | Autopilot | SpunOut | KeyMod
)

// Privileges is a bit-flag set of account-level permissions.
type Privileges uint32

const (
	Restricted Privileges = 0
	Normal     Privileges = 1
	BAT        Privileges = 2
	Supporter  Privileges = 4
	Peppy      Privileges = 8
	Admin      Privileges = 16
	Tournament Privileges = 32
)

// ButtonState is the replay-frame input bitmask.
type ButtonState uint8

const (
	NoButtons ButtonState = 0
	Left1     ButtonState = 1
	Right1    ButtonState = 2
	Left2     ButtonState = 4
	Right2    ButtonState = 8
	Smoke     ButtonState = 16
)

// Mode is the ruleset (osu!/taiko/catch/mania).
type Mode uint8

const (
	ModeOsu   Mode = 0
	ModeTaiko Mode = 1
	ModeCatch Mode = 2
	ModeMania Mode = 3
)

// ReplayAction tags what a batch of spectated replay frames represents.
type ReplayAction uint8

const (
	Standard ReplayAction = iota
	NewSong
	Skip
	Completion
	Fail
	Pause
	Unpause
	SongSelect
	WatchingOther
)

// PresenceFilter selects which players' updates the server sends; it is the
// u32 payload of a ReceiveUpdates packet.
type PresenceFilter uint32

const (
	NoPlayers PresenceFilter = 0
	AllPlayers PresenceFilter = 1
	Friends   PresenceFilter = 2
)

// Grade is a beatmap-info completion grade.
type Grade uint8

const (
	GradeXH Grade = iota
	GradeSH
	GradeX
	GradeS
	GradeA
	GradeB
	GradeC
	GradeD
	GradeF
	GradeN
)

// SlotStatus is a bit-flag describing a multiplayer slot's occupancy state
// (§4.8's exact encoding — not present in the filtered original_source
// excerpt, so transcribed from spec.md's literal bit table rather than
// guessed).
type SlotStatus uint8

const (
	SlotOpen     SlotStatus = 1
	SlotLocked   SlotStatus = 2
	SlotNotReady SlotStatus = 4
	SlotReady    SlotStatus = 8
	SlotNoMap    SlotStatus = 16
	SlotPlaying  SlotStatus = 32
	SlotComplete SlotStatus = 64
	SlotQuit     SlotStatus = 128

	SlotHasPlayer = SlotNotReady | SlotReady | SlotNoMap | SlotPlaying | SlotComplete
)

// MatchType distinguishes standard matches from the (legacy, rarely used)
// powerplay variant.
type MatchType uint8

const (
	MatchStandard  MatchType = 0
	MatchPowerplay MatchType = 1
)

// SlotTeam is a multiplayer slot's team assignment.
type SlotTeam uint8

const (
	TeamNeutral SlotTeam = 0
	TeamBlue    SlotTeam = 1
	TeamRed     SlotTeam = 2
)

// MatchScoringTypes selects how match scores are ranked.
type MatchScoringTypes uint8

const (
	ScoringScore    MatchScoringTypes = 0
	ScoringAccuracy MatchScoringTypes = 1
	ScoringCombo    MatchScoringTypes = 2
	ScoringScoreV2  MatchScoringTypes = 3
)

// MatchTeamTypes selects the match's team structure.
type MatchTeamTypes uint8

const (
	TeamsHeadToHead MatchTeamTypes = 0
	TeamsTagCoop    MatchTeamTypes = 1
	TeamsTeamVs     MatchTeamTypes = 2
	TeamsTagTeamVs  MatchTeamTypes = 3
)
