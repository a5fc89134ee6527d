package bancho

import "testing"

func TestChannelJoinLifecycle(t *testing.T) {
	ch := NewChannel("#osu", "general")

	if already := ch.MarkJoining(); already {
		t.Fatal("expected MarkJoining to report not-already-joined")
	}
	joined, joining := ch.snapshot()
	if joined || !joining {
		t.Errorf("expected joining=true joined=false, got joined=%v joining=%v", joined, joining)
	}

	first := ch.MarkJoinSuccess()
	if !first {
		t.Error("expected first join success to report firstJoin=true")
	}
	joined, joining = ch.snapshot()
	if !joined || joining {
		t.Errorf("expected joined=true joining=false, got joined=%v joining=%v", joined, joining)
	}

	second := ch.MarkJoinSuccess()
	if second {
		t.Error("expected second join success to report firstJoin=false")
	}
}

func TestChannelMarkJoiningWhenAlreadyJoined(t *testing.T) {
	ch := NewChannel("#osu", "general")
	ch.MarkJoining()
	ch.MarkJoinSuccess()

	if already := ch.MarkJoining(); !already {
		t.Error("expected MarkJoining to report already-joined")
	}
}

func TestChannelLeave(t *testing.T) {
	ch := NewChannel("#osu", "general")
	ch.MarkJoining()
	ch.MarkJoinSuccess()

	if wasJoined := ch.MarkLeaving(); !wasJoined {
		t.Error("expected MarkLeaving to report wasJoined=true")
	}
	joined, joining := ch.snapshot()
	if joined || joining {
		t.Errorf("expected both false after leaving, got joined=%v joining=%v", joined, joining)
	}

	if wasJoined := ch.MarkLeaving(); wasJoined {
		t.Error("expected a second MarkLeaving to report wasJoined=false")
	}
}

func TestChannelUpdate(t *testing.T) {
	ch := NewChannel("#osu", "")
	ch.Update("osu! discussion", 42)
	if ch.Topic != "osu! discussion" || ch.UserCount != 42 {
		t.Errorf("unexpected channel state after update: %+v", ch)
	}
}
