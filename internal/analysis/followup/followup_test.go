package followup

import "testing"

func TestIsShort(t *testing.T) {
	if !IsShort("how much?") {
		t.Fatal("expected two-token message to be short")
	}
	if IsShort("please tell me everything about this particular ice maker") {
		t.Fatal("expected long message not to be short")
	}
}

func TestMentionsPronoun(t *testing.T) {
	if !MentionsPronoun("is it hard to install") {
		t.Fatal("expected pronoun match for 'it'")
	}
	if !MentionsPronoun("this one") {
		t.Fatal("expected pronoun match at start")
	}
	if MentionsPronoun("itemize the parts") {
		t.Fatal("pronoun must match whole words only")
	}
}

func TestMentionsTopic(t *testing.T) {
	if !MentionsTopic("how much?") {
		t.Fatal("expected topical match for price vocabulary")
	}
	if !MentionsTopic("when does shipping arrive") {
		t.Fatal("expected topical match for shipping vocabulary")
	}
	if MentionsTopic("hello there") {
		t.Fatal("unexpected topical match")
	}
}

func TestLikely(t *testing.T) {
	if !Likely("how much?") {
		t.Fatal("short topical message should be a likely follow-up")
	}
	if Likely("could you please list every installation step for the ice maker assembly") {
		t.Fatal("long message should not be a likely follow-up")
	}
}
