package discovery

import "testing"

func TestParseQueryBasic(t *testing.T) {
	kind, qid, ok := ParseQuery([]byte("\\basic\\\\queryid\\7.2"))
	if !ok || kind != QueryBasic || qid != "7.2" {
		t.Fatalf("got kind=%v qid=%q ok=%v", kind, qid, ok)
	}
}

func TestParseQueryStatusDefaultsQueryID(t *testing.T) {
	kind, qid, ok := ParseQuery([]byte("\\status\\"))
	if !ok || kind != QueryStatus || qid != "" {
		t.Fatalf("got kind=%v qid=%q ok=%v", kind, qid, ok)
	}
}

func TestParseQueryRejectsNonQuery(t *testing.T) {
	if _, _, ok := ParseQuery([]byte("hello")); ok {
		t.Fatal("expected rejection of non-query data")
	}
}

func TestBuildResponseStatusOrdersFinalBeforeQueryID(t *testing.T) {
	info := ServerInfo{Hostname: "test", MaxPlayers: 9, NumPlayers: 2}
	out := string(BuildResponse(QueryStatus, info, "3.1"))
	finalIdx := indexOf(out, "\\final\\")
	queryIdx := indexOf(out, "\\queryid\\")
	if finalIdx < 0 || queryIdx < 0 || finalIdx > queryIdx {
		t.Fatalf("expected \\final\\ before \\queryid\\, got %q", out)
	}
	if indexOf(out, "\\queryid\\3.1") < 0 {
		t.Fatalf("expected echoed queryid, got %q", out)
	}
}

func TestBuildResponseDefaultsQueryID(t *testing.T) {
	out := string(BuildResponse(QueryBasic, ServerInfo{}, ""))
	if indexOf(out, "\\queryid\\1.1") < 0 {
		t.Fatalf("expected default queryid 1.1, got %q", out)
	}
}

func TestExtractChallenge(t *testing.T) {
	c, ok := ExtractChallenge([]byte("\\secure\\abcDEF123\\"))
	if !ok || c != "abcDEF123" {
		t.Fatalf("got %q, %v", c, ok)
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
