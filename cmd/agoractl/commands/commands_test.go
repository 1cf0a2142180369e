package commands

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	votingcore "agora/contexts/governance/voting-core"
	"agora/contexts/governance/voting-core/domain/commitment"
	"agora/contexts/governance/voting-core/domain/entities"
	"agora/contexts/governance/voting-core/domain/voterhash"
	"agora/internal/platform/httpserver"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return filepath.Join(dir, "passphrase.json")
}

func TestPassphraseLifecycleCommands(t *testing.T) {
	file := isolate(t)

	generated, err := runCmd(t, "--passphrase-file", file, "passphrase", "generate")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	shown, err := runCmd(t, "--passphrase-file", file, "passphrase", "show")
	if err != nil || shown != generated {
		t.Fatalf("show returned %q err=%v, expected %q", shown, err, generated)
	}
	if _, err := runCmd(t, "--passphrase-file", file, "passphrase", "confirm"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := runCmd(t, "--passphrase-file", file, "passphrase", "generate"); err == nil {
		t.Fatalf("expected regenerate of a confirmed passphrase to fail without --force")
	}
	if _, err := runCmd(t, "--passphrase-file", file, "passphrase", "clear"); err == nil {
		t.Fatalf("expected clear to require --yes")
	}
	if _, err := runCmd(t, "--passphrase-file", file, "passphrase", "clear", "--yes"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := runCmd(t, "--passphrase-file", file, "passphrase", "show"); err == nil {
		t.Fatalf("expected show to fail after clear")
	}
}

func TestCommitCommandMatchesCodec(t *testing.T) {
	isolate(t)
	out, err := runCmd(t, "commit", "voter-1", "article-1", "approve", "--passphrase", "calm-otter-glade-0042")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	secret, _ := commitment.NewPassphrase("calm-otter-glade-0042")
	want := string(commitment.Commit(secret, "voter-1", "article-1", "approve"))
	if out != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestVoteCastAndVerifyCommands(t *testing.T) {
	file := isolate(t)
	module := votingcore.NewInMemoryModule([]entities.Article{{
		ArticleID: "article-1",
		Type:      entities.ArticleTypeLaw,
		Title:     "Public transport",
		AuthorID:  "author-1",
		Phase:     entities.PhaseDurationVotingOpen,
	}}, voterhash.MustNew("test-voting-secret"), slog.Default())
	ts := httptest.NewServer(httpserver.New(module, slog.Default(), ":0").Handler())
	defer ts.Close()

	if _, err := runCmd(t, "--passphrase-file", file, "passphrase", "import", "calm-otter-glade-0042"); err != nil {
		t.Fatalf("import: %v", err)
	}
	base := []string{"--server", ts.URL, "--user", "voter-1", "--passphrase-file", file}

	out, err := runCmd(t, append(base, "vote", "cast", "article-1", "duration", "Two Months")...)
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	if !strings.HasPrefix(out, "cast duration vote on article-1") {
		t.Fatalf("unexpected cast output %q", out)
	}

	out, err = runCmd(t, append(base, "vote", "verify", "article-1", "duration")...)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out != "verified: Two Months" {
		t.Fatalf("unexpected verify output %q", out)
	}

	out, err = runCmd(t, append(base, "vote", "verify", "article-1", "approval")...)
	if err != nil || out != "no_record" {
		t.Fatalf("expected no_record, got %q err=%v", out, err)
	}

	if _, err := runCmd(t, append(base, "vote", "cast", "article-1", "duration", "Seven Months")...); err == nil {
		t.Fatalf("expected illegal duration to fail")
	}
}

func TestVoteRequiresUser(t *testing.T) {
	file := isolate(t)
	if _, err := runCmd(t, "--passphrase-file", file, "passphrase", "generate"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := runCmd(t, "--passphrase-file", file, "vote", "verify", "article-1", "duration"); err == nil {
		t.Fatalf("expected missing user error")
	}
}

func TestArticleStatusAndUrgentCommands(t *testing.T) {
	file := isolate(t)
	module := votingcore.NewInMemoryModule([]entities.Article{{
		ArticleID:      "article-1",
		Type:           entities.ArticleTypeLaw,
		Title:          "Public transport",
		AuthorID:       "author-1",
		Phase:          entities.PhaseDurationVotingOpen,
		PhaseEnteredAt: time.Now().UTC(),
	}}, voterhash.MustNew("test-voting-secret"), slog.Default())
	ts := httptest.NewServer(httpserver.New(module, slog.Default(), ":0").Handler())
	defer ts.Close()

	out, err := runCmd(t, "--server", ts.URL, "article", "urgent")
	if err != nil || out != "no votes closing soon" {
		t.Fatalf("expected empty urgent list, got %q err=%v", out, err)
	}

	if _, err := runCmd(t, "--passphrase-file", file, "passphrase", "import", "calm-otter-glade-0042"); err != nil {
		t.Fatalf("import: %v", err)
	}
	base := []string{"--server", ts.URL, "--user", "voter-1", "--passphrase-file", file}
	if _, err := runCmd(t, append(base, "vote", "cast", "article-1", "duration", "Three Months")...); err != nil {
		t.Fatalf("cast: %v", err)
	}

	out, err = runCmd(t, "--server", ts.URL, "article", "status", "article-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"Public transport (law)", "closes ", "from now", "duration votes: 1 total, leading Three Months"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCmd(t, "--server", ts.URL, "article", "status", "missing"); err == nil {
		t.Fatalf("expected unknown article to fail")
	}
}
