package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"agora/internal/platform/config"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7000": ":7000",
		" 81 ":  ":81",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildVotingModuleRefusesMissingSecret(t *testing.T) {
	_, _, err := buildVotingModule(context.Background(), config.Config{PostgresDSN: "postgres://unused"}, slog.Default())
	if err == nil || !strings.Contains(err.Error(), "VOTING_SECRET_SALT") {
		t.Fatalf("expected secret error, got %v", err)
	}
}

func TestBuildVotingModuleRequiresDSN(t *testing.T) {
	_, _, err := buildVotingModule(context.Background(), config.Config{VotingSecretSalt: "salt"}, slog.Default())
	if err == nil || !strings.Contains(err.Error(), "POSTGRES_DSN") {
		t.Fatalf("expected dsn error, got %v", err)
	}
}
