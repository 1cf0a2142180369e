package commands

import (
	"fmt"
	"strings"
	"time"

	"agora/contexts/governance/voting-core/client/apiclient"
	"agora/contexts/governance/voting-core/client/passphrase"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings is resolved from flags, AGORA_* environment variables and an
// optional agoractl.yaml in the user config dir, in that order.
type settings struct {
	v *viper.Viper
}

func (s settings) server() string {
	return strings.TrimRight(strings.TrimSpace(s.v.GetString("server")), "/")
}

func (s settings) userID() string {
	return strings.TrimSpace(s.v.GetString("user"))
}

func (s settings) manager() (passphrase.Manager, error) {
	path := strings.TrimSpace(s.v.GetString("passphrase-file"))
	if path == "" {
		resolved, err := passphrase.DefaultPath()
		if err != nil {
			return passphrase.Manager{}, err
		}
		path = resolved
	}
	return passphrase.Manager{Store: passphrase.FileStore{Path: path}}, nil
}

func (s settings) client() (apiclient.Client, error) {
	if s.userID() == "" {
		return apiclient.Client{}, fmt.Errorf("a voter id is required: pass --user or set AGORA_USER")
	}
	return s.readClient(), nil
}

// readClient serves the public read endpoints, which need no voter id.
func (s settings) readClient() apiclient.Client {
	client := apiclient.New(s.server(), s.userID())
	client.HTTPClient.Timeout = s.v.GetDuration("timeout")
	return client
}

// NewRootCmd builds agoractl. Every invocation gets its own viper instance so
// commands can be exercised in tests without global state.
func NewRootCmd() *cobra.Command {
	s := settings{v: viper.New()}

	cmd := &cobra.Command{
		Use:          "agoractl",
		Short:        "Voter-side tool for anonymous, verifiable article votes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlagsLoadViper(cmd, s.v)
		},
	}

	cmd.PersistentFlags().String("server", "http://localhost:8080", "Voting API base URL")
	cmd.PersistentFlags().String("user", "", "Voter id sent as X-User-Id")
	cmd.PersistentFlags().String("passphrase-file", "", "Passphrase file (default <user config dir>/agora/passphrase.json)")
	cmd.PersistentFlags().Duration("timeout", 15*time.Second, "HTTP timeout")

	cmd.AddCommand(
		newPassphraseCmd(s),
		newVoteCmd(s),
		newCommitCmd(s),
		newArticleCmd(s),
	)
	return cmd
}

func bindFlagsLoadViper(cmd *cobra.Command, v *viper.Viper) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.SetEnvPrefix("AGORA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("agoractl")
	v.SetConfigType("yaml")
	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read agoractl config: %w", err)
		}
	}
	return nil
}
