package commands

import (
	"fmt"

	"agora/contexts/governance/voting-core/domain/commitment"

	"github.com/spf13/cobra"
)

func newCommitCmd(s settings) *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "commit <voter-id> <article-id> <value>",
		Short: "Print the commitment digest for a vote without contacting the server",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase, err := resolvePassphrase(s, secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), commitment.Commit(passphrase, args[0], args[1], args[2]))
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "passphrase", "", "Passphrase to use instead of the stored one")
	return cmd
}

func resolvePassphrase(s settings, explicit string) (commitment.Passphrase, error) {
	if explicit != "" {
		return commitment.NewPassphrase(explicit)
	}
	manager, err := s.manager()
	if err != nil {
		return commitment.Passphrase{}, err
	}
	secret, found, err := manager.Retrieve()
	if err != nil {
		return commitment.Passphrase{}, err
	}
	if !found {
		return commitment.Passphrase{}, commitment.ErrEmptyPassphrase
	}
	return secret, nil
}
