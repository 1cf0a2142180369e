package commands

import (
	"fmt"

	"agora/contexts/governance/voting-core/client/apiclient"
	"agora/contexts/governance/voting-core/domain/entities"

	"github.com/spf13/cobra"
)

func newVoteCmd(s settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Cast and verify votes",
	}
	cmd.AddCommand(newVoteCastCmd(s), newVoteVerifyCmd(s))
	return cmd
}

func (s settings) voter() (apiclient.Voter, error) {
	client, err := s.client()
	if err != nil {
		return apiclient.Voter{}, err
	}
	manager, err := s.manager()
	if err != nil {
		return apiclient.Voter{}, err
	}
	secret, found, err := manager.Retrieve()
	if err != nil {
		return apiclient.Voter{}, err
	}
	if !found {
		return apiclient.Voter{}, fmt.Errorf("no passphrase stored; run `agoractl passphrase generate`")
	}
	return apiclient.Voter{Client: client, Passphrase: secret}, nil
}

func parseKind(raw string) (entities.VoteKind, error) {
	kind, ok := entities.ParseVoteKind(raw)
	if !ok {
		return "", fmt.Errorf("unknown vote kind %q: use duration or approval", raw)
	}
	return kind, nil
}

func newVoteCastCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "cast <article-id> <duration|approval> <value>",
		Short: "Cast or change a vote",
		Long: "Cast or change a vote. Duration values: " + fmt.Sprint(entities.VoteKindDuration.Candidates()) +
			". Approval values: " + fmt.Sprint(entities.VoteKindApproval.Candidates()) + ".",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[1])
			if err != nil {
				return err
			}
			voter, err := s.voter()
			if err != nil {
				return err
			}
			resp, err := voter.Cast(cmd.Context(), args[0], kind, args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s vote on %s (%s)\n", resp.Outcome, resp.Kind, resp.ArticleID, resp.VoteID)
			return nil
		},
	}
}

func newVoteVerifyCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <article-id> <duration|approval>",
		Short: "Recover your own stored vote with the local passphrase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[1])
			if err != nil {
				return err
			}
			voter, err := s.voter()
			if err != nil {
				return err
			}
			result, err := voter.Verify(cmd.Context(), args[0], kind)
			if err != nil {
				return err
			}
			switch {
			case result.Verified() && result.Legacy:
				fmt.Fprintf(cmd.OutOrStdout(), "verified (legacy plaintext record): %s\n", result.Value)
			case result.Verified():
				fmt.Fprintf(cmd.OutOrStdout(), "verified: %s\n", result.Value)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), string(result.Status))
			}
			return nil
		},
	}
}
