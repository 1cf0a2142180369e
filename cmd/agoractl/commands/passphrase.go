package commands

import (
	"fmt"
	"path/filepath"

	"agora/contexts/governance/voting-core/client/passphrase"

	"github.com/spf13/cobra"
)

const orphanWarning = "Votes already cast with a confirmed passphrase can only be verified or changed with that same passphrase."

func configDir() (string, error) {
	path, err := passphrase.DefaultPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

func newPassphraseCmd(s settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passphrase",
		Short: "Manage the local voting passphrase",
	}
	cmd.AddCommand(
		newPassphraseGenerateCmd(s),
		newPassphraseShowCmd(s),
		newPassphraseImportCmd(s),
		newPassphraseConfirmCmd(s),
		newPassphraseClearCmd(s),
	)
	return cmd
}

func newPassphraseGenerateCmd(s settings) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create a passphrase, or replace an unconfirmed one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := s.manager()
			if err != nil {
				return err
			}
			exists, err := manager.Exists()
			if err != nil {
				return err
			}
			var stored passphrase.Stored
			if exists {
				stored, err = manager.Regenerate(force)
			} else {
				stored, _, err = manager.Ensure()
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stored.Passphrase.Reveal())
			fmt.Fprintln(cmd.ErrOrStderr(), "Write this passphrase down, then run `agoractl passphrase confirm`.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace a confirmed passphrase. "+orphanWarning)
	return cmd
}

func newPassphraseShowCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored passphrase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := s.manager()
			if err != nil {
				return err
			}
			secret, found, err := manager.Retrieve()
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no passphrase stored; run `agoractl passphrase generate`")
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret.Reveal())
			return nil
		},
	}
}

func newPassphraseImportCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "import <passphrase>",
		Short: "Store an existing passphrase, e.g. from another device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := s.manager()
			if err != nil {
				return err
			}
			if _, err := manager.Import(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "passphrase stored")
			return nil
		},
	}
}

func newPassphraseConfirmCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm",
		Short: "Mark the stored passphrase as your permanent voting key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := s.manager()
			if err != nil {
				return err
			}
			stored, err := manager.Confirm()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "passphrase confirmed at %s\n", stored.ConfirmedAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
}

func newPassphraseClearCmd(s settings) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored passphrase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes. %s", orphanWarning)
			}
			manager, err := s.manager()
			if err != nil {
				return err
			}
			if err := manager.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "passphrase cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
