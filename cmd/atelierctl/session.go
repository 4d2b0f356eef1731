package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Simplici0/atelier/internal/session"
)

func newSessionCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Sign a session cookie value with SESSION_SECRET for local API use",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer := session.NewSigner(os.Getenv("SESSION_SECRET"))
			if !signer.Enabled() {
				return errors.New("SESSION_SECRET is not set")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", session.CookieName, signer.Sign(subject, ttl))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "user the session belongs to")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "session lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
