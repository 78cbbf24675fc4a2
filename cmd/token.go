package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobfill/services"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		scope   string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		Long: `Signs a token with JWT_SECRET. Give "api" tokens to the browser
extension and "fill" tokens to anything that triggers server-side fills.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appConfig(cmd)
			if err != nil {
				return err
			}
			if scope != services.ScopeAPI && scope != services.ScopeFill {
				return fmt.Errorf("unknown scope %q: use %q or %q", scope, services.ScopeAPI, services.ScopeFill)
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := services.NewJWTService(cfg.JWTSecret).GenerateToken(subject, scope, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "extension", "client the token is issued to")
	cmd.Flags().StringVar(&scope, "scope", services.ScopeAPI, "token scope (api or fill)")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	return cmd
}
