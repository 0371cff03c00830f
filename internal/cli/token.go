package cli

import (
	"fmt"
	"time"

	jwtPkg "FaceBlur/pkg/jwt"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		id   string
		name string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the detection service",
		Long: `Signs an access token with JWT_ACCESS_TOKEN_SECRET. The token's id claim is
recorded as the requester of every job submitted with it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			claims := map[string]interface{}{"id": id}
			if name != "" {
				claims["name"] = name
			}

			token, expiresAt, err := jwtPkg.Sign(claims, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Client identifier")
	cmd.Flags().StringVar(&name, "name", "", "Human readable client name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
