package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"daisy/internal/domain"
	"daisy/internal/modules/auth"
	"daisy/internal/repository"
)

func newCreateAdminCommand(e *env) *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:   "createadmin",
		Short: "Create a staff account, or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" || len(password) < 8 {
				return errors.New("--email and a --password of at least 8 characters are required")
			}
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			users := repository.NewUserRepository(e.db)
			ctx := cmd.Context()

			existing, err := users.GetByEmail(ctx, email)
			switch {
			case err == nil:
				if err := users.Promote(ctx, existing.ID, hash); err != nil {
					return fmt.Errorf("promote %s: %w", email, err)
				}
				e.log.Info("user promoted to staff", zap.Int64("user_id", existing.ID))
				fmt.Fprintf(cmd.OutOrStdout(), "promoted %s\n", email)
				return nil
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}

			u := &domain.User{
				Email:        email,
				Username:     username,
				PasswordHash: hash,
				IsStaff:      true,
				IsActive:     true,
			}
			if err := users.Create(ctx, u); err != nil {
				return fmt.Errorf("create %s: %w", email, err)
			}
			e.log.Info("staff user created", zap.Int64("user_id", u.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}
