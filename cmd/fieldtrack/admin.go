package main

import (
	"fmt"
	"strings"
	"time"

	"fieldtrack.com/fieldtrack/attendance/app"
	"fieldtrack.com/fieldtrack/attendance/model"
	"fieldtrack.com/fieldtrack/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables, or indexes when the store is mongo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Migrate(cmd.Context()); err != nil {
					return err
				}
				log.Info().Str("driver", a.Config.Database.Driver).Msg("migration complete")
				return nil
			})
		},
	}
}

func tokenCmd(opts *rootOptions) *cobra.Command {
	var (
		userID  string
		email   string
		role    string
		expires time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an identity token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			token, err := security.CreateIdentityToken(&security.Identity{
				UserID: userID,
				Email:  email,
				Role:   role,
			}, cfg.Auth.SigningSecret, int64(expires.Seconds()))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", model.RoleUser, "role claim")
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func userCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user profiles",
	}

	var u model.User
	add := &cobra.Command{
		Use:   "add",
		Short: "Create or update a user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if u.Role != model.RoleUser && u.Role != model.RoleAdmin {
				return fmt.Errorf("role must be %s or %s", model.RoleUser, model.RoleAdmin)
			}
			u.Email = strings.ToLower(strings.TrimSpace(u.Email))
			if u.ID == "" {
				u.ID = uuid.NewString()
			}
			u.CreatedAt = time.Now().UTC()

			return opts.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Store.SaveUser(cmd.Context(), &u); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&u.ID, "id", "", "user id, generated when empty")
	add.Flags().StringVar(&u.Email, "email", "", "email address")
	add.Flags().StringVar(&u.FullName, "name", "", "full name")
	add.Flags().StringVar(&u.PhoneNumber, "phone", "", "phone number")
	add.Flags().StringVar(&u.ReportingManager, "manager", "", "reporting manager")
	add.Flags().StringVar(&u.Region, "state", "", "region")
	add.Flags().StringVar(&u.Role, "role", model.RoleUser, "user or admin")
	_ = add.MarkFlagRequired("email")

	cmd.AddCommand(add)
	return cmd
}
