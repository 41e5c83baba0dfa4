package main

import (
	"errors"  // Validation errors
	"fmt"     // Output
	"os"      // Terminal input
	"strings" // Input trimming

	"report_portal/internal/config" // Configuration
	"report_portal/internal/domain" // User model
	"report_portal/internal/store"  // User repository

	"github.com/spf13/cobra"     // CLI framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"golang.org/x/term"          // Hidden password prompt
	"gorm.io/gorm"               // GORM ORM library
)

type userFlags struct {
	username string
	password string
	role     string
	email    string
	name     string
}

func newUserCmd(cfg *config.Config, verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage portal accounts",
	}
	cmd.AddCommand(newUserCreateCmd(cfg, verbose))
	return cmd
}

func newUserCreateCmd(cfg *config.Config, verbose *bool) *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin or client account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				pw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				f.password = string(pw)
			}
			user, err := newUser(f)
			if err != nil {
				return err
			}
			return withDB(cfg, *verbose, func(gdb *gorm.DB) error {
				if err := store.NewUserRepository(gdb).Create(cmd.Context(), user); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %d)\n", user.Role, user.Username, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&f.password, "password", "", "password; prompted for when empty")
	cmd.Flags().StringVar(&f.role, "role", domain.RoleClient, "admin or client")
	cmd.Flags().StringVar(&f.email, "email", "", "address for upload notifications")
	cmd.Flags().StringVar(&f.name, "name", "", "display name, e.g. the company")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// newUser validates the flags and hashes the password
func newUser(f userFlags) (*domain.User, error) {
	username := strings.TrimSpace(f.username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if f.role != domain.RoleAdmin && f.role != domain.RoleClient {
		return nil, fmt.Errorf("role must be %q or %q", domain.RoleAdmin, domain.RoleClient)
	}
	if f.password == "" {
		return nil, errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(f.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(f.name)
	if name == "" {
		name = username
	}
	return &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         f.role,
		Email:        strings.TrimSpace(f.email),
		Name:         name,
	}, nil
}
