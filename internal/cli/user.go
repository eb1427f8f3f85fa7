package cli

import (
	"errors"
	"fmt"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const generatedPasswordLength = 16

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Short:   "Manage accounts of the planning API",
		GroupID: "data",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		username string
		fullName string
		email    string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account with a generated password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, password, err := newUser(username, fullName, email, role)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.repo.CreateUser(cmd.Context(), user); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) {
					switch pgErr.ConstraintName {
					case "users_username_key":
						return fmt.Errorf("username %q is taken", username)
					case "users_email_key":
						return fmt.Errorf("email %q is taken", email)
					}
				}
				return err
			}

			out := cmd.OutOrStdout()
			PrintSuccess(out, fmt.Sprintf("Created %s account %q", user.Role, user.Username))
			PrintLabelValue(out, "Password", password)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Login name")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVarP(&role, "role", "r", string(domain.RolePlanner), "admin or planner")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// newUser returns the user to store and its plain password.
func newUser(username, fullName, email, role string) (*domain.User, string, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, "", err
	}
	if fullName == "" {
		fullName = username
	}

	password := utils.GenerateRandomPassword(generatedPasswordLength)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	return &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Email:        email,
		Role:         r,
	}, password, nil
}
