package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/study-planner/internal/client"
	"github.com/BuzzLyutic/study-planner/internal/config"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" {
				if email, err = prompt("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password = os.Getenv("PLANNER_PASSWORD"); password == "" {
					if password, err = prompt("Password: "); err != nil {
						return err
					}
				}
			}

			res, err := e.api.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := config.SaveSession(&config.Session{Token: res.Token, User: res.User}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.User.Greeting())
			return nil
		},
	}

	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().StringP("password", "p", "", "Password (or PLANNER_PASSWORD)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			var req client.SignupRequest
			req.Name, _ = cmd.Flags().GetString("name")
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			req.EducationLevel, _ = cmd.Flags().GetString("education")
			req.SchoolGrade, _ = cmd.Flags().GetString("grade")
			req.AcademicYear, _ = cmd.Flags().GetString("year")
			req.FieldOfStudy, _ = cmd.Flags().GetString("field")
			req.Institution, _ = cmd.Flags().GetString("institution")

			if req.Password == "" {
				if req.Password, err = prompt("Password: "); err != nil {
					return err
				}
			}

			if err := e.api.Signup(cmd.Context(), req); err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run `planner login` to continue.")
			return nil
		},
	}

	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().StringP("password", "p", "", "Password")
	cmd.Flags().String("education", "college", "Education level (school, college)")
	cmd.Flags().String("grade", "", "School grade")
	cmd.Flags().String("year", "", "Academic year")
	cmd.Flags().String("field", "", "Field of study")
	cmd.Flags().String("institution", "", "Institution name")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSession()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.User.Greeting())
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", s.User.Email)
			return nil
		},
	}
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
