package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	"github.com/Tzuyuchae/QuickThoughts/pkg/auth"
)

func (r *root) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in against Supabase and save the session to the config file.
The password may also be given in QUICKTHOUGHTS_PASSWORD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("QUICKTHOUGHTS_PASSWORD")
			}
			url, key := r.v.GetString(keySupabaseURL), r.v.GetString(keySupabaseAnonKey)
			if url == "" || key == "" {
				return fmt.Errorf("supabase.url and supabase.anon_key must be configured")
			}
			authenticator, err := auth.NewPasswordAuthenticator(url, key)
			if err != nil {
				return err
			}
			session, err := authenticator.SignIn(strings.TrimSpace(email), password)
			if err != nil {
				return err
			}
			if err := r.saveSession(session); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", session.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (r *root) saveSession(s auth.Session) error {
	r.v.Set(keyAccessToken, s.AccessToken)
	r.v.Set(keyRefreshToken, s.RefreshToken)
	r.v.Set(keyUserID, s.UserID)
	r.v.Set(keyEmail, s.Email)
	if s.ExpiresAt.IsZero() {
		r.v.Set(keyExpiresAt, "")
	} else {
		r.v.Set(keyExpiresAt, s.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return r.writeConfig()
}

func (r *root) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.saveSession(auth.Session{}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (r *root) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the server and session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			health, err := r.newClient(r.logger()).Health(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "Server:  unreachable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Server:  %s, AI %s\n", health.Status, health.AI)
			}

			session := r.session()
			switch {
			case session.AccessToken == "":
				fmt.Fprintln(out, "Session: signed out")
			case session.Expired(time.Now()):
				fmt.Fprintf(out, "Session: %s (expired)\n", session.Email)
			default:
				fmt.Fprintf(out, "Session: %s\n", session.Email)
			}
			return nil
		},
	}
}

func (r *root) onboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "onboard [folder...]",
		Short: "Create your folders",
		Long: fmt.Sprintf(`Create the folders thoughts can be filed into. With no arguments the
defaults are used: %s. The fallback folder is always created.`, strings.Join(domain.DefaultOnboardingFolders, ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			folders := args
			if len(folders) == 0 {
				folders = domain.DefaultOnboardingFolders
			}
			if _, err := a.client.Onboard(cmd.Context(), folders); err != nil {
				return err
			}
			if err := a.store.Refresh(cmd.Context()); err != nil {
				return err
			}
			printFolders(cmd, a.store.Folders())
			return nil
		},
	}
}

func (r *root) foldersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List your folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			printFolders(cmd, a.store.Folders())
			return nil
		},
	}
}

func printFolders(cmd *cobra.Command, folders []domain.Folder) {
	out := cmd.OutOrStdout()
	if len(folders) == 0 {
		fmt.Fprintln(out, "No folders yet; run 'quickthoughts onboard'")
		return
	}
	for _, f := range folders {
		fmt.Fprintln(out, f.Name)
	}
}
