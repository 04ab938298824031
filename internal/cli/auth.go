package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskday/internal/auth"
	"github.com/idilsaglam/taskday/internal/ui"
)

func newAuthCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Gemini API key used for suggestions",
	}
	cmd.AddCommand(newAuthLoginCmd(e), newAuthLogoutCmd(e), newAuthStatusCmd(e))
	return cmd
}

func (e *env) credentials() (auth.Store, error) {
	cfg, err := e.config()
	if err != nil {
		return auth.Store{}, err
	}
	return auth.Store{Path: cfg.CredentialsPath()}, nil
}

func newAuthLoginCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save an API key (read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.credentials()
			if err != nil {
				return err
			}
			fmt.Fprint(e.opt.Out, "Paste your Gemini API key: ")
			line, err := bufio.NewReader(e.opt.In).ReadString('\n')
			key := strings.TrimSpace(line)
			if key == "" {
				if err != nil {
					return usageError("read key: %v", err)
				}
				return usageError("empty key")
			}
			if err := s.SetKey(key); err != nil {
				return fmt.Errorf("save key: %w", err)
			}
			fmt.Fprintln(e.opt.Out)
			ui.OK(e.opt.Out, "logged in")
			return nil
		},
	}
}

func newAuthLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the saved API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.credentials()
			if err != nil {
				return err
			}
			ki, _ := s.GetKey()
			if ki != nil && ki.Source == auth.SourceEnv {
				ui.OK(e.opt.Out, "key is provided by "+auth.EnvAPIKey+" (nothing to delete)")
				return nil
			}
			if err := s.DeleteKey(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(e.opt.Out, "logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API key comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.credentials()
			if err != nil {
				return err
			}
			ki, err := s.GetKey()
			if err != nil {
				return errors.New("credentials file is unreadable: " + err.Error())
			}
			if ki == nil && e.cfg.Gemini.APIKey != "" {
				ki = &auth.KeyInfo{Key: e.cfg.Gemini.APIKey, Source: auth.SourceConfig}
			}
			if ki == nil {
				fmt.Fprintln(e.opt.Out, ui.MutedStyle.Render("not logged in"))
				fmt.Fprintln(e.opt.Out, "Run: taskday auth login")
				fmt.Fprintln(e.opt.Out, "(Application Default Credentials are tried when no key is set)")
				return nil
			}
			fmt.Fprintf(e.opt.Out, "source: %s\n", ki.Source)
			fmt.Fprintf(e.opt.Out, "key: %s\n", ki.Masked())
			if !ki.CreatedAt.IsZero() {
				fmt.Fprintf(e.opt.Out, "saved: %s\n", ki.CreatedAt.Format("2006-01-02 15:04"))
			}
			fmt.Fprintf(e.opt.Out, "env override: %s\n", auth.EnvAPIKey)
			return nil
		},
	}
}
