package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"scholarship-test-service/internal/client"
	"scholarship-test-service/internal/config"
)

type accountFlags struct {
	baseURL  string
	username string
	password string
	email    string
	register bool
}

func (f *accountFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.baseURL, "url", "", "server base URL (defaults to client.base_url)")
	cmd.Flags().StringVar(&f.username, "username", "", "account username")
	cmd.Flags().StringVar(&f.password, "password", "", "account password")
	cmd.Flags().StringVar(&f.email, "email", "", "email for --register")
	cmd.Flags().BoolVar(&f.register, "register", false, "create the account before signing in")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
}

// connect builds a client for the configured server and signs in.
func (f *accountFlags) connect(ctx context.Context, cfg config.Config) (*client.Client, error) {
	base := f.baseURL
	if base == "" {
		base = cfg.Client.BaseURL
	}
	if base == "" {
		base = "http://localhost:8080"
	}

	c, err := client.New(base)
	if err != nil {
		return nil, err
	}
	if f.register {
		if _, err := c.Register(ctx, f.username, f.email, f.password); err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
		return c, nil
	}
	if _, err := c.Login(ctx, f.username, f.password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c, nil
}
