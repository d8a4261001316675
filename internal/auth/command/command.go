// Package command defines the siteauth command line: the server itself plus the
// offline operator commands that work directly against the database.
package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/aussiebroadwan/siteauth/internal/auth/app"
	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/siteauth/internal/auth/http"
	"github.com/aussiebroadwan/siteauth/internal/auth/service"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "siteauth",
		Usage:   "Credential lifecycle server for a single publishing site",
		Version: app.BuildVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"SITEAUTH_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			rotateSecretCommand(),
			resetAllCommand(),
			inviteCommand(),
			internalTokenCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Action: func(c *cli.Context) error {
			cfg, err := app.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func rotateSecretCommand() *cli.Command {
	return &cli.Command{
		Name:  "rotate-secret",
		Usage: "Replace the install secret, invalidating every outstanding reset link",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.Application) error {
				if err := a.RotateInstallSecret(ctx); err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "install secret rotated; restart running servers")
				return nil
			})
		},
	}
}

func resetAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-all-passwords",
		Usage: "Lock every account, end every session and mail reset links to administrators",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Confirm the reset",
			},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return cli.Exit("refusing to lock every account without --yes", 2)
			}
			return withApp(c, func(ctx context.Context, a *app.Application) error {
				if err := a.MassReset().ResetAllPasswords(ctx, service.InternalActor("cli")); err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "all passwords reset")
				return nil
			})
		},
	}
}

func inviteCommand() *cli.Command {
	return &cli.Command{
		Name:  "invite",
		Usage: "Create a staff invitation and print its token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Usage:    "Address to invite",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "role",
				Usage: "Administrator, Editor, Author or Contributor",
				Value: string(domain.RoleContributor),
			},
			&cli.BoolFlag{
				Name:  "send",
				Usage: "Also mail the invitation",
			},
		},
		Action: func(c *cli.Context) error {
			role, err := parseRole(c.String("role"))
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.Application) error {
				token, inv, err := a.Invites().CreateInvitation(ctx, service.CreateInvitationInput{
					Email: c.String("email"),
					Role:  role,
					Send:  c.Bool("send"),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "invitation for %s (%s) expires %s\n", inv.Email, inv.Role, inv.ExpiresAt.Format(time.RFC3339))
				fmt.Fprintln(c.App.Writer, token)
				return nil
			})
		},
	}
}

func internalTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "internal-token",
		Usage: "Mint a bearer token for automation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "subject",
				Usage: "Caller name recorded in the token",
				Value: "operator",
			},
			&cli.StringSliceFlag{
				Name:  "scope",
				Usage: "Granted scope, repeatable",
				Value: cli.NewStringSlice(httpapi.ScopeResetAllPasswords),
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime (default internal.tokenttl)",
			},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(_ context.Context, a *app.Application) error {
				token, err := a.MintInternalToken(c.String("subject"), c.StringSlice("scope"), c.Duration("ttl"))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, token)
				return nil
			})
		},
	}
}

// withApp builds an Application with synchronous mail, runs fn and closes it.
func withApp(c *cli.Context, fn func(context.Context, *app.Application) error) error {
	cfg, err := app.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	a, err := app.New(cfg, app.WithDirectMail())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(c.Context, time.Minute)
	defer cancel()
	return fn(ctx, a)
}

func parseRole(s string) (domain.Role, error) {
	for _, r := range domain.InvitableRoles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("role %q cannot be invited", s)
}
