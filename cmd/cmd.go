// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/custctl/internal/formatter"
	"github.com/urfave/cli/v3"
)

// setupCommand writes the default config and prepares the session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml (if missing), initialize the database and run migrations",
		Action: r.Setup,
	}
}

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your account and session",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					emailFlag(),
					passwordFlag(),
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "login",
				Usage:  "Sign in and store the session token",
				Flags:  []cli.Flag{emailFlag(), passwordFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session token",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show whether a session is stored and what its token says",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// customersCommand handles the customer listing, creation and CSV export
func customersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "customers",
		Aliases: []string{"cust", "c"},
		Usage:   "Customer operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List one page of customers created in a date range",
				Flags: append(filterFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: table, csv, markdown, txt, json",
						Value:   formatter.FormatTable,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the page to this file instead of stdout",
					},
				),
				Action: r.CustomersList,
			},
			{
				Name:  "create",
				Usage: "Add a customer",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Customer name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Customer email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "phone",
						Usage:    "Customer phone",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "address",
						Usage: "Customer address",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "Free-form notes",
					},
					&cli.BoolFlag{
						Name:  "inactive",
						Usage: "Create the customer as inactive",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the stored customer as JSON",
					},
				},
				Action: r.CustomersCreate,
			},
			{
				Name:  "export",
				Usage: "Download the filtered customers as CSV",
				Flags: append(filterFlags(),
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory to save the CSV in (default: export.dir from config)",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the saved file with the default application",
					},
				),
				Action: r.CustomersExport,
			},
			{
				Name:  "dump",
				Usage: "Fetch every page of the filtered listing and save it locally with a manifest",
				Flags: append(filterFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, markdown, txt, json",
						Value:   formatter.FormatCSV,
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory (default: customers_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent page fetchers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: 5,
					},
				),
				Action: r.CustomersDump,
			},
			{
				Name:  "history",
				Usage: "Show recorded export and dump runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of runs to show (0 for all)",
						Value:   20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
				Action: r.CustomersHistory,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive customer dashboard",
		Action:  r.TUI,
	}
}

func emailFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "email",
		Aliases:  []string{"e"},
		Usage:    "Account email",
		Required: true,
	}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "password",
		Aliases:  []string{"p"},
		Usage:    "Account password",
		Sources:  cli.EnvVars("CUSTCTL_PASSWORD"),
		Required: true,
	}
}

// filterFlags are shared by list and export, which send the same query.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "start",
			Usage: "Start date (YYYY-MM-DD, default: today)",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "End date (YYYY-MM-DD, default: tomorrow)",
		},
		&cli.BoolFlag{
			Name:  "all-dates",
			Usage: "Do not filter by date",
		},
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page number",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Page size (default: listing.page_size from config)",
		},
	}
}
