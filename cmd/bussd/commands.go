package main

import (
	"bussd-route-service/internal/services"
	"fmt"

	"github.com/urfave/cli/v2"
)

func (s *session) stopsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stops",
		Usage:     "list the outbound stops of a route",
		ArgsUsage: "<route>",
		Action: func(c *cli.Context) error {
			ls, err := s.workflow.FetchLineStops(c.Context, c.Args().First())
			if err != nil {
				return userMessage(err)
			}

			for i, st := range ls.Stops {
				fmt.Fprintf(c.App.Writer, "%3d  %-14s %s\n", i+1, st.ID, st.DisplayName)
			}
			return nil
		},
	}
}

func stopFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "start", Usage: "stop id you boarded at (default first stop)"},
		&cli.StringFlag{Name: "end", Usage: "stop id you left at (default last stop)"},
	}
}

// choose applies explicit --start/--end choices to a selection.
func choose(c *cli.Context, sel *services.StopSelection) error {
	if v := c.String("start"); v != "" {
		if err := sel.ChooseStart(v); err != nil {
			return userMessage(err)
		}
	}
	if v := c.String("end"); v != "" {
		if err := sel.ChooseEnd(v); err != nil {
			return userMessage(err)
		}
	}
	return nil
}

func (s *session) routeCommand() *cli.Command {
	return &cli.Command{
		Name:  "route",
		Usage: "record and manage travelled routes",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "record a route you travelled",
				ArgsUsage: "<route>",
				Flags:     stopFlags(),
				Action: func(c *cli.Context) error {
					if err := s.requireUser(); err != nil {
						return err
					}

					sel := services.NewStopSelection()
					ls, err := s.workflow.FetchLineStops(c.Context, c.Args().First())
					if err != nil {
						return userMessage(err)
					}
					sel.Apply(ls)
					if err := choose(c, sel); err != nil {
						return err
					}

					rec, err := s.workflow.SubmitNewRoute(c.Context, sel.Submission(s.cfg.UserUUID, s.cfg.UserEmail))
					if err != nil {
						return userMessage(err)
					}

					fmt.Fprintf(c.App.Writer, "added route %s: %d%% travelled\n", rec.RouteIdentifier, rec.PercentageTravelled)
					return nil
				},
			},
			{
				Name:      "edit",
				Usage:     "change the route or stops of a recorded route",
				ArgsUsage: "<id>",
				Flags: append(stopFlags(),
					&cli.StringFlag{Name: "route", Usage: "new route number (default unchanged)"},
				),
				Action: func(c *cli.Context) error {
					if err := s.requireUser(); err != nil {
						return err
					}

					rec, err := s.client.Get(c.Context, c.Args().First())
					if err != nil {
						return userMessage(err)
					}

					sel := services.NewStopSelectionFromRecord(*rec)
					line := rec.RouteIdentifier
					if v := c.String("route"); v != "" {
						line = v
					}

					ls, err := s.workflow.FetchLineStops(c.Context, line)
					if err != nil {
						return userMessage(err)
					}
					sel.Apply(ls)
					if err := choose(c, sel); err != nil {
						return err
					}

					updated, err := s.workflow.SubmitRouteUpdate(c.Context, sel.Submission(s.cfg.UserUUID, s.cfg.UserEmail))
					if err != nil {
						return userMessage(err)
					}

					fmt.Fprintf(c.App.Writer, "updated route %s: %d%% travelled\n", updated.RouteIdentifier, updated.PercentageTravelled)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list your recorded routes",
				Action: func(c *cli.Context) error {
					if err := s.requireUser(); err != nil {
						return err
					}

					recs, err := s.client.ListByUser(c.Context, s.cfg.UserUUID)
					if err != nil {
						return userMessage(err)
					}
					if len(recs) == 0 {
						fmt.Fprintln(c.App.Writer, "no routes recorded yet")
						return nil
					}
					for _, r := range recs {
						printRoute(c.App.Writer, r)
					}
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a recorded route",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if err := s.client.Delete(c.Context, c.Args().First()); err != nil {
						return userMessage(err)
					}
					fmt.Fprintln(c.App.Writer, "route deleted")
					return nil
				},
			},
		},
	}
}

func (s *session) coverageCommand() *cli.Command {
	return &cli.Command{
		Name:  "coverage",
		Usage: "show how much of the bus network you have travelled",
		Action: func(c *cli.Context) error {
			if err := s.requireUser(); err != nil {
				return err
			}

			cov, err := s.client.Coverage(c.Context, s.cfg.UserUUID)
			if err != nil {
				return userMessage(err)
			}

			fmt.Fprintf(c.App.Writer, "%d of %d bus routes (%.1f%%)\n", cov.UserRouteCount, cov.NetworkRouteCount, cov.Percentage)
			return nil
		},
	}
}
