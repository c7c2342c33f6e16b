package main

import (
	"bussd-route-service/internal/adapters/backend"
	"bussd-route-service/internal/config"
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/obs"
	"bussd-route-service/internal/services"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// session holds what every command needs once configuration is loaded.
type session struct {
	cfg      *config.Client
	client   *backend.Client
	workflow *services.RouteProgressWorkflow
}

func newApp(out io.Writer) *cli.App {
	s := &session{}

	return &cli.App{
		Name:   "bussd",
		Usage:  "Track how much of each London bus route you have travelled",
		Writer: out,
		// main decides the exit code
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Usage: "backend API base URL", EnvVars: []string{"BUSSD_API_URL"}},
			&cli.StringFlag{Name: "user", Usage: "user uuid", EnvVars: []string{"BUSSD_USER_UUID"}},
			&cli.StringFlag{Name: "email", Usage: "user email", EnvVars: []string{"BUSSD_USER_EMAIL"}},
		},
		Before: func(c *cli.Context) error {
			if c.String("api-url") != "" {
				os.Setenv("BUSSD_API_URL", c.String("api-url"))
			}

			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			obs.SetupLogging(cfg.LogLevel, true)

			if c.String("user") != "" {
				cfg.UserUUID = c.String("user")
			}
			if c.String("email") != "" {
				cfg.UserEmail = c.String("email")
			}

			client, err := backend.NewClient(cfg.APIURL, cfg.HTTPTimeout)
			if err != nil {
				return err
			}

			wcfg := services.DefaultWorkflowConfig()
			wcfg.OnStage = func(st services.Stage) {
				log.Debug().Str("stage", st.String()).Msg("workflow stage")
			}
			wf, err := services.NewRouteProgressWorkflow(client, client, wcfg)
			if err != nil {
				return err
			}

			s.cfg, s.client, s.workflow = cfg, client, wf
			return nil
		},
		Commands: []*cli.Command{
			s.stopsCommand(),
			s.routeCommand(),
			s.coverageCommand(),
		},
	}
}

// userMessage turns a workflow error into the text shown to the user.
// Transport failures never expose their technical cause.
func userMessage(err error) error {
	var nf *domain.NoStopsFoundError
	var te *domain.TransportError
	var ce *domain.ComputationError
	switch {
	case errors.As(err, &nf):
		return cli.Exit(nf.Error(), 2)
	case errors.As(err, &te):
		return cli.Exit(te.Message, 3)
	case errors.As(err, &ce):
		return cli.Exit("something went wrong computing the route percentage", 4)
	case domain.IsUserCorrectable(err):
		return cli.Exit(err.Error(), 2)
	}
	return cli.Exit(err.Error(), 1)
}

func (s *session) requireUser() error {
	if s.cfg.UserUUID == "" {
		return cli.Exit("no user set: pass --user or set BUSSD_USER_UUID", 2)
	}
	return nil
}

func printRoute(w io.Writer, r *domain.RouteProgressRecord) {
	fmt.Fprintf(w, "%s  route %-5s %3d%%  %s -> %s\n",
		r.ID, r.RouteIdentifier, r.PercentageTravelled, r.StartStopID, r.EndStopID)
}
