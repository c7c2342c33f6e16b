package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp(os.Stdout).Run(os.Args)
	if err == nil {
		return
	}

	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		fmt.Fprintln(os.Stderr, exit.Error())
		os.Exit(exit.ExitCode())
	}
	log.Fatal().Err(err).Send()
}
