package main

import (
	"context"

	"github.com/groupscout/groupscout/internal/server"
	"github.com/urfave/cli/v3"
)

// Demo runs the loopback demo backend until interrupted.
func (r *Runner) Demo(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Bridge.Address
	}

	srv, err := server.Listen(server.Options{Addr: addr, Logger: r.logger})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	r.writePlain("Demo backend listening on %s (ctrl+c to stop)\n", srv.Addr())
	return srv.Serve()
}
