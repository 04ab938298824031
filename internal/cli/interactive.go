package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskday/internal/exitcode"
	"github.com/idilsaglam/taskday/internal/tui"
	"github.com/idilsaglam/taskday/internal/ui"
	"github.com/idilsaglam/taskday/internal/web"
)

func newTUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Options{
				Store:     a.Store,
				Suggester: a.Suggester,
				Now:       a.Now,
			})
		},
	}
}

func newServeCmd(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.Config.Server.Addr
			}
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			srv := web.New(web.Options{
				Store:     a.Store,
				Suggester: a.Suggester,
				Now:       a.Now,
				Version:   Version,
				Registry:  reg,
			})
			ui.Hint(e.opt.Err, "serving on http://"+addr+" (ctrl+c to stop)")
			if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
				return withCode(exitcode.BackendError, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")
	return cmd
}
