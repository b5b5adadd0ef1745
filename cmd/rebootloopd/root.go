package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tamzrod/rebootloopd/internal/config"
	"github.com/tamzrod/rebootloopd/internal/escalation"
	"github.com/tamzrod/rebootloopd/internal/logger"
	"github.com/tamzrod/rebootloopd/internal/loopdetect"
	"github.com/tamzrod/rebootloopd/internal/module"
	"github.com/tamzrod/rebootloopd/internal/startupinfo"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "rebootloopd",
		Short:        "Detect reboot loops and request malfunction mode",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config (defaults when empty)")

	root.AddCommand(newCheckCmd(&cfgPath), newShowCmd(&cfgPath))
	return root
}

func newCheckCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the boot-time detection pass once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A broken config must not stop the check from running: bad
			// sections fall back to defaults, the rest is kept.
			cfg, cfgErrs := config.LoadBestEffort(*cfgPath)

			logErr := logger.Init(cfg.Log)
			if logErr != nil {
				_ = logger.Init(logger.Config{})
			}
			log := logger.WithComponent("rebootloopdetector")

			if logErr != nil {
				log.Error().Err(logErr).Msg("invalid log config; using defaults")
			}
			for _, err := range cfgErrs {
				log.Error().Err(err).Str("config", *cfgPath).Msg("config section rejected; using defaults for it")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m, err := build(cfg, log)
			if err != nil {
				// Only reachable with an invalid policy; still not fatal for the device.
				log.Error().Err(err).Msg("detector not started")
				return nil
			}

			res := m.Init(ctx)
			m.Fini()

			fmt.Fprintln(cmd.OutOrStdout(), res.Verdict)
			return nil
		},
	}
}

func build(cfg *config.Config, log zerolog.Logger) (*module.Module, error) {
	store := startupinfo.NewFileStore(cfg.Detector.StartupInfoFile, log)

	det, err := loopdetect.New(loopdetect.Config{
		Store:  store,
		Policy: cfg.Detector.Policy(),
	}, log)
	if err != nil {
		return nil, err
	}

	esc := cfg.Escalation
	return module.New(module.Options{
		Detector: det,
		Requester: func() (escalation.Requester, error) {
			return escalation.Build(esc, log)
		},
		Kind:       escalation.KindFor(esc.Request),
		DeviceName: esc.DeviceName,
		Timeout:    esc.Timeout(),
		Log:        log,
	})
}

func newShowCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored startup record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cfgErrs := config.LoadBestEffort(*cfgPath)
			for _, err := range cfgErrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "config: %v\n", err)
			}

			store := startupinfo.NewFileStore(cfg.Detector.StartupInfoFile, zerolog.Nop())
			rec, ok := store.Load()
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "%s: no startup history\n", store.Path())
				return nil
			}

			p := cfg.Detector.Policy()
			fmt.Fprintf(out, "%s: last_startup=%d (%s) reboot_count=%d max=%d min_interval=%s\n",
				store.Path(),
				rec.LastStartup,
				time.Unix(rec.LastStartup, 0).UTC().Format(time.RFC3339),
				rec.RebootCount,
				p.MaxRebootCount,
				p.MinRebootInterval,
			)
			return nil
		},
	}
}
