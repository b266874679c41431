package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/intelhub"
	"pkt.systems/intelhub/core"
	"pkt.systems/intelhub/httpapi"
	"pkt.systems/intelhub/internal/appconfig"
	"pkt.systems/intelhub/schema"
	"pkt.systems/intelhub/sshserver"
	"pkt.systems/pslog"
)

const stopTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var cfgPath string
	var noSSH bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the intelhub dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			logger.Info("config loaded", "tabs", len(cfg.Tabs), "http_addr", cfg.HTTP.Addr, "ssh_enabled", cfg.SSH.Enabled)

			serverCfg := intelhub.ServerConfig{
				Service: toServiceConfig(cfg),
				HTTP: httpapi.Config{
					Addr:     cfg.HTTP.Addr,
					BaseURL:  cfg.HTTP.BaseURL,
					BasePath: cfg.HTTP.BasePath,
				},
				SSH: sshserver.Config{
					Enabled:     cfg.SSH.Enabled,
					Addr:        cfg.SSH.Addr,
					HostKeyPath: cfg.SSH.HostKeyPath,
				},
				HubHistory: 1000,
			}

			deps := intelhub.ServerDeps{
				ServiceDeps: core.ServiceDeps{Logger: logger},
			}
			opts := []intelhub.ServerOption{intelhub.WithHTTP()}
			if cfg.SSH.Enabled && !noSSH {
				opts = append(opts, intelhub.WithSSH())
			}

			server, err := intelhub.New(serverCfg, deps, opts...)
			if err != nil {
				return err
			}
			if err := server.Start(cmd.Context()); err != nil {
				return err
			}
			err = server.Wait()

			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if stopErr := server.Stop(stopCtx); stopErr != nil {
				logger.Warn("server stop failed", "err", stopErr)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&noSSH, "no-ssh", false, "disable the SSH status console even if enabled in config")
	return cmd
}

func toServiceConfig(cfg appconfig.Config) schema.ServiceConfig {
	tabs := make([]schema.TabSpec, 0, len(cfg.Tabs))
	for _, tab := range cfg.Tabs {
		tabs = append(tabs, schema.TabSpec{
			Key:   schema.TabKey(tab.Key),
			Label: schema.TabLabel(tab.Label),
			URL:   tab.URL,
			Mode:  schema.TabMode(tab.Mode),
		})
	}
	return schema.ServiceConfig{
		Tabs:         tabs,
		StateDir:     cfg.StateDir,
		PollInterval: time.Duration(cfg.Poll.IntervalSeconds) * time.Second,
	}
}
