package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/intelhub/core"
	"pkt.systems/intelhub/internal/appconfig"
	"pkt.systems/intelhub/schema"
	"pkt.systems/pslog"
)

func newDoctorCmd() *cobra.Command {
	var cfgPath string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Probe every configured tab once and report reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			configPath := cfgPath
			if strings.TrimSpace(configPath) == "" {
				path, err := appconfig.DefaultConfigPath()
				if err != nil {
					return err
				}
				configPath = path
			}
			logger.Info("doctor start", "config", configPath, "tabs", len(cfg.Tabs))

			serviceCfg, err := schema.NormalizeServiceConfig(toServiceConfig(cfg))
			if err != nil {
				return err
			}

			prober := core.NewProberWithClient(&http.Client{Timeout: timeout})
			offline := 0
			for _, tab := range serviceCfg.Tabs {
				if !tab.Probed() {
					logger.Info("doctor tab skipped", "tab", tab.Key, "mode", tab.Mode)
					continue
				}
				probeCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
				result, err := prober.Probe(probeCtx, tab.URL)
				cancel()
				status := schema.StatusFor(result, err)
				if status == schema.TabStatusOnline {
					logger.Info("doctor tab online", "tab", tab.Key, "url", tab.URL, "http_status", result.Status)
					continue
				}
				offline++
				logger.Warn("doctor tab offline", "tab", tab.Key, "url", tab.URL, "http_status", result.Status, "probe_error", result.Error, "err", err)
			}
			if offline > 0 {
				return fmt.Errorf("%d tab(s) offline", offline)
			}
			logger.Info("doctor ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-tab probe timeout")
	return cmd
}
