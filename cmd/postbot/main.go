// Command postbot runs the post configuration bot.
package main

import (
	"fmt"
	"os"

	corecmd "github.com/m3rciful/postbot/core/cmd"
	"github.com/m3rciful/postbot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "POSTBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(appCfg)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "postbot: %v\n", err)
		os.Exit(1)
	}
}
