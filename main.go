package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/thoukydides/heatmiser-wifi/cmd"
)

func main() {
	app := &cli.App{
		Name:   "heatmiser-wifi",
		Usage:  "poll Heatmiser Wi-Fi thermostats and record state changes",
		Action: cmd.HeatmiserCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "devices-file",
				EnvVars:  []string{"HEATMISER_DEVICES"},
				Usage:    "yaml file listing thermostats (host, port, pin, timeout)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "database-url",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "migrations-folder",
				EnvVars:  []string{"MIGRATIONS_FOLDER"},
				Value:    "migrations",
				Required: false,
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   time.Minute,
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				EnvVars: []string{"HEATMISER_VERBOSE"},
				Usage:   "log a human-readable summary line per poll cycle",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
