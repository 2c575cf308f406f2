package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/notify"
	"github.com/halalcities/halalcities/internal/prayer"
)

var (
	flagOnce       bool
	flagCitySlugs  []string
	flagMQTTBroker string
	flagMQTTUser   string
	flagMQTTPass   string
)

func newBroadcastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Publish next-prayer updates over MQTT",
		Long: `Publish the next prayer of every directory city to MQTT, once a minute.
Messages are retained on halalcities/<slug>/next-prayer, so displays that
subscribe later still get the latest update.

Uses the same environment as 'serve'; MQTT_BROKER and BROADCAST_INTERVAL
configure the publisher.`,
		Args: cobra.NoArgs,
		RunE: runBroadcast,
	}
	cmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "File with environment variables; missing files are ignored")
	cmd.Flags().BoolVar(&flagOnce, "once", false, "Publish a single round and exit")
	cmd.Flags().StringSliceVar(&flagCitySlugs, "cities", nil, "Slugs of the cities to publish (default: all)")
	cmd.Flags().StringVar(&flagMQTTBroker, "broker", "", "MQTT broker URL, e.g. tcp://localhost:1883 (overrides MQTT_BROKER)")
	cmd.Flags().StringVar(&flagMQTTUser, "mqtt-username", "", "MQTT username")
	cmd.Flags().StringVar(&flagMQTTPass, "mqtt-password", "", "MQTT password")
	return cmd
}

func runBroadcast(cmd *cobra.Command, args []string) error {
	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	broker := b.cfg.MQTTBroker
	if flagMQTTBroker != "" {
		broker = flagMQTTBroker
	}
	if broker == "" {
		return fmt.Errorf("no MQTT broker: set MQTT_BROKER or --broker")
	}

	targets, err := broadcastTargets(cmd, b.cities, b.cfg.DefaultMethod)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no cities to broadcast")
	}

	pub, err := notify.NewMQTTPublisher(notify.MQTTConfig{
		Broker:   broker,
		ClientID: b.cfg.MQTTClientID,
		Username: flagMQTTUser,
		Password: flagMQTTPass,
	})
	if err != nil {
		return err
	}
	defer pub.Close()

	bc := &notify.Broadcaster{
		Publisher: pub,
		Targets:   targets,
		Interval:  b.cfg.BroadcastEvery,
		Calendar:  b.calendar,
		Now:       nowFunc,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("cities", len(targets)).Str("broker", broker).Dur("interval", bc.Interval).Msg("broadcasting")
	if flagOnce {
		return bc.PublishOnce(ctx)
	}
	return bc.Run(ctx)
}

// broadcastTargets resolves --cities, or every directory city when unset.
func broadcastTargets(cmd *cobra.Command, store directory.Store, def prayer.Method) ([]notify.Target, error) {
	ctx := cmd.Context()

	var cities []directory.City
	if len(flagCitySlugs) == 0 {
		all, err := store.ListCities(ctx, "")
		if err != nil {
			return nil, err
		}
		cities = all
	} else {
		for _, slug := range flagCitySlugs {
			c, err := store.GetCity(ctx, slug)
			if err != nil {
				return nil, fmt.Errorf("city %q: %w", slug, err)
			}
			cities = append(cities, c)
		}
	}

	targets := make([]notify.Target, 0, len(cities))
	for _, c := range cities {
		t, err := notify.TargetFromCity(c, def)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}
