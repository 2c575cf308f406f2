package notify

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTTConfig describes the broker connection.
type MQTTConfig struct {
	Broker         string // e.g. tcp://localhost:1883
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration // default 10s
}

// MQTTPublisher publishes retained QoS 1 messages, so a display that
// subscribes late still receives the latest next-prayer update.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.Broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to MQTT broker %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.Broker, err)
	}
	return &MQTTPublisher{client: client}, nil
}

// Publish sends payload and waits for the broker's acknowledgement.
func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, true, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		return token.Error()
	}
}

// Close disconnects, allowing a quarter second for in-flight messages.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
