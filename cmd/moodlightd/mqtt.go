package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/nlowe/moodlight/config"
	moodlog "github.com/nlowe/moodlight/log"
	"github.com/nlowe/moodlight/mqtt"
	adapter "github.com/nlowe/moodlight/mqtt/adapter/autopaho"
)

type disconnectFunc func(context.Context) error

func configureMQTT(ctx context.Context, cfg config.Config) (mqtt.Writer, mqtt.Subscriber, disconnectFunc, error) {
	log := moodlog.ForComponent("mqtt")

	brokerURL, err := url.Parse(cfg.BrokerURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mqtt: broker url: %w", err)
	}

	mqttConfig := autopaho.ClientConfig{
		ServerUrls: []*url.URL{brokerURL},
		KeepAlive:  20,

		// SessionExpiryInterval - Seconds that a session will survive after disconnection. It is important to set this
		// because otherwise, any queued messages will be lost if the connection drops and the server will not queue
		// messages while it is down.
		SessionExpiryInterval: 60,

		ConnectUsername: cfg.BrokerUsername,
		ConnectPassword: []byte(cfg.BrokerPassword),

		OnConnectionUp: func(cm *autopaho.ConnectionManager, connAck *paho.Connack) {
			log.Info("mqtt connected")
		},
		OnConnectError: func(err error) {
			log.With(moodlog.Error(err)).Error("mqtt connection error")
		},

		ClientConfig: paho.ClientConfig{
			ClientID: cfg.ClientID,
			OnClientError: func(err error) {
				log.With(moodlog.Error(err)).Error("mqtt client error")
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				log := log.With(slog.Int("reason", int(d.ReasonCode)))

				if d.Properties != nil {
					log = log.With(
						slog.Group(
							"properties",
							slog.String("reference", d.Properties.ServerReference),
							slog.String("reason", d.Properties.ReasonString),
							slog.Any("user", d.Properties.User),
						),
					)
				}

				log.Warn("Disconnected from server")
			},
		},
	}

	log.With(slog.String("broker", brokerURL.Redacted())).Info("Connecting to mqtt")
	w, s, disconnect, err := adapter.DialMQTT(ctx, mqttConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mqtt: connect: %w", err)
	}

	log.With(slog.String("broker", brokerURL.Redacted())).Info("Connected to mqtt")

	return w, s, disconnect, nil
}
