// Package mqtt publishes events and temperature readings for downstream
// consumers (dashboards, voice layers) that watch the broker instead of the
// database.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/thoukydides/heatmiser-wifi/internal/pkg/config"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 5 * time.Second
	topicPrefix    = "heatmiser"
)

type Sink struct {
	client paho_mqtt.Client
}

func New(cfg *config.MqttConfig) *Sink {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetClientID("heatmiser-wifi").
		SetAutoReconnect(true)
	return &Sink{client: paho_mqtt.NewClient(opts)}
}

func (s *Sink) Connect() error {
	token := s.client.Connect()
	if token.WaitTimeout(connectTimeout) {
		return token.Error()
	}
	if err := token.Error(); err != nil {
		return err
	}
	return errors.New("unable to connect in time")
}

func (s *Sink) Disconnect() {
	s.client.Disconnect(250)
}

type eventPayload struct {
	Time        time.Time `json:"time"`
	Class       string    `json:"class"`
	State       string    `json:"state"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type logPayload struct {
	Time          time.Time `json:"time"`
	Indoor        *float64  `json:"indoor,omitempty"`
	HeatTarget    int       `json:"heat_target"`
	ComfortTarget int       `json:"comfort_target"`
}

func (s *Sink) EventInsert(_ context.Context, device string, t time.Time, class, state string, temperature *float64) error {
	return s.publish(fmt.Sprintf("%s/%s/event/%s", topicPrefix, device, class), eventPayload{
		Time:        t,
		Class:       class,
		State:       state,
		Temperature: temperature,
	})
}

func (s *Sink) LogInsert(_ context.Context, device string, t time.Time, indoor *float64, heatTarget, comfortTarget int) error {
	return s.publish(fmt.Sprintf("%s/%s/log", topicPrefix, device), logPayload{
		Time:          t,
		Indoor:        indoor,
		HeatTarget:    heatTarget,
		ComfortTarget: comfortTarget,
	})
}

func (s *Sink) publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := s.client.Publish(topic, 0, true, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish to %s timed out", topic)
	}
	return token.Error()
}
