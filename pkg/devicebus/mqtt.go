package devicebus

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1
	connectTimeout = 4 * time.Second
	opTimeout      = 4 * time.Second
	quiesceMillis  = 250
)

var errTimeout = errors.New("истекло время ожидания брокера")

type mqttTransport struct {
	client mqtt.Client
}

// NewMQTTDialer возвращает Dialer поверх paho: без автопереподключения,
// чтобы попытки считал сам Client.
func NewMQTTDialer(host string, port int, username, password string) Dialer {
	broker := fmt.Sprintf("tcp://%s:%d", host, port)
	return func(clientID string) Transport {
		opts := mqtt.NewClientOptions().
			AddBroker(broker).
			SetClientID(clientID).
			SetUsername(username).
			SetPassword(password).
			SetCleanSession(true).
			SetAutoReconnect(false).
			SetConnectRetry(false).
			SetConnectTimeout(connectTimeout)
		return &mqttTransport{client: mqtt.NewClient(opts)}
	}
}

func (t *mqttTransport) Connect(ctx context.Context) error {
	return wait(ctx, t.client.Connect(), connectTimeout)
}

func (t *mqttTransport) Subscribe(topic string, handler func(payload []byte)) error {
	token := t.client.Subscribe(topic, qos, func(_ mqtt.Client, m mqtt.Message) {
		handler(m.Payload())
	})
	return wait(context.Background(), token, opTimeout)
}

func (t *mqttTransport) Publish(topic string, payload []byte) error {
	return wait(context.Background(), t.client.Publish(topic, qos, false, payload), opTimeout)
}

func (t *mqttTransport) Disconnect() {
	if t.client.IsConnected() {
		t.client.Disconnect(quiesceMillis)
	}
}

func wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return errTimeout
	}
}
