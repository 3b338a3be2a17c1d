package devicebus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "access-control/pkg/errors"
)

// Transport: одно соединение с брокером на время одной операции.
type Transport interface {
	Connect(ctx context.Context) error
	Subscribe(topic string, handler func(payload []byte)) error
	Publish(topic string, payload []byte) error
	Disconnect()
}

// Dialer создаёт транспорт с уникальным client id.
type Dialer func(clientID string) Transport

// StopCheck опрашивается между тиками; true прерывает ожидание.
type StopCheck func() bool

type Config struct {
	InPrefix        string
	OutPrefix       string
	ConnectAttempts int
	LoopTicks       int
	Tick            time.Duration
	RetryDelay      time.Duration
}

// Client выполняет команды на устройствах: не больше одной активной команды на устройство.
type Client struct {
	cfg    Config
	dial   Dialer
	logger *zap.Logger

	mu   sync.Mutex
	busy map[string]bool
}

func NewClient(cfg Config, dial Dialer, logger *zap.Logger) *Client {
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = 5
	}
	if cfg.LoopTicks <= 0 {
		cfg.LoopTicks = 20
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 4 * time.Second
	}
	return &Client{cfg: cfg, dial: dial, logger: logger, busy: make(map[string]bool)}
}

func (c *Client) acquire(device string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[device] {
		return false
	}
	c.busy[device] = true
	return true
}

func (c *Client) release(device string) {
	c.mu.Lock()
	delete(c.busy, device)
	c.mu.Unlock()
}

// Execute открывает сессию, подписывается на ответы устройства, публикует команду
// и ждёт терминальный ответ не дольше LoopTicks тиков. Команда не повторяется.
func (c *Client) Execute(ctx context.Context, device string, cmd Command, stop StopCheck) (Response, error) {
	if !c.acquire(device) {
		return Response{}, apperrors.ErrDeviceBusy
	}
	defer c.release(device)

	clientID := "access-control-" + uuid.NewString()
	log := c.logger.With(zap.String("device", device), zap.String("clientID", clientID))

	t := c.dial(clientID)
	if err := c.connect(ctx, t, log); err != nil {
		return Response{}, err
	}
	defer t.Disconnect()

	msgs := make(chan []byte, 16)
	inTopic := c.cfg.InPrefix + device
	err := t.Subscribe(inTopic, func(payload []byte) {
		p := append([]byte(nil), payload...)
		select {
		case msgs <- p:
		default:
			log.Warn("Очередь ответов устройства переполнена, сообщение отброшено")
		}
	})
	if err != nil {
		return Response{}, fmt.Errorf("подписка на %s: %w", inTopic, err)
	}

	outTopic := c.cfg.OutPrefix + device
	if err := t.Publish(outTopic, cmd.Encode()); err != nil {
		return Response{}, fmt.Errorf("публикация в %s: %w", outTopic, err)
	}
	log.Info("Команда отправлена на устройство", zap.String("command", cmd.Line), zap.Int("payload", len(cmd.Payload)))

	for tick := 0; tick < c.cfg.LoopTicks; tick++ {
		if stop != nil && stop() {
			log.Info("Ожидание ответа прервано вызывающей стороной", zap.Int("tick", tick))
			return Response{}, apperrors.ErrIndeterminate
		}
		resp, done, err := c.waitTick(ctx, msgs)
		if err != nil {
			return Response{}, err
		}
		if done {
			log.Info("Получен ответ устройства", zap.String("kind", resp.Kind.String()), zap.String("raw", resp.Raw))
			return resp, nil
		}
	}

	log.Warn("Устройство не дало терминального ответа", zap.Int("ticks", c.cfg.LoopTicks))
	return Response{}, apperrors.ErrIndeterminate
}

// waitTick ждёт сообщения в пределах одного тика.
func (c *Client) waitTick(ctx context.Context, msgs <-chan []byte) (Response, bool, error) {
	timer := time.NewTimer(c.cfg.Tick)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return Response{}, false, ctx.Err()
		case <-timer.C:
			return Response{}, false, nil
		case m := <-msgs:
			resp, terminal := ParseResponse(m)
			if terminal {
				return resp, true, nil
			}
			c.logger.Debug("Промежуточное сообщение устройства", zap.String("raw", resp.Raw))
		}
	}
}

func (c *Client) connect(ctx context.Context, t Transport, log *zap.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.ConnectAttempts; attempt++ {
		if lastErr = t.Connect(ctx); lastErr == nil {
			return nil
		}
		log.Warn("Не удалось подключиться к брокеру", zap.Int("attempt", attempt), zap.Error(lastErr))
		if c.cfg.RetryDelay > 0 && attempt < c.cfg.ConnectAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}
	return fmt.Errorf("%w: %v", apperrors.ErrBrokerUnreachable, lastErr)
}
