package devicebus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "access-control/pkg/errors"
)

// fakeTransport отвечает на опубликованную команду заранее заданными сообщениями.
type fakeTransport struct {
	mu           sync.Mutex
	connectErr   error
	connects     int
	replies      [][]byte
	handler      func([]byte)
	subscribed   string
	published    string
	payload      []byte
	disconnected bool
	block        chan struct{}
}

func (f *fakeTransport) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.connectErr
}

func (f *fakeTransport) Subscribe(topic string, h func([]byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = topic
	f.handler = h
	return nil
}

func (f *fakeTransport) Publish(topic string, payload []byte) error {
	f.mu.Lock()
	f.published = topic
	f.payload = payload
	h := f.handler
	replies := f.replies
	f.mu.Unlock()
	go func() {
		if f.block != nil {
			<-f.block
		}
		for _, r := range replies {
			h(r)
		}
	}()
	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	f.disconnected = true
	f.mu.Unlock()
}

func testClient(f *fakeTransport, ticks int, tick time.Duration) *Client {
	cfg := Config{InPrefix: "/BIOID/CLOUD/", OutPrefix: "/BIOID/CLIENT/", ConnectAttempts: 5, LoopTicks: ticks, Tick: tick}
	return NewClient(cfg, func(string) Transport { return f }, zap.NewNop())
}

func TestExecuteDuplicate(t *testing.T) {
	f := &fakeTransport{replies: [][]byte{
		[]byte("!PROGRESS,50"),
		[]byte("!DUPLICATE,0,Ivanov,Ivan,Ivanovich,42"),
	}}
	c := testClient(f, 5, time.Second)

	resp, err := c.Execute(context.Background(), "M", FaceEnroll("Petrov", "Petr", "Petrovich", []byte{0xFF, 0xD8}), nil)
	require.NoError(t, err)
	assert.Equal(t, KindDuplicate, resp.Kind)
	assert.Equal(t, int64(42), resp.EmployeeID)
	assert.Equal(t, "Ivanov", resp.LastName)
	assert.Equal(t, "!DUPLICATE,0,Ivanov,Ivan,Ivanovich,42", resp.Raw)

	assert.Equal(t, "/BIOID/CLOUD/M", f.subscribed)
	assert.Equal(t, "/BIOID/CLIENT/M", f.published)
	assert.Equal(t, append([]byte("!FACE_ENROLL,0,Petrov,Petr,Petrovich\r\n"), 0xFF, 0xD8), f.payload)
	assert.True(t, f.disconnected)
}

func TestExecuteBrokerUnreachable(t *testing.T) {
	f := &fakeTransport{connectErr: errors.New("connection refused")}
	c := testClient(f, 5, time.Second)

	_, err := c.Execute(context.Background(), "M", CardEnroll("A", "B", "C", "0001"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBrokerUnreachable)
	assert.Equal(t, 5, f.connects)
	assert.Equal(t, "Не удается подключиться к серверу", apperrors.ErrBrokerUnreachable.Error())
}

func TestExecuteIndeterminate(t *testing.T) {
	f := &fakeTransport{replies: [][]byte{[]byte("!PROGRESS,10")}}
	c := testClient(f, 3, 10*time.Millisecond)

	_, err := c.Execute(context.Background(), "M", FaceSearch([]byte{1}), nil)
	assert.ErrorIs(t, err, apperrors.ErrIndeterminate)
	assert.True(t, f.disconnected)
}

func TestExecuteStopCheck(t *testing.T) {
	f := &fakeTransport{block: make(chan struct{})}
	defer close(f.block)
	c := testClient(f, 20, 10*time.Millisecond)

	calls := 0
	_, err := c.Execute(context.Background(), "M", FaceSearch(nil), func() bool {
		calls++
		return calls > 2
	})
	assert.ErrorIs(t, err, apperrors.ErrIndeterminate)
	assert.Equal(t, 3, calls)
}

func TestExecuteOneCommandPerDevice(t *testing.T) {
	f := &fakeTransport{block: make(chan struct{}), replies: [][]byte{[]byte("!ENROLL_OK,0,A,B,C,7")}}
	c := testClient(f, 50, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := c.Execute(context.Background(), "M", FingerEnroll("A", "B", "C", []byte{1}), nil)
		done <- err
	}()

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.published != ""
	}, time.Second, 5*time.Millisecond)

	_, err := c.Execute(context.Background(), "M", FaceSearch(nil), nil)
	assert.ErrorIs(t, err, apperrors.ErrDeviceBusy)

	close(f.block)
	require.NoError(t, <-done)
}

func TestParseResponse(t *testing.T) {
	resp, ok := ParseResponse([]byte("!LOWTQ,0\r\n"))
	require.True(t, ok)
	assert.Equal(t, KindLowQuality, resp.Kind)

	resp, ok = ParseResponse([]byte("!SEARCH_OK,Ivanov,Ivan,Ivanovich,42"))
	require.True(t, ok)
	assert.Equal(t, KindSearchOK, resp.Kind)
	assert.Equal(t, int64(42), resp.EmployeeID)

	_, ok = ParseResponse([]byte("!HELLO"))
	assert.False(t, ok)
}

func TestCommandFieldsStripSeparators(t *testing.T) {
	cmd := CardEnroll("Иванов,", "Иван", "Иванович", "12345")
	assert.Equal(t, "!IDENROLL,0,Иванов,Иван,Иванович,12345", cmd.Line)
	assert.Nil(t, cmd.Payload)
}
