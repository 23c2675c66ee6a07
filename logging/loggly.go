package logging

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/haydenhayden/projectzen/consts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var endpointFormat = "https://logs-01.loggly.com/bulk/%s/tag/bulk,zencal/"

// logglySink batches log lines and posts them to the Loggly bulk endpoint.
// Lines are pushed once the buffer exceeds threshold bytes, on Sync and on Close.
type logglySink struct {
	url    string
	client *http.Client

	threshold int
	done      chan struct{}
	drained   chan struct{}
	flush     chan chan struct{}
	q         chan []byte
	closeOnce sync.Once
}

func NewLogglyEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(func() zapcore.EncoderConfig {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		cfg.TimeKey = "timestamp"
		return cfg
	}())
}

func NewLogglySink(token string) zap.Sink {
	sink := &logglySink{
		url:       fmt.Sprintf(endpointFormat, token),
		client:    &http.Client{Timeout: 10 * time.Second},
		threshold: 4096,
		done:      make(chan struct{}),
		drained:   make(chan struct{}),
		flush:     make(chan chan struct{}),
		q:         make(chan []byte, 64),
	}
	go sink.drain()
	return sink
}

func (s *logglySink) Write(p []byte) (int, error) {
	cpy := make([]byte, len(p))
	copy(cpy, p)
	select {
	case s.q <- cpy:
	case <-s.done:
	}
	return len(p), nil
}

// Sync pushes every line written so far.
func (s *logglySink) Sync() error {
	flushed := make(chan struct{})
	select {
	case s.flush <- flushed:
		<-flushed
	case <-s.drained:
	}
	return nil
}

// Close pushes the pending lines and stops the sink.
func (s *logglySink) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.drained
	return nil
}

func (s *logglySink) drain() {
	defer close(s.drained)
	var buffer bytes.Buffer
	pushAll := func() {
		for {
			select {
			case b := <-s.q:
				buffer.Write(b)
			default:
				if buffer.Len() > 0 {
					s.push(buffer.Bytes())
					buffer.Reset()
				}
				return
			}
		}
	}
	for {
		select {
		case b := <-s.q:
			buffer.Write(b)
			if buffer.Len() > s.threshold {
				s.push(buffer.Bytes())
				buffer.Reset()
			}
		case flushed := <-s.flush:
			pushAll()
			close(flushed)
		case <-s.done:
			pushAll()
			return
		}
	}
}

func (s *logglySink) push(data []byte) {
	post, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Loggly: failed to create HTTP POST request: %s\n", err)
		return
	}
	post.Header.Add("User-Agent", consts.UserAgent())
	post.Header.Add("Content-Type", "application/json")
	post.Header.Add("Content-Length", strconv.Itoa(len(data)))
	r, err := s.client.Do(post)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Loggly: failed to push logs: %s\n", err)
		return
	}
	r.Body.Close()
	if r.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Loggly: push rejected with status %d\n", r.StatusCode)
	}
}
