package feed

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/observability"
)

// DefaultSubject is the subject [NATSSource] subscribes to when none is set.
const DefaultSubject = "hemicycle.results"

// natsBuffer bounds the messages held between the subscription and the
// coordinator.
const natsBuffer = 256

// Reply is the response sent to NATS requests.
type Reply struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// NATSSource receives updates published as JSON on a NATS subject. Messages
// sent as requests get a [Reply].
type NATSSource struct {
	Conn    *nats.Conn
	Subject string
	Queue   string
	Logger  *log.Logger
}

// Run subscribes and emits updates until ctx is done. Malformed or rejected
// messages are logged and skipped.
func (s *NATSSource) Run(ctx context.Context, emit EmitFunc) error {
	subject := s.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	if err := errors.ValidateSubject(subject); err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	ch := make(chan *nats.Msg, natsBuffer)
	var sub *nats.Subscription
	var err error
	if s.Queue != "" {
		sub, err = s.Conn.ChanQueueSubscribe(subject, s.Queue, ch)
	} else {
		sub, err = s.Conn.ChanSubscribe(subject, ch)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "subscribe %s", subject)
	}
	defer sub.Unsubscribe()
	logger.Info("listening for results", "subject", subject, "queue", s.Queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-ch:
			s.handle(ctx, logger, msg, emit)
		}
	}
}

func (s *NATSSource) handle(ctx context.Context, logger *log.Logger, msg *nats.Msg, emit EmitFunc) {
	var u Update
	if err := json.Unmarshal(msg.Data, &u); err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "decode message on %s", msg.Subject)
		logger.Warn("dropping message", "subject", msg.Subject, "err", err)
		observability.Feed().OnRejected(ctx, "nats", string(errors.ErrCodeInvalidInput))
		s.reply(logger, msg, "", err)
		return
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := emit(u); err != nil {
		logger.Warn("update rejected", "entry", u.Entry, "err", err)
		s.reply(logger, msg, u.ID, err)
		return
	}
	s.reply(logger, msg, u.ID, nil)
}

func (s *NATSSource) reply(logger *log.Logger, msg *nats.Msg, id string, err error) {
	if msg.Reply == "" {
		return
	}
	r := Reply{OK: err == nil, ID: id}
	if err != nil {
		r.Code = string(errors.GetCode(err))
		r.Message = errors.UserMessage(err)
	}
	data, _ := json.Marshal(r)
	if err := msg.Respond(data); err != nil {
		logger.Debug("reply failed", "subject", msg.Reply, "err", err)
	}
}

var _ Source = (*NATSSource)(nil)
