package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Saatvik786/TaskSphere/internal/queue"
	"go.uber.org/zap"
)

// Notifier turns account events into user mail.
type Notifier struct {
	Sender Sender
	L      *zap.Logger
}

func (n *Notifier) Handle(ctx context.Context, d queue.Delivery) error {
	switch d.RoutingKey {
	case queue.KeyUserRegistered:
		var ev queue.UserRegistered
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return n.drop(d, err)
		}
		return n.Sender.Send(ctx, ev.Email, "Welcome to TaskSphere",
			fmt.Sprintf("Hi %s, your account is ready.", ev.Name))
	case queue.KeyUserLinked:
		var ev queue.UserLinked
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return n.drop(d, err)
		}
		return n.Sender.Send(ctx, ev.Email, "New sign-in method linked",
			fmt.Sprintf("Hi %s, your %s account can now be used to sign in to TaskSphere.", ev.Name, ev.Provider))
	default:
		n.L.Debug("event ignored", zap.String("key", d.RoutingKey), zap.String("message_id", d.MessageID))
		return nil
	}
}

// drop logs an undecodable payload and acks it; redelivery cannot fix it.
func (n *Notifier) drop(d queue.Delivery, err error) error {
	n.L.Warn("bad event payload",
		zap.String("key", d.RoutingKey),
		zap.String("message_id", d.MessageID),
		zap.String("request_id", d.RequestID),
		zap.Error(err),
	)
	return nil
}
