// Package notify delivers browser push notifications to post authors.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"friendzone/models"
	"friendzone/repository"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	Title string
	Body  string
	URL   string
}

type Pusher interface {
	// Push queues a notification to userID and returns immediately.
	Push(userID primitive.ObjectID, msg Message)
}

// Noop is used when VAPID keys are not configured.
type Noop struct{}

func (Noop) Push(primitive.ObjectID, Message) {}

type WebPusher struct {
	subs       repository.PushSubscriptionRepository
	publicKey  string
	privateKey string
	subscriber string
	client     *http.Client
	log        logrus.FieldLogger
	wg         sync.WaitGroup
}

func NewWebPusher(subs repository.PushSubscriptionRepository, publicKey, privateKey, subscriber string, log logrus.FieldLogger) *WebPusher {
	return &WebPusher{
		subs:       subs,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (p *WebPusher) Push(userID primitive.ObjectID, msg Message) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.log.WithField("panic", r).Error("Panic in push notification")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p.send(ctx, userID, msg)
	}()
}

// Wait blocks until every queued notification has been attempted.
func (p *WebPusher) Wait() { p.wg.Wait() }

func (p *WebPusher) send(ctx context.Context, userID primitive.ObjectID, msg Message) {
	fields := logrus.Fields{"userId": userID.Hex()}

	sub, err := p.subs.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		p.log.WithFields(fields).WithError(err).Warn("Failed to load push subscription")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"title": msg.Title,
		"body":  msg.Body,
		"data": map[string]any{
			"url":       msg.URL,
			"timestamp": time.Now().Unix(),
		},
	})
	if err != nil {
		p.log.WithFields(fields).WithError(err).Error("Failed to marshal push payload")
		return
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
	}, &webpush.Options{
		HTTPClient:      p.client,
		Subscriber:      p.subscriber,
		VAPIDPublicKey:  p.publicKey,
		VAPIDPrivateKey: p.privateKey,
		TTL:             30,
	})
	if err != nil {
		p.log.WithFields(fields).WithError(err).Warn("Failed to send push notification")
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		p.log.WithFields(fields).Info("Push subscription expired, deleting")
		if err := p.subs.DeleteByUser(ctx, userID); err != nil {
			p.log.WithFields(fields).WithError(err).Warn("Failed to delete expired subscription")
		}
	case resp.StatusCode >= 400:
		p.log.WithFields(fields).WithField("status", resp.StatusCode).Warn("Push service rejected notification")
	default:
		p.log.WithFields(fields).Debug("Push notification sent")
	}
}

// Subscribe stores the caller's browser endpoint, replacing any previous one.
func Subscribe(ctx context.Context, subs repository.PushSubscriptionRepository, userID primitive.ObjectID, endpoint string, keys models.PushKeys) error {
	return subs.Upsert(ctx, &models.PushSubscription{
		UserID:    userID,
		Endpoint:  endpoint,
		Keys:      keys,
		UpdatedAt: time.Now().UTC(),
	})
}
