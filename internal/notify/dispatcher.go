// Package notify delivers push notifications through APNs. Requests are
// handed to a background worker over a channel; the request path never
// blocks on delivery and shares no state with the worker.
package notify

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// TypeShowNotification is the only request type the dispatcher handles.
const TypeShowNotification = "SHOW_NOTIFICATION"

const requestBuffer = 256

// Payload is the notification content.
type Payload struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Icon  string                 `json:"icon,omitempty"`
	Tag   string                 `json:"tag,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Request asks the dispatcher to show one notification on one device.
type Request struct {
	Type        string  `json:"type"`
	DeviceToken string  `json:"-"`
	Payload     Payload `json:"payload"`
}

// Dispatcher is the background notification worker.
type Dispatcher struct {
	client   *apns2.Client
	topic    string
	requests chan Request
	done     chan struct{}
}

// New creates a dispatcher backed by an APNs client certificate.
func New(certPath, certPassword, topic string, production bool) (*Dispatcher, error) {
	cert, err := certificate.FromP12File(certPath, certPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return newDispatcher(client, topic), nil
}

// NewDisabled creates a dispatcher that accepts and drops every request.
// Used when push delivery is not configured.
func NewDisabled() *Dispatcher {
	return newDispatcher(nil, "")
}

func newDispatcher(client *apns2.Client, topic string) *Dispatcher {
	d := &Dispatcher{
		client:   client,
		topic:    topic,
		requests: make(chan Request, requestBuffer),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Push queues a notification request. It never blocks; when the worker is
// backed up the request is dropped with a warning.
func (d *Dispatcher) Push(req Request) {
	select {
	case d.requests <- req:
	default:
		log.Warn().Str("tag", req.Payload.Tag).Msg("Notification dropped, dispatcher backed up")
	}
}

// Close stops the worker after draining queued requests.
func (d *Dispatcher) Close() {
	close(d.requests)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for req := range d.requests {
		if req.Type != TypeShowNotification {
			log.Warn().Str("type", req.Type).Msg("Unknown notification request type")
			continue
		}
		if d.client == nil {
			log.Debug().Str("tag", req.Payload.Tag).Msg("Push delivery disabled, notification dropped")
			continue
		}
		d.deliver(req)
	}
}

func (d *Dispatcher) deliver(req Request) {
	body := payload.NewPayload().
		AlertTitle(req.Payload.Title).
		AlertBody(req.Payload.Body)
	for k, v := range req.Payload.Data {
		body = body.Custom(k, v)
	}

	notification := &apns2.Notification{
		DeviceToken: req.DeviceToken,
		Topic:       d.topic,
		Payload:     body,
	}

	res, err := d.client.Push(notification)
	if err != nil {
		log.Error().Err(err).Str("tag", req.Payload.Tag).Msg("Failed to deliver notification")
		return
	}
	if !res.Sent() {
		log.Error().
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Str("tag", req.Payload.Tag).
			Msg("Notification rejected by APNs")
	}
}
