// Package webhook implements vibeMCP's outgoing webhook subscriptions:
// SSRF-safe registration, HMAC-signed delivery over a bounded worker
// pool, per-attempt logging, and graceful shutdown.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"vibemcp/internal/contextutil"
	"vibemcp/internal/storage"
	"vibemcp/internal/vibeerr"
)

const (
	maxSubscriptionsPerProject = 50
	maxSubscriptionsGlobal     = 200
	deliveryTimeout            = 10 * time.Second
	workerPoolSize             = 10
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks vibemcp/internal/webhook Store

// Store is the subset of storage.Store the dispatcher depends on.
type Store interface {
	CreateWebhookSubscription(sub storage.WebhookSubscription) error
	DeleteWebhookSubscription(id string) error
	ListWebhookSubscriptions() ([]storage.WebhookSubscription, error)
	MatchingSubscriptions(eventType string, projectID *int64) ([]storage.WebhookSubscription, error)
	CountSubscriptionsForProject(projectID int64) (int, error)
	CountSubscriptionsGlobal() (int, error)
	LogWebhookDelivery(log storage.WebhookLog) error
	ListWebhookDeliveries(subscriptionID string, limit int) ([]storage.WebhookLog, error)
	GetProject(name string) (storage.Project, error)
}

// Dispatcher owns webhook subscriptions and delivers events against
// them through a bounded pool of workers. The zero value is not usable;
// construct with New.
type Dispatcher struct {
	store   Store
	client  *http.Client
	enabled bool

	tasks chan deliveryTask
	wg    sync.WaitGroup

	mu       sync.Mutex
	draining bool
}

type deliveryTask struct {
	ctx context.Context
	sub storage.WebhookSubscription
	env envelope
}

// envelope is the JSON body sent to every subscriber.
type envelope struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Project   *string        `json:"project"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// New returns a Dispatcher backed by store. When enabled is false,
// FireEvent is a permanent no-op (webhooks globally disabled). Workers
// are started immediately; call Shutdown to drain them.
func New(store Store, enabled bool) *Dispatcher {
	d := &Dispatcher{
		store:   store,
		client:  &http.Client{Timeout: deliveryTimeout},
		enabled: enabled,
		tasks:   make(chan deliveryTask, workerPoolSize*4),
	}
	for i := 0; i < workerPoolSize; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// ResolveProjectID looks up name in the project table and returns its id.
// An empty name resolves to nil (a global, unscoped subscription).
func (d *Dispatcher) ResolveProjectID(ctx context.Context, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	p, err := d.store.GetProject(name)
	if err != nil {
		return nil, vibeerr.Wrap(vibeerr.KindNotFound, "look up project "+name, err)
	}
	return &p.ID, nil
}

// Subscribe validates and persists a new subscription, enforcing URL
// safety, the secret length policy, the event type whitelist, and the
// per-project/global subscription caps. A new subscription is always
// created active; description is stored verbatim and may be empty.
func (d *Dispatcher) Subscribe(ctx context.Context, url, secret string, eventTypes []string, projectID *int64, description string) (string, error) {
	if err := validateURL(url); err != nil {
		return "", err
	}
	if err := validateSecret(secret); err != nil {
		return "", err
	}
	if err := validateEventTypes(eventTypes); err != nil {
		return "", err
	}

	if projectID != nil {
		count, err := d.store.CountSubscriptionsForProject(*projectID)
		if err != nil {
			return "", vibeerr.Wrap(vibeerr.KindTransient, "count project subscriptions", err)
		}
		if count >= maxSubscriptionsPerProject {
			return "", vibeerr.New(vibeerr.KindLimitExceeded, "per-project webhook subscription limit reached")
		}
	}
	globalCount, err := d.store.CountSubscriptionsGlobal()
	if err != nil {
		return "", vibeerr.Wrap(vibeerr.KindTransient, "count global subscriptions", err)
	}
	if globalCount >= maxSubscriptionsGlobal {
		return "", vibeerr.New(vibeerr.KindLimitExceeded, "global webhook subscription limit reached")
	}

	id := uuid.NewString()
	sub := storage.WebhookSubscription{
		ID:          id,
		ProjectID:   projectID,
		URL:         url,
		Secret:      secret,
		EventTypes:  eventTypes,
		Active:      true,
		Description: description,
	}
	if err := d.store.CreateWebhookSubscription(sub); err != nil {
		return "", vibeerr.Wrap(vibeerr.KindTransient, "persist subscription", err)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "registered webhook subscription", "id", id, "url", url)
	return id, nil
}

// Unsubscribe removes a subscription by id.
func (d *Dispatcher) Unsubscribe(ctx context.Context, id string) error {
	if err := d.store.DeleteWebhookSubscription(id); err != nil {
		return vibeerr.Wrap(vibeerr.KindTransient, "delete subscription", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "removed webhook subscription", "id", id)
	return nil
}

// ListSubscriptions returns every registered subscription.
func (d *Dispatcher) ListSubscriptions(ctx context.Context) ([]storage.WebhookSubscription, error) {
	subs, err := d.store.ListWebhookSubscriptions()
	if err != nil {
		return nil, vibeerr.Wrap(vibeerr.KindTransient, "list subscriptions", err)
	}
	return subs, nil
}

// DeliveryHistory returns the most recent delivery attempts for a
// subscription, newest first, capped at limit.
func (d *Dispatcher) DeliveryHistory(ctx context.Context, subscriptionID string, limit int) ([]storage.WebhookLog, error) {
	if limit <= 0 {
		limit = 20
	}
	logs, err := d.store.ListWebhookDeliveries(subscriptionID, limit)
	if err != nil {
		return nil, vibeerr.Wrap(vibeerr.KindTransient, "list delivery history", err)
	}
	return logs, nil
}

// FireEvent looks up subscriptions matching eventType and project and
// enqueues one delivery per match. It returns immediately; delivery
// outcomes are logged, never surfaced to the caller. project is nil for
// cross-project events such as index.reindexed.
func (d *Dispatcher) FireEvent(ctx context.Context, eventType string, project *string, data map[string]any) {
	logger := contextutil.LoggerFromContext(ctx)

	if !d.enabled || d.isDraining() {
		return
	}

	// Subscriptions are scoped by project id; FireEvent callers pass the
	// project name, so resolve it here. A lookup failure (the project row
	// does not exist yet) still allows global (project-less) subscriptions
	// to match - it never blocks the fire call.
	var projectID *int64
	if project != nil {
		if p, err := d.store.GetProject(*project); err == nil {
			projectID = &p.ID
		}
	}

	subs, err := d.store.MatchingSubscriptions(eventType, projectID)
	if err != nil {
		logger.WarnContext(ctx, "failed to look up webhook subscriptions", "event_type", eventType, "error", err)
		return
	}

	env := envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Project:   project,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}

	for _, sub := range subs {
		if !d.enqueue(deliveryTask{ctx: ctx, sub: sub, env: env}) {
			logger.WarnContext(ctx, "webhook delivery queue full or draining, dropping delivery", "subscription_id", sub.ID, "event_type", eventType)
		}
	}
}

// enqueue sends task on d.tasks, reporting false if the queue is full or
// the dispatcher is draining. The draining check and the send happen
// under the same lock Shutdown uses to flip draining, so there is never
// a window where a send can race the channel close.
func (d *Dispatcher) enqueue(task deliveryTask) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.draining {
		return false
	}
	select {
	case d.tasks <- task:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) isDraining() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draining
}

// Shutdown stops accepting new deliveries and waits up to grace for
// in-flight deliveries to finish. It is safe to call concurrently with
// FireEvent: the draining flag and every enqueue share d.mu, so by the
// time close(d.tasks) runs, no send on the channel can still be in
// flight and none will start after.
func (d *Dispatcher) Shutdown(grace time.Duration) {
	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()

	close(d.tasks)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.tasks {
		d.deliver(task)
	}
}

func (d *Dispatcher) deliver(task deliveryTask) {
	logger := contextutil.LoggerFromContext(task.ctx)

	body, err := json.Marshal(task.env)
	if err != nil {
		logger.ErrorContext(task.ctx, "failed to marshal webhook payload", "error", err)
		return
	}

	signature := sign(task.sub.Secret, body)

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, task.sub.URL, bytes.NewReader(body))
	if err != nil {
		d.logOutcome(task, nil, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Vibe-Event", task.env.EventType)
	req.Header.Set("X-Vibe-Event-ID", task.env.EventID)
	req.Header.Set("X-Vibe-Signature", signature)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logOutcome(task, nil, err)
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	d.logOutcome(task, &resp.StatusCode, nil)
}

func (d *Dispatcher) logOutcome(task deliveryTask, statusCode *int, deliveryErr error) {
	logger := contextutil.LoggerFromContext(task.ctx)

	success := deliveryErr == nil && statusCode != nil && *statusCode >= 200 && *statusCode < 300
	var errMsg string
	if deliveryErr != nil {
		errMsg = deliveryErr.Error()
	}

	if err := d.store.LogWebhookDelivery(storage.WebhookLog{
		SubscriptionID: task.sub.ID,
		EventType:      task.env.EventType,
		EventID:        task.env.EventID,
		Payload:        mustJSON(task.env),
		StatusCode:     statusCode,
		Success:        success,
		ErrorMessage:   errMsg,
	}); err != nil {
		logger.WarnContext(task.ctx, "failed to log webhook delivery", "subscription_id", task.sub.ID, "error", err)
	}

	if !success {
		logger.WarnContext(task.ctx, "webhook delivery failed", "subscription_id", task.sub.ID, "event_type", task.env.EventType, "error", deliveryErr)
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// sign computes the X-Vibe-Signature header value for body signed with
// secret.
func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
