package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// CreateWebhookSubscription inserts sub, which must already have an ID
// (a UUID) assigned by the caller.
func (s *Store) CreateWebhookSubscription(sub WebhookSubscription) error {
	eventTypesJSON, err := json.Marshal(sub.EventTypes)
	if err != nil {
		return fmt.Errorf("marshal event types: %w", err)
	}

	active := 1
	if !sub.Active {
		active = 0
	}
	var description any
	if sub.Description != "" {
		description = sub.Description
	}

	return s.withWriteTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO webhook_subscriptions (id, project_id, url, secret, event_types, active, description) VALUES (?, ?, ?, ?, ?, ?, ?)",
			sub.ID, nullableProjectID(sub.ProjectID), sub.URL, sub.Secret, string(eventTypesJSON), active, description,
		)
		return err
	})
}

// DeleteWebhookSubscription removes a subscription by id, cascading its
// delivery log.
func (s *Store) DeleteWebhookSubscription(id string) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM webhook_subscriptions WHERE id = ?", id)
		return err
	})
}

func nullableProjectID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func (s *Store) scanSubscription(row interface{ Scan(...any) error }) (WebhookSubscription, error) {
	var sub WebhookSubscription
	var projectID sql.NullInt64
	var eventTypesJSON, createdAt string
	var active int
	var description sql.NullString

	if err := row.Scan(&sub.ID, &projectID, &sub.URL, &sub.Secret, &eventTypesJSON, &active, &description, &createdAt); err != nil {
		return WebhookSubscription{}, err
	}
	if projectID.Valid {
		v := projectID.Int64
		sub.ProjectID = &v
	}
	if err := json.Unmarshal([]byte(eventTypesJSON), &sub.EventTypes); err != nil {
		return WebhookSubscription{}, fmt.Errorf("unmarshal event types: %w", err)
	}
	sub.Active = active != 0
	sub.Description = description.String
	var err error
	if sub.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return WebhookSubscription{}, fmt.Errorf("parse created_at: %w", err)
	}
	return sub, nil
}

const webhookSubscriptionColumns = "id, project_id, url, secret, event_types, active, description, created_at"

// ListWebhookSubscriptions returns every subscription, project-scoped and
// global alike, oldest first.
func (s *Store) ListWebhookSubscriptions() ([]WebhookSubscription, error) {
	rows, err := s.db.Query("SELECT " + webhookSubscriptionColumns + " FROM webhook_subscriptions ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []WebhookSubscription
	for rows.Next() {
		sub, err := s.scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// MatchingSubscriptions returns subscriptions that should receive an event
// of eventType for project: those whose event_types contains eventType or
// "*", and whose project_id is NULL or matches the project's id.
func (s *Store) MatchingSubscriptions(eventType string, projectID *int64) ([]WebhookSubscription, error) {
	all, err := s.ListWebhookSubscriptions()
	if err != nil {
		return nil, err
	}

	var matched []WebhookSubscription
	for _, sub := range all {
		if !sub.Active {
			continue
		}
		if sub.ProjectID != nil && (projectID == nil || *sub.ProjectID != *projectID) {
			continue
		}
		for _, et := range sub.EventTypes {
			if et == eventType || et == "*" {
				matched = append(matched, sub)
				break
			}
		}
	}
	return matched, nil
}

// CountSubscriptionsForProject returns the number of subscriptions scoped
// to projectID, for enforcing the per-project cap.
func (s *Store) CountSubscriptionsForProject(projectID int64) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM webhook_subscriptions WHERE project_id = ?", projectID).Scan(&n)
	return n, err
}

// CountSubscriptionsGlobal returns the total number of subscriptions, for
// enforcing the global cap.
func (s *Store) CountSubscriptionsGlobal() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM webhook_subscriptions").Scan(&n)
	return n, err
}

// ListWebhookDeliveries returns the most recent delivery attempts for a
// subscription, newest first, capped at limit.
func (s *Store) ListWebhookDeliveries(subscriptionID string, limit int) ([]WebhookLog, error) {
	rows, err := s.db.Query(
		`SELECT id, subscription_id, event_id, event_type, payload, status_code, success, error_message, delivered_at
		 FROM webhook_logs WHERE subscription_id = ? ORDER BY delivered_at DESC LIMIT ?`,
		subscriptionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []WebhookLog
	for rows.Next() {
		var l WebhookLog
		var statusCode sql.NullInt64
		var errMsg sql.NullString
		var deliveredAt string
		success := 0
		if err := rows.Scan(&l.ID, &l.SubscriptionID, &l.EventID, &l.EventType, &l.Payload, &statusCode, &success, &errMsg, &deliveredAt); err != nil {
			return nil, err
		}
		if statusCode.Valid {
			v := int(statusCode.Int64)
			l.StatusCode = &v
		}
		l.Success = success != 0
		l.ErrorMessage = errMsg.String
		var err error
		if l.DeliveredAt, err = parseSQLiteTime(deliveredAt); err != nil {
			return nil, fmt.Errorf("parse delivered_at: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// LogWebhookDelivery appends one delivery attempt record.
func (s *Store) LogWebhookDelivery(log WebhookLog) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		var statusCode any
		if log.StatusCode != nil {
			statusCode = *log.StatusCode
		}
		var errMsg any
		if log.ErrorMessage != "" {
			errMsg = log.ErrorMessage
		}
		success := 0
		if log.Success {
			success = 1
		}
		_, err := tx.Exec(
			`INSERT INTO webhook_logs (subscription_id, event_id, event_type, payload, status_code, success, error_message)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			log.SubscriptionID, log.EventID, log.EventType, log.Payload, statusCode, success, errMsg,
		)
		return err
	})
}
