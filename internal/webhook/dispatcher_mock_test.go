package webhook

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"vibemcp/internal/vibeerr"
	"vibemcp/internal/webhook/mocks"
)

// These exercise storage failure paths that fakeStore's happy-path
// in-memory behavior can't easily produce, using a generated mock
// instead of hand-rolled failure flags.

func TestSubscribe_WrapsStoreErrorOnPersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().CountSubscriptionsGlobal().Return(0, nil)
	store.EXPECT().CreateWebhookSubscription(gomock.Any()).Return(errors.New("disk full"))

	d := New(store, true)
	defer d.Shutdown(0)

	_, err := d.Subscribe(context.Background(), "https://example.com/hook", "0123456789abcdef0123456789abcdef", []string{"task.created"}, nil, "")
	if err == nil {
		t.Fatal("expected an error")
	}
	var verr *vibeerr.Error
	if !errors.As(err, &verr) || verr.Kind != vibeerr.KindTransient {
		t.Errorf("err = %v, want a wrapped KindTransient error", err)
	}
}

func TestSubscribe_RejectsWhenProjectCountLookupFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	projectID := int64(7)
	store.EXPECT().CountSubscriptionsForProject(projectID).Return(0, errors.New("locked"))

	d := New(store, true)
	defer d.Shutdown(0)

	_, err := d.Subscribe(context.Background(), "https://example.com/hook", "0123456789abcdef0123456789abcdef", []string{"task.created"}, &projectID, "")
	if err == nil {
		t.Fatal("expected an error")
	}
	var verr *vibeerr.Error
	if !errors.As(err, &verr) || verr.Kind != vibeerr.KindTransient {
		t.Errorf("err = %v, want a wrapped KindTransient error", err)
	}
}

func TestDeliveryHistory_PropagatesStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().ListWebhookDeliveries("sub-1", 10).Return(nil, errors.New("no such table"))

	d := New(store, true)
	defer d.Shutdown(0)

	_, err := d.DeliveryHistory(context.Background(), "sub-1", 10)
	if err == nil {
		t.Fatal("expected an error")
	}
}
