package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePusher struct {
	res  *apns2.Response
	err  error
	sent []*apns2.Notification
}

func (f *fakePusher) PushWithContext(_ apns2.Context, n *apns2.Notification) (*apns2.Response, error) {
	f.sent = append(f.sent, n)
	return f.res, f.err
}

func TestAPNSNotifier_Push(t *testing.T) {
	pusher := &fakePusher{res: &apns2.Response{StatusCode: http.StatusOK}}
	notifier := &APNSNotifier{client: pusher, topic: "com.example.othershorts"}

	require.NoError(t, notifier.Push(context.Background(), "abc", "New rating", "Someone rated"))
	require.Len(t, pusher.sent, 1)

	n := pusher.sent[0]
	assert.Equal(t, "abc", n.DeviceToken)
	assert.Equal(t, "com.example.othershorts", n.Topic)

	raw, err := json.Marshal(n.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"aps":{"alert":{"title":"New rating","body":"Someone rated"},"sound":"default"}}`, string(raw))
}

func TestAPNSNotifier_Push_Rejected(t *testing.T) {
	pusher := &fakePusher{res: &apns2.Response{StatusCode: http.StatusBadRequest, Reason: apns2.ReasonBadDeviceToken}}
	notifier := &APNSNotifier{client: pusher, topic: "t"}

	err := notifier.Push(context.Background(), "abc", "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), apns2.ReasonBadDeviceToken)
}

func TestAPNSNotifier_Push_TransportError(t *testing.T) {
	notifier := &APNSNotifier{client: &fakePusher{err: errors.New("dial tcp: timeout")}, topic: "t"}
	assert.Error(t, notifier.Push(context.Background(), "abc", "t", "b"))
}

func TestNewAPNSNotifier_MissingCertificate(t *testing.T) {
	_, err := NewAPNSNotifier("/nonexistent/cert.p12", "", "t", false)
	assert.Error(t, err)
}
