package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestConversationMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConversationMetrics(reg)
	m.ObserveTurn("answered", 0.5)
	m.ObserveTurn("tool_answered", 1.2)
	m.ObserveToolCall("check_availability", "ok")
}

func TestNotificationMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNotificationMetrics(reg)
	m.ObserveSend("sms", "sent")
	m.ObserveSend("email", "failed")
}

func TestMetricsNilSafe(t *testing.T) {
	var cm *ConversationMetrics
	cm.ObserveTurn("answered", 0.1)
	cm.ObserveToolCall("check_availability", "ok")

	var nm *NotificationMetrics
	nm.ObserveSend("sms", "sent")
}
