package notify

// Log messages
const (
	LogMsgNotificationDelivered = "Notification delivered"
	LogMsgNotificationFailed    = "Notification delivery failed"
)
