// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config controls where each event category is written.
// Values: "all" (MongoDB + zap), "db", "log", "off".
type Config struct {
	Auth  string
	Admin string
}

// Logger records audit events to MongoDB and structured logs. A nil *Logger
// is a no-op so tests can skip auditing entirely.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// ClientIP extracts the client IP, preferring reverse-proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.SessionID != nil {
		fields = append(fields, zap.String("session_id", event.SessionID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an event according to its category's configuration. Storage
// failures are logged and swallowed; auditing never breaks the request.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := "all"
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Insert(ctx, event); err != nil {
			l.zapLog.Warn("audit event store failed",
				zap.String("event_type", event.EventType),
				zap.Error(err))
		}
	}
}

// Auth records an authentication event for the given user.
func (l *Logger) Auth(ctx context.Context, r *http.Request, eventType string, userID primitive.ObjectID, success bool, failureReason string) {
	if l == nil {
		return
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		Success:       success,
		ActorID:       &userID,
		UserID:        &userID,
		IP:            ClientIP(r),
		FailureReason: failureReason,
	})
}

// Admin records an administrative action inside a legislative session.
func (l *Logger) Admin(ctx context.Context, r *http.Request, eventType string, actorID, targetUserID, sessionID primitive.ObjectID, details map[string]string) {
	if l == nil {
		return
	}
	event := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		Success:   true,
		ActorID:   &actorID,
		SessionID: &sessionID,
		IP:        ClientIP(r),
		Details:   details,
	}
	if !targetUserID.IsZero() {
		event.UserID = &targetUserID
	}
	l.Log(ctx, event)
}
