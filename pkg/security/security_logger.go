package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventInvalidToken       EventType = "invalid_token"
	EventPermissionDenied   EventType = "permission_denied"
	EventDeactivatedAccess  EventType = "deactivated_access"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUploadRejected     EventType = "upload_rejected"
	EventMalwareDetected    EventType = "malware_detected"
	EventDataExport         EventType = "data_export"
	EventServerError        EventType = "server_error"
)

// Severity is derived from the event type, never supplied by callers.
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityMEDIUM   Severity = "MEDIUM"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

var eventSeverity = map[EventType]Severity{
	EventDataExport:         SeverityMEDIUM,
	EventServerError:        SeverityMEDIUM,
	EventInvalidToken:       SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventUploadRejected:     SeverityWARN,
	EventUnauthorizedAccess: SeverityHIGH,
	EventPermissionDenied:   SeverityHIGH,
	EventDeactivatedAccess:  SeverityHIGH,
	EventMalwareDetected:    SeverityCRITICAL,
}

// GetSeverity defaults to MEDIUM for unmapped events.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := eventSeverity[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

func zapLevel(s Severity) zapcore.Level {
	switch s {
	case SeverityINFO, SeverityMEDIUM:
		return zapcore.InfoLevel
	case SeverityWARN:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time      `json:"timestamp"`
	Service      string         `json:"service"`
	Environment  string         `json:"env"`
	Severity     Severity       `json:"severity"`
	Event        EventType      `json:"event"`
	SubjectType  string         `json:"subject_type,omitempty"`  // "email", "ip", "user_id"
	SubjectValue string         `json:"subject_value,omitempty"` // masked or hashed
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// SecurityLogger writes security events through zap and optionally
// persists them.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	persistFunc func(ctx context.Context, event SecurityEvent) error
}

var defaultLogger *SecurityLogger

// InitSecurityLogger builds the process-wide security logger.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	defaultLogger = NewSecurityLogger(logger, serviceName, environment)
	return defaultLogger
}

// NewSecurityLogger wraps an existing zap logger. Tests pass zap.NewNop().
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// DefaultLogger returns the process-wide logger, creating one if needed.
func DefaultLogger() *SecurityLogger {
	if defaultLogger == nil {
		return InitSecurityLogger("hiring-pipeline", getEnvironment())
	}
	return defaultLogger
}

// SetPersistFunc enables asynchronous persistence of every event.
func (sl *SecurityLogger) SetPersistFunc(f func(ctx context.Context, event SecurityEvent) error) {
	sl.persistFunc = f
}

func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment
	event.Severity = GetSeverity(event.Event)

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(event.Severity)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(zapLevel(event.Severity), string(event.Event), fields...)

	if sl.persistFunc != nil {
		go func(e SecurityEvent) {
			// the request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := sl.persistFunc(ctx, e); err != nil {
				sl.zapLogger.Error("Failed to persist security event", zap.Error(err))
			}
		}(event)
	}
}

// RequestMeta is the request information attached to every event.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
	Path      string
}

func (sl *SecurityLogger) LogUnauthorized(ctx context.Context, meta RequestMeta, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventUnauthorizedAccess,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
		Details:   map[string]any{"reason": reason, "path": meta.Path},
	})
}

func (sl *SecurityLogger) LogInvalidToken(ctx context.Context, meta RequestMeta, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventInvalidToken,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
		Details:   map[string]any{"reason": reason, "path": meta.Path},
	})
}

func (sl *SecurityLogger) LogDeactivatedAccess(ctx context.Context, meta RequestMeta, email string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventDeactivatedAccess,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           meta.IP,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
		Details:      map[string]any{"path": meta.Path},
	})
}

func (sl *SecurityLogger) LogPermissionDenied(ctx context.Context, meta RequestMeta, userID, role string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventPermissionDenied,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		IP:           meta.IP,
		RequestID:    meta.RequestID,
		Details:      map[string]any{"role": role, "path": meta.Path},
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, meta RequestMeta, retryAfter int) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: meta.IP,
		IP:           meta.IP,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
		Details:      map[string]any{"endpoint": meta.Path, "retry_after": retryAfter},
	})
}

func (sl *SecurityLogger) LogUploadRejected(ctx context.Context, meta RequestMeta, fileName, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventUploadRejected,
		IP:        meta.IP,
		RequestID: meta.RequestID,
		Details:   map[string]any{"file": fileName, "reason": reason},
	})
}

func (sl *SecurityLogger) LogMalwareDetected(ctx context.Context, meta RequestMeta, fileName, threat string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventMalwareDetected,
		IP:        meta.IP,
		RequestID: meta.RequestID,
		Details:   map[string]any{"file": fileName, "threat": threat},
	})
}

func (sl *SecurityLogger) LogDataExport(ctx context.Context, meta RequestMeta, userID, format string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventDataExport,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		IP:           meta.IP,
		RequestID:    meta.RequestID,
		Details:      map[string]any{"format": format},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue returns the first 16 hex chars of the SHA-256 of value.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
