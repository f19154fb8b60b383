package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"go-hiring-pipeline/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type securityDashboardRepository struct {
	db *pgxpool.Pool
}

// NewSecurityDashboardRepository reads the security_events table written by
// the security logger.
func NewSecurityDashboardRepository(db *pgxpool.Pool) domain.SecurityDashboardRepository {
	return &securityDashboardRepository{db: db}
}

// severityRank orders severities so MAX() picks the worst one.
const severityRank = `CASE severity
	WHEN 'CRITICAL' THEN 5 WHEN 'HIGH' THEN 4 WHEN 'WARN' THEN 3
	WHEN 'MEDIUM' THEN 2 ELSE 1 END`

func (r *securityDashboardRepository) GetStats(ctx context.Context) (*domain.SecurityDashboardStats, error) {
	stats := &domain.SecurityDashboardStats{
		EventsBySeverity: make(map[string]int64),
		EventsByType:     make(map[string]int64),
		TopIPs:           []domain.IPSummary{},
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM security_events`).Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("count security events: %w", err)
	}

	if err := r.countGrouped(ctx, "severity", stats.EventsBySeverity); err != nil {
		return nil, err
	}
	if err := r.countGrouped(ctx, "event_type", stats.EventsByType); err != nil {
		return nil, err
	}

	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE event_type = 'upload_rejected'),
			COUNT(*) FILTER (WHERE event_type = 'malware_detected'),
			COUNT(*) FILTER (WHERE event_type = 'rate_limit_triggered'),
			COUNT(*) FILTER (WHERE event_type = 'permission_denied')
		FROM security_events
		WHERE created_at > NOW() - INTERVAL '24 hours'`,
	).Scan(&stats.UploadsRejected24h, &stats.MalwareDetected24h, &stats.RateLimited24h, &stats.PermissionDenied24h)
	if err != nil {
		return nil, fmt.Errorf("count recent security events: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT ip_address, COUNT(*), MAX(created_at), MAX(`+severityRank+`)
		FROM security_events
		WHERE ip_address IS NOT NULL AND ip_address <> '' AND created_at > NOW() - INTERVAL '24 hours'
		GROUP BY ip_address
		ORDER BY COUNT(*) DESC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("query top ips: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ip domain.IPSummary
		var rank int
		if err := rows.Scan(&ip.IP, &ip.EventCount, &ip.LastSeen, &rank); err != nil {
			return nil, fmt.Errorf("scan top ip: %w", err)
		}
		ip.HighestSeverity = severityName(rank)
		stats.TopIPs = append(stats.TopIPs, ip)
	}
	return stats, rows.Err()
}

func (r *securityDashboardRepository) countGrouped(ctx context.Context, column string, into map[string]int64) error {
	rows, err := r.db.Query(ctx, `
		SELECT COALESCE(`+column+`, 'UNKNOWN'), COUNT(*)
		FROM security_events
		WHERE created_at > NOW() - INTERVAL '7 days'
		GROUP BY 1`)
	if err != nil {
		return fmt.Errorf("group security events by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

func (r *securityDashboardRepository) ListEvents(ctx context.Context, filter domain.SecurityEventFilter) ([]domain.SecurityEventView, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		where += fmt.Sprintf(clause, len(args))
	}

	if filter.EventType != "" {
		add(" AND event_type = $%d", filter.EventType)
	}
	if filter.Severity != "" {
		add(" AND severity = $%d", filter.Severity)
	}
	if filter.IP != "" {
		add(" AND ip_address LIKE $%d", filter.IP+"%")
	}
	if filter.Since != nil {
		add(" AND created_at >= $%d", *filter.Since)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM security_events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count security events: %w", err)
	}

	query := `
		SELECT id, created_at, event_type, severity,
		       COALESCE(subject_type, ''), COALESCE(subject_value, ''),
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''),
		       COALESCE(request_id, ''), COALESCE(details, 'null'::jsonb)
		FROM security_events` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query security events: %w", err)
	}
	defer rows.Close()

	events := []domain.SecurityEventView{}
	for rows.Next() {
		var e domain.SecurityEventView
		var details []byte
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.EventType, &e.Severity,
			&e.SubjectType, &e.SubjectValue, &e.IP, &e.UserAgent,
			&e.RequestID, &details,
		); err != nil {
			return nil, 0, fmt.Errorf("scan security event: %w", err)
		}
		if len(details) > 0 {
			// malformed details are dropped, the event itself is still useful
			_ = json.Unmarshal(details, &e.Details)
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func severityName(rank int) string {
	switch rank {
	case 5:
		return "CRITICAL"
	case 4:
		return "HIGH"
	case 3:
		return "WARN"
	case 2:
		return "MEDIUM"
	default:
		return "INFO"
	}
}
