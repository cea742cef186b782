// internal/repository/meetings.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"vc-assistant/internal/common/database"
	"vc-assistant/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MeetingRepository struct {
	db *sql.DB
}

const meetingColumns = `id, google_event_id, deal_id, title, description, start_time, end_time, attendees, meeting_type, created_at, updated_at`

func scanMeeting(row rowScanner) (*models.Meeting, error) {
	var (
		m           models.Meeting
		dealID      sql.NullString
		title       sql.NullString
		description sql.NullString
		meetingType sql.NullString
		attendees   pq.StringArray
	)
	if err := row.Scan(&m.ID, &m.GoogleEventID, &dealID, &title, &description, &m.StartTime, &m.EndTime,
		&attendees, &meetingType, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.DealID = stringPtr(dealID)
	m.Title = title.String
	m.Description = description.String
	m.Attendees = []string(attendees)
	if meetingType.Valid {
		mt := models.MeetingType(meetingType.String)
		m.MeetingType = &mt
	}
	return &m, nil
}

func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*models.Meeting, error) {
	m, err := scanMeeting(r.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *MeetingRepository) FindByEventID(ctx context.Context, eventID string) (*models.Meeting, error) {
	m, err := scanMeeting(r.db.QueryRowContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE google_event_id = $1`, eventID))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *MeetingRepository) Create(ctx context.Context, m *models.Meeting) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	var meetingType sql.NullString
	if m.MeetingType != nil {
		meetingType = sql.NullString{String: string(*m.MeetingType), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meetings (id, google_event_id, deal_id, title, description, start_time, end_time,
			attendees, meeting_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		m.ID, m.GoogleEventID, nullString(m.DealID), m.Title, m.Description, m.StartTime, m.EndTime,
		pq.Array(m.Attendees), meetingType, now)
	if database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Update rewrites the event fields and deal link; meeting_type is left as inferred on insert.
func (r *MeetingRepository) Update(ctx context.Context, m *models.Meeting) error {
	m.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE meetings SET title = $1, description = $2, start_time = $3, end_time = $4,
			attendees = $5, deal_id = $6, updated_at = $7
		WHERE id = $8`,
		m.Title, m.Description, m.StartTime, m.EndTime, pq.Array(m.Attendees), nullString(m.DealID),
		m.UpdatedAt, m.ID)
	return err
}
