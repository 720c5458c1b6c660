package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

// MeetingRepository handles meeting-assist records and their attendees.
type MeetingRepository struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

func (r *MeetingRepository) Get(ctx context.Context, id string) (*models.MeetingAssist, error) {
	var ma models.MeetingAssist
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ma).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting assist %s: %w", id, err)
	}
	return &ma, nil
}

// ListPending returns uncancelled meeting assists whose planning window has
// not closed yet.
func (r *MeetingRepository) ListPending(ctx context.Context, now time.Time) ([]models.MeetingAssist, error) {
	var assists []models.MeetingAssist
	if err := r.db.WithContext(ctx).
		Where("cancelled = ? AND window_end_date > ?", false, now).
		Order("window_start_date").
		Find(&assists).Error; err != nil {
		return nil, fmt.Errorf("list pending meeting assists: %w", err)
	}
	return assists, nil
}

// ListAttendees returns all attendees registered for a meeting.
func (r *MeetingRepository) ListAttendees(ctx context.Context, meetingID string) ([]models.Attendee, error) {
	var attendees []models.Attendee
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).
		Order("id").
		Find(&attendees).Error; err != nil {
		return nil, fmt.Errorf("list attendees for meeting %s: %w", meetingID, err)
	}
	return attendees, nil
}

// ListAttendeeEventsGivenDates returns an external attendee's busy events
// intersecting the window.
func (r *MeetingRepository) ListAttendeeEventsGivenDates(ctx context.Context, attendeeID string, windowStart, windowEnd time.Time) ([]models.AttendeeEvent, error) {
	var events []models.AttendeeEvent
	if err := r.db.WithContext(ctx).
		Where("attendee_id = ? AND start_date < ? AND end_date > ?",
			attendeeID, windowEnd, windowStart).
		Order("start_date").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events for attendee %s: %w", attendeeID, err)
	}
	return events, nil
}

func (r *MeetingRepository) Upsert(ctx context.Context, ma *models.MeetingAssist) error {
	if err := r.db.WithContext(ctx).Save(ma).Error; err != nil {
		return fmt.Errorf("upsert meeting assist %s: %w", ma.ID, err)
	}
	return nil
}
