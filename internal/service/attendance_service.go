package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// AttendanceService records per-session attendance marks.
type AttendanceService interface {
	Record(ctx context.Context, courseID string, req dto.AttendanceRecordRequest, actor ActivityActor) (dto.AttendanceRecordResponse, error)
}

type attendanceService struct {
	records    repository.AttendanceRepository
	courses    repository.CourseRepository
	identities IdentityResolver
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAttendanceService constructs the attendance write service.
func NewAttendanceService(
	records repository.AttendanceRepository,
	courses repository.CourseRepository,
	identities IdentityResolver,
	validator *validator.Validate,
	logger zerolog.Logger,
) AttendanceService {
	return &attendanceService{
		records:    records,
		courses:    courses,
		identities: identities,
		validator:  validator,
		logger:     logger.With().Str("component", "attendance_service").Logger(),
		now:        time.Now,
	}
}

func (s *attendanceService) Record(ctx context.Context, courseID string, req dto.AttendanceRecordRequest, actor ActivityActor) (dto.AttendanceRecordResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceRecordResponse{}, err
	}

	status := models.AttendanceStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return dto.AttendanceRecordResponse{}, invalid("status", req.Status, "must be one of present, absent, late, excused")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return dto.AttendanceRecordResponse{}, invalid("date", req.Date, "must be formatted as YYYY-MM-DD")
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceRecordResponse{}, notFound("course", courseID)
		}
		return dto.AttendanceRecordResponse{}, err
	}

	studentKey := strings.TrimSpace(req.StudentKey)
	profileKey := s.identities.Resolve(ctx, studentKey).ProfileKey(studentKey)
	sessionID := strings.TrimSpace(req.SessionID)
	now := s.now().UTC()
	record := models.AttendanceRecord{
		ID:         attendanceRecordID(courseID, sessionID, req.Date, profileKey),
		CourseID:   courseID,
		SessionID:  sessionID,
		Date:       date,
		StudentKey: profileKey,
		Status:     status,
		MarkedBy:   actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.records.Upsert(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("failed to record attendance")
		return dto.AttendanceRecordResponse{}, err
	}

	return dto.NewAttendanceRecordResponse(record), nil
}

// attendanceRecordID derives a stable id from the record's natural key so a
// re-mark reports the id that was stored first.
func attendanceRecordID(courseID, sessionID, date, studentKey string) string {
	name := strings.Join([]string{courseID, sessionID, date, studentKey}, "|")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
