package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// CountsAsAttended reports whether the status contributes to the attendance ratio numerator.
func (s AttendanceStatus) CountsAsAttended() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// AttendanceRecord is one student's mark for one course session.
type AttendanceRecord struct {
	ID         string           `gorm:"primaryKey;size:64" json:"id"`
	CourseID   string           `gorm:"size:64;not null;uniqueIndex:idx_attendance_session" json:"course_id"`
	SessionID  string           `gorm:"size:64;not null;default:'';uniqueIndex:idx_attendance_session" json:"session_id"`
	Date       time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_session" json:"date"`
	StudentKey string           `gorm:"size:128;not null;uniqueIndex:idx_attendance_session;index" json:"student_key"`
	Status     AttendanceStatus `gorm:"size:16;not null" json:"status"`
	MarkedBy   string           `gorm:"size:64" json:"marked_by"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
