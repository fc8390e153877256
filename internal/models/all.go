package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&UserIdentity{},
		&Course{},
		&Assignment{},
		&Submission{},
		&Enrollment{},
		&AttendanceRecord{},
		&TeacherAssignment{},
		&ActivityLog{},
	}
}
