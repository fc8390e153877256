package dto

// WeightUsageResponse reports how much of a course's weight budget is allocated.
type WeightUsageResponse struct {
	CourseID  string  `json:"course_id"`
	Mode      string  `json:"mode"`
	Total     float64 `json:"total"`
	Remaining float64 `json:"remaining"`
}

// WeightValidationRequest asks whether a weight fits in the course budget.
type WeightValidationRequest struct {
	ProposedWeight        *float64 `json:"proposed_weight" validate:"required,gte=0"`
	ExcludingAssignmentID string   `json:"excluding_assignment_id" validate:"omitempty,max=64"`
}

// WeightValidationResponse is the outcome of a budget check.
type WeightValidationResponse struct {
	CourseID       string  `json:"course_id"`
	ProposedWeight float64 `json:"proposed_weight"`
	Valid          bool    `json:"valid"`
	ExceededBy     float64 `json:"exceeded_by,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// OverallGradeResponse is a student's aggregated percentage for one course.
type OverallGradeResponse struct {
	CourseID       string  `json:"course_id"`
	StudentKey     string  `json:"student_key"`
	Mode           string  `json:"mode"`
	Percentage     float64 `json:"percentage"`
	SubmittedCount int     `json:"submitted_count"`
	GradedCount    int     `json:"graded_count"`
	PendingCount   int     `json:"pending_count"`
}

// GradingModeRequest switches a course's scoring mode.
type GradingModeRequest struct {
	Mode            string             `json:"mode" validate:"required,oneof=per-item category"`
	CategoryWeights map[string]float64 `json:"category_weights" validate:"omitempty,dive,keys,oneof=homework quiz lab project midterm final participation other,endkeys,gte=0"`
	WeightUnit      *string            `json:"weight_unit" validate:"omitempty,oneof=auto fraction percent"`
}

// GradingStateResponse describes a course's grading scheme.
type GradingStateResponse struct {
	CourseID        string             `json:"course_id"`
	Mode            string             `json:"mode"`
	WeightUnit      string             `json:"weight_unit"`
	CategoryWeights map[string]float64 `json:"category_weights"`
	Finalized       bool               `json:"finalized"`
}

// CourseStanding is one course line of a student summary.
type CourseStanding struct {
	CourseID             string               `json:"course_id"`
	EnrollmentStatus     string               `json:"enrollment_status"`
	Grade                OverallGradeResponse `json:"grade"`
	AttendancePercentage int                  `json:"attendance_percentage"`
}

// StudentSummaryResponse aggregates a student's standing across enrolled courses.
type StudentSummaryResponse struct {
	StudentKey        string           `json:"student_key"`
	ProfileID         string           `json:"profile_id"`
	Courses           []CourseStanding `json:"courses"`
	AveragePercentage float64          `json:"average_percentage"`
	SkippedCourses    []string         `json:"skipped_courses"`
}

// IdentityResponse exposes a resolved identity to administrators.
type IdentityResponse struct {
	Key       string `json:"key"`
	Resolved  bool   `json:"resolved"`
	ProfileID string `json:"profile_id,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
}
