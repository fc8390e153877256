package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// GradeHandler serves computed grades, attendance and student summaries.
type GradeHandler struct {
	grades     service.GradeAggregator
	attendance service.AttendanceAggregator
	summaries  service.StudentSummaryService
	identities service.IdentityResolver
	logger     zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(
	grades service.GradeAggregator,
	attendance service.AttendanceAggregator,
	summaries service.StudentSummaryService,
	identities service.IdentityResolver,
	logger zerolog.Logger,
) *GradeHandler {
	return &GradeHandler{
		grades:     grades,
		attendance: attendance,
		summaries:  summaries,
		identities: identities,
		logger:     logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches read endpoints to the v2 group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("/courses/:courseId/students/:studentKey/grade", h.overallGrade)
	router.Get("/courses/:courseId/students/:studentKey/attendance", h.attendancePercentage)
	router.Get("/students/:studentKey/summary", h.summary)
}

func (h *GradeHandler) overallGrade(c *fiber.Ctx) error {
	key := studentKeyParam(c)
	if err := authorizeStudentKey(c, h.identities, key); err != nil {
		return respondError(c, h.logger, err)
	}

	grade, err := h.grades.OverallGrade(c.UserContext(), key, c.Params("courseId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "grade computed", grade)
}

func (h *GradeHandler) attendancePercentage(c *fiber.Ctx) error {
	key := studentKeyParam(c)
	if err := authorizeStudentKey(c, h.identities, key); err != nil {
		return respondError(c, h.logger, err)
	}

	summary := h.attendance.Summary(c.UserContext(), key, c.Params("courseId"))
	return utils.SendSuccess(c, "attendance computed", summary)
}

func (h *GradeHandler) summary(c *fiber.Ctx) error {
	key := studentKeyParam(c)
	if err := authorizeStudentKey(c, h.identities, key); err != nil {
		return respondError(c, h.logger, err)
	}

	summary, err := h.summaries.Summary(c.UserContext(), key)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "student summary computed", summary)
}
