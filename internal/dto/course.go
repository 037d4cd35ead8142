package dto

// SetupCourseRequest is the full course tree submitted on setup and on every
// structural edit.
type SetupCourseRequest struct {
	Name  string      `json:"name" validate:"required,max=200"`
	Years []YearInput `json:"years" validate:"required,min=1,dive"`
}

// YearInput describes one year of the submitted tree.
type YearInput struct {
	YearNumber int           `json:"year_number" validate:"min=1"`
	Weight     float64       `json:"weight" validate:"gte=0,lte=100"`
	Modules    []ModuleInput `json:"modules" validate:"dive"`
}

// ModuleInput describes one module of a year.
type ModuleInput struct {
	ModuleName string           `json:"module_name" validate:"required,max=200"`
	Credits    int              `json:"credits" validate:"gte=0"`
	Components []ComponentInput `json:"components" validate:"required,min=1,dive"`
}

// ComponentInput describes one assessment component. Grade is carried over
// so structural edits keep recorded grades.
type ComponentInput struct {
	Name   string   `json:"name" validate:"required,max=200"`
	Weight float64  `json:"weight" validate:"gt=0,lte=100"`
	Grade  *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
}

// UpdateGradeRequest sets or clears (null) a component grade.
type UpdateGradeRequest struct {
	Grade *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
}

// SetupCourseResponse acknowledges a setup.
type SetupCourseResponse struct {
	Message  string `json:"message"`
	CourseID string `json:"course_id"`
}

// UpdateGradeResponse echoes the stored grade.
type UpdateGradeResponse struct {
	Message     string   `json:"message"`
	ComponentID string   `json:"component_id"`
	Grade       *float64 `json:"grade"`
}

// ResetGradesResponse reports how many components were cleared.
type ResetGradesResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ArchiveCourseResponse acknowledges an archive.
type ArchiveCourseResponse struct {
	Message  string `json:"message"`
	CourseID string `json:"course_id"`
}
