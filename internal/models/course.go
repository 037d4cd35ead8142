package models

import "time"

// Course is the root of a degree structure. Exactly one course is active
// (not archived) at a time.
type Course struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	IsArchived bool       `db:"is_archived" json:"is_archived"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`

	Years []Year `db:"-" json:"years"`

	// Derived by aggregation on read.
	TotalPercentage *float64 `db:"-" json:"total_percentage"`
	Progress        Progress `db:"-" json:"progress"`
}

// Year groups modules and carries a weight within the course.
type Year struct {
	ID         string   `db:"id" json:"id"`
	CourseID   string   `db:"course_id" json:"-"`
	YearNumber int      `db:"year_number" json:"year_number"`
	Weight     float64  `db:"weight" json:"weight"`
	Position   int      `db:"position" json:"-"`
	Modules    []Module `db:"-" json:"modules"`
	Grade      *float64 `db:"-" json:"grade"`
}

// Module is a taught unit within a year.
type Module struct {
	ID         string      `db:"id" json:"id"`
	YearID     string      `db:"year_id" json:"-"`
	ModuleName string      `db:"module_name" json:"module_name"`
	Credits    int         `db:"credits" json:"credits"`
	Position   int         `db:"position" json:"-"`
	Components []Component `db:"-" json:"components"`
	Grade      *float64    `db:"-" json:"grade"`
}

// Component is the smallest gradable unit, weighted within its module.
type Component struct {
	ID       string   `db:"id" json:"id"`
	ModuleID string   `db:"module_id" json:"-"`
	Name     string   `db:"name" json:"name"`
	Weight   float64  `db:"weight" json:"weight"`
	Grade    *float64 `db:"grade" json:"grade"`
	Position int      `db:"position" json:"-"`
}

// Progress counts graded components.
type Progress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ArchivedCourse is the summary row of an archived course.
type ArchivedCourse struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at"`
}
