package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

func ptr(v float64) *float64 { return &v }

func validTree() SetupCourseRequest {
	return SetupCourseRequest{
		Name: "BSc Computer Science",
		Years: []YearInput{
			{YearNumber: 1, Weight: 40, Modules: []ModuleInput{{
				ModuleName: "Algorithms",
				Credits:    20,
				Components: []ComponentInput{
					{Name: "Midterm", Weight: 40, Grade: ptr(80)},
					{Name: "Final", Weight: 60},
				},
			}}},
			{YearNumber: 2, Weight: 60, Modules: []ModuleInput{}},
		},
	}
}

func TestValidateCourseTreeAcceptsValidTree(t *testing.T) {
	require.NoError(t, ValidateCourseTree(validTree()))
}

func TestValidateCourseTreeToleratesRounding(t *testing.T) {
	tree := validTree()
	tree.Years[0].Weight = 33.3333
	tree.Years[1].Weight = 66.6667
	assert.NoError(t, ValidateCourseTree(tree))
}

func TestValidateCourseTreeRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SetupCourseRequest)
		want   *appErrors.Error
	}{
		{"blank name", func(r *SetupCourseRequest) { r.Name = "   " }, appErrors.ErrValidation},
		{"no years", func(r *SetupCourseRequest) { r.Years = nil }, appErrors.ErrValidation},
		{"year zero", func(r *SetupCourseRequest) { r.Years[0].YearNumber = 0 }, appErrors.ErrValidation},
		{"duplicate year", func(r *SetupCourseRequest) { r.Years[1].YearNumber = 1 }, appErrors.ErrValidation},
		{"year weights short", func(r *SetupCourseRequest) { r.Years[1].Weight = 50 }, appErrors.ErrInvalidWeights},
		{"negative year weight", func(r *SetupCourseRequest) { r.Years[0].Weight = -10; r.Years[1].Weight = 110 }, appErrors.ErrInvalidWeights},
		{"blank module", func(r *SetupCourseRequest) { r.Years[0].Modules[0].ModuleName = "" }, appErrors.ErrValidation},
		{"negative credits", func(r *SetupCourseRequest) { r.Years[0].Modules[0].Credits = -1 }, appErrors.ErrValidation},
		{"no components", func(r *SetupCourseRequest) { r.Years[0].Modules[0].Components = nil }, appErrors.ErrValidation},
		{"blank component", func(r *SetupCourseRequest) { r.Years[0].Modules[0].Components[0].Name = " " }, appErrors.ErrValidation},
		{"zero component weight", func(r *SetupCourseRequest) { r.Years[0].Modules[0].Components[0].Weight = 0 }, appErrors.ErrInvalidWeights},
		{"component weights short", func(r *SetupCourseRequest) { r.Years[0].Modules[0].Components[1].Weight = 50 }, appErrors.ErrInvalidWeights},
		{"grade too high", func(r *SetupCourseRequest) { r.Years[0].Modules[0].Components[0].Grade = ptr(100.5) }, appErrors.ErrInvalidGrade},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := validTree()
			tc.mutate(&tree)
			err := ValidateCourseTree(tree)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestValidateGrade(t *testing.T) {
	assert.NoError(t, ValidateGrade(nil))
	assert.NoError(t, ValidateGrade(ptr(0)))
	assert.NoError(t, ValidateGrade(ptr(100)))
	assert.Error(t, ValidateGrade(ptr(-0.01)))
	assert.Error(t, ValidateGrade(ptr(101)))
}

func TestWeightMessageShowsCurrentTotal(t *testing.T) {
	tree := validTree()
	tree.Years[1].Weight = 50
	err := ValidateCourseTree(tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currently 90")
}
