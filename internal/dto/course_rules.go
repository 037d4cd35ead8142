package dto

import (
	"fmt"
	"math"
	"strings"

	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

const (
	// WeightTolerance is the allowed drift of a weight sum from 100.
	WeightTolerance = 0.001
	MinGrade        = 0.0
	MaxGrade        = 100.0
)

// WeightsSumTo100 reports whether total is 100 within WeightTolerance.
func WeightsSumTo100(total float64) bool {
	return math.Abs(total-100) <= WeightTolerance
}

// ValidateGrade accepts nil or a value in [0,100].
func ValidateGrade(grade *float64) error {
	if grade == nil {
		return nil
	}
	if math.IsNaN(*grade) || *grade < MinGrade || *grade > MaxGrade {
		return appErrors.Clone(appErrors.ErrInvalidGrade, fmt.Sprintf("grade %v must be between 0 and 100", *grade))
	}
	return nil
}

// ValidateCourseTree applies the structural rules every submitted tree must
// satisfy. Both gradectl and the service call it before persisting.
func ValidateCourseTree(req SetupCourseRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course name is required")
	}
	if len(req.Years) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one year is required")
	}

	seen := make(map[int]struct{}, len(req.Years))
	var yearTotal float64
	for _, year := range req.Years {
		if year.YearNumber < 1 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year number %d must be at least 1", year.YearNumber))
		}
		if _, dup := seen[year.YearNumber]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year %d appears more than once", year.YearNumber))
		}
		seen[year.YearNumber] = struct{}{}
		if year.Weight < 0 || year.Weight > 100 {
			return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("year %d weight must be between 0 and 100", year.YearNumber))
		}
		yearTotal += year.Weight

		for _, module := range year.Modules {
			if err := validateModule(year.YearNumber, module); err != nil {
				return err
			}
		}
	}
	if !WeightsSumTo100(yearTotal) {
		return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("year weights must sum to 100 (currently %s)", formatWeight(yearTotal)))
	}
	return nil
}

func validateModule(yearNumber int, module ModuleInput) error {
	name := strings.TrimSpace(module.ModuleName)
	if name == "" {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year %d has a module without a name", yearNumber))
	}
	if module.Credits < 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("module %q credits must not be negative", name))
	}
	if len(module.Components) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("module %q needs at least one component", name))
	}
	var total float64
	for _, component := range module.Components {
		if strings.TrimSpace(component.Name) == "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("module %q has a component without a name", name))
		}
		if component.Weight <= 0 || component.Weight > 100 {
			return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("component %q weight must be greater than 0 and at most 100", component.Name))
		}
		if err := ValidateGrade(component.Grade); err != nil {
			return err
		}
		total += component.Weight
	}
	if !WeightsSumTo100(total) {
		return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("component weights for %q must sum to 100 (currently %s)", name, formatWeight(total)))
	}
	return nil
}

func formatWeight(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}
