package service

import (
	"math"

	"github.com/noah-isme/gradebook-api/internal/models"
)

func round2(v float64) float64 { return math.RoundToEven(v*100) / 100 }
func round1(v float64) float64 { return math.RoundToEven(v*10) / 10 }

// Aggregate annotates course in place with module, year and total grades and
// the progress counter. Partially graded branches stay nil. Presented grades
// are rounded to two decimals; the fold itself uses unrounded values.
func Aggregate(course *models.Course) {
	if course == nil {
		return
	}
	var (
		completed, total int
		weighted, weights float64
		resolvable        = len(course.Years) > 0
	)

	for yi := range course.Years {
		year := &course.Years[yi]
		grade, ok := yearGrade(year, &completed, &total)
		year.Grade = nil
		if !ok {
			resolvable = false
			continue
		}
		year.Grade = floatPtr(round2(grade))
		weighted += grade * year.Weight
		weights += year.Weight
	}

	course.TotalPercentage = nil
	if resolvable && weights > 0 {
		course.TotalPercentage = floatPtr(round2(weighted / weights))
	}

	course.Progress = models.Progress{Completed: completed, Total: total}
	if total > 0 {
		course.Progress.Percentage = round1(float64(completed) / float64(total) * 100)
	}
}

// yearGrade is the credit-weighted mean of module grades, or the plain mean
// when no module carries credits.
func yearGrade(year *models.Year, completed, total *int) (float64, bool) {
	var (
		weighted, credits, plain float64
		resolvable               = len(year.Modules) > 0
	)
	for mi := range year.Modules {
		module := &year.Modules[mi]
		grade, ok := moduleGrade(module, completed, total)
		module.Grade = nil
		if !ok {
			resolvable = false
			continue
		}
		module.Grade = floatPtr(round2(grade))
		weighted += grade * float64(module.Credits)
		credits += float64(module.Credits)
		plain += grade
	}
	if !resolvable {
		return 0, false
	}
	if credits == 0 {
		return plain / float64(len(year.Modules)), true
	}
	return weighted / credits, true
}

func moduleGrade(module *models.Module, completed, total *int) (float64, bool) {
	var sum, weights float64
	resolvable := len(module.Components) > 0
	for _, component := range module.Components {
		*total++
		if component.Grade == nil {
			resolvable = false
			continue
		}
		*completed++
		sum += *component.Grade * component.Weight
		weights += component.Weight
	}
	if !resolvable || weights == 0 {
		return 0, false
	}
	return sum / weights, true
}

func floatPtr(v float64) *float64 { return &v }
