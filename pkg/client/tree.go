package client

import (
	"fmt"

	"github.com/noah-isme/gradebook-api/internal/dto"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

// TreeFromCourse rebuilds the full-tree setup payload from a fetched course,
// carrying every grade along.
func TreeFromCourse(course *Course) SetupCourseRequest {
	req := SetupCourseRequest{Name: course.Name, Years: make([]YearInput, 0, len(course.Years))}
	for _, year := range course.Years {
		in := YearInput{YearNumber: year.YearNumber, Weight: year.Weight, Modules: make([]ModuleInput, 0, len(year.Modules))}
		for _, module := range year.Modules {
			m := ModuleInput{ModuleName: module.ModuleName, Credits: module.Credits, Components: make([]ComponentInput, 0, len(module.Components))}
			for _, component := range module.Components {
				var grade *float64
				if component.Grade != nil {
					g := *component.Grade
					grade = &g
				}
				m.Components = append(m.Components, ComponentInput{Name: component.Name, Weight: component.Weight, Grade: grade})
			}
			in.Modules = append(in.Modules, m)
		}
		req.Years = append(req.Years, in)
	}
	return req
}

// WithYearWeights returns a copy of req with year weights replaced by
// year number. Unknown year numbers and a total other than 100 are rejected.
func WithYearWeights(req SetupCourseRequest, weights map[int]float64) (SetupCourseRequest, error) {
	out := req
	out.Years = append([]YearInput(nil), req.Years...)
	known := make(map[int]bool, len(out.Years))
	for i := range out.Years {
		known[out.Years[i].YearNumber] = true
		if w, ok := weights[out.Years[i].YearNumber]; ok {
			out.Years[i].Weight = w
		}
	}
	for number := range weights {
		if !known[number] {
			return req, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course has no year %d", number))
		}
	}
	if err := checkYearTotal(out); err != nil {
		return req, err
	}
	return out, nil
}

// WithAddedYear appends an empty year numbered after the highest existing one.
// rebalance optionally sets new weights for existing years first.
func WithAddedYear(req SetupCourseRequest, weight float64, rebalance map[int]float64) (SetupCourseRequest, int, error) {
	out := req
	out.Years = append([]YearInput(nil), req.Years...)
	next := 1
	for i := range out.Years {
		if out.Years[i].YearNumber >= next {
			next = out.Years[i].YearNumber + 1
		}
		if w, ok := rebalance[out.Years[i].YearNumber]; ok {
			out.Years[i].Weight = w
		}
	}
	out.Years = append(out.Years, YearInput{YearNumber: next, Weight: weight, Modules: []ModuleInput{}})
	if err := checkYearTotal(out); err != nil {
		return req, 0, err
	}
	return out, next, nil
}

func checkYearTotal(req SetupCourseRequest) error {
	var total float64
	for _, year := range req.Years {
		total += year.Weight
	}
	if !dto.WeightsSumTo100(total) {
		return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("year weights must sum to 100%% (currently %g%%)", total))
	}
	return nil
}
