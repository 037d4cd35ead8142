package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/noah-isme/gradebook-api/pkg/client"
)

var errHelp = errors.New("help provided")

type gradebookAPI interface {
	CurrentCourse(ctx context.Context) (*client.Course, error)
	SetupCourse(ctx context.Context, req client.SetupCourseRequest) (*client.SetupCourseResponse, error)
	UpdateComponentGrade(ctx context.Context, componentID string, grade *float64) (*client.UpdateGradeResponse, error)
	ResetGrades(ctx context.Context) (*client.ResetGradesResponse, error)
	ArchiveCourse(ctx context.Context) (*client.ArchiveResponse, error)
	ArchivedCourses(ctx context.Context) ([]client.ArchivedCourse, error)
	ArchivedCourse(ctx context.Context, id string) (*client.Course, error)
	CreateExport(ctx context.Context, format client.ExportFormat, courseID string) (*client.ExportJob, error)
	ExportStatus(ctx context.Context, id string) (*client.ExportStatus, error)
	DownloadURL(resultURL string) string
}

type commandLine struct {
	api gradebookAPI
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  show                                   - show the current course with derived grades")
	fmt.Fprintln(cli.out, "  setup -file FILE [-name NAME]          - create or replace the course from a wizard file")
	fmt.Fprintln(cli.out, "  grade -component ID (-value V|-clear)  - set or clear one component grade")
	fmt.Fprintln(cli.out, "  year-weights -weights 1=40,2=60        - change year weights")
	fmt.Fprintln(cli.out, "  add-year -weight W [-weights 1=40]     - append an empty year")
	fmt.Fprintln(cli.out, "  reset -yes                             - clear every grade, keeping the structure")
	fmt.Fprintln(cli.out, "  archive -yes                           - archive the current course")
	fmt.Fprintln(cli.out, "  archived [-id ID]                      - list archived courses or show one")
	fmt.Fprintln(cli.out, "  export -format csv|pdf [-course ID]    - queue a transcript export and wait for it")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "show":
		return cli.show(ctx)
	case "setup":
		return cli.setup(ctx, args[2:])
	case "grade":
		return cli.grade(ctx, args[2:])
	case "year-weights":
		return cli.yearWeights(ctx, args[2:])
	case "add-year":
		return cli.addYear(ctx, args[2:])
	case "reset":
		return cli.reset(ctx, args[2:])
	case "archive":
		return cli.archive(ctx, args[2:])
	case "archived":
		return cli.archived(ctx, args[2:])
	case "export":
		return cli.export(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) show(ctx context.Context) error {
	course, err := cli.api.CurrentCourse(ctx)
	if err != nil {
		return err
	}
	cli.printCourse(course)
	return nil
}

// wizardFile is the setup wizard input: the starting year's modules.
type wizardFile struct {
	Name    string               `json:"name"`
	Modules []client.ModuleInput `json:"modules"`
}

func (cli *commandLine) setup(ctx context.Context, args []string) error {
	cmd := cli.flagSet("setup")
	file := cmd.String("file", "", "JSON file with {name, modules:[{module_name, credits, components:[{name, weight}]}]}")
	name := cmd.String("name", "", "Course name, overrides the file")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		cmd.Usage()
		return errHelp
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var wizard wizardFile
	if err := json.Unmarshal(raw, &wizard); err != nil {
		return fmt.Errorf("parse %s: %w", *file, err)
	}
	if *name != "" {
		wizard.Name = *name
	}
	if len(wizard.Modules) == 0 {
		return errors.New("add at least one module to the starting year")
	}

	req := client.SetupCourseRequest{
		Name:  strings.TrimSpace(wizard.Name),
		Years: []client.YearInput{{YearNumber: 1, Weight: 100, Modules: wizard.Modules}},
	}
	resp, err := cli.api.SetupCourse(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (course %s)\n", resp.Message, resp.CourseID)
	return nil
}

func (cli *commandLine) grade(ctx context.Context, args []string) error {
	cmd := cli.flagSet("grade")
	componentID := cmd.String("component", "", "Component ID")
	value := cmd.String("value", "", "Grade between 0 and 100")
	clearGrade := cmd.Bool("clear", false, "Clear the grade")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	hasValue := *value != ""
	if *componentID == "" || hasValue == *clearGrade {
		cmd.Usage()
		return errHelp
	}

	var grade *float64
	if !*clearGrade {
		v, err := strconv.ParseFloat(strings.TrimSpace(*value), 64)
		if err != nil {
			return fmt.Errorf("grade %q is not a number", *value)
		}
		grade = &v
	}
	resp, err := cli.api.UpdateComponentGrade(ctx, *componentID, grade)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, resp.Message)
	return nil
}

func (cli *commandLine) yearWeights(ctx context.Context, args []string) error {
	cmd := cli.flagSet("year-weights")
	raw := cmd.String("weights", "", "Comma separated YEAR=WEIGHT pairs")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *raw == "" {
		cmd.Usage()
		return errHelp
	}
	weights, err := parseWeights(*raw)
	if err != nil {
		return err
	}

	course, err := cli.api.CurrentCourse(ctx)
	if err != nil {
		return err
	}
	req, err := client.WithYearWeights(client.TreeFromCourse(course), weights)
	if err != nil {
		return err
	}
	if _, err := cli.api.SetupCourse(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Year weights updated successfully")
	return nil
}

func (cli *commandLine) addYear(ctx context.Context, args []string) error {
	cmd := cli.flagSet("add-year")
	weight := cmd.Float64("weight", -1, "Weight of the new year")
	raw := cmd.String("weights", "", "Optional YEAR=WEIGHT pairs rebalancing existing years")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *weight < 0 {
		cmd.Usage()
		return errHelp
	}
	var rebalance map[int]float64
	if *raw != "" {
		var err error
		if rebalance, err = parseWeights(*raw); err != nil {
			return err
		}
	}

	course, err := cli.api.CurrentCourse(ctx)
	if err != nil {
		return err
	}
	req, number, err := client.WithAddedYear(client.TreeFromCourse(course), *weight, rebalance)
	if err != nil {
		return err
	}
	if _, err := cli.api.SetupCourse(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Year %d added successfully\n", number)
	return nil
}

func (cli *commandLine) reset(ctx context.Context, args []string) error {
	cmd := cli.flagSet("reset")
	yes := cmd.Bool("yes", false, "Confirm clearing every grade")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("refusing to clear grades without -yes")
	}
	resp, err := cli.api.ResetGrades(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, resp.Message)
	return nil
}

func (cli *commandLine) archive(ctx context.Context, args []string) error {
	cmd := cli.flagSet("archive")
	yes := cmd.Bool("yes", false, "Confirm archiving the current course")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("refusing to archive without -yes")
	}
	resp, err := cli.api.ArchiveCourse(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, resp.Message)
	return nil
}

func (cli *commandLine) archived(ctx context.Context, args []string) error {
	cmd := cli.flagSet("archived")
	id := cmd.String("id", "", "Show one archived course")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *id != "" {
		course, err := cli.api.ArchivedCourse(ctx, *id)
		if err != nil {
			return err
		}
		cli.printCourse(course)
		return nil
	}

	courses, err := cli.api.ArchivedCourses(ctx)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		fmt.Fprintln(cli.out, "No archived courses")
		return nil
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tARCHIVED")
	for _, course := range courses {
		archivedAt := "-"
		if course.ArchivedAt != nil {
			archivedAt = course.ArchivedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", course.ID, course.Name, archivedAt)
	}
	return w.Flush()
}

func (cli *commandLine) export(ctx context.Context, args []string) error {
	cmd := cli.flagSet("export")
	format := cmd.String("format", "pdf", "csv or pdf")
	courseID := cmd.String("course", "", "Course ID, defaults to the current course")
	wait := cmd.Duration("wait", 30*time.Second, "How long to wait for the export")
	poll := cmd.Duration("poll", time.Second, "Status polling interval")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	job, err := cli.api.CreateExport(ctx, client.ExportFormat(*format), *courseID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Export %s queued\n", job.ID)

	deadline := time.Now().Add(*wait)
	for {
		status, err := cli.api.ExportStatus(ctx, job.ID)
		if err != nil {
			return err
		}
		switch status.Status {
		case "FINISHED":
			if status.ResultURL != nil {
				fmt.Fprintln(cli.out, cli.api.DownloadURL(*status.ResultURL))
			}
			return nil
		case "FAILED":
			msg := "unknown error"
			if status.Error != nil {
				msg = *status.Error
			}
			return fmt.Errorf("export failed: %s", msg)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("export %s still %s after %s", job.ID, status.Status, *wait)
		}
		time.Sleep(*poll)
	}
}

func (cli *commandLine) printCourse(course *client.Course) {
	fmt.Fprintf(cli.out, "%s\n", course.Name)
	fmt.Fprintf(cli.out, "Overall: %s   Progress: %d/%d (%.1f%%)\n",
		percent(course.TotalPercentage), course.Progress.Completed, course.Progress.Total, course.Progress.Percentage)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for _, year := range course.Years {
		fmt.Fprintf(w, "Year %d\tweight %g%%\t%s\t\n", year.YearNumber, year.Weight, percent(year.Grade))
		for _, module := range year.Modules {
			fmt.Fprintf(w, "  %s\t%d credits\t%s\t\n", module.ModuleName, module.Credits, percent(module.Grade))
			for _, component := range module.Components {
				fmt.Fprintf(w, "    %s\t%g%%\t%s\t%s\n", component.Name, component.Weight, value(component.Grade), component.ID)
			}
		}
	}
	_ = w.Flush()
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func value(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// parseWeights reads "1=40,2=60" into a year number to weight map.
func parseWeights(raw string) (map[int]float64, error) {
	weights := make(map[int]float64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("weight %q must look like YEAR=WEIGHT", pair)
		}
		year, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("year %q is not a number", key)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q is not a number", val)
		}
		weights[year] = weight
	}
	if len(weights) == 0 {
		return nil, errors.New("no weights given")
	}
	return weights, nil
}
