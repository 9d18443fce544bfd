package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sissim/internal/epidemic"
	"github.com/san-kum/sissim/internal/experiment"
	"github.com/san-kum/sissim/internal/report"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var trajectoryHeader = []string{"time", "susceptible", "infected", "analytic", "rel_error"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a saved run. Non-finite metric and summary values are
// left out since JSON cannot carry them.
type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Params     epidemic.Params    `json:"params"`
	FinalTime  float64            `json:"final_time"`
	Increment  float64            `json:"increment"`
	Steps      int                `json:"steps"`
	Rejected   int                `json:"rejected"`
	Metrics    map[string]float64 `json:"metrics"`
	Summary    map[string]float64 `json:"summary"`
}

// Sample is one trajectory row. Analytic and RelativeError are nil where the
// closed form or the error ratio is undefined.
type Sample struct {
	Time          float64  `json:"time"`
	Susceptible   float64  `json:"susceptible"`
	Infected      float64  `json:"infected"`
	Analytic      *float64 `json:"analytic"`
	RelativeError *float64 `json:"relative_error"`
}

type Trajectory []Sample

// Series splits the trajectory into plottable columns.
func (tr Trajectory) Series() (times, susceptible, infected []float64) {
	times = make([]float64, len(tr))
	susceptible = make([]float64, len(tr))
	infected = make([]float64, len(tr))
	for i, s := range tr {
		times[i] = s.Time
		susceptible[i] = s.Susceptible
		infected[i] = s.Infected
	}
	return times, susceptible, infected
}

// Save writes the outcome under a new run directory and returns its ID.
func (s *Store) Save(o *experiment.Outcome, finalTime, increment float64) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", experiment.DefaultModel, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      experiment.DefaultModel,
		Timestamp:  now,
		Integrator: o.Integrator,
		Params:     o.Params,
		FinalTime:  finalTime,
		Increment:  increment,
		Steps:      o.Result.StepsTaken,
		Rejected:   o.Result.Rejected,
		Metrics:    finite(o.Result.Metrics),
		Summary:    finite(summaryValues(o.Summary)),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, FromRows(o.Rows)); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns the saved runs, oldest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// ExportCSV copies the stored trajectory of runID to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	tr, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	return WriteCSV(w, tr)
}

type ExportData struct {
	Metadata   RunMetadata `json:"metadata"`
	Trajectory Trajectory  `json:"trajectory"`
}

// ExportJSON writes the metadata and trajectory of runID to w as one document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	tr, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: *meta, Trajectory: tr})
}

func FromRows(rows []report.Row) Trajectory {
	tr := make(Trajectory, len(rows))
	for i, r := range rows {
		tr[i] = Sample{
			Time:        r.Day,
			Susceptible: r.Susceptible,
			Infected:    r.Infected,
			Analytic:    optional(r.Analytic),
		}
		if r.ErrorDefined {
			tr[i].RelativeError = optional(r.RelativeError)
		}
	}
	return tr
}

func WriteCSV(w io.Writer, tr Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}
	for _, s := range tr {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Susceptible),
			formatFloat(s.Infected),
			formatOptional(s.Analytic),
			formatOptional(s.RelativeError),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) (Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(trajectoryHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return Trajectory{}, nil
	}

	tr := make(Trajectory, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [3]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", i+2, trajectoryHeader[j], err)
			}
			vals[j] = v
		}
		analytic, err := parseOptional(record[3])
		if err != nil {
			return nil, fmt.Errorf("line %d column analytic: %w", i+2, err)
		}
		relErr, err := parseOptional(record[4])
		if err != nil {
			return nil, fmt.Errorf("line %d column rel_error: %w", i+2, err)
		}
		tr = append(tr, Sample{
			Time:          vals[0],
			Susceptible:   vals[1],
			Infected:      vals[2],
			Analytic:      analytic,
			RelativeError: relErr,
		})
	}
	return tr, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func summaryValues(s report.Summary) map[string]float64 {
	return map[string]float64{
		"equilibrium":             s.Equilibrium,
		"reproduction_number":     s.ReproductionNumber,
		"max_abs_relative_error":  s.MaxAbsError,
		"mean_abs_relative_error": s.MeanAbsError,
		"undefined_errors":        float64(s.UndefinedErrors),
		"final_infected":          s.FinalInfected,
		"final_percent_infected":  s.FinalPercent,
	}
}

func finite(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func parseOptional(field string) (*float64, error) {
	if field == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
