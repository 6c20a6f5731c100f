package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

type Phase int

const (
	PhaseSymptom Phase = iota
	PhaseInterpretation
	PhaseComplaint
	PhaseExperiment
	PhaseArchive
)

var phaseNames = [...]string{"symptom", "interpretation", "complaint", "experiment", "archive"}

func (p Phase) String() string {
	if p < PhaseSymptom || p > PhaseArchive {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

type Field string

const (
	FieldSymptom        Field = "symptom"
	FieldBodyPart       Field = "bodyPart"
	FieldIntensity      Field = "intensity"
	FieldInterpretation Field = "interpretation"
	FieldComplaint      Field = "complaint"
	FieldExperiment     Field = "experiment"
	FieldExperimentTime Field = "experimentTime"
	FieldPrediction     Field = "prediction"
)

// transition is one edge of the linear phase machine. The guard is the list
// of draft fields that must be filled before leaving the phase.
type transition struct {
	next     Phase
	requires []Field
}

var transitions = map[Phase]transition{
	PhaseSymptom:        {next: PhaseInterpretation, requires: []Field{FieldSymptom, FieldBodyPart}},
	PhaseInterpretation: {next: PhaseComplaint, requires: []Field{FieldInterpretation}},
	PhaseComplaint:      {next: PhaseExperiment, requires: []Field{FieldComplaint}},
	PhaseExperiment:     {next: PhaseArchive, requires: []Field{FieldExperiment, FieldExperimentTime, FieldPrediction}},
}

// Draft is the entry under construction.
type Draft struct {
	Timestamp         time.Time
	Symptom           string
	BodyPart          database.BodyPart
	Intensity         int
	Interpretation    string
	CatastrophicWords []string
	Complaint         string
	Experiment        string
	ExperimentTime    time.Time
	Prediction        string
}

func (d Draft) filled(f Field) bool {
	switch f {
	case FieldSymptom:
		return strings.TrimSpace(d.Symptom) != ""
	case FieldBodyPart:
		return d.BodyPart != ""
	case FieldIntensity:
		return d.Intensity != 0
	case FieldInterpretation:
		return strings.TrimSpace(d.Interpretation) != ""
	case FieldComplaint:
		return strings.TrimSpace(d.Complaint) != ""
	case FieldExperiment:
		return strings.TrimSpace(d.Experiment) != ""
	case FieldExperimentTime:
		return !d.ExperimentTime.IsZero()
	case FieldPrediction:
		return strings.TrimSpace(d.Prediction) != ""
	default:
		return false
	}
}

// EntryStore receives committed entries.
type EntryStore interface {
	Prepend(entry database.Entry) error
}

// ReminderArmer arms a reminder for a committed entry.
type ReminderArmer interface {
	Schedule(entry database.Entry) (time.Time, bool)
}

// WorkflowService drives the draft through the phases and commits it.
// It is not safe for concurrent use.
type WorkflowService struct {
	phase     Phase
	draft     Draft
	lexicon   []string
	store     EntryStore
	reminders ReminderArmer
	clock     utils.Clock
	newID     func() string
	log       *zap.Logger
}

func NewWorkflowService(store EntryStore, reminders ReminderArmer, clock utils.Clock, log *zap.Logger) *WorkflowService {
	w := &WorkflowService{
		lexicon:   CatastrophicLexicon,
		store:     store,
		reminders: reminders,
		clock:     clock,
		newID:     uuid.NewString,
		log:       log,
	}
	w.Reset()
	return w
}

func (w *WorkflowService) Phase() Phase {
	return w.phase
}

// Draft returns a copy of the draft.
func (w *WorkflowService) Draft() Draft {
	d := w.draft
	d.CatastrophicWords = append([]string{}, w.draft.CatastrophicWords...)
	return d
}

// Reset discards the draft and returns to the symptom phase.
func (w *WorkflowService) Reset() {
	w.phase = PhaseSymptom
	w.draft = Draft{
		Timestamp:         w.clock.Now(),
		Intensity:         database.DefaultIntensity,
		CatastrophicWords: []string{},
	}
}

// MissingFields lists the unfilled fields that block leaving the current phase.
func (w *WorkflowService) MissingFields() []Field {
	t, ok := transitions[w.phase]
	if !ok {
		return nil
	}
	var missing []Field
	for _, f := range t.requires {
		if !w.draft.filled(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// CanAdvance reports whether Advance would move to the next phase.
func (w *WorkflowService) CanAdvance() bool {
	_, ok := transitions[w.phase]
	return ok && len(w.MissingFields()) == 0
}

// Advance moves to the next phase when the current one is complete. It
// returns false and changes nothing otherwise.
func (w *WorkflowService) Advance() bool {
	if !w.CanAdvance() {
		return false
	}
	w.phase = transitions[w.phase].next
	return true
}

// CommitAck confirms a saved experiment to the user.
const CommitAck = "✅ Experimento guardado. Te recordaré registrar el resultado."

// Commit turns the draft into a new entry stamped with the commit time. It
// only acts in the archive phase; elsewhere it returns ok=false. A store
// failure keeps the draft intact.
func (w *WorkflowService) Commit() (database.Entry, bool, error) {
	if w.phase != PhaseArchive {
		return database.Entry{}, false, nil
	}

	d := w.draft
	entry := database.Entry{
		ID:                w.newID(),
		Timestamp:         w.clock.Now(),
		Symptom:           d.Symptom,
		BodyPart:          d.BodyPart,
		Intensity:         d.Intensity,
		Interpretation:    d.Interpretation,
		CatastrophicWords: append([]string{}, d.CatastrophicWords...),
		Complaint:         d.Complaint,
		Experiment:        d.Experiment,
		ExperimentTime:    d.ExperimentTime,
		Prediction:        d.Prediction,
		Result:            nil,
		Completed:         false,
	}

	if err := w.store.Prepend(entry); err != nil {
		return database.Entry{}, false, fmt.Errorf("commit entry: %w", err)
	}
	w.log.Info("✅ Experiment committed", zap.String("id", entry.ID), zap.Time("experiment_time", entry.ExperimentTime))

	w.Reset()
	if w.reminders != nil {
		w.reminders.Schedule(entry)
	}
	return entry, true, nil
}

// EditField sets a draft field from its text form.
func (w *WorkflowService) EditField(name Field, value string) error {
	switch name {
	case FieldSymptom:
		w.SetSymptom(value)
	case FieldBodyPart:
		part, ok := utils.ParseBodyPart(value)
		if !ok {
			return fmt.Errorf("%w: unknown body part %q", ErrInvalidInput, value)
		}
		return w.SetBodyPart(part)
	case FieldIntensity:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: intensity must be a number", ErrInvalidInput)
		}
		return w.SetIntensity(n)
	case FieldInterpretation:
		w.SetInterpretation(value)
	case FieldComplaint:
		w.SetComplaint(value)
	case FieldExperiment:
		w.SetExperiment(value)
	case FieldExperimentTime:
		t, err := utils.ParseExperimentTime(value, w.clock.Now().Location())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		w.SetExperimentTime(t)
	case FieldPrediction:
		w.SetPrediction(value)
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidInput, name)
	}
	return nil
}

func (w *WorkflowService) SetSymptom(v string) {
	w.draft.Symptom = v
}

func (w *WorkflowService) SetBodyPart(part database.BodyPart) error {
	if !part.Valid() {
		return fmt.Errorf("%w: unknown body part %q", ErrInvalidInput, part)
	}
	w.draft.BodyPart = part
	return nil
}

func (w *WorkflowService) SetIntensity(n int) error {
	if n < database.MinIntensity || n > database.MaxIntensity {
		return fmt.Errorf("%w: intensity %d outside %d..%d", ErrInvalidInput, n, database.MinIntensity, database.MaxIntensity)
	}
	w.draft.Intensity = n
	return nil
}

// SetInterpretation stores the text and re-runs the detector on it.
func (w *WorkflowService) SetInterpretation(v string) {
	w.draft.Interpretation = v
	w.draft.CatastrophicWords = Detect(v, w.lexicon)
}

func (w *WorkflowService) SetComplaint(v string) {
	w.draft.Complaint = v
}

func (w *WorkflowService) SetExperiment(v string) {
	w.draft.Experiment = v
}

func (w *WorkflowService) SetExperimentTime(t time.Time) {
	w.draft.ExperimentTime = t
}

func (w *WorkflowService) SetPrediction(v string) {
	w.draft.Prediction = v
}

// PrimaryField is the field a bare text message fills in the given phase.
func PrimaryField(p Phase) (Field, bool) {
	switch p {
	case PhaseSymptom:
		return FieldSymptom, true
	case PhaseInterpretation:
		return FieldInterpretation, true
	case PhaseComplaint:
		return FieldComplaint, true
	case PhaseExperiment:
		return FieldExperiment, true
	default:
		return "", false
	}
}

type PhaseHelp struct {
	Title   string
	Content string
}

// HelpFor returns the guidance shown while the user is in phase p.
func HelpFor(p Phase) PhaseHelp {
	switch p {
	case PhaseSymptom:
		return PhaseHelp{
			Title:   "Registrando Síntomas",
			Content: `Describe únicamente lo que sientes físicamente, sin interpretaciones. Por ejemplo: "presión en el pecho" en lugar de "creo que es un infarto".`,
		}
	case PhaseInterpretation:
		return PhaseHelp{
			Title:   "Analizando Interpretaciones",
			Content: "Este es el momento de ser honesto sobre tus pensamientos automáticos. No los juzgues, solo obsérvalos y regístralos tal como aparecen.",
		}
	case PhaseComplaint:
		return PhaseHelp{
			Title:   "Queja Productiva",
			Content: `Transforma el "no puedo" en "voy a intentar". Una queja productiva reconoce el malestar pero se enfoca en la acción posible.`,
		}
	case PhaseExperiment:
		return PhaseHelp{
			Title:   "Diseñando Experimentos",
			Content: "Sé específico y realista. Un buen experimento es algo que puedes hacer aunque tengas el síntoma. No busques eliminar la ansiedad, sino probar si tus predicciones son ciertas.",
		}
	default:
		return PhaseHelp{
			Title:   "Archivo de Realidad",
			Content: "Esta herramienta te ayuda a transformar síntomas físicos en experimentos científicos para desafiar pensamientos catastróficos.",
		}
	}
}
