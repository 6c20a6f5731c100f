package database

import "time"

type BodyPart string

const (
	Head        BodyPart = "head"
	Chest       BodyPart = "chest"
	Stomach     BodyPart = "stomach"
	Back        BodyPart = "back"
	Extremities BodyPart = "extremities"
	General     BodyPart = "general"
)

// BodyParts lists the accepted body parts in display order.
var BodyParts = []BodyPart{Head, Chest, Stomach, Back, Extremities, General}

var BodyPartNames = map[BodyPart]string{
	Head:        "Cabeza",
	Chest:       "Pecho",
	Stomach:     "Estómago",
	Back:        "Espalda",
	Extremities: "Extremidades",
	General:     "General/Todo el cuerpo",
}

func (b BodyPart) Valid() bool {
	_, ok := BodyPartNames[b]
	return ok
}

const (
	MinIntensity     = 1
	MaxIntensity     = 10
	DefaultIntensity = 5
)

// Entry is a committed experiment record. Result stays nil until the
// experiment is completed.
type Entry struct {
	ID                string    `json:"id" yaml:"id"`
	Timestamp         time.Time `json:"timestamp" yaml:"timestamp"`
	Symptom           string    `json:"symptom" yaml:"symptom"`
	BodyPart          BodyPart  `json:"bodyPart" yaml:"bodyPart"`
	Intensity         int       `json:"intensity" yaml:"intensity"`
	Interpretation    string    `json:"interpretation" yaml:"interpretation"`
	CatastrophicWords []string  `json:"catastrophicWords" yaml:"catastrophicWords"`
	Complaint         string    `json:"complaint" yaml:"complaint"`
	Experiment        string    `json:"experiment" yaml:"experiment"`
	ExperimentTime    time.Time `json:"experimentTime" yaml:"experimentTime"`
	Prediction        string    `json:"prediction" yaml:"prediction"`
	Result            *string   `json:"result" yaml:"result"`
	Completed         bool      `json:"completed" yaml:"completed"`
}

// ResultText returns the recorded result or "" while the experiment is open.
func (e Entry) ResultText() string {
	if e.Result == nil {
		return ""
	}
	return *e.Result
}

type Achievement struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	Requirement int    `json:"requirement" yaml:"requirement"`
}

// Stats is a read model derived from the entries; it is never persisted
// except as part of an export.
type Stats struct {
	TotalExperiments       int `json:"totalExperiments" yaml:"totalExperiments"`
	CompletedExperiments   int `json:"completedExperiments" yaml:"completedExperiments"`
	PredictionAccuracy     int `json:"predictionAccuracy" yaml:"predictionAccuracy"`
	CatastrophicReductions int `json:"catastrophicReductions" yaml:"catastrophicReductions"`
	Streak                 int `json:"streak" yaml:"streak"`
	AvgIntensity           int `json:"avgIntensity" yaml:"avgIntensity"`
}
