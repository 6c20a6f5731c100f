package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

type memEntryStore struct {
	entries []database.Entry
	err     error
}

func (m *memEntryStore) Prepend(e database.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append([]database.Entry{e}, m.entries...)
	return nil
}

type recordingArmer struct {
	scheduled []database.Entry
}

func (r *recordingArmer) Schedule(e database.Entry) (time.Time, bool) {
	r.scheduled = append(r.scheduled, e)
	return e.ExperimentTime, true
}

func newTestWorkflow() (*WorkflowService, *memEntryStore, *recordingArmer) {
	store := &memEntryStore{}
	armer := &recordingArmer{}
	return NewWorkflowService(store, armer, utils.FixedClock{T: testNow}, zap.NewNop()), store, armer
}

func fillToArchive(t *testing.T, w *WorkflowService) {
	t.Helper()
	w.SetSymptom("presión en el pecho")
	require.NoError(t, w.SetBodyPart(database.Chest))
	require.True(t, w.Advance())
	w.SetInterpretation("seguro es un infarto")
	require.True(t, w.Advance())
	w.SetComplaint("pero voy a caminar igual")
	require.True(t, w.Advance())
	w.SetExperiment("caminar 20 minutos")
	w.SetExperimentTime(testNow.Add(2 * time.Hour))
	w.SetPrediction("me dará un infarto")
	require.True(t, w.Advance())
	require.Equal(t, PhaseArchive, w.Phase())
}

func TestWorkflow_InitialState(t *testing.T) {
	w, _, _ := newTestWorkflow()

	assert.Equal(t, PhaseSymptom, w.Phase())
	d := w.Draft()
	assert.Equal(t, database.DefaultIntensity, d.Intensity)
	assert.Empty(t, d.Symptom)
	assert.Empty(t, d.CatastrophicWords)
	assert.True(t, d.Timestamp.Equal(testNow))
}

func TestWorkflow_AdvanceGuards(t *testing.T) {
	w, _, _ := newTestWorkflow()

	assert.False(t, w.Advance(), "nothing filled")
	assert.Equal(t, []Field{FieldSymptom, FieldBodyPart}, w.MissingFields())

	w.SetSymptom("   ")
	assert.False(t, w.Advance(), "blank symptom does not count")

	w.SetSymptom("mareo")
	assert.False(t, w.Advance(), "body part still missing")
	assert.Equal(t, PhaseSymptom, w.Phase())

	require.NoError(t, w.SetBodyPart(database.Head))
	assert.True(t, w.CanAdvance())
	assert.True(t, w.Advance())
	assert.Equal(t, PhaseInterpretation, w.Phase())

	assert.False(t, w.Advance())
	w.SetInterpretation("me voy a desmayar")
	assert.True(t, w.Advance())
	assert.Equal(t, PhaseComplaint, w.Phase())

	assert.False(t, w.Advance())
	w.SetComplaint("es molesto pero puedo moverme")
	assert.True(t, w.Advance())
	assert.Equal(t, PhaseExperiment, w.Phase())

	w.SetExperiment("ir al supermercado")
	w.SetPrediction("me desmayaré")
	assert.False(t, w.Advance(), "experiment time missing")
	assert.Equal(t, []Field{FieldExperimentTime}, w.MissingFields())
	w.SetExperimentTime(testNow.Add(time.Hour))
	assert.True(t, w.Advance())
	assert.Equal(t, PhaseArchive, w.Phase())

	assert.False(t, w.CanAdvance(), "archive only commits")
	assert.False(t, w.Advance())
	assert.Equal(t, PhaseArchive, w.Phase())
}

func TestWorkflow_CommitOnlyFromArchive(t *testing.T) {
	w, store, armer := newTestWorkflow()
	w.SetSymptom("mareo")

	entry, ok, err := w.Commit()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, entry.ID)
	assert.Empty(t, store.entries)
	assert.Empty(t, armer.scheduled)
	assert.Equal(t, "mareo", w.Draft().Symptom, "draft untouched")
}

func TestWorkflow_Commit(t *testing.T) {
	w, store, armer := newTestWorkflow()
	ids := []string{"id-1", "id-2"}
	w.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	fillToArchive(t, w)
	require.NoError(t, w.SetIntensity(8))
	entry, ok, err := w.Commit()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "id-1", entry.ID)
	assert.False(t, entry.Completed)
	assert.Nil(t, entry.Result)
	assert.Equal(t, "presión en el pecho", entry.Symptom)
	assert.Equal(t, database.Chest, entry.BodyPart)
	assert.Equal(t, 8, entry.Intensity)
	assert.Equal(t, []string{"infarto"}, entry.CatastrophicWords)
	assert.True(t, entry.Timestamp.Equal(testNow))

	require.Len(t, store.entries, 1)
	assert.Equal(t, entry, store.entries[0])
	require.Len(t, armer.scheduled, 1)
	assert.Equal(t, "id-1", armer.scheduled[0].ID)

	assert.Equal(t, PhaseSymptom, w.Phase(), "phase resets")
	assert.Empty(t, w.Draft().Symptom, "draft resets")
	assert.Equal(t, database.DefaultIntensity, w.Draft().Intensity)

	fillToArchive(t, w)
	second, ok, err := w.Commit()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "id-2", second.ID)
	assert.NotEqual(t, entry.ID, second.ID)
	assert.Equal(t, "id-2", store.entries[0].ID, "newest first")
}

func TestWorkflow_CommitStoreFailureKeepsDraft(t *testing.T) {
	w, store, armer := newTestWorkflow()
	fillToArchive(t, w)
	store.err = errors.New("disk full")

	_, ok, err := w.Commit()
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, PhaseArchive, w.Phase())
	assert.Equal(t, "caminar 20 minutos", w.Draft().Experiment)
	assert.Empty(t, armer.scheduled)
}

func TestWorkflow_InterpretationRunsDetector(t *testing.T) {
	w, _, _ := newTestWorkflow()

	require.NoError(t, w.EditField(FieldInterpretation, "esto seguro es un infarto, no puedo soportarlo"))
	assert.Equal(t, []string{"infarto", "no puedo"}, w.Draft().CatastrophicWords)

	require.NoError(t, w.EditField(FieldInterpretation, "solo es tensión"))
	assert.Empty(t, w.Draft().CatastrophicWords, "matches follow the latest text")

	require.NoError(t, w.EditField(FieldComplaint, "nunca termina"))
	assert.Empty(t, w.Draft().CatastrophicWords, "only interpretation is scanned")
}

func TestWorkflow_EditFieldValidation(t *testing.T) {
	w, _, _ := newTestWorkflow()

	require.NoError(t, w.EditField(FieldIntensity, "10"))
	assert.Equal(t, 10, w.Draft().Intensity)

	for _, bad := range []string{"0", "11", "-3", "alta"} {
		err := w.EditField(FieldIntensity, bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
	assert.Equal(t, 10, w.Draft().Intensity, "rejected values leave the draft unchanged")

	require.NoError(t, w.EditField(FieldBodyPart, "pecho"))
	assert.Equal(t, database.Chest, w.Draft().BodyPart)
	assert.ErrorIs(t, w.EditField(FieldBodyPart, "rodilla"), ErrInvalidInput)
	assert.ErrorIs(t, w.SetBodyPart("knee"), ErrInvalidInput)

	require.NoError(t, w.EditField(FieldExperimentTime, "2026-10-20 18:30"))
	assert.Equal(t, time.Date(2026, 10, 20, 18, 30, 0, 0, time.UTC), w.Draft().ExperimentTime)
	assert.ErrorIs(t, w.EditField(FieldExperimentTime, "pronto"), ErrInvalidInput)

	assert.ErrorIs(t, w.EditField("mood", "bien"), ErrInvalidInput)
}

func TestWorkflow_DraftIsACopy(t *testing.T) {
	w, _, _ := newTestWorkflow()
	w.SetInterpretation("terrible")

	d := w.Draft()
	d.CatastrophicWords[0] = "changed"
	d.Symptom = "changed"

	assert.Equal(t, []string{"terrible"}, w.Draft().CatastrophicWords)
	assert.Empty(t, w.Draft().Symptom)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "symptom", PhaseSymptom.String())
	assert.Equal(t, "archive", PhaseArchive.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}

func TestPrimaryFieldAndHelp(t *testing.T) {
	f, ok := PrimaryField(PhaseComplaint)
	assert.True(t, ok)
	assert.Equal(t, FieldComplaint, f)

	_, ok = PrimaryField(PhaseArchive)
	assert.False(t, ok)

	assert.Equal(t, "Queja Productiva", HelpFor(PhaseComplaint).Title)
	assert.Equal(t, "Archivo de Realidad", HelpFor(PhaseArchive).Title)
}
