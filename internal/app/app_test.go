package app

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"reality-archive/internal/config"
	"reality-archive/internal/database"
	"reality-archive/internal/services"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "archive.db")},
		Notifications: config.NotificationsConfig{
			Enabled:      true,
			SummaryCron:  "0 21 * * *",
			RearmOnStart: true,
		},
		Log: config.LogConfig{Level: "info"},
	}
}

func fillDraft(t *testing.T, w *services.WorkflowService, at time.Time) {
	t.Helper()
	require.NoError(t, w.EditField(services.FieldSymptom, "presión en el pecho"))
	require.NoError(t, w.EditField(services.FieldBodyPart, "pecho"))
	require.True(t, w.Advance())
	require.NoError(t, w.EditField(services.FieldInterpretation, "es un infarto"))
	require.True(t, w.Advance())
	require.NoError(t, w.EditField(services.FieldComplaint, "voy a intentarlo"))
	require.True(t, w.Advance())
	require.NoError(t, w.EditField(services.FieldExperiment, "caminar"))
	w.SetExperimentTime(at)
	require.NoError(t, w.EditField(services.FieldPrediction, "me desmayaré"))
	require.True(t, w.Advance())
}

func TestApplication_CommitThroughLoopNotifies(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := &lockedBuffer{}
	application, err := newApplication(testConfig(t), zap.NewNop(), out)
	require.NoError(t, err)
	require.NoError(t, application.Start())

	var committed bool
	application.Do(func() {
		fillDraft(t, application.services.Workflow, time.Now().Add(time.Hour))
		_, committed, err = application.services.Workflow.Commit()
	})
	require.NoError(t, err)
	require.True(t, committed)

	require.NoError(t, application.Stop())
	assert.Contains(t, out.String(), "Primer Experimento")
}

func TestApplication_RearmsRemindersOnStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig(t)
	db, err := database.New(cfg.Database.Path)
	require.NoError(t, err)
	require.NoError(t, database.NewRepository(db).SaveEntries([]database.Entry{{
		ID:             "due-soon",
		Timestamp:      time.Now(),
		Symptom:        "mareo",
		BodyPart:       database.Head,
		Intensity:      4,
		Experiment:     "subir escaleras",
		ExperimentTime: time.Now().Add(50 * time.Millisecond),
		Prediction:     "me caeré",
	}}))
	require.NoError(t, database.NewRepository(db).SaveAchievements([]string{"first_experiment"}))
	require.NoError(t, db.Close())

	out := &lockedBuffer{}
	application, err := newApplication(cfg, zap.NewNop(), out)
	require.NoError(t, err)
	require.NoError(t, application.Start())

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Es hora de realizar tu experimento: subir escaleras"))
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, application.Stop())
}

func TestApplication_NotificationsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifications.Enabled = false

	application, err := newApplication(cfg, zap.NewNop(), &lockedBuffer{})
	require.NoError(t, err)
	defer application.db.Close()

	assert.False(t, application.services.Reminders.Permitted())
}

func TestApplication_DoAfterStopIsNoop(t *testing.T) {
	application, err := newApplication(testConfig(t), zap.NewNop(), &lockedBuffer{})
	require.NoError(t, err)
	require.NoError(t, application.Start())
	require.NoError(t, application.Stop())

	ran := false
	application.Do(func() { ran = true })
	assert.False(t, ran)
}

func TestSession_DoesNotArmReminders(t *testing.T) {
	cfg := testConfig(t)
	session, err := OpenSession(cfg, zap.NewNop())
	require.NoError(t, err)
	defer session.Close()

	w := session.Services.Workflow
	fillDraft(t, w, time.Now().Add(time.Hour))
	_, ok, err := w.Commit()
	require.NoError(t, err)
	require.True(t, ok)

	assert.False(t, session.Services.Reminders.Permitted())
	events := session.Events()
	require.Len(t, events, 1)
	assert.Equal(t, services.EventAchievementUnlocked, events[0].Kind)
	assert.Empty(t, session.Events())
}
