package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reality-archive/internal/app"
	"reality-archive/internal/logging"
	"reality-archive/internal/services"
)

// openSession loads config and state for a one-shot command. Only warnings
// are logged unless debug logging is configured.
func openSession(flags *globalFlags) (*app.Session, func(), error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if cfg.Log.Level == "debug" {
		level = cfg.Log.Level
	}
	log, err := logging.New(level)
	if err != nil {
		return nil, nil, err
	}

	session, err := app.OpenSession(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := session.Close(); err != nil {
			log.Warn("⚠️ Database close failed", zap.Error(err))
		}
		_ = log.Sync()
	}
	return session, closeFn, nil
}

func sessionPrinter(cmd *cobra.Command, session *app.Session) *printer {
	return newPrinter(cmd.OutOrStdout(), session.Services.Preferences.DarkMode())
}

type newEntryFlags struct {
	symptom        string
	bodyPart       string
	intensity      int
	interpretation string
	complaint      string
	experiment     string
	at             string
	prediction     string
}

type fieldValue struct {
	field services.Field
	value string
}

func newNewCmd(flags *globalFlags) *cobra.Command {
	f := &newEntryFlags{}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Walk a new entry through all phases and save it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, closeFn, err := openSession(flags)
			if err != nil {
				return err
			}
			defer closeFn()
			p := sessionPrinter(cmd, session)
			return runNew(session, p, f)
		},
	}

	cmd.Flags().StringVar(&f.symptom, "symptom", "", "what you feel physically")
	cmd.Flags().StringVar(&f.bodyPart, "body-part", "", "head|chest|stomach|back|extremities|general")
	cmd.Flags().IntVar(&f.intensity, "intensity", 5, "intensity 1-10")
	cmd.Flags().StringVar(&f.interpretation, "interpretation", "", "the automatic thought")
	cmd.Flags().StringVar(&f.complaint, "complaint", "", "productive complaint")
	cmd.Flags().StringVar(&f.experiment, "experiment", "", "what you will do")
	cmd.Flags().StringVar(&f.at, "at", "", "experiment time, YYYY-MM-DD HH:MM")
	cmd.Flags().StringVar(&f.prediction, "prediction", "", "what you expect to happen")
	return cmd
}

func runNew(session *app.Session, p *printer, f *newEntryFlags) error {
	sm := session.Services
	w := sm.Workflow

	if err := w.SetIntensity(f.intensity); err != nil {
		return err
	}

	phases := [][]fieldValue{
		{{services.FieldSymptom, f.symptom}, {services.FieldBodyPart, f.bodyPart}},
		{{services.FieldInterpretation, f.interpretation}},
		{{services.FieldComplaint, f.complaint}},
		{{services.FieldExperiment, f.experiment}, {services.FieldExperimentTime, f.at}, {services.FieldPrediction, f.prediction}},
	}

	for _, fields := range phases {
		for _, fv := range fields {
			if strings.TrimSpace(fv.value) == "" {
				continue
			}
			if err := w.EditField(fv.field, fv.value); err != nil {
				return fmt.Errorf("%s: %w", fv.field, err)
			}
		}

		switch w.Phase() {
		case services.PhaseSymptom:
			if similar := sm.SimilarToDraft(); len(similar) > 0 {
				p.Muted("🔁 Experiencias similares:")
				for _, e := range similar {
					p.Entry(e)
				}
			}
		case services.PhaseInterpretation:
			if words := w.Draft().CatastrophicWords; len(words) > 0 {
				p.Warn("⚠️  Palabras catastróficas detectadas: " + strings.Join(words, ", "))
			}
		}

		phase := w.Phase()
		if !w.Advance() {
			help := services.HelpFor(phase)
			p.Muted(help.Title + ": " + help.Content)
			return fmt.Errorf("%w: phase %s is missing %s", services.ErrInvalidInput, phase, joinFields(w.MissingFields()))
		}
	}

	entry, ok, err := w.Commit()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("draft not ready to save")
	}

	p.OK(services.CommitAck)
	p.Entry(entry)
	p.Events(session.Events())
	return nil
}

func joinFields(fields []services.Field) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func newCompleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id> <result...>",
		Short: "Record what actually happened in an experiment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, closeFn, err := openSession(flags)
			if err != nil {
				return err
			}
			defer closeFn()

			entry, err := session.Services.CompleteExperiment(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			p := sessionPrinter(cmd, session)
			p.OK("🧾 Resultado registrado")
			p.Entry(entry)
			p.Events(session.Events())
			return nil
		},
	}
}

func newListCmd(flags *globalFlags) *cobra.Command {
	var openOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived experiments, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, closeFn, err := openSession(flags)
			if err != nil {
				return err
			}
			defer closeFn()

			p := sessionPrinter(cmd, session)
			entries := session.Services.Entries()
			shown := 0
			for _, e := range entries {
				if openOnly && e.Completed {
					continue
				}
				p.Entry(e)
				shown++
			}
			if shown == 0 {
				p.Muted("📭 Todavía no hay experimentos")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&openOnly, "open", false, "only experiments without a result")
	return cmd
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show progress statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, closeFn, err := openSession(flags)
			if err != nil {
				return err
			}
			defer closeFn()

			sessionPrinter(cmd, session).Stats(session.Services.Stats())
			return nil
		},
	}
}

func newAchievementsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "Show unlocked and locked achievements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, closeFn, err := openSession(flags)
			if err != nil {
				return err
			}
			defer closeFn()

			sessionPrinter(cmd, session).Achievements(session.Services.Achievements.IsUnlocked)
			return nil
		},
	}
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries, stats and achievements to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			exportFormat := services.ExportFormat(strings.ToLower(format))
			if exportFormat != services.FormatJSON && exportFormat != services.FormatYAML {
				return fmt.Errorf("%w: unknown format %q", services.ErrInvalidInput, format)
			}

			session, closeFn, err := openSession(flags)
			if err != nil {
				return err
			}
			defer closeFn()

			doc := session.Services.Export()
			data, err := doc.Encode(exportFormat)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if out == "" {
				out = doc.FileName(exportFormat)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			sessionPrinter(cmd, session).OK("📦 Exportado a " + out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(services.FormatJSON), "json|yaml")
	cmd.Flags().StringVar(&out, "out", "", "output file, - for stdout (default archivo_realidad_<date>.<ext>)")
	return cmd
}

func newThemeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			session, closeFn, err := openSession(flags)
			if err != nil {
				return err
			}
			defer closeFn()

			prefs := session.Services.Preferences
			if len(args) == 1 {
				switch args[0] {
				case "dark":
					err = prefs.SetDarkMode(true)
				case "light":
					err = prefs.SetDarkMode(false)
				case "toggle":
					_, err = prefs.ToggleDarkMode()
				default:
					return fmt.Errorf("%w: theme must be dark, light or toggle", services.ErrInvalidInput)
				}
				if err != nil {
					return err
				}
			}

			p := sessionPrinter(cmd, session)
			if prefs.DarkMode() {
				p.OK("🌙 Tema oscuro")
			} else {
				p.OK("☀️ Tema claro")
			}
			return nil
		},
	}
}
