package telegram

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/services"
	"reality-archive/internal/utils"
)

func (b *Bot) SendMessageOrLogError(message string) {
	if err := b.SendMessage(message); err != nil {
		b.log.Error("❌ Send failed", zap.Error(err))
	}
}

func escape(s string) string {
	return html.EscapeString(s)
}

var phaseTitles = map[services.Phase]string{
	services.PhaseSymptom:        "1️⃣ Síntoma",
	services.PhaseInterpretation: "2️⃣ Interpretación",
	services.PhaseComplaint:      "3️⃣ Queja productiva",
	services.PhaseExperiment:     "4️⃣ Experimento",
	services.PhaseArchive:        "5️⃣ Archivo",
}

var fieldLabels = map[services.Field]string{
	services.FieldSymptom:        "síntoma",
	services.FieldBodyPart:       "zona",
	services.FieldIntensity:      "intensidad",
	services.FieldInterpretation: "interpretación",
	services.FieldComplaint:      "queja",
	services.FieldExperiment:     "experimento",
	services.FieldExperimentTime: "hora",
	services.FieldPrediction:     "predicción",
}

func formatFields(fields []services.Field) string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, fmt.Sprintf("%s (%s)", fieldLabels[f], commandFor(f)))
	}
	return strings.Join(labels, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return escape(s)
}

func formatDraft(phase services.Phase, d services.Draft, missing []services.Field) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 <b>Borrador</b> · %s\n\n", phaseTitles[phase])

	part := "—"
	if d.BodyPart != "" {
		part = utils.GetBodyPartEmoji(d.BodyPart) + " " + utils.GetBodyPartName(d.BodyPart)
	}
	fmt.Fprintf(&sb, "<b>Síntoma:</b> %s\n", orDash(d.Symptom))
	fmt.Fprintf(&sb, "<b>Zona:</b> %s\n", part)
	fmt.Fprintf(&sb, "<b>Intensidad:</b> %d/10\n", d.Intensity)

	if phase >= services.PhaseInterpretation {
		fmt.Fprintf(&sb, "<b>Interpretación:</b> %s\n", orDash(d.Interpretation))
		if len(d.CatastrophicWords) > 0 {
			fmt.Fprintf(&sb, "⚠️ <b>Palabras catastróficas:</b> %s\n", escape(strings.Join(d.CatastrophicWords, ", ")))
		}
	}
	if phase >= services.PhaseComplaint {
		fmt.Fprintf(&sb, "<b>Queja productiva:</b> %s\n", orDash(d.Complaint))
	}
	if phase >= services.PhaseExperiment {
		fmt.Fprintf(&sb, "<b>Experimento:</b> %s\n", orDash(d.Experiment))
		fmt.Fprintf(&sb, "<b>Hora:</b> %s\n", utils.FormatForDisplay(d.ExperimentTime))
		fmt.Fprintf(&sb, "<b>Predicción:</b> %s\n", orDash(d.Prediction))
	}

	if len(missing) > 0 {
		fmt.Fprintf(&sb, "\n⏳ Falta: %s", formatFields(missing))
	}
	return sb.String()
}

func formatSimilar(entries []database.Entry) string {
	var sb strings.Builder
	sb.WriteString("🔁 <b>Experiencias similares</b>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "• %s %s: %s\n", utils.StatusEmoji(e), escape(e.Symptom), orDash(e.ResultText()))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatEntry(e database.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%s</b> <code>%s</code>\n", utils.StatusEmoji(e), escape(e.Symptom), shortID(e.ID))
	fmt.Fprintf(&sb, "%s %s · %d/10\n", utils.GetBodyPartEmoji(e.BodyPart), utils.GetBodyPartName(e.BodyPart), e.Intensity)
	fmt.Fprintf(&sb, "🧪 %s (%s)\n", escape(e.Experiment), utils.FormatForDisplay(e.ExperimentTime))
	fmt.Fprintf(&sb, "🔮 %s\n", escape(e.Prediction))
	if e.Completed {
		fmt.Fprintf(&sb, "📌 %s\n", escape(e.ResultText()))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatArchive(entries []database.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗂 <b>Archivo de Realidad</b> (%d)\n\n", len(entries))
	for _, e := range entries {
		sb.WriteString(formatEntry(e))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Registra un resultado con /resultado [id] [qué pasó]")
	return sb.String()
}

func formatStats(s database.Stats) string {
	return fmt.Sprintf(`📊 <b>Estadísticas</b>

Experimentos: %d
Completados: %d
Predicciones erróneas: %d%%
Interpretaciones catastróficas: %d
Racha: %d días
Intensidad media: %d/10`,
		s.TotalExperiments, s.CompletedExperiments, s.PredictionAccuracy,
		s.CatastrophicReductions, s.Streak, s.AvgIntensity)
}

func formatAchievements(as *services.AchievementService) string {
	var sb strings.Builder
	sb.WriteString("🏆 <b>Logros</b>\n\n")
	for _, a := range services.AchievementCatalog {
		mark := "🔒"
		if as.IsUnlocked(a.ID) {
			mark = a.Icon
		}
		fmt.Fprintf(&sb, "%s <b>%s</b> · %s\n", mark, escape(a.Title), escape(a.Description))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatHelp(help services.PhaseHelp) string {
	return fmt.Sprintf(`🧪 <b>Archivo de Realidad</b>

<b>%s</b>
<i>%s</i>

Escribe texto libre para rellenar el campo principal de la fase actual, o usa:
/sintoma /zona /intensidad - fase 1
/interpretacion - fase 2
/queja - fase 3
/experimento /hora /prediccion - fase 4
/siguiente - avanzar de fase
/guardar - guardar el experimento
/borrador - ver el borrador
/resultado [id] [texto] - registrar qué pasó
/archivo /stats /logros /exportar /tema`, escape(help.Title), escape(help.Content))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
