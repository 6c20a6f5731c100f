package telegram

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"reality-archive/internal/services"
)

// handlers.go - command handlers of the Telegram host

var fieldCommands = map[string]services.Field{
	"/sintoma":        services.FieldSymptom,
	"/zona":           services.FieldBodyPart,
	"/intensidad":     services.FieldIntensity,
	"/interpretacion": services.FieldInterpretation,
	"/queja":          services.FieldComplaint,
	"/experimento":    services.FieldExperiment,
	"/hora":           services.FieldExperimentTime,
	"/prediccion":     services.FieldPrediction,
}

func (b *Bot) registerHandlers() {
	for command, field := range fieldCommands {
		b.handlers[command] = b.fieldHandler(field)
	}

	b.handlers["/start"] = b.handleHelp
	b.handlers["/ayuda"] = b.handleHelp
	b.handlers["/help"] = b.handleHelp
	b.handlers["/siguiente"] = b.handleAdvance
	b.handlers["/guardar"] = b.handleCommit
	b.handlers["/borrador"] = b.handleDraft
	b.handlers["/resultado"] = b.handleResult
	b.handlers["/archivo"] = b.handleArchive
	b.handlers["/stats"] = b.handleStats
	b.handlers["/logros"] = b.handleAchievements
	b.handlers["/exportar"] = b.handleExport
	b.handlers["/tema"] = b.handleTheme
}

func (b *Bot) fieldHandler(field services.Field) func(string) {
	return func(args string) {
		if field == services.FieldBodyPart && args == "" {
			if err := b.sendWithKeyboard("📍 ¿Dónde lo sientes?", b.bodyPartKeyboard()); err != nil {
				b.log.Error("❌ Send failed", zap.Error(err))
			}
			return
		}
		if args == "" {
			b.SendMessageOrLogError(fmt.Sprintf("❌ Falta el valor. Ejemplo: %s ...", commandFor(field)))
			return
		}
		b.editField(field, args)
	}
}

// handlePlainText fills the main field of the current phase.
func (b *Bot) handlePlainText(text string) {
	field, ok := services.PrimaryField(b.services.Workflow.Phase())
	if !ok {
		b.SendMessageOrLogError("💾 El experimento está listo. Usa /guardar")
		return
	}
	b.editField(field, text)
}

func (b *Bot) editField(field services.Field, value string) {
	if err := b.services.Workflow.EditField(field, value); err != nil {
		b.SendMessageOrLogError("❌ " + invalidInputMessage(field, err))
		return
	}
	b.sendDraft()
}

func (b *Bot) handleHelp(string) {
	phase := b.services.Workflow.Phase()
	help := services.HelpFor(phase)
	b.SendMessageOrLogError(formatHelp(help))
}

func (b *Bot) handleDraft(string) {
	b.sendDraft()
}

func (b *Bot) sendDraft() {
	w := b.services.Workflow
	text := formatDraft(w.Phase(), w.Draft(), w.MissingFields())
	if similar := b.services.SimilarToDraft(); len(similar) > 0 && w.Phase() == services.PhaseSymptom {
		text += "\n\n" + formatSimilar(similar)
	}
	if err := b.sendWithKeyboard(text, b.phaseKeyboard()); err != nil {
		b.log.Error("❌ Send failed", zap.Error(err))
	}
}

func (b *Bot) handleAdvance(string) {
	w := b.services.Workflow
	if !w.Advance() {
		if w.Phase() == services.PhaseArchive {
			b.SendMessageOrLogError("💾 Ya estás en el archivo. Usa /guardar")
			return
		}
		b.SendMessageOrLogError("⏳ Faltan campos: " + formatFields(w.MissingFields()))
		return
	}

	help := services.HelpFor(w.Phase())
	b.SendMessageOrLogError(fmt.Sprintf("<b>%s</b>\n<i>%s</i>", escape(help.Title), escape(help.Content)))
	b.sendDraft()
}

func (b *Bot) handleCommit(string) {
	entry, ok, err := b.services.Workflow.Commit()
	if err != nil {
		b.log.Error("❌ Commit failed", zap.Error(err))
		b.SendMessageOrLogError("❌ No se pudo guardar el experimento. El borrador se conserva.")
		return
	}
	if !ok {
		b.SendMessageOrLogError("⏳ Completa todas las fases antes de guardar. Usa /borrador")
		return
	}
	b.log.Info("💾 Experiment saved from chat", zap.String("id", entry.ID))
	b.SendMessageOrLogError(services.CommitAck)
}

// handleResult expects "/resultado <id> <texto>".
func (b *Bot) handleResult(args string) {
	ref, result, _ := strings.Cut(args, " ")
	result = strings.TrimSpace(result)
	if ref == "" || result == "" {
		b.SendMessageOrLogError("❌ Uso: /resultado [id] [qué pasó realmente]")
		return
	}

	entry, err := b.services.CompleteExperiment(ref, result)
	switch {
	case errors.Is(err, services.ErrNotFound):
		b.SendMessageOrLogError("❌ Experimento no encontrado: " + escape(ref))
		return
	case err != nil:
		b.log.Error("❌ Complete failed", zap.Error(err))
		b.SendMessageOrLogError("❌ No se pudo registrar el resultado")
		return
	}

	b.SendMessageOrLogError("🧾 Resultado registrado\n\n" + formatEntry(entry))
}

func (b *Bot) handleArchive(string) {
	entries := b.services.Entries()
	if len(entries) == 0 {
		b.SendMessageOrLogError("📭 Todavía no hay experimentos. Empieza describiendo un síntoma.")
		return
	}
	b.SendMessageOrLogError(formatArchive(entries))
}

func (b *Bot) handleStats(string) {
	b.SendMessageOrLogError(formatStats(b.services.Stats()))
}

func (b *Bot) handleAchievements(string) {
	b.SendMessageOrLogError(formatAchievements(b.services.Achievements))
}

// handleExport sends the archive as a file; "/exportar yaml" picks YAML.
func (b *Bot) handleExport(args string) {
	format := services.FormatJSON
	if strings.EqualFold(args, string(services.FormatYAML)) {
		format = services.FormatYAML
	}

	doc := b.services.Export()
	data, err := doc.Encode(format)
	if err != nil {
		b.log.Error("❌ Export failed", zap.Error(err))
		b.SendMessageOrLogError("❌ No se pudo exportar")
		return
	}
	if err := b.SendDocument(doc.FileName(format), data); err != nil {
		b.log.Error("❌ Export upload failed", zap.Error(err))
		b.SendMessageOrLogError("❌ No se pudo enviar el archivo")
	}
}

func (b *Bot) handleTheme(string) {
	dark, err := b.services.Preferences.ToggleDarkMode()
	if err != nil {
		b.log.Error("❌ Theme not saved", zap.Error(err))
		b.SendMessageOrLogError("❌ No se pudo guardar el tema")
		return
	}
	if dark {
		b.SendMessageOrLogError("🌙 Modo oscuro activado")
		return
	}
	b.SendMessageOrLogError("☀️ Modo claro activado")
}

func commandFor(field services.Field) string {
	for command, f := range fieldCommands {
		if f == field {
			return command
		}
	}
	return ""
}

func invalidInputMessage(field services.Field, err error) string {
	if !errors.Is(err, services.ErrInvalidInput) {
		return "Error inesperado"
	}
	switch field {
	case services.FieldIntensity:
		return "La intensidad debe ser un número del 1 al 10"
	case services.FieldBodyPart:
		return "Zona desconocida. Opciones: cabeza, pecho, estomago, espalda, extremidades, general"
	case services.FieldExperimentTime:
		return "Fecha no válida. Formato: AAAA-MM-DD HH:MM"
	default:
		return "Valor no válido"
	}
}
