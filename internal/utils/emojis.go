package utils

import (
	"strings"

	"reality-archive/internal/database"
)

// Body part names and emojis for hosts.
func GetBodyPartName(part database.BodyPart) string {
	if name, ok := database.BodyPartNames[part]; ok {
		return name
	}
	return string(part)
}

func GetBodyPartEmoji(part database.BodyPart) string {
	switch part {
	case database.Head:
		return "🧠"
	case database.Chest:
		return "🫀"
	case database.Stomach:
		return "🤢"
	case database.Back:
		return "🦴"
	case database.Extremities:
		return "🦵"
	case database.General:
		return "🧍"
	default:
		return "📌"
	}
}

// ParseBodyPart accepts the English ids and the Spanish labels.
func ParseBodyPart(value string) (database.BodyPart, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "head", "cabeza":
		return database.Head, true
	case "chest", "pecho":
		return database.Chest, true
	case "stomach", "estomago", "estómago":
		return database.Stomach, true
	case "back", "espalda":
		return database.Back, true
	case "extremities", "extremidades":
		return database.Extremities, true
	case "general", "todo", "todo el cuerpo":
		return database.General, true
	default:
		return "", false
	}
}

func StatusEmoji(e database.Entry) string {
	if e.Completed {
		return "✅"
	}
	return "🧪"
}
