package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"no alarm words", "me duele un poco la cabeza", []string{}},
		{"lexicon order not text order", "no puedo más, seguro es un infarto", []string{"infarto", "no puedo"}},
		{"case insensitive", "Esto es TERRIBLE y Fatal", []string{"terrible", "fatal"}},
		{"substring match", "la gravedad del asunto", []string{"grave"}},
		{"accented text", "Siempre me pasa, nunca se va", []string{"siempre", "nunca"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text, CatastrophicLexicon))
		})
	}
}

func TestDetect_SubsetOfLexiconAndDeterministic(t *testing.T) {
	text := "es horrible, insoportable, permanente e incurable; siempre igual"
	first := Detect(text, CatastrophicLexicon)
	second := Detect(text, CatastrophicLexicon)
	assert.Equal(t, first, second)

	pos := -1
	for _, word := range first {
		idx := indexOf(CatastrophicLexicon, word)
		assert.GreaterOrEqual(t, idx, 0, "%q not in lexicon", word)
		assert.Greater(t, idx, pos, "matches must follow lexicon order")
		pos = idx
	}
}

func TestDetect_CustomLexicon(t *testing.T) {
	assert.Equal(t, []string{"Heart Attack", "can't"}, Detect("surely a heart attack, I can't stand it", []string{"Heart Attack", "never", "can't"}))
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
