package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguagesSortedByName(t *testing.T) {
	t.Parallel()

	langs := Languages()
	require.Len(t, langs, 24)
	assert.Equal(t, "Arabic", langs[0].Name)
	for i := 1; i < len(langs); i++ {
		assert.LessOrEqual(t, langs[i-1].Name, langs[i].Name)
	}
}

func TestLanguageLookups(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "French", LanguageName("fr"))
	assert.Equal(t, "Chinese (Simplified)", LanguageName("zh-CN"))
	assert.Equal(t, "Auto-detect", LanguageName(AutoLanguage))
	assert.Equal(t, "xx", LanguageName("xx"))

	assert.Equal(t, "de", ResolveLanguage("German"))
	assert.Equal(t, "pt", ResolveLanguage("PT-br"))
	assert.Equal(t, AutoLanguage, ResolveLanguage("Auto-detect"))
	assert.Equal(t, "klingon", ResolveLanguage("Klingon"))

	assert.True(t, KnownLanguage("ES"))
	assert.False(t, KnownLanguage(AutoLanguage))
}

func TestModeToggleAndSlot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ModeListening, ModeManual.Toggle())
	assert.Equal(t, ModeManual, ModeManual.Toggle().Toggle())
	assert.Equal(t, SlotListening, SlotFor(ModeListening))
	assert.Equal(t, SlotManual, SlotFor(ModeManual))
}

func TestOutputViewDisplay(t *testing.T) {
	t.Parallel()

	failed := OutputView{Kind: OutputFailed, Text: "timeout"}
	assert.Equal(t, "Translation error: timeout", failed.Display())
	assert.False(t, failed.Deliverable())

	ok := OutputView{Kind: OutputTranslated, Text: "Hola"}
	assert.Equal(t, "Hola", ok.Display())
	assert.True(t, ok.Deliverable())

	assert.Equal(t, "", OutputView{Kind: OutputEmpty}.Display())
	assert.Equal(t, "Translating...", OutputView{Kind: OutputPending}.Display())
}
