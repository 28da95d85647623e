package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrich(t *testing.T) {
	t.Run("ShouldAnnotateAnchor", func(t *testing.T) {
		got := Enrich("Please click here to continue.", []Record{{Target: "https://x.com", Text: "click here"}})
		assert.Equal(t, "Please click here[link:https://x.com] to continue.", got)
	})

	t.Run("ShouldAnnotateEveryOccurrence", func(t *testing.T) {
		got := Enrich("docs and more docs", []Record{{Target: "page_3", Text: "docs"}})
		assert.Equal(t, "docs[link:page_3] and more docs[link:page_3]", got)
	})

	t.Run("ShouldApplyLongestAnchorFirst", func(t *testing.T) {
		records := []Record{
			{Target: "short", Text: "guide"},
			{Target: "long", Text: "user guide"},
		}
		got := Enrich("Read the user guide today.", records)
		assert.Equal(t, "Read the user guide[link:long] today.", got)
	})

	t.Run("ShouldSkipEmptyAnchorOrTarget", func(t *testing.T) {
		records := []Record{
			{Target: "https://x.com", Text: ""},
			{Target: "", Text: "click"},
		}
		assert.Equal(t, "click me", Enrich("click me", records))
	})

	t.Run("ShouldSkipAbsentAnchor", func(t *testing.T) {
		assert.Equal(t, "nothing here", Enrich("nothing here", []Record{{Target: "t", Text: "absent"}}))
	})

	t.Run("ShouldNotAnnotateInsideTargets", func(t *testing.T) {
		records := []Record{
			{Target: "https://example.com/docs", Text: "the documentation"},
			{Target: "https://example.com", Text: "example.com"},
		}
		got := Enrich("Open the documentation on example.com now.", records)
		assert.Equal(t, "Open the documentation[link:https://example.com/docs] on example.com[link:https://example.com] now.", got)
	})

	t.Run("ShouldBeIdempotent", func(t *testing.T) {
		records := []Record{
			{Target: "https://x.com", Text: "click here"},
			{Target: "page_2", Text: "here"},
			{Target: "https://example.com", Text: "example.com"},
		}
		in := "Go click here or there, see example.com and here."
		once := Enrich(in, records)
		assert.Equal(t, once, Enrich(once, records))
	})
}
