package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagConverterConvert(t *testing.T) {
	converter := &TagConverter{
		Categories: map[string]string{
			"cs": "Computer Science",
		},
		Series: map[string]string{
			"type/zettelkasten": "Zettelkasten",
		},
		KeepUnmappedTypes: true,
	}

	t.Run("Split", func(t *testing.T) {
		taxonomy := converter.Convert([]string{
			"domain/cs/algorithms/analysis",
			"type/zettelkasten",
			"status/evergreen",
		})
		assert.Equal(t, []string{"Computer Science"}, taxonomy.Categories)
		assert.Equal(t, []string{"algorithms-analysis"}, taxonomy.Topics)
		assert.Equal(t, "Zettelkasten", taxonomy.Series)
	})

	t.Run("StatusTagsAreNeverEmitted", func(t *testing.T) {
		taxonomy := converter.Convert([]string{"status/evergreen", "status/draft"})
		assert.True(t, taxonomy.Empty())
	})

	t.Run("UnmappedCategoryIsTitleCased", func(t *testing.T) {
		taxonomy := converter.Convert([]string{"domain/machine-learning/transformers"})
		assert.Equal(t, []string{"Machine Learning"}, taxonomy.Categories)
		assert.Equal(t, []string{"transformers"}, taxonomy.Topics)
	})

	t.Run("FirstSeriesWins", func(t *testing.T) {
		taxonomy := converter.Convert([]string{"type/zettelkasten", "type/howto"})
		assert.Equal(t, "Zettelkasten", taxonomy.Series)
	})

	t.Run("UnmappedSeries", func(t *testing.T) {
		taxonomy := converter.Convert([]string{"type/book-notes"})
		assert.Equal(t, "Book Notes", taxonomy.Series)
	})

	t.Run("UnmappedSeriesDropped", func(t *testing.T) {
		strict := &TagConverter{Series: map[string]string{}}
		taxonomy := strict.Convert([]string{"type/book-notes"})
		assert.Empty(t, taxonomy.Series)
	})

	t.Run("UnknownRootFlattensToTopic", func(t *testing.T) {
		taxonomy := converter.Convert([]string{"project/Notepress"})
		assert.Equal(t, []string{"project-notepress"}, taxonomy.Topics)
	})

	t.Run("Deduplication", func(t *testing.T) {
		taxonomy := converter.Convert([]string{"domain/cs/algorithms", "domain/cs/algorithms"})
		assert.Equal(t, []string{"Computer Science"}, taxonomy.Categories)
		assert.Equal(t, []string{"algorithms"}, taxonomy.Topics)
	})
}

func TestTagConverterFlatTags(t *testing.T) {
	converter := NewTagConverter(ConfigTags{})
	tags := converter.FlatTags([]string{
		"domain/productivity",
		"domain/cs/algorithms",
		"type/zettelkasten",
		"status/evergreen",
	})
	// Sorted, domain tags only
	assert.Equal(t, []string{"domain-cs-algorithms", "domain-productivity"}, tags)
}

func TestUnpublishableReason(t *testing.T) {
	tags := []string{"domain/cs", "status/evergreen"}

	reason, skip := UnpublishableReason(tags, []string{"status/evergreen"}, nil)
	assert.False(t, skip)
	assert.Empty(t, reason)

	reason, skip = UnpublishableReason(tags, []string{"status/evergreen", "reviewed"}, nil)
	assert.True(t, skip)
	assert.Equal(t, "missing required tag: reviewed", reason)

	reason, skip = UnpublishableReason(tags, nil, []string{"domain/cs"})
	assert.True(t, skip)
	assert.Equal(t, "contains excluded tag: domain/cs", reason)

	_, skip = UnpublishableReason(tags, nil, nil)
	assert.False(t, skip)
}
