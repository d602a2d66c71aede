package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/intentbot/internal/ierrors"
)

func baseCorpus() *Corpus {
	return &Corpus{Intents: []Intent{
		{Name: "greeting", Examples: []string{"hola", "buenas"}, Response: StringPtr("¡Hola!")},
		{Name: "farewell", Examples: []string{"adios"}, Response: StringPtr("Chau")},
	}}
}

func batchCorpus() *Corpus {
	return &Corpus{Intents: []Intent{
		{Name: "greeting", Examples: []string{"hola", "buenos dias", "  "}},
		{Name: "thanks", Examples: []string{"gracias"}, Response: StringPtr("De nada")},
	}}
}

func TestMerge_AppendsNewExamplesAndIntents(t *testing.T) {
	merged, err := Merge(baseCorpus(), batchCorpus())
	require.NoError(t, err)

	require.Len(t, merged.Intents, 3)
	assert.Equal(t, []string{"hola", "buenas", "buenos dias"}, merged.Intents[0].Examples)
	assert.Equal(t, "¡Hola!", merged.Intents[0].ResponseText(), "existing response is kept")
	assert.Equal(t, []string{"adios"}, merged.Intents[1].Examples)
	assert.Equal(t, "thanks", merged.Intents[2].Name)
	assert.Equal(t, "De nada", merged.Intents[2].ResponseText())
}

func TestMerge_Idempotent(t *testing.T) {
	once, err := Merge(baseCorpus(), batchCorpus())
	require.NoError(t, err)
	snapshot := once.Clone()

	twice, err := Merge(once, batchCorpus())
	require.NoError(t, err)

	assert.Equal(t, snapshot, twice)
}

func TestMerge_PreservesOriginalExamples(t *testing.T) {
	base := baseCorpus()
	original := base.Clone()

	merged, err := Merge(base, batchCorpus())
	require.NoError(t, err)

	for i, in := range original.Intents {
		got := merged.Intents[i]
		assert.Equal(t, in.Name, got.Name)
		require.GreaterOrEqual(t, len(got.Examples), len(in.Examples))
		assert.Equal(t, in.Examples, got.Examples[:len(in.Examples)])
	}
}

func TestMerge_DeduplicatesWithinBatch(t *testing.T) {
	batch := &Corpus{Intents: []Intent{
		{Name: "farewell", Examples: []string{"chau", "chau", "nos vemos"}},
	}}

	merged, err := Merge(baseCorpus(), batch)
	require.NoError(t, err)
	assert.Equal(t, []string{"adios", "chau", "nos vemos"}, merged.Intents[1].Examples)
}

func TestMerge_NewIntentIsCopied(t *testing.T) {
	batch := batchCorpus()
	merged, err := Merge(baseCorpus(), batch)
	require.NoError(t, err)

	batch.Intents[1].Examples[0] = "changed"
	assert.Equal(t, "gracias", merged.Intents[2].Examples[0])
}

func TestMerge_Errors(t *testing.T) {
	_, err := Merge(nil, batchCorpus())
	assert.ErrorIs(t, err, ierrors.ErrTypeError)

	_, err = Merge(baseCorpus(), nil)
	assert.ErrorIs(t, err, ierrors.ErrTypeError)

	base := baseCorpus()
	batch := &Corpus{Intents: []Intent{
		{Name: "thanks", Examples: []string{"gracias"}},
		{Name: "greeting"},
	}}
	_, err = Merge(base, batch)
	assert.ErrorIs(t, err, ierrors.ErrMissingExamples)
	assert.Len(t, base.Intents, 2, "base is untouched on failure")
}

func TestMerge_EmptyExamplesIsNotMissing(t *testing.T) {
	batch := &Corpus{Intents: []Intent{{Name: "greeting", Examples: []string{}}}}

	merged, err := Merge(baseCorpus(), batch)
	require.NoError(t, err)
	assert.Equal(t, []string{"hola", "buenas"}, merged.Intents[0].Examples)
}

func TestCorpus_LookupAndTrainingSet(t *testing.T) {
	c := baseCorpus()

	in, ok := c.Lookup("farewell")
	require.True(t, ok)
	assert.Equal(t, "Chau", in.ResponseText())

	_, ok = c.Lookup("nope")
	assert.False(t, ok)

	examples, labels := c.TrainingSet()
	assert.Equal(t, []string{"hola", "buenas", "adios"}, examples)
	assert.Equal(t, []string{"greeting", "greeting", "farewell"}, labels)
	assert.Equal(t, 3, c.ExampleCount())
}
