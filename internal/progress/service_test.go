package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSignaler struct {
	count int
	err   error
}

func (c *countingSignaler) Signal() error {
	c.count++
	return c.err
}

func newTestService(t *testing.T) (*Service, *countingSignaler) {
	t.Helper()
	sig := &countingSignaler{}
	return NewService(NewStore(t.TempDir()), sig), sig
}

func load(t *testing.T, svc *Service) Document {
	t.Helper()
	doc, err := svc.List(context.Background())
	require.NoError(t, err)
	return doc
}

func TestTaskOperations(t *testing.T) {
	ctx := context.Background()
	svc, sig := newTestService(t)

	t.Run("CreateTask normalizes and starts inactive", func(t *testing.T) {
		name, err := svc.CreateTask(ctx, "  Alpha ")
		require.NoError(t, err)
		assert.Equal(t, "alpha", name)

		doc := load(t, svc)
		require.Contains(t, doc, "alpha")
		assert.False(t, doc["alpha"].Active)
		assert.Empty(t, doc["alpha"].Categories)
		assert.Equal(t, 1, sig.count)
	})

	t.Run("CreateTask rejects duplicates case-insensitively", func(t *testing.T) {
		before := sig.count
		_, err := svc.CreateTask(ctx, "ALPHA")
		assert.True(t, IsConflict(err))
		assert.Equal(t, before, sig.count)
	})

	t.Run("CreateTask rejects empty names", func(t *testing.T) {
		_, err := svc.CreateTask(ctx, "   ")
		assert.True(t, IsValidation(err))
	})

	t.Run("ToggleTaskActive flips the flag", func(t *testing.T) {
		active, err := svc.ToggleTaskActive(ctx, "Alpha")
		require.NoError(t, err)
		assert.True(t, active)

		active, err = svc.ToggleTaskActive(ctx, "alpha")
		require.NoError(t, err)
		assert.False(t, active)

		_, err = svc.ToggleTaskActive(ctx, "missing")
		assert.True(t, IsNotFound(err))
	})

	t.Run("RenameTask keeps contents", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "alpha", "art")
		require.NoError(t, err)

		newName, err := svc.RenameTask(ctx, "alpha", "Beta")
		require.NoError(t, err)
		assert.Equal(t, "beta", newName)

		doc := load(t, svc)
		assert.NotContains(t, doc, "alpha")
		require.Contains(t, doc, "beta")
		assert.Contains(t, doc["beta"].Categories, "art")
	})

	t.Run("RenameTask to the same name is a no-op success", func(t *testing.T) {
		before := sig.count
		_, err := svc.RenameTask(ctx, "beta", "BETA")
		require.NoError(t, err)
		assert.Equal(t, before+1, sig.count)
		assert.Contains(t, load(t, svc), "beta")
	})

	t.Run("RenameTask errors", func(t *testing.T) {
		_, err := svc.CreateTask(ctx, "gamma")
		require.NoError(t, err)

		before := sig.count
		_, err = svc.RenameTask(ctx, "missing", "delta")
		assert.True(t, IsNotFound(err))
		_, err = svc.RenameTask(ctx, "beta", "gamma")
		assert.True(t, IsConflict(err))
		_, err = svc.RenameTask(ctx, "beta", "")
		assert.True(t, IsValidation(err))
		assert.Equal(t, before, sig.count)
	})

	t.Run("DeleteTask", func(t *testing.T) {
		require.NoError(t, svc.DeleteTask(ctx, "Gamma"))
		assert.NotContains(t, load(t, svc), "gamma")

		before := sig.count
		assert.True(t, IsNotFound(svc.DeleteTask(ctx, "gamma")))
		assert.Equal(t, before, sig.count)
	})
}

func TestCategoryOperations(t *testing.T) {
	ctx := context.Background()
	svc, sig := newTestService(t)
	_, err := svc.CreateTask(ctx, "alpha")
	require.NoError(t, err)

	name, err := svc.CreateCategory(ctx, "ALPHA", "Art")
	require.NoError(t, err)
	assert.Equal(t, "art", name)

	cat := load(t, svc)["alpha"].Categories["art"]
	require.NotNil(t, cat)
	assert.Empty(t, cat.Subtasks)
	assert.Equal(t, "", cat.Note)

	before := sig.count
	_, err = svc.CreateCategory(ctx, "alpha", "ART")
	assert.True(t, IsConflict(err))
	_, err = svc.CreateCategory(ctx, "missing", "art")
	assert.True(t, IsNotFound(err))
	_, err = svc.CreateCategory(ctx, "alpha", "")
	assert.True(t, IsValidation(err))
	assert.Equal(t, before, sig.count)

	_, err = svc.CreateCategory(ctx, "alpha", "code")
	require.NoError(t, err)
	_, err = svc.RenameCategory(ctx, "alpha", "code", "art")
	assert.True(t, IsConflict(err))
	_, err = svc.RenameCategory(ctx, "alpha", "sound", "music")
	assert.True(t, IsNotFound(err))

	_, err = svc.CreateSubtask(ctx, "alpha", "code", "engine")
	require.NoError(t, err)
	_, err = svc.RenameCategory(ctx, "alpha", "code", "Programming")
	require.NoError(t, err)
	doc := load(t, svc)
	assert.NotContains(t, doc["alpha"].Categories, "code")
	assert.Contains(t, doc["alpha"].Categories["programming"].Subtasks, "engine")

	_, err = svc.RenameCategory(ctx, "alpha", "art", "Art")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, "alpha", "programming"))
	assert.True(t, IsNotFound(svc.DeleteCategory(ctx, "alpha", "programming")))
	assert.NotContains(t, load(t, svc)["alpha"].Categories, "programming")
}

func TestNotesDoNotSignal(t *testing.T) {
	ctx := context.Background()
	svc, sig := newTestService(t)
	_, err := svc.CreateTask(ctx, "alpha")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "alpha", "art")
	require.NoError(t, err)

	before := sig.count
	require.NoError(t, svc.SetNote(ctx, "Alpha", "ART", "Waiting on palette"))
	note, err := svc.Note(ctx, "alpha", "art")
	require.NoError(t, err)
	assert.Equal(t, "Waiting on palette", note)

	require.NoError(t, svc.ClearNote(ctx, "alpha", "art"))
	note, err = svc.Note(ctx, "alpha", "art")
	require.NoError(t, err)
	assert.Equal(t, "", note)
	assert.Equal(t, before, sig.count)

	assert.True(t, IsNotFound(svc.SetNote(ctx, "alpha", "missing", "x")))
	assert.True(t, IsNotFound(svc.ClearNote(ctx, "missing", "art")))
}

func TestSubtaskOperations(t *testing.T) {
	ctx := context.Background()
	svc, sig := newTestService(t)
	_, err := svc.CreateTask(ctx, "alpha")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "alpha", "art")
	require.NoError(t, err)

	before := sig.count
	name, err := svc.CreateSubtask(ctx, "alpha", "art", "Concept")
	require.NoError(t, err)
	assert.Equal(t, "concept", name)
	assert.Equal(t, before+1, sig.count)

	_, err = svc.CreateSubtask(ctx, "alpha", "art", "CONCEPT")
	assert.True(t, IsConflict(err))
	_, err = svc.CreateSubtask(ctx, "alpha", "missing", "x")
	assert.True(t, IsNotFound(err))
	_, err = svc.CreateSubtask(ctx, "alpha", "art", " ")
	assert.True(t, IsValidation(err))
	assert.Equal(t, before+1, sig.count)

	done, err := svc.ToggleSubtask(ctx, "alpha", "art", "concept")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, before+2, sig.count)

	_, err = svc.ToggleSubtask(ctx, "alpha", "art", "missing")
	assert.True(t, IsNotFound(err))
	_, err = svc.ToggleSubtask(ctx, "missing", "art", "concept")
	assert.True(t, IsNotFound(err))

	require.NoError(t, svc.DeleteSubtask(ctx, "alpha", "art", "concept"))
	assert.Equal(t, before+3, sig.count)
	assert.True(t, IsNotFound(svc.DeleteSubtask(ctx, "alpha", "art", "concept")))
	assert.Equal(t, before+3, sig.count)
}

func TestEndToEnd_ToggleCompletesCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateTask(ctx, "alpha")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "alpha", "art")
	require.NoError(t, err)
	_, err = svc.CreateSubtask(ctx, "alpha", "art", "concept")
	require.NoError(t, err)
	_, err = svc.ToggleSubtask(ctx, "alpha", "art", "concept")
	require.NoError(t, err)

	doc := load(t, svc)
	assert.True(t, doc["alpha"].Categories["art"].Subtasks["concept"])
	assert.Equal(t, 100, CategoryPercent(doc["alpha"].Categories["art"]))
}

func TestSignalFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	sig := &countingSignaler{err: errors.New("disk full")}
	svc := NewService(NewStore(t.TempDir()), sig)

	_, err := svc.CreateTask(ctx, "alpha")
	require.NoError(t, err)
	assert.Contains(t, load(t, svc), "alpha")
	assert.Equal(t, 1, sig.count)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, KindConflict, KindOf(newError(KindConflict, "dup")))
	assert.Equal(t, "conflict: dup", newError(KindConflict, "dup").Error())
	assert.Equal(t, "not_found", KindNotFound.String())
}

func TestStructuralMutationsSignalOnce(t *testing.T) {
	ctx := context.Background()
	svc, sig := newTestService(t)

	_, err := svc.CreateTask(ctx, "alpha")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "alpha", "art")
	require.NoError(t, err)
	_, err = svc.CreateSubtask(ctx, "alpha", "art", "concept")
	require.NoError(t, err)

	steps := []struct {
		name string
		run  func() error
	}{
		{"RenameCategory", func() error {
			_, err := svc.RenameCategory(ctx, "alpha", "art", "design")
			return err
		}},
		{"DeleteSubtask", func() error {
			return svc.DeleteSubtask(ctx, "alpha", "design", "concept")
		}},
		{"DeleteCategory", func() error {
			return svc.DeleteCategory(ctx, "alpha", "design")
		}},
		{"RenameTask", func() error {
			_, err := svc.RenameTask(ctx, "alpha", "beta")
			return err
		}},
		{"DeleteTask", func() error {
			return svc.DeleteTask(ctx, "beta")
		}},
	}

	for _, step := range steps {
		before := sig.count
		require.NoError(t, step.run(), step.name)
		assert.Equal(t, before+1, sig.count, step.name)
	}
	assert.Empty(t, load(t, svc))
}
