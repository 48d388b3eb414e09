package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

func TestManager_Lifecycle(t *testing.T) {
	m, err := NewManager(10, logger.NewTestLogger())
	require.NoError(t, err)

	s := m.Create()
	assert.NotEmpty(t, s.ID())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Delete(s.ID()))
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(s.ID()), models.ErrSessionNotFound)
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	m, err := NewManager(2, logger.NewTestLogger())
	require.NoError(t, err)

	a := m.Create()
	b := m.Create()

	// touch a so that b is the oldest
	_, err = m.Get(a.ID())
	require.NoError(t, err)

	m.Create()
	assert.Equal(t, 2, m.Len())

	_, err = m.Get(b.ID())
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = m.Get(a.ID())
	assert.NoError(t, err)
}
