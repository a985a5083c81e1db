package docx

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionRevisionCounter(t *testing.T) {
	doc := openDoc(t, minimalParts(`<w:p/>`))
	ses := NewSession(doc, WithLogger(zap.NewNop()))

	require.Equal(t, int64(0), ses.Revision())
	require.Equal(t, int64(1), ses.Bump())
	require.Equal(t, int64(2), ses.Bump())
	require.Equal(t, int64(2), ses.Revision())
	require.Same(t, doc, ses.Document())
	require.NotEmpty(t, ses.ID())
}

func TestSessionsAreIndependent(t *testing.T) {
	a := NewSession(openDoc(t, minimalParts(`<w:p/>`)))
	b := NewSession(openDoc(t, minimalParts(`<w:p/>`)))

	a.Bump()
	require.Equal(t, int64(1), a.Revision())
	require.Equal(t, int64(0), b.Revision())
	require.NotEqual(t, a.ID(), b.ID())
}
