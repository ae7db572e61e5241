package mirror_test

import (
	"testing"

	"github.com/jrsteele09/catalog-console/mirror"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

func TestList(t *testing.T) {
	l := mirror.NewList[item]()
	require.True(t, l.Snapshot().Empty())

	source := []item{{"1", "Lamp"}, {"2", "Desk"}}
	l.Replace(source, 12)
	source[0].Name = "changed"

	snap := l.Snapshot()
	require.False(t, snap.Empty())
	require.Equal(t, 12, snap.Total)
	require.Equal(t, "Lamp", snap.Items[0].Name)

	snap.Items[1].Name = "also changed"
	found, ok := l.Find(func(i item) bool { return i.ID == "2" })
	require.True(t, ok)
	require.Equal(t, "Desk", found.Name)

	_, ok = l.Find(func(i item) bool { return i.ID == "3" })
	require.False(t, ok)

	l.Reset()
	require.True(t, l.Snapshot().Empty())
	require.Empty(t, l.Snapshot().Items)
}
