package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogsShareKeys(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	require.Equal(t, []string{"en", "fr"}, l.Languages())
	for key := range l.messages[DefaultLanguage] {
		_, ok := l.messages["en"][key]
		require.True(t, ok, "en is missing %s", key)
	}
	require.Equal(t, "📌 Configurer message", l.Get("fr", "menu.message"))
	require.Equal(t, `Configuration "message" validée: Hello`, l.Format("fr", "commit.done", "message", "Hello"))
}

func TestGetFallsBack(t *testing.T) {
	fsys := fstest.MapFS{
		"loc/fr.json":   {Data: []byte(`{"a":"A-fr","b":"B-fr"}`)},
		"loc/en.json":   {Data: []byte(`{"a":"A-en"}`)},
		"loc/notes.txt": {Data: []byte("ignored")},
	}
	l, err := Load(fsys, "loc")
	require.NoError(t, err)
	require.Equal(t, "A-en", l.Get("en", "a"))
	require.Equal(t, "B-fr", l.Get("en", "b"))
	require.Equal(t, "A-fr", l.Get("de", "a"))
	require.Equal(t, "zzz", l.Get("fr", "zzz"))
	require.False(t, l.Has("de"))
}

func TestLoadRequiresDefaultAndValidJSON(t *testing.T) {
	_, err := Load(fstest.MapFS{"loc/en.json": {Data: []byte(`{}`)}}, "loc")
	require.Error(t, err)
	_, err = Load(fstest.MapFS{"loc/fr.json":   {Data: []byte(`{`)}}, "loc")
	require.Error(t, err)
}
