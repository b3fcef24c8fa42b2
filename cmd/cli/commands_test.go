package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marileigh/stitchloom/internal/model"
)

func TestCounterFlag_Set(t *testing.T) {
	var c counterFlag

	require.NoError(t, c.Set("body|120|40|main section"))
	require.NoError(t, c.Set("cuff|20"))
	require.NoError(t, c.Set("plain"))

	require.Equal(t, counterFlag{
		{Name: "body", Rows: "120", Stitches: "40", Notes: "main section"},
		{Name: "cuff", Rows: "20"},
		{Name: "plain"},
	}, c)
}

func TestCounterFlag_NotesKeepSeparators(t *testing.T) {
	var c counterFlag
	require.NoError(t, c.Set("lace|8||repeat rows 1|3|5"))
	require.Equal(t, model.Counter{Name: "lace", Rows: "8", Notes: "repeat rows 1|3|5"}, c[0])
}

func TestParseID(t *testing.T) {
	_, err := parseID("not-a-uuid")
	require.Error(t, err)

	id, err := parseID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.NoError(t, err)
	require.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", id.String())
}
