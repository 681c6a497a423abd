package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsConstFoldingOn(t *testing.T) {
	f, err := Load()
	require.NoError(t, err)
	require.True(t, f.ConstFolding)
}

func TestApplyDisable(t *testing.T) {
	f := Features{ConstFolding: true}
	f = f.Apply(nil, []string{"const-folding"})
	require.False(t, f.ConstFolding)
}

func TestApplyEnableThenDisableDisables(t *testing.T) {
	f := Features{ConstFolding: false}
	f = f.Apply([]string{"const-folding"}, []string{"const-folding"})
	require.False(t, f.ConstFolding)
}

func TestApplyUnknownNameIsNoop(t *testing.T) {
	f := Features{ConstFolding: true}
	f = f.Apply([]string{"not-a-real-feature"}, nil)
	require.True(t, f.ConstFolding)
}
