package main

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
	"github.com/tartampluch/candela/internal/store"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{"Defaults", nil, options{}, false},
		{"All", []string{"-debug", "-list", "-data-dir", "/tmp/x"}, options{debug: true, list: true, dataDir: "/tmp/x"}, false},
		{"Version", []string{"-version"}, options{version: true}, false},
		{"Unknown", []string{"-nope"}, options{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunMain_Version(t *testing.T) {
	var out bytes.Buffer
	code := runMain([]string{"-version"}, &out)

	assert.Equal(t, config.ExitCodeSuccess, code)
	assert.Contains(t, out.String(), config.AppName)
	assert.Contains(t, out.String(), runtime.GOOS)
}

func TestRunMain_BadFlag(t *testing.T) {
	assert.Equal(t, config.ExitCodeError, runMain([]string{"-nope"}, &bytes.Buffer{}))
}

func TestRunMain_List(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()

	_, err := store.New(dir).Add(engine.Draft{Name: "Alice", Day: 15, Month: 6})
	require.NoError(t, err)

	var out bytes.Buffer
	code := runMain([]string{"-list", "-data-dir", dir}, &out)

	assert.Equal(t, config.ExitCodeSuccess, code)
	assert.Contains(t, out.String(), "-- all --")
	assert.Contains(t, out.String(), "15/06  Alice")
	assert.NotContains(t, out.String(), config.MsgAppStarting, "logs must not mix with the listing")
}

func TestPrintEvents(t *testing.T) {
	st := store.New(t.TempDir())
	st.Clock = fixedClock{time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)}

	for _, d := range []engine.Draft{
		{Name: "New Year", Day: 1, Month: 1, EventType: engine.Special},
		{Name: "Alice", Day: 15, Month: 6},
		{Name: "Bob", Day: 10, Month: 6},
	} {
		_, err := st.Add(d)
		require.NoError(t, err)
	}

	var out bytes.Buffer
	require.NoError(t, printEvents(&out, st))

	want := strings.Join([]string{
		"-- upcoming --",
		"  0  10/06  Bob",
		"  5  15/06  Alice",
		"-- all --",
		"  0  10/06  Bob",
		"  5  15/06  Alice",
		"205  01/01  New Year",
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
}

func TestPrintEvents_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printEvents(&out, store.New(t.TempDir())))
	assert.Equal(t, "-- upcoming --\n-- all --\n", out.String())
}
