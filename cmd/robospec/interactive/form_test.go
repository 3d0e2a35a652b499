package interactive

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robospec/robospec-go/pkg/catalog"
	"github.com/robospec/robospec-go/pkg/speccode"
)

func newTestForm() *Form {
	return NewForm(speccode.New(catalog.MustDefault()))
}

func fillIontec(t *testing.T, f *Form) {
	t.Helper()
	f.SelectMode()
	require.NoError(t, f.SetRobotType("Iontec"))
	require.NoError(t, f.SetVariant("KR 20 R3100 Iontec"))
	require.NoError(t, f.SetGripper("Hydraulic"))
	_, err := f.ToggleProtocol("WIFI")
	require.NoError(t, err)
	_, err = f.ToggleAddon("FSD")
	require.NoError(t, err)
}

func TestForm_StartsIdle(t *testing.T) {
	f := newTestForm()
	assert.Equal(t, ModeIdle, f.Mode())
	assert.Nil(t, f.Last())

	assert.ErrorIs(t, f.SetRobotType("Iontec"), ErrWrongMode)
	assert.ErrorIs(t, f.SetCode("1"), ErrWrongMode)
	_, err := f.Submit()
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestForm_ModeTransitions(t *testing.T) {
	f := newTestForm()

	f.SelectMode()
	assert.Equal(t, ModeSelect, f.Mode())
	assert.ErrorIs(t, f.SetCode("1"), ErrWrongMode)

	f.CodeMode()
	assert.Equal(t, ModeCode, f.Mode())
	require.NoError(t, f.SetCode(" 0x1 "))
	assert.Equal(t, "0x1", f.Input())
	assert.ErrorIs(t, f.SetGripper("Hydraulic"), ErrWrongMode)

	f.SelectMode()
	assert.Empty(t, f.Input(), "entering robot mode drops the code")

	f.Clear()
	assert.Equal(t, ModeIdle, f.Mode())
}

func TestForm_VariantFamily(t *testing.T) {
	f := newTestForm()
	f.SelectMode()

	assert.Len(t, f.Options(catalog.KindVariant), 16)

	require.NoError(t, f.SetRobotType("KR12 Scara"))
	assert.Equal(t, []string{"KR12 R650 Z400 Scara", "KR12 R750 Z400 Scara", "KR12 R850 Z400 Scara"},
		f.Options(catalog.KindVariant))

	// Choosing a variant selects its type.
	require.NoError(t, f.SetVariant("KR 30 R2100 Iontec"))
	assert.Equal(t, "Iontec", f.Selection().RobotType)

	// Changing the type drops a variant from another family.
	require.NoError(t, f.SetRobotType("Agilus-2"))
	assert.Empty(t, f.Selection().RobotVariant)

	// A variant within the family survives.
	require.NoError(t, f.SetVariant("KR6 R700-2 AGILUS"))
	require.NoError(t, f.SetRobotType("Agilus-2"))
	assert.Equal(t, "KR6 R700-2 AGILUS", f.Selection().RobotVariant)
}

func TestForm_ResolveIgnoresCase(t *testing.T) {
	f := newTestForm()
	f.SelectMode()

	require.NoError(t, f.SetGripper("hydraulic"))
	assert.Equal(t, "Hydraulic", f.Selection().Gripper)

	err := f.SetGripper("Tentacle")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, "Hydraulic", f.Selection().Gripper)

	require.NoError(t, f.SetGripper(""))
	assert.Empty(t, f.Selection().Gripper)
}

func TestForm_Toggle(t *testing.T) {
	f := newTestForm()
	f.SelectMode()

	on, err := f.ToggleProtocol("EtherCAT")
	require.NoError(t, err)
	assert.True(t, on)
	on, err = f.ToggleProtocol("wifi")
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, []string{"EtherCAT", "WIFI"}, f.Selection().Protocols)

	on, err = f.ToggleProtocol("EtherCAT")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []string{"WIFI"}, f.Selection().Protocols)

	_, err = f.ToggleAddon("Jetpack")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestForm_SubmitSelect(t *testing.T) {
	f := newTestForm()
	fillIontec(t, f)

	res, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, ModeSelect, res.Mode)
	assert.Equal(t, uint16(1), uint16(res.Code.RobotType()))
	assert.Equal(t, res, f.Last())
}

func TestForm_SubmitNormalizesOrder(t *testing.T) {
	f := newTestForm()
	fillIontec(t, f)
	_, err := f.ToggleProtocol("EtherCAT")
	require.NoError(t, err)
	// WIFI precedes EtherCAT in the catalog; toggle it off and on to reverse entry order.
	_, _ = f.ToggleProtocol("WIFI")
	_, _ = f.ToggleProtocol("WIFI")
	assert.Equal(t, []string{"EtherCAT", "WIFI"}, f.Selection().Protocols)

	_, err = f.Submit()
	require.NoError(t, err)
	assert.Equal(t, []string{"WIFI", "EtherCAT"}, f.Selection().Protocols)
}

func TestForm_SubmitIncomplete(t *testing.T) {
	f := newTestForm()
	f.SelectMode()
	require.NoError(t, f.SetGripper("Magnetic"))

	_, err := f.Submit()
	assert.ErrorIs(t, err, speccode.ErrIncompleteSelection)
	assert.Equal(t, []catalog.Kind{catalog.KindRobotType, catalog.KindVariant, catalog.KindProtocol, catalog.KindAddon}, f.Missing())
	assert.Nil(t, f.Last())
}

func TestForm_SubmitCode(t *testing.T) {
	f := newTestForm()
	fillIontec(t, f)
	encoded, err := f.Submit()
	require.NoError(t, err)

	f.Clear()
	f.CodeMode()
	_, err = f.Submit()
	assert.ErrorIs(t, err, ErrNoCode)

	require.NoError(t, f.SetCode(encoded.Code.String()))
	decoded, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, ModeCode, decoded.Mode)
	assert.Equal(t, encoded.Code, decoded.Code)
	assert.Equal(t, encoded.Selection, decoded.Selection)
	assert.Equal(t, encoded.Selection, f.Selection())

	require.NoError(t, f.SetCode("xyz"))
	_, err = f.Submit()
	assert.ErrorIs(t, err, speccode.ErrMalformedHex)
}

func TestSession_EncodeFlow(t *testing.T) {
	var out bytes.Buffer
	s := newSession(newTestForm(), Config{}, &out)

	for _, line := range []string{
		"robot",
		"type Iontec",
		"variant KR 20 R3100 Iontec",
		"gripper Hydraulic",
		"protocol WIFI",
		"addon Conveyor Belt",
		"submit",
	} {
		require.True(t, s.Execute(line), line)
	}

	got := out.String()
	assert.Contains(t, got, "Protocol checked")
	assert.Contains(t, got, "Robot Specifications")
	assert.Contains(t, got, "Addons                   Conveyor Belt")
	assert.NotContains(t, got, "Error:")
}

func TestSession_MissingOptions(t *testing.T) {
	var out bytes.Buffer
	s := newSession(newTestForm(), Config{}, &out)

	s.Execute("robot")
	s.Execute("gripper Hydraulic")
	s.Execute("submit")

	assert.Contains(t, out.String(),
		"please select the following options: Robot Type, Robot Name, Communication Protocols, Addons or a hexadecimal value")
}

func TestSession_DecodeFlow(t *testing.T) {
	var out bytes.Buffer
	s := newSession(newTestForm(), Config{}, &out)

	s.Execute("code 0x10017004180004000")
	s.Execute("show")
	s.Execute("submit")

	got := out.String()
	assert.Contains(t, got, "Mode: code")
	assert.Contains(t, got, "0x10017004180004000")
	assert.Contains(t, got, "Robot Name               KR 20 R3100 Iontec")
}

func TestSession_Misc(t *testing.T) {
	var out bytes.Buffer
	s := newSession(newTestForm(), Config{}, &out)

	assert.True(t, s.Execute(""))
	assert.True(t, s.Execute("bogus"))
	assert.Contains(t, out.String(), "Unknown command: bogus")

	out.Reset()
	s.Execute("type Iontec")
	assert.Contains(t, out.String(), "Error: ")

	out.Reset()
	s.Execute("options protocol")
	assert.Contains(t, out.String(), "Communication Protocols:\n  WIFI\n")

	out.Reset()
	s.Execute("options nothing")
	assert.Contains(t, out.String(), "Unknown option list")

	s.Execute("robot")
	s.Execute("clear")
	assert.Equal(t, ModeIdle, s.Form().Mode())
	assert.True(t, strings.HasPrefix(s.prompt(), "robospec[idle]"))

	assert.False(t, s.Execute("quit"))
}

// blockingReader replays lines, then blocks in Readline until closed.
type blockingReader struct {
	lines   []string
	blocked chan struct{}
	closed  chan struct{}
	once    sync.Once
	closes  int
	mu      sync.Mutex
}

func newBlockingReader(lines ...string) *blockingReader {
	return &blockingReader{lines: lines, blocked: make(chan struct{}, 1), closed: make(chan struct{})}
}

func (r *blockingReader) Readline() (string, error) {
	if len(r.lines) > 0 {
		line := r.lines[0]
		r.lines = r.lines[1:]
		return line, nil
	}
	select {
	case r.blocked <- struct{}{}:
	default:
	}
	<-r.closed
	return "", io.EOF
}

func (r *blockingReader) SetPrompt(string) {}

func (r *blockingReader) Close() error {
	r.mu.Lock()
	r.closes++
	r.mu.Unlock()
	r.once.Do(func() { close(r.closed) })
	return nil
}

func TestSession_RunStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	s := newSession(newTestForm(), Config{}, &out)
	rl := newBlockingReader("robot")
	s.rl = rl

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-rl.blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("session never waited for input")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}

	assert.Equal(t, ModeSelect, s.Form().Mode())
	assert.Contains(t, out.String(), "Exiting...")
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Equal(t, 1, rl.closes, "terminal closed once")
}

func TestSession_RunQuit(t *testing.T) {
	var out bytes.Buffer
	s := newSession(newTestForm(), Config{}, &out)
	rl := newBlockingReader("code 0x10017004180004000", "quit")
	s.rl = rl

	s.Run(context.Background())

	assert.Equal(t, ModeCode, s.Form().Mode())
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Equal(t, 1, rl.closes)
}
