package studio

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codestudio/core/command"
	"codestudio/core/event"
	"codestudio/core/eventbus"
	"codestudio/core/state"
	"codestudio/domain/history"
	"codestudio/domain/symbol"
	"codestudio/infrastructure/encode"
	"codestudio/infrastructure/imageio"
	"codestudio/infrastructure/scan"
)

// memoryRepository is an in-memory history.Repository for testing.
type memoryRepository struct {
	records   []*history.Record
	insertErr error
}

func (m *memoryRepository) FindAll(ctx context.Context) ([]*history.Record, error) {
	out := make([]*history.Record, len(m.records))
	for i, r := range m.records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *memoryRepository) Insert(ctx context.Context, record *history.Record) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, record.Clone())
	return nil
}

func (m *memoryRepository) Update(ctx context.Context, record *history.Record) error {
	for i, r := range m.records {
		if r.ID == record.ID {
			m.records[i] = record.Clone()
			return nil
		}
	}
	return history.ErrRecordNotFound
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return history.ErrRecordNotFound
}

func (m *memoryRepository) Clear(ctx context.Context) error {
	m.records = nil
	return nil
}

// scriptedEngine returns a fixed report or error for every Detect call.
type scriptedEngine struct {
	report *scan.Report
	err    error
	calls  int
}

func (e *scriptedEngine) Detect(ctx context.Context, img image.Image, opts scan.Options) (*scan.Report, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if e.report != nil {
		return e.report, nil
	}
	return &scan.Report{}, nil
}

// testHarness wires a studio to a real event bus and records every event in
// publish order.
type testHarness struct {
	studio *Studio
	bus    eventbus.EventBus
	events chan event.Event
	repo   *memoryRepository
	engine *scriptedEngine
}

func newHarness(t *testing.T, withHistory bool) *testHarness {
	t.Helper()

	bus := eventbus.New(64)
	events := make(chan event.Event, 64)
	bus.Subscribe(func(e event.Event) {
		events <- e
	})

	repo := &memoryRepository{}
	var svc *history.Service
	if withHistory {
		svc = history.NewService(repo, 10)
	}

	engine := &scriptedEngine{}
	st := New(&Config{
		Renderer:      encode.NewLibraryRenderer(),
		Engine:        engine,
		History:       svc,
		EventBus:      bus,
		RenderOptions: encode.DefaultOptions(),
	})
	st.Start()

	t.Cleanup(func() {
		st.Stop()
		bus.Close()
	})

	return &testHarness{studio: st, bus: bus, events: events, repo: repo, engine: engine}
}

func (h *testHarness) send(t *testing.T, cmd command.Command) {
	t.Helper()
	if err := h.studio.Send(cmd); err != nil {
		t.Fatalf("Send(%s) error = %v", cmd.CommandName(), err)
	}
}

func (h *testHarness) next(t *testing.T) event.Event {
	t.Helper()
	select {
	case e := <-h.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

// expectSequence asserts the next published events match names exactly.
func (h *testHarness) expectSequence(t *testing.T, names ...string) []event.Event {
	t.Helper()
	got := make([]event.Event, 0, len(names))
	for i, name := range names {
		e := h.next(t)
		if e.EventName() != name {
			t.Fatalf("event[%d] = %s, want %s", i, e.EventName(), name)
		}
		got = append(got, e)
	}
	return got
}

func (h *testHarness) expectNoEvent(t *testing.T) {
	t.Helper()
	select {
	case e := <-h.events:
		t.Fatalf("unexpected event %s", e.EventName())
	case <-time.After(100 * time.Millisecond):
	}
}

func stateChange(t *testing.T, e event.Event, from, to state.StudioState) {
	t.Helper()
	sc, ok := e.(*event.StudioStateChanged)
	if !ok {
		t.Fatalf("event type = %T, want *event.StudioStateChanged", e)
	}
	if sc.OldState != from || sc.NewState != to {
		t.Errorf("state change %s -> %s, want %s -> %s", sc.OldState, sc.NewState, from, to)
	}
}

func TestConfig_Defaults(t *testing.T) {
	st := New(&Config{})

	if st.logger == nil {
		t.Error("logger not defaulted")
	}
	if cap(st.cmdChan) != 16 {
		t.Errorf("command buffer = %d, want 16", cap(st.cmdChan))
	}
	if st.State() != state.StateIdle {
		t.Errorf("initial state = %s, want %s", st.State(), state.StateIdle)
	}
}

func TestStudio_GenerateQR(t *testing.T) {
	h := newHarness(t, true)

	h.send(t, command.NewGenerateCode("job-1", "https://example.com", "qr", "low"))

	events := h.expectSequence(t,
		"StudioStateChanged", "CodeGenerated", "HistoryUpdated", "StudioStateChanged")
	stateChange(t, events[0], state.StateIdle, state.StateGenerating)
	stateChange(t, events[3], state.StateGenerating, state.StateIdle)

	gen := events[1].(*event.CodeGenerated)
	if gen.JobID() != "job-1" {
		t.Errorf("JobID = %s, want job-1", gen.JobID())
	}
	if gen.Kind != "QR Code" {
		t.Errorf("Kind = %s, want QR Code", gen.Kind)
	}
	if gen.Payload != "https://example.com" {
		t.Errorf("Payload = %s", gen.Payload)
	}
	if gen.Image == nil {
		t.Fatal("Image is nil")
	}
	if gen.Image.Bounds().Dx() == 0 {
		t.Error("Image is empty")
	}

	hu := events[2].(*event.HistoryUpdated)
	if hu.Count != 1 {
		t.Errorf("history count = %d, want 1", hu.Count)
	}
	if !h.studio.HasGeneratedCode() {
		t.Error("HasGeneratedCode() = false after generate")
	}
}

func TestStudio_GenerateCode128(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewGenerateCode("job-1", "PKG-2024-00173", "code128", ""))

	events := h.expectSequence(t, "StudioStateChanged", "CodeGenerated", "StudioStateChanged")
	gen := events[1].(*event.CodeGenerated)
	if gen.Kind != "Code 128" {
		t.Errorf("Kind = %s, want Code 128", gen.Kind)
	}
}

func TestStudio_GenerateEmptyPayload(t *testing.T) {
	h := newHarness(t, true)

	h.send(t, command.NewGenerateCode("job-1", "", "qr", "low"))

	events := h.expectSequence(t, "StudioStateChanged", "GenerateFailed", "StudioStateChanged")
	fail := events[1].(*event.GenerateFailed)
	if fail.Reason != "Please enter data to encode!" {
		t.Errorf("Reason = %q", fail.Reason)
	}
	if h.studio.HasGeneratedCode() {
		t.Error("HasGeneratedCode() = true after failed generate")
	}
	if len(h.repo.records) != 0 {
		t.Errorf("history records = %d, want 0", len(h.repo.records))
	}
}

func TestStudio_GenerateModuleScaleOverride(t *testing.T) {
	h := newHarness(t, false)

	render := func(jobID string, scale int) image.Image {
		cmd := command.NewGenerateCode(jobID, "scaled", "qr", "")
		cmd.ModuleScale = scale
		h.send(t, cmd)
		events := h.expectSequence(t, "StudioStateChanged", "CodeGenerated", "StudioStateChanged")
		return events[1].(*event.CodeGenerated).Image
	}

	small := render("job-1", 5)
	large := render("job-2", 10)

	if 2*small.Bounds().Dx() != large.Bounds().Dx() {
		t.Errorf("widths = %d and %d, want the second doubled",
			small.Bounds().Dx(), large.Bounds().Dx())
	}
}

func TestStudio_FailedGenerateClearsHeldCode(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewGenerateCode("job-1", "keep me", "qr", ""))
	h.expectSequence(t, "StudioStateChanged", "CodeGenerated", "StudioStateChanged")
	if !h.studio.HasGeneratedCode() {
		t.Fatal("HasGeneratedCode() = false after generate")
	}

	h.send(t, command.NewGenerateCode("job-2", "", "qr", ""))
	h.expectSequence(t, "StudioStateChanged", "GenerateFailed", "StudioStateChanged")
	if h.studio.HasGeneratedCode() {
		t.Error("HasGeneratedCode() = true after failed generate")
	}

	// The earlier code is gone; saving now reports nothing to save.
	h.send(t, command.NewSaveCode("job-3", filepath.Join(t.TempDir(), "stale.png")))
	e := h.next(t)
	fail, ok := e.(*event.SaveFailed)
	if !ok {
		t.Fatalf("event type = %T, want *event.SaveFailed", e)
	}
	if fail.Reason != "No code to save! Generate a code first." {
		t.Errorf("Reason = %q", fail.Reason)
	}
}

func TestStudio_HasGeneratedCodePolledConcurrently(t *testing.T) {
	h := newHarness(t, false)

	// Poll from another goroutine while the actor generates, the way the UI
	// thread refreshes the save button.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			h.studio.HasGeneratedCode()
		}
	}()

	for i := 0; i < 5; i++ {
		h.send(t, command.NewGenerateCode("job", "payload", "qr", ""))
		h.expectSequence(t, "StudioStateChanged", "CodeGenerated", "StudioStateChanged")
	}
	<-done

	if !h.studio.HasGeneratedCode() {
		t.Error("HasGeneratedCode() = false after generate")
	}
}

func TestStudio_GenerateNonASCIICode128(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewGenerateCode("job-1", "café", "code128", ""))

	events := h.expectSequence(t, "StudioStateChanged", "GenerateFailed", "StudioStateChanged")
	fail := events[1].(*event.GenerateFailed)
	if fail.Reason != "Invalid barcode data. Code128 requires valid ASCII characters." {
		t.Errorf("Reason = %q", fail.Reason)
	}
}

func TestStudio_GenerateUnknownKind(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewGenerateCode("job-1", "data", "hologram", ""))

	// Kind parsing fails before any state transition.
	e := h.next(t)
	fail, ok := e.(*event.GenerateFailed)
	if !ok {
		t.Fatalf("event type = %T, want *event.GenerateFailed", e)
	}
	if fail.Reason != "Failed to generate code." {
		t.Errorf("Reason = %q", fail.Reason)
	}
	h.expectNoEvent(t)
}

func TestStudio_SaveWithoutGenerate(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewSaveCode("job-1", filepath.Join(t.TempDir(), "code.png")))

	e := h.next(t)
	fail, ok := e.(*event.SaveFailed)
	if !ok {
		t.Fatalf("event type = %T, want *event.SaveFailed", e)
	}
	if fail.Reason != "No code to save! Generate a code first." {
		t.Errorf("Reason = %q", fail.Reason)
	}
	h.expectNoEvent(t)
}

func TestStudio_SaveGeneratedCode(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewGenerateCode("job-1", "save me", "qr", ""))
	h.expectSequence(t, "StudioStateChanged", "CodeGenerated", "StudioStateChanged")

	path := filepath.Join(t.TempDir(), "out", "qr-code.png")
	h.send(t, command.NewSaveCode("job-2", path))

	events := h.expectSequence(t, "StudioStateChanged", "CodeSaved", "StudioStateChanged")
	stateChange(t, events[0], state.StateIdle, state.StateSaving)

	saved := events[1].(*event.CodeSaved)
	if saved.Path != path {
		t.Errorf("Path = %s, want %s", saved.Path, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestStudio_SaveAppendsExtension(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewGenerateCode("job-1", "data", "code128", ""))
	h.expectSequence(t, "StudioStateChanged", "CodeGenerated", "StudioStateChanged")

	h.send(t, command.NewSaveCode("job-2", filepath.Join(t.TempDir(), "barcode")))

	events := h.expectSequence(t, "StudioStateChanged", "CodeSaved", "StudioStateChanged")
	saved := events[1].(*event.CodeSaved)
	if !strings.HasSuffix(saved.Path, "barcode.png") {
		t.Errorf("Path = %s, want .png appended", saved.Path)
	}
}

func TestStudio_ScanFile(t *testing.T) {
	h := newHarness(t, true)
	h.engine.report = &scan.Report{
		Detections: []scan.Detection{{Format: "QR Code", Payload: "hello"}},
		Elapsed:    5 * time.Millisecond,
	}

	path := writeScanImage(t)
	h.send(t, command.NewScanFile("job-1", path, true))

	events := h.expectSequence(t,
		"StudioStateChanged", "ScanImageLoaded", "StudioStateChanged",
		"ScanCompleted", "HistoryUpdated", "StudioStateChanged")
	stateChange(t, events[0], state.StateIdle, state.StateLoading)
	stateChange(t, events[2], state.StateLoading, state.StateScanning)
	stateChange(t, events[5], state.StateScanning, state.StateIdle)

	loaded := events[1].(*event.ScanImageLoaded)
	if loaded.Path != path {
		t.Errorf("Path = %s, want %s", loaded.Path, path)
	}
	if loaded.Format != "png" {
		t.Errorf("Format = %s, want png", loaded.Format)
	}
	if loaded.Width <= 0 || loaded.Height <= 0 {
		t.Errorf("dimensions = %dx%d", loaded.Width, loaded.Height)
	}
	if loaded.Image == nil {
		t.Error("thumbnail is nil")
	}

	completed := events[3].(*event.ScanCompleted)
	if len(completed.Detections) != 1 {
		t.Fatalf("detections = %d, want 1", len(completed.Detections))
	}
	if completed.Detections[0].Payload != "hello" {
		t.Errorf("Payload = %s", completed.Detections[0].Payload)
	}

	if len(h.repo.records) != 1 {
		t.Fatalf("history records = %d, want 1", len(h.repo.records))
	}
	if h.repo.records[0].Source != history.SourceScanned {
		t.Errorf("Source = %s, want %s", h.repo.records[0].Source, history.SourceScanned)
	}
}

func TestStudio_ScanMissingFile(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewScanFile("job-1", filepath.Join(t.TempDir(), "missing.png"), true))

	events := h.expectSequence(t, "StudioStateChanged", "ScanFailed", "StudioStateChanged")
	stateChange(t, events[0], state.StateIdle, state.StateLoading)
	stateChange(t, events[2], state.StateLoading, state.StateIdle)

	fail := events[1].(*event.ScanFailed)
	if fail.Stage != "load" {
		t.Errorf("Stage = %s, want load", fail.Stage)
	}
	if fail.Reason != "Unable to read image file. File may be corrupted." {
		t.Errorf("Reason = %q", fail.Reason)
	}
	if h.engine.calls != 0 {
		t.Errorf("engine called %d times for unreadable file", h.engine.calls)
	}
}

func TestStudio_ScanEngineError(t *testing.T) {
	h := newHarness(t, false)
	h.engine.err = errors.New("decoder exploded")

	h.send(t, command.NewScanFile("job-1", writeScanImage(t), true))

	events := h.expectSequence(t,
		"StudioStateChanged", "ScanImageLoaded", "StudioStateChanged",
		"ScanFailed", "StudioStateChanged")
	fail := events[3].(*event.ScanFailed)
	if fail.Stage != "decode" {
		t.Errorf("Stage = %s, want decode", fail.Stage)
	}
	if fail.Reason != "Failed to scan code." {
		t.Errorf("Reason = %q", fail.Reason)
	}
}

func TestStudio_ScanNoDetections(t *testing.T) {
	h := newHarness(t, true)
	h.engine.report = &scan.Report{PatternHint: true}

	h.send(t, command.NewScanFile("job-1", writeScanImage(t), true))

	events := h.expectSequence(t,
		"StudioStateChanged", "ScanImageLoaded", "StudioStateChanged",
		"ScanCompleted", "StudioStateChanged")
	completed := events[3].(*event.ScanCompleted)
	if len(completed.Detections) != 0 {
		t.Errorf("detections = %d, want 0", len(completed.Detections))
	}
	if !completed.PatternHint {
		t.Error("PatternHint = false, want true")
	}
	if len(h.repo.records) != 0 {
		t.Errorf("history records = %d, want 0", len(h.repo.records))
	}
}

func TestStudio_RescanWithoutImage(t *testing.T) {
	h := newHarness(t, false)

	h.send(t, command.NewRescanImage("job-1", true))

	e := h.next(t)
	fail, ok := e.(*event.ScanFailed)
	if !ok {
		t.Fatalf("event type = %T, want *event.ScanFailed", e)
	}
	if fail.Reason != "No image loaded to scan." {
		t.Errorf("Reason = %q", fail.Reason)
	}
	h.expectNoEvent(t)
}

func TestStudio_RescanReusesImage(t *testing.T) {
	h := newHarness(t, false)
	h.engine.report = &scan.Report{
		Detections: []scan.Detection{{Format: "Code 128", Payload: "again"}},
	}

	h.send(t, command.NewScanFile("job-1", writeScanImage(t), false))
	h.expectSequence(t,
		"StudioStateChanged", "ScanImageLoaded", "StudioStateChanged",
		"ScanCompleted", "StudioStateChanged")

	h.send(t, command.NewRescanImage("job-2", true))

	events := h.expectSequence(t, "StudioStateChanged", "ScanCompleted", "StudioStateChanged")
	stateChange(t, events[0], state.StateIdle, state.StateScanning)

	completed := events[1].(*event.ScanCompleted)
	if completed.JobID() != "job-2" {
		t.Errorf("JobID = %s, want job-2", completed.JobID())
	}
	if h.engine.calls != 2 {
		t.Errorf("engine calls = %d, want 2", h.engine.calls)
	}
}

func TestStudio_HistoryFailureDoesNotFailGenerate(t *testing.T) {
	h := newHarness(t, true)
	h.repo.insertErr = errors.New("disk full")

	h.send(t, command.NewGenerateCode("job-1", "data", "qr", ""))

	// HistoryUpdated is absent; the generate itself still succeeds.
	h.expectSequence(t, "StudioStateChanged", "CodeGenerated", "StudioStateChanged")
	h.expectNoEvent(t)
}

func TestStudio_RejectsWhenBusy(t *testing.T) {
	bus := eventbus.New(16)
	defer bus.Close()

	st := New(&Config{
		Renderer: encode.NewLibraryRenderer(),
		Engine:   &scriptedEngine{},
		EventBus: bus,
	})

	// Drive the handler directly with the studio mid-operation.
	if err := st.transitionTo(state.StateScanning); err != nil {
		t.Fatalf("transitionTo() error = %v", err)
	}

	st.handleGenerate(command.NewGenerateCode("job-1", "data", "qr", ""))

	if st.State() != state.StateScanning {
		t.Errorf("state = %s, want %s", st.State(), state.StateScanning)
	}
	if st.HasGeneratedCode() {
		t.Error("busy studio generated a code")
	}
}

func TestStudio_UnknownCommandIgnored(t *testing.T) {
	st := New(&Config{})
	st.processCommand(&fakeCommand{})

	if st.State() != state.StateIdle {
		t.Errorf("state = %s, want %s", st.State(), state.StateIdle)
	}
}

type fakeCommand struct{}

func (c *fakeCommand) CommandName() string { return "Fake" }

func TestStudio_StopTransitionsToStopped(t *testing.T) {
	st := New(&Config{
		Renderer: encode.NewLibraryRenderer(),
		Engine:   &scriptedEngine{},
	})
	st.Start()
	st.Stop()

	if st.State() != state.StateStopped {
		t.Errorf("state after Stop = %s, want %s", st.State(), state.StateStopped)
	}
	if err := st.Send(command.NewRescanImage("job-1", false)); err == nil {
		t.Error("Send() after Stop should fail")
	}
}

func TestStudio_SendQueueFull(t *testing.T) {
	st := New(&Config{CommandBuffer: 1})

	if err := st.Send(command.NewRescanImage("job-1", false)); err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if err := st.Send(command.NewRescanImage("job-2", false)); err == nil {
		t.Error("second Send() should report a full queue")
	}
}

// writeScanImage renders a small QR code and saves it as a PNG fixture.
func writeScanImage(t *testing.T) string {
	t.Helper()

	img, err := encode.NewLibraryRenderer().Render(context.Background(), encode.Request{
		Kind:    symbol.KindQR,
		Payload: "fixture",
		Options: encode.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "fixture.png")
	if err := imageio.Save(path, img); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return path
}
