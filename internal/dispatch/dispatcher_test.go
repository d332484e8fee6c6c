package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/platform"
	"github.com/devkit-labs/devkit/internal/probe"
	"github.com/devkit-labs/devkit/internal/testutil"
	"github.com/devkit-labs/devkit/internal/testutil/testlog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// host is a fake machine with brew available and a "widget" tool whose
// reported version tests can change.
type host struct {
	fake    *testutil.FakeRunner
	version string
}

func newHost(t *testing.T) *host {
	t.Helper()
	h := &host{fake: testutil.NewFakeRunner().Install("brew")}
	h.fake.OnName("widget", testutil.VersionSwitch(&h.version))
	return h
}

// installWidget puts widget on PATH reporting v.
func (h *host) installWidget(v string) {
	h.version = "widget " + v
	h.fake.Install("widget")
}

// brewSets makes "brew <verb> widget" succeed and leave widget at v.
func (h *host) brewSets(verb, v string) {
	h.fake.On("brew "+verb+" widget", func(platform.Command) (platform.Result, error) {
		h.installWidget(v)
		return platform.Result{Stdout: "==> Pouring widget\n"}, nil
	})
}

func widget(chain ...manifest.InstallStrategy) manifest.ToolDescriptor {
	if len(chain) == 0 {
		chain = []manifest.InstallStrategy{manifest.BackendInstall{Backend: manifest.BackendBrew, Package: "widget"}}
	}
	return manifest.ToolDescriptor{
		Name:     "widget",
		Binary:   "widget",
		Category: "development",
		Probe:    manifest.ProbeSpec{Args: []string{"--version"}},
		Install:  chain,
		Update:   manifest.UpdateStrategy{Kind: manifest.UpdateBackend},
	}
}

func newDispatcher(t *testing.T, h *host, opts ...Option) *Dispatcher {
	t.Helper()
	opts = append([]Option{WithLogger(testlog.New(t))}, opts...)
	return New(h.fake, opts...)
}

func TestInstall_ViaBackendThenReprobe(t *testing.T) {
	h := newHost(t)
	h.brewSets("install", "2.1.0")
	d := newDispatcher(t, h)

	res := d.Install(context.Background(), widget(), manifest.BackendBrew)
	if res.Status != probe.StatusInstalled {
		t.Fatalf("Status = %q (%s), want installed", res.Status, res.Message)
	}
	if res.After != "2.1.0" {
		t.Errorf("After = %q, want %q", res.After, "2.1.0")
	}
	if !h.fake.Ran("brew install widget") {
		t.Errorf("calls = %v, want brew install widget", h.fake.Calls())
	}
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	h := newHost(t)
	h.installWidget("1.0.0")
	d := newDispatcher(t, h)

	res := d.Install(context.Background(), widget(), manifest.BackendBrew)
	if res.Status != probe.StatusUnchanged {
		t.Fatalf("Status = %q, want unchanged", res.Status)
	}
	if h.fake.RanProgram("brew") {
		t.Error("brew invoked for an installed tool")
	}
}

func TestInstall_ManualFallbackWhenBackendDoesNotMatch(t *testing.T) {
	h := newHost(t)
	d := newDispatcher(t, h)
	desc := widget(
		manifest.BackendInstall{Backend: manifest.BackendApt, Package: "widget"},
		manifest.ManualInstall{URL: "https://example.com/widget"},
	)

	res := d.Install(context.Background(), desc, manifest.BackendBrew)
	if res.Status != probe.StatusSkipped {
		t.Fatalf("Status = %q (%s), want skipped", res.Status, res.Message)
	}
	if !strings.Contains(res.Message, "https://example.com/widget") {
		t.Errorf("Message = %q, want manual URL", res.Message)
	}
	if len(h.fake.Calls()) != 0 {
		t.Errorf("commands run: %v", h.fake.Calls())
	}
}

func TestInstall_FallsBackToNextEntry(t *testing.T) {
	h := newHost(t)
	h.fake.Install("go")
	h.fake.On("brew install widget", testutil.Fail(1, "Error: No available formula with the name \"widget\""))
	h.fake.On("go install example.com/widget@latest", func(platform.Command) (platform.Result, error) {
		h.installWidget("2.2.0")
		return platform.Result{}, nil
	})
	d := newDispatcher(t, h)
	desc := widget(
		manifest.BackendInstall{Backend: manifest.BackendBrew, Package: "widget"},
		manifest.CommandInstall{Driver: manifest.DriverGo, Target: "example.com/widget@latest"},
	)

	res := d.Install(context.Background(), desc, manifest.BackendBrew)
	if res.Status != probe.StatusInstalled {
		t.Fatalf("Status = %q (%s), want installed", res.Status, res.Message)
	}
	if res.After != "2.2.0" {
		t.Errorf("After = %q, want 2.2.0", res.After)
	}
	want := []string{"brew install widget", "go install example.com/widget@latest"}
	if got := h.fake.Calls(); !containsInOrder(got, want) {
		t.Errorf("calls = %v, want %v in order", got, want)
	}
}

func TestInstall_SkipsDriverNotOnPath(t *testing.T) {
	h := newHost(t)
	h.fake.On("brew install widget", testutil.Fail(1, "boom"))
	d := newDispatcher(t, h)
	desc := widget(
		manifest.BackendInstall{Backend: manifest.BackendBrew, Package: "widget"},
		manifest.CommandInstall{Driver: manifest.DriverCargo, Target: "widget"},
	)

	res := d.Install(context.Background(), desc, manifest.BackendBrew)
	if res.Status != probe.StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if h.fake.RanProgram("cargo") {
		t.Error("cargo invoked though not on PATH")
	}
}

func TestInstall_ChainExhausted(t *testing.T) {
	h := newHost(t)
	h.fake.On("brew install widget", testutil.Fail(1, "Error: widget: download failed"))
	d := newDispatcher(t, h)

	res := d.Install(context.Background(), widget(), manifest.BackendBrew)
	if res.Status != probe.StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if !errors.Is(res.Err, ErrChainExhausted) {
		t.Errorf("Err = %v, want ErrChainExhausted", res.Err)
	}
	if !strings.Contains(res.Message, "download failed") {
		t.Errorf("Message = %q, want captured stderr", res.Message)
	}
}

func TestInstall_SucceededButStillMissing(t *testing.T) {
	h := newHost(t)
	d := newDispatcher(t, h)

	res := d.Install(context.Background(), widget(), manifest.BackendBrew)
	if res.Status != probe.StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Message, "not on PATH") {
		t.Errorf("Message = %q", res.Message)
	}
	if n := strings.Count(res.Message, "brew:widget"); n != 1 {
		t.Errorf("Message = %q names the method %d times, want once", res.Message, n)
	}
}

func TestInstall_NoBackendNoManual(t *testing.T) {
	h := newHost(t)
	d := newDispatcher(t, h)

	res := d.Install(context.Background(), widget(), manifest.BackendNone)
	if res.Status != probe.StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if !IsBackendUnavailable(res) {
		t.Errorf("IsBackendUnavailable = false for %v", res.Err)
	}
}

func TestInstall_NoBackendWithManual(t *testing.T) {
	h := newHost(t)
	d := newDispatcher(t, h)
	desc := widget(
		manifest.BackendInstall{Backend: manifest.BackendBrew, Package: "widget"},
		manifest.ManualInstall{URL: "https://example.com/widget"},
	)

	res := d.Install(context.Background(), desc, manifest.BackendNone)
	if res.Status != probe.StatusSkipped {
		t.Fatalf("Status = %q, want skipped", res.Status)
	}
	if IsBackendUnavailable(res) {
		t.Error("skipped result reported as backend unavailable")
	}
}

func TestInstall_DryRun(t *testing.T) {
	h := newHost(t)
	var out bytes.Buffer
	d := newDispatcher(t, h, WithDryRun(true), WithOutput(&out, &out))

	res := d.Install(context.Background(), widget(), manifest.BackendBrew)
	if res.Status != probe.StatusSkipped {
		t.Fatalf("Status = %q, want skipped", res.Status)
	}
	if !strings.Contains(res.Message, "brew install widget") {
		t.Errorf("Message = %q", res.Message)
	}
	if h.fake.RanProgram("brew") {
		t.Error("brew invoked during dry run")
	}
	if !strings.Contains(out.String(), "[dry-run] would run: brew install widget") {
		t.Errorf("output = %q", out.String())
	}
}

func TestInstall_CommandTimeout(t *testing.T) {
	h := newHost(t)
	var got time.Duration
	h.fake.On("brew install widget", func(c platform.Command) (platform.Result, error) {
		got = c.Timeout
		return platform.Result{}, &platform.ExitError{Command: c.String(), ExitCode: -1}
	})
	d := newDispatcher(t, h, WithTimeout(2*time.Minute))

	d.Install(context.Background(), widget(), manifest.BackendBrew)
	if got != 2*time.Minute {
		t.Errorf("command timeout = %v, want 2m", got)
	}
}

func TestInstall_TimeoutIsFailure(t *testing.T) {
	h := newHost(t)
	h.fake.On("brew install widget", func(c platform.Command) (platform.Result, error) {
		return platform.Result{ExitCode: -1}, fmt.Errorf("%s: %w after %s", c, platform.ErrTimeout, c.Timeout)
	})
	d := newDispatcher(t, h)

	res := d.Install(context.Background(), widget(), manifest.BackendBrew)
	if res.Status != probe.StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Message, "command timed out after 30m0s") {
		t.Errorf("Message = %q, want timeout", res.Message)
	}
}

func TestInstall_Span(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	h := newHost(t)
	h.brewSets("install", "2.1.0")
	d := newDispatcher(t, h, WithTracer(tp.Tracer("test")))

	d.Install(context.Background(), widget(), manifest.BackendBrew)

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	if !containsInOrder(names, []string{"install widget"}) {
		t.Errorf("spans = %v, want install widget", names)
	}
}

func TestRunScript(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("#!/bin/sh\necho installing widget\n"))
	}))
	defer server.Close()

	h := newHost(t)
	h.fake.Install("sh")
	var script string
	h.fake.OnName("sh", func(c platform.Command) (platform.Result, error) {
		data, err := os.ReadFile(c.Args[0])
		if err != nil {
			return platform.Result{}, err
		}
		script = string(data)
		h.installWidget("3.0.0")
		return platform.Result{}, nil
	})
	d := newDispatcher(t, h, WithHTTPClient(server.Client()))
	desc := widget(manifest.CommandInstall{Driver: manifest.DriverScript, Target: server.URL + "/install.sh"})

	res := d.Install(context.Background(), desc, manifest.BackendNone)
	if res.Status != probe.StatusInstalled {
		t.Fatalf("Status = %q (%s), want installed", res.Status, res.Message)
	}
	if !strings.Contains(script, "installing widget") {
		t.Errorf("script run = %q", script)
	}
	if gotUA != "devkit-cli" {
		t.Errorf("User-Agent = %q, want devkit-cli", gotUA)
	}
}

func TestRunScript_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	h := newHost(t)
	h.fake.Install("sh")
	d := newDispatcher(t, h, WithHTTPClient(server.Client()))
	desc := widget(manifest.CommandInstall{Driver: manifest.DriverScript, Target: server.URL + "/missing.sh"})

	res := d.Install(context.Background(), desc, manifest.BackendNone)
	if res.Status != probe.StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Message, "status 404") {
		t.Errorf("Message = %q, want status 404", res.Message)
	}
	if h.fake.RanProgram("sh") {
		t.Error("sh invoked after failed download")
	}
}

func TestRunScript_DownloadTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	h := newHost(t)
	h.fake.Install("sh")
	d := newDispatcher(t, h, WithHTTPClient(server.Client()), WithTimeout(200*time.Millisecond))
	desc := widget(manifest.CommandInstall{Driver: manifest.DriverScript, Target: server.URL + "/slow.sh"})

	start := time.Now()
	res := d.Install(context.Background(), desc, manifest.BackendNone)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Install took %v, download not bounded by timeout", elapsed)
	}
	if res.Status != probe.StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Message, "timed out after 200ms") {
		t.Errorf("Message = %q, want timed out after 200ms", res.Message)
	}
	if h.fake.RanProgram("sh") {
		t.Error("sh invoked after stalled download")
	}
}

func containsInOrder(got, want []string) bool {
	i := 0
	for _, g := range got {
		if i < len(want) && g == want[i] {
			i++
		}
	}
	return i == len(want)
}
