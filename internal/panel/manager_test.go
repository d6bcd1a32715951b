package panel

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestManager_OpenCreatesOnce(t *testing.T) {
	host := NewMemHost()
	m := NewManager(host, nil)

	first, created, err := m.Open("glueful.report", "Report", false, "<html>one</html>")
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if !created {
		t.Fatal("first Open should report created=true")
	}

	second, created, err := m.Open("glueful.report", "Report", false, "<html>two</html>")
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	if created {
		t.Fatal("second Open should reuse the live panel")
	}
	if first != second {
		t.Fatal("second Open returned a different LivePanel")
	}

	if host.CreateCalls() != 1 {
		t.Fatalf("host created %d panels, want 1", host.CreateCalls())
	}
	native := host.Panels[0]
	if native.Reveals != 1 {
		t.Fatalf("reused panel revealed %d times, want 1", native.Reveals)
	}
	if native.HTML != "<html>two</html>" {
		t.Fatalf("reused panel HTML = %q, want updated content", native.HTML)
	}
}

func TestManager_DistinctViewTypesAreIndependent(t *testing.T) {
	host := NewMemHost()
	m := NewManager(host, nil)

	if _, _, err := m.Open("glueful.report", "Report", false, "a"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Open("glueful.routes", "Routes", false, "b"); err != nil {
		t.Fatal(err)
	}

	if host.CreateCalls() != 2 {
		t.Fatalf("host created %d panels, want 2", host.CreateCalls())
	}
	if diff := cmp.Diff([]string{"glueful.report", "glueful.routes"}, m.Active()); diff != "" {
		t.Fatalf("Active() mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_OpenPropagatesHostError(t *testing.T) {
	host := NewMemHost()
	host.CreateErr = errors.New("no editor surface")
	m := NewManager(host, nil)

	_, _, err := m.Open("glueful.report", "Report", false, "x")
	if err == nil {
		t.Fatal("expected host creation error")
	}
	if err != host.CreateErr {
		t.Fatalf("host error must propagate unmodified, got %v", err)
	}
	if len(m.Active()) != 0 {
		t.Fatalf("failed Open must not track a panel, active=%v", m.Active())
	}
}

func TestManager_DisposeDeregistersThenAllowsRecreate(t *testing.T) {
	host := NewMemHost()
	m := NewManager(host, nil)

	if _, _, err := m.Open("glueful.report", "Report", false, "one"); err != nil {
		t.Fatal(err)
	}
	host.Panels[0].Dispose()

	if n := len(m.Active()); n != 0 {
		t.Fatalf("disposed panel still tracked, active=%d", n)
	}

	// Reopening after user-driven dispose must create a brand-new panel.
	_, created, err := m.Open("glueful.report", "Report", false, "two")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("reopen after dispose should create a new native panel")
	}
	if host.CreateCalls() != 2 {
		t.Fatalf("host created %d panels, want 2", host.CreateCalls())
	}
}

func TestManager_UpdateContentOnAbsentPanelIsNoop(t *testing.T) {
	m := NewManager(NewMemHost(), nil)
	if m.UpdateContent("glueful.report", "late result") {
		t.Fatal("UpdateContent on absent viewType should report false")
	}
}

func TestManager_UpdateContentRerendersLivePanel(t *testing.T) {
	host := NewMemHost()
	m := NewManager(host, nil)
	if _, _, err := m.Open("glueful.report", "Report", false, "one"); err != nil {
		t.Fatal(err)
	}
	if !m.UpdateContent("glueful.report", "two") {
		t.Fatal("UpdateContent on live viewType should report true")
	}
	if host.Panels[0].HTML != "two" {
		t.Fatalf("HTML = %q, want %q", host.Panels[0].HTML, "two")
	}
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	host := NewMemHost()
	m := NewManager(host, nil)
	if _, _, err := m.Open("glueful.report", "Report", false, "x"); err != nil {
		t.Fatal(err)
	}

	m.Close("glueful.report")
	m.Close("glueful.report")
	m.Close("never.existed")

	if !host.Panels[0].Disposed {
		t.Fatal("Close should dispose the native panel")
	}
	if len(m.Active()) != 0 {
		t.Fatalf("active after close: %v", m.Active())
	}
}

func TestManager_CloseAll(t *testing.T) {
	host := NewMemHost()
	m := NewManager(host, nil)
	for _, vt := range []string{"glueful.a", "glueful.b", "glueful.c"} {
		if _, _, err := m.Open(vt, "T", false, "x"); err != nil {
			t.Fatal(err)
		}
	}
	m.CloseAll()
	if len(m.Active()) != 0 {
		t.Fatalf("active after CloseAll: %v", m.Active())
	}
	for _, p := range host.Panels {
		if !p.Disposed {
			t.Fatalf("panel %q not disposed", p.ViewType)
		}
	}
}
