package tools

import (
	"context"
	"strings"
	"testing"

	apperrors "toolbridge/internal/errors"
)

func TestListProcessRecordsSortedByCPU(t *testing.T) {
	records, total, err := listProcessRecords(5, "cpu")
	if err != nil {
		t.Fatalf("listProcessRecords failed: %v", err)
	}
	if len(records) > 5 {
		t.Fatalf("expected at most 5 records, got %d", len(records))
	}
	if total < len(records) {
		t.Errorf("total %d smaller than returned count %d", total, len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].CPUPercent > records[i-1].CPUPercent {
			t.Errorf("records not sorted by cpu: %v before %v",
				records[i-1].CPUPercent, records[i].CPUPercent)
		}
	}
}

func TestListProcessRecordsSortedByName(t *testing.T) {
	records, _, err := listProcessRecords(20, "name")
	if err != nil {
		t.Fatalf("listProcessRecords failed: %v", err)
	}
	for i := 1; i < len(records); i++ {
		prev := strings.ToLower(records[i-1].Name)
		cur := strings.ToLower(records[i].Name)
		if cur < prev {
			t.Errorf("records not sorted by name: %q before %q", records[i-1].Name, records[i].Name)
		}
	}
}

func TestSortProcessRecordsMissingValuesLast(t *testing.T) {
	records := []ProcessRecord{
		{Pid: 1, Name: "idle", CPUPercent: 0},
		{Pid: 2, Name: "busy", CPUPercent: 55.5},
		{Pid: 3, Name: "gone", CPUPercent: 0},
	}
	sortProcessRecords(records, "cpu")
	if records[0].Pid != 2 {
		t.Errorf("expected busy process first, got pid %d", records[0].Pid)
	}
}

func TestListProcessesTool(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "list_processes", map[string]interface{}{
		"max_count": float64(5),
		"sort_by":   "cpu",
	})
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Result, "PID") {
		t.Errorf("expected table header, got %q", result.Result)
	}
	if !strings.Contains(result.Result, "processes") {
		t.Errorf("expected count summary line, got %q", result.Result)
	}
}

func TestListProcessesRejectsBadSortKey(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "list_processes", map[string]interface{}{
		"sort_by": "priority",
	})
	if result.Success {
		t.Fatal("expected validation failure for bad sort key")
	}
}

func TestControlProcessRequiresTarget(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "control_process", map[string]interface{}{
		"action": "stop",
	})
	if result.Success {
		t.Fatal("expected failure without pid or name")
	}
	if !strings.Contains(result.Error, "pid") {
		t.Errorf("expected error to mention pid, got %q", result.Error)
	}
}

func TestControlProcessNonexistentPid(t *testing.T) {
	registry := newTestRegistry(t)

	// pid far outside any realistic pid range
	result := registry.Execute(context.Background(), "control_process", map[string]interface{}{
		"action": "stop",
		"pid":    float64(999999999),
	})
	if result.Success {
		t.Fatal("expected failure for nonexistent pid")
	}
	if !strings.Contains(result.Error, "not found") {
		t.Errorf("expected 'not found' in error, got %q", result.Error)
	}
}

func TestControlProcessByNameIsAdvisory(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "control_process", map[string]interface{}{
		"action": "start",
		"name":   "foo",
	})
	if !result.Success {
		t.Fatalf("expected advisory success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Result, "not actually executed") {
		t.Errorf("expected advisory message, got %q", result.Result)
	}
}

func TestControlProcessStopByNameIsAdvisory(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "control_process", map[string]interface{}{
		"action": "stop",
		"name":   "some-daemon",
	})
	if !result.Success {
		t.Fatalf("expected advisory success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Result, "not actually executed") {
		t.Errorf("expected advisory message, got %q", result.Result)
	}
}

func TestControlProcessRejectsUnknownAction(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "control_process", map[string]interface{}{
		"action": "suspend",
		"pid":    float64(1),
	})
	if result.Success {
		t.Fatal("expected validation failure for unknown action")
	}
}

func TestControlProcessErrorCodes(t *testing.T) {
	ctx := context.Background()

	_, err := controlProcess(ctx, map[string]interface{}{
		"action": "stop",
		"pid":    float64(999999999),
	})
	if got := apperrors.CodeOf(err); got != apperrors.CodeNotFound {
		t.Errorf("nonexistent pid: code = %q, want %q", got, apperrors.CodeNotFound)
	}

	_, err = controlProcess(ctx, map[string]interface{}{"action": "stop"})
	if got := apperrors.CodeOf(err); got != apperrors.CodeValidation {
		t.Errorf("missing target: code = %q, want %q", got, apperrors.CodeValidation)
	}
}

func TestRenderProcessTableTruncatesLongNames(t *testing.T) {
	records := []ProcessRecord{
		{Pid: 1, Name: strings.Repeat("x", 60), CPUPercent: 1.5, MemoryPercent: 2.5, Status: "running"},
	}
	out := renderProcessTable(records, 1)
	if strings.Contains(out, strings.Repeat("x", 30)) {
		t.Error("expected long name to be truncated")
	}
	if !strings.Contains(out, "Showing 1 of 1 processes") {
		t.Errorf("missing summary line: %q", out)
	}
}
