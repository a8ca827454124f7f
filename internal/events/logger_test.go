package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/CallForge/DrillLine/internal/models"
	"github.com/google/go-cmp/cmp"
)

type recordingJournal struct {
	appended []models.Transition
	err      error
}

func (j *recordingJournal) Append(t models.Transition) error {
	j.appended = append(j.appended, t)
	return j.err
}

func TestLogger_WritesOneJSONObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithWriter(&buf))

	call := models.CallInfo{SID: "CA123", From: "+15550001111", To: "+15559990000"}
	l.Log(models.EventMenu, call, map[string]any{"digits": "2"})
	l.Log(models.EventCallStart, call, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	want := map[string]any{
		"event":  "MENU",
		"sid":    "CA123",
		"from":   "+15550001111",
		"to":     "+15559990000",
		"digits": "2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestLogger_NullFieldSurvivesEncoding(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithWriter(&buf))

	l.Log(models.EventScenarioSelect, models.CallInfo{SID: "CA1"}, map[string]any{"difficulty": nil})

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	v, present := got["difficulty"]
	if !present || v != nil {
		t.Errorf("expected explicit null difficulty, got %v (present=%v)", v, present)
	}
}

func TestLogger_TeesIntoJournal(t *testing.T) {
	var buf bytes.Buffer
	j := &recordingJournal{}
	l := NewLogger(WithWriter(&buf), WithJournal(j))

	call := models.CallInfo{SID: "CA9"}
	l.Log("M1_GATE", call, map[string]any{"digits": "8", "pass": true})

	if len(j.appended) != 1 {
		t.Fatalf("expected 1 journaled transition, got %d", len(j.appended))
	}
	rec := j.appended[0]
	if rec.Event != "M1_GATE" || rec.Call.SID != "CA9" {
		t.Errorf("unexpected journaled transition: %+v", rec)
	}
	if rec.Time == 0 {
		t.Error("journaled transition missing timestamp")
	}
}

func TestLogger_JournalFailureIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	j := &recordingJournal{err: errors.New("disk full")}
	l := NewLogger(WithWriter(&buf), WithJournal(j))

	// Must not panic or stop the stdout record.
	l.Log(models.EventCallStart, models.CallInfo{SID: "CA2"}, nil)

	if buf.Len() == 0 {
		t.Error("stdout record missing after journal failure")
	}
}
