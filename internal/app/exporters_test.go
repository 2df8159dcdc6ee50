package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klabast/wb-services/tomme-kalender/internal/render"
	"github.com/klabast/wb-services/tomme-kalender/internal/schedule"
)

func testCollections() []render.Collection {
	return []render.Collection{
		{
			Date:    time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
			Route:   schedule.Route{Weekday: 1, CycleWeek: 2},
			Label:   "Monday, cycle week 2",
			Streams: []string{"Restavfall"},
		},
		{
			Date:    time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC),
			Route:   schedule.Route{Weekday: 6, CycleWeek: 3},
			Label:   "Saturday, cycle week 3",
			Holiday: "Grunnlovsdag",
		},
	}
}

func TestGenerateICS(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/download?reminder2Days=true&time2Days=18:00&reminder1Day=true&time1Day=19:00&reminderSameDay=true&timeSameDay=07:00", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "Kirkevåg 3", 2025, testCollections())

	resp := w.Result()
	body := w.Body.String()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "attachment; filename=tommekalender_kirkevag_3_2025.ics" {
		t.Errorf("Unexpected Content-Disposition: %s", cd)
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ICSProductID,
		"X-WR-TIMEZONE:" + ICSTimezone,
		"BEGIN:VEVENT",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(body, field) {
			t.Errorf("ICS output missing required field: %s", field)
		}
	}

	if !strings.Contains(body, "DTSTART;VALUE=DATE:20250113") {
		t.Error("Event should be all-day (DTSTART;VALUE=DATE)")
	}
	if !strings.Contains(body, "DTEND;VALUE=DATE:20250114") {
		t.Error("All-day event should end on next day")
	}
	if !strings.Contains(body, "SUMMARY:Tømming: Restavfall") {
		t.Error("Missing event summary for Restavfall")
	}
	// No streams: the route label is used and its comma escaped
	if !strings.Contains(body, `SUMMARY:Tømming: Saturday\, cycle week 3`) {
		t.Error("Missing event summary for route without stream")
	}
	if !strings.Contains(body, "helligdag: Grunnlovsdag") {
		t.Error("Holiday not mentioned in description")
	}

	if got := strings.Count(body, "BEGIN:VALARM"); got != 6 {
		t.Errorf("Expected 6 alarms, got %d", got)
	}
	if !strings.Contains(body, "TRIGGER:-P") {
		t.Error("Alarm missing TRIGGER with negative duration")
	}
	if !strings.Contains(body, "\r\n") {
		t.Error("ICS lines must be CRLF terminated")
	}
}

func TestGenerateICSWithoutReminders(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/download?reminder1Day=true", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "Kirkevåg 3", 2025, testCollections())

	if strings.Contains(w.Body.String(), "BEGIN:VALARM") {
		t.Error("Reminder without time must not produce an alarm")
	}
}

func TestEventUIDStable(t *testing.T) {
	c := testCollections()[0]

	a := EventUID("Kirkevåg 3", c)
	b := EventUID("KIRKEVAG  3", c)
	if a != b {
		t.Errorf("UID should not depend on address spelling: %s != %s", a, b)
	}
	if !strings.HasSuffix(a, "@"+ICSDomain) {
		t.Errorf("UID missing domain: %s", a)
	}

	other := c
	other.Date = other.Date.AddDate(0, 0, 28)
	if EventUID("Kirkevåg 3", other) == a {
		t.Error("Different dates must yield different UIDs")
	}
}

func TestAddAlarm(t *testing.T) {
	tests := []struct {
		name        string
		eventDate   time.Time
		daysBefore  int
		alarmTime   string
		description string
		wantTrigger string
	}{
		{
			name:        "2 days before at 18:00",
			eventDate:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			daysBefore:  2,
			alarmTime:   "18:00",
			description: "Restavfall",
			wantTrigger: "-P1DT6H0M",
		},
		{
			name:        "1 day before at 19:00",
			eventDate:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			daysBefore:  1,
			alarmTime:   "19:00",
			description: "Papir",
			wantTrigger: "-P0DT5H0M",
		},
		{
			name:        "Same day at 07:00",
			eventDate:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			daysBefore:  0,
			alarmTime:   "07:00",
			description: "Matavfall",
			wantTrigger: "P0DT7H0M",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			AddAlarm(&buf, tt.eventDate, tt.daysBefore, tt.alarmTime, tt.description)

			output := buf.String()
			if !strings.Contains(output, "BEGIN:VALARM") || !strings.Contains(output, "END:VALARM") {
				t.Error("Missing VALARM block")
			}
			if !strings.Contains(output, "ACTION:DISPLAY") {
				t.Error("Missing ACTION:DISPLAY")
			}
			if !strings.Contains(output, "TRIGGER:"+tt.wantTrigger+"\r\n") {
				t.Errorf("Expected TRIGGER:%s, got output:\n%s", tt.wantTrigger, output)
			}
			if !strings.Contains(output, tt.description) {
				t.Errorf("Missing description: %s", tt.description)
			}
		})
	}
}

func TestAddAlarmInvalidTime(t *testing.T) {
	for _, at := range []string{"", "7", "ab:cd", "25:00", "12:60"} {
		var buf bytes.Buffer
		AddAlarm(&buf, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 1, at, "Papir")
		if buf.Len() != 0 {
			t.Errorf("AddAlarm(%q) should write nothing, got %q", at, buf.String())
		}
	}
}

func TestGenerateCSV(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateCSV(w, "Kirkevåg 3", 2025, testCollections())

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Expected Content-Type text/csv, got %s", ct)
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}

	want := [][]string{
		{"Dato", "Ukedag", "Syklusuke", "Avfallstype", "Helligdag"},
		{"2025-01-13", "mandag", "2", "Restavfall", ""},
		{"2025-05-17", "lørdag", "3", "Saturday, cycle week 3", "Grunnlovsdag"},
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("Row %d: got %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestGenerateJSON(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateJSON(w, "Kirkevåg 3", 2025, testCollections())

	var out struct {
		Address     string `json:"address"`
		Year        int    `json:"year"`
		Collections []struct {
			Date      string   `json:"date"`
			Weekday   int      `json:"weekday"`
			CycleWeek int      `json:"cycleWeek"`
			Streams   []string `json:"streams"`
			Holiday   string   `json:"holiday"`
		} `json:"collections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if out.Address != "Kirkevåg 3" || out.Year != 2025 {
		t.Errorf("Unexpected header fields: %+v", out)
	}
	if len(out.Collections) != 2 {
		t.Fatalf("Expected 2 collections, got %d", len(out.Collections))
	}
	if out.Collections[0].Date != "2025-01-13" || out.Collections[0].Weekday != 1 || out.Collections[0].CycleWeek != 2 {
		t.Errorf("Unexpected first collection: %+v", out.Collections[0])
	}
	if out.Collections[1].Holiday != "Grunnlovsdag" {
		t.Errorf("Expected holiday on second collection, got %q", out.Collections[1].Holiday)
	}
}
