package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/tomme-kalender/internal/logger"
	"github.com/klabast/wb-services/tomme-kalender/internal/matcher"
	"github.com/klabast/wb-services/tomme-kalender/internal/render"
)

// uidNamespace scopes the name-based UUIDs used as ICS event UIDs
var uidNamespace = uuid.MustParse("b0c8f4a6-3d51-4e2a-8f7c-91a5d2e6c034")

var weekdayNamesNO = [...]string{"", "mandag", "tirsdag", "onsdag", "torsdag", "fredag", "lørdag", "søndag"}

// EventUID returns a stable UID for a collection at address. The same
// address, date and route always yield the same UID, so calendar clients
// update events in place.
func EventUID(address string, c render.Collection) string {
	name := fmt.Sprintf("%s|%d%d|%s", c.Date.Format("2006-01-02"), c.Route.Weekday, c.Route.CycleWeek, matcher.Normalize(address))
	return uuid.NewSHA1(uidNamespace, []byte(name)).String() + "@" + ICSDomain
}

// fileSlug turns an address into something safe for a filename
func fileSlug(address string) string {
	slug := strings.ReplaceAll(matcher.Normalize(address), " ", "_")
	if slug == "" {
		return "adresse"
	}
	return slug
}

// icsEscape escapes TEXT values (RFC 5545 3.3.11)
func icsEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}

func writeEvent(w io.Writer, address string, c render.Collection, stamp string) {
	summary := "Tømming: " + c.StreamLabel()
	description := fmt.Sprintf("Tømming %s, %s", c.StreamLabel(), c.Label)
	if c.Holiday != "" {
		description += " (helligdag: " + c.Holiday + ")"
	}

	fmt.Fprintf(w, "BEGIN:VEVENT\r\n")
	fmt.Fprintf(w, "UID:%s\r\n", EventUID(address, c))
	fmt.Fprintf(w, "DTSTAMP:%s\r\n", stamp)
	fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\r\n", c.Date.Format("20060102"))
	fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\r\n", c.Date.AddDate(0, 0, 1).Format("20060102"))
	fmt.Fprintf(w, "SUMMARY:%s\r\n", icsEscape(summary))
	fmt.Fprintf(w, "DESCRIPTION:%s\r\n", icsEscape(description))
	fmt.Fprintf(w, "LOCATION:%s\r\n", icsEscape(address))
}

func writeCalendarHeader(w io.Writer, name string, subscription bool) {
	fmt.Fprintf(w, "BEGIN:VCALENDAR\r\n")
	fmt.Fprintf(w, "VERSION:2.0\r\n")
	fmt.Fprintf(w, "PRODID:%s\r\n", ICSProductID)
	if subscription {
		fmt.Fprintf(w, "METHOD:PUBLISH\r\n")
	}
	fmt.Fprintf(w, "X-WR-CALNAME:%s\r\n", icsEscape(name))
	fmt.Fprintf(w, "X-WR-TIMEZONE:%s\r\n", ICSTimezone)
	fmt.Fprintf(w, "CALSCALE:GREGORIAN\r\n")
	if subscription {
		fmt.Fprintf(w, "X-PUBLISHED-TTL:PT12H\r\n")
	}
}

// GenerateICS writes an iCalendar file with optional reminders.
// Reminder query params: reminder2Days/time2Days, reminder1Day/time1Day,
// reminderSameDay/timeSameDay (HH:MM).
func GenerateICS(w http.ResponseWriter, r *http.Request, address string, year int, collections []render.Collection) {
	q := r.URL.Query()
	type reminder struct {
		days int
		at   string
	}
	var reminders []reminder
	if q.Get("reminder2Days") == "true" && q.Get("time2Days") != "" {
		reminders = append(reminders, reminder{2, q.Get("time2Days")})
	}
	if q.Get("reminder1Day") == "true" && q.Get("time1Day") != "" {
		reminders = append(reminders, reminder{1, q.Get("time1Day")})
	}
	if q.Get("reminderSameDay") == "true" && q.Get("timeSameDay") != "" {
		reminders = append(reminders, reminder{0, q.Get("timeSameDay")})
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=tommekalender_%s_%d.ics", fileSlug(address), year))

	writeCalendarHeader(w, fmt.Sprintf("Tømmekalender %s %d", address, year), false)
	stamp := time.Now().UTC().Format("20060102T150405Z")
	for _, c := range collections {
		writeEvent(w, address, c, stamp)
		for _, rem := range reminders {
			AddAlarm(w, c.Date, rem.days, rem.at, c.StreamLabel())
		}
		fmt.Fprintf(w, "END:VEVENT\r\n")
	}
	fmt.Fprintf(w, "END:VCALENDAR\r\n")
}

// AddAlarm adds a VALARM at alarmTime (HH:MM) daysBefore the event date.
// Invalid times are ignored.
func AddAlarm(w io.Writer, eventDate time.Time, daysBefore int, alarmTime string, description string) {
	parts := strings.Split(alarmTime, ":")
	if len(parts) != 2 {
		return
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return
	}

	// Trigger is relative to the start of the all-day event
	eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)
	alarmDate := eventStart.AddDate(0, 0, -daysBefore)
	alarmAt := time.Date(alarmDate.Year(), alarmDate.Month(), alarmDate.Day(), hour, minute, 0, 0, time.UTC)

	totalMinutes := int(alarmAt.Sub(eventStart).Minutes())
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	days := totalMinutes / (24 * 60)
	hours := totalMinutes % (24 * 60) / 60
	minutes := totalMinutes % 60

	fmt.Fprintf(w, "BEGIN:VALARM\r\n")
	fmt.Fprintf(w, "ACTION:DISPLAY\r\n")
	fmt.Fprintf(w, "DESCRIPTION:%s\r\n", icsEscape("Påminnelse: "+description))
	fmt.Fprintf(w, "TRIGGER:%sP%dDT%dH%dM\r\n", sign, days, hours, minutes)
	fmt.Fprintf(w, "END:VALARM\r\n")
}

// GenerateCSV writes one row per collection date
func GenerateCSV(w http.ResponseWriter, address string, year int, collections []render.Collection) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=tommekalender_%s_%d.csv", fileSlug(address), year))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Dato", "Ukedag", "Syklusuke", "Avfallstype", "Helligdag"})
	for _, c := range collections {
		_ = cw.Write([]string{
			c.Date.Format("2006-01-02"),
			weekdayNamesNO[c.Route.Weekday],
			strconv.Itoa(c.Route.CycleWeek),
			c.StreamLabel(),
			c.Holiday,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Log.WithError(err).Error("Error writing CSV export")
	}
}

// exportCollection is the JSON shape of one exported date
type exportCollection struct {
	Date      string   `json:"date"`
	Weekday   int      `json:"weekday"`
	CycleWeek int      `json:"cycleWeek"`
	Label     string   `json:"label"`
	Streams   []string `json:"streams,omitempty"`
	Holiday   string   `json:"holiday,omitempty"`
}

// GenerateJSON writes the collection dates as a JSON document
func GenerateJSON(w http.ResponseWriter, address string, year int, collections []render.Collection) {
	out := make([]exportCollection, 0, len(collections))
	for _, c := range collections {
		out = append(out, exportCollection{
			Date:      c.Date.Format("2006-01-02"),
			Weekday:   c.Route.Weekday,
			CycleWeek: c.Route.CycleWeek,
			Label:     c.Label,
			Streams:   c.Streams,
			Holiday:   c.Holiday,
		})
	}

	body, err := json.Marshal(map[string]interface{}{
		"address":     address,
		"year":        year,
		"collections": out,
	})
	if err != nil {
		logger.Log.WithError(err).Error("Error encoding JSON export")
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=tommekalender_%s_%d.json", fileSlug(address), year))
	if _, err := w.Write(body); err != nil {
		logger.Log.WithError(err).Error("Error writing JSON export")
	}
}

// GenerateSubscriptionICS writes an inline ICS feed for calendar
// subscriptions: no attachment header and no alarms.
func GenerateSubscriptionICS(w http.ResponseWriter, r *http.Request, address string, collections []render.Collection) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")

	writeCalendarHeader(w, "Tømmekalender "+address, true)
	stamp := time.Now().UTC().Format("20060102T150405Z")
	for _, c := range collections {
		writeEvent(w, address, c, stamp)
		fmt.Fprintf(w, "END:VEVENT\r\n")
	}
	fmt.Fprintf(w, "END:VCALENDAR\r\n")
}
