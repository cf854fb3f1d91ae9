package icsfile

import (
	"errors"
	"strings"
	"time"
	_ "time/tzdata"

	"calendar-sync/core/reconcile"

	ical "github.com/arran4/golang-ical"
)

const (
	utcLayout   = "20060102T150405Z"
	localLayout = "20060102T150405"
	dateLayout  = "20060102"
)

func decodeEvent(ve *ical.VEvent) (reconcile.CalendarEvent, error) {
	id := ve.Id()
	if id == "" {
		return reconcile.CalendarEvent{}, errors.New("missing UID")
	}

	start, err := decodeTime(ve.GetProperty(ical.ComponentPropertyDtStart))
	if err != nil {
		return reconcile.CalendarEvent{}, err
	}
	end, err := decodeTime(ve.GetProperty(ical.ComponentPropertyDtEnd))
	if err != nil {
		return reconcile.CalendarEvent{}, err
	}

	ev := reconcile.CalendarEvent{
		ID:             id,
		Summary:        value(ve, ical.ComponentPropertySummary),
		Start:          start,
		End:            end,
		Location:       value(ve, ical.ComponentPropertyLocation),
		Description:    value(ve, ical.ComponentPropertyDescription),
		ConferenceLink: value(ve, ical.ComponentPropertyUrl),
		Status:         strings.ToLower(value(ve, ical.ComponentPropertyStatus)),
	}
	if strings.EqualFold(value(ve, ical.ComponentPropertyTransp), "TRANSPARENT") {
		ev.Transparency = reconcile.TransparencyTransparent
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		email := strings.TrimPrefix(strings.TrimPrefix(p.Value, "mailto:"), "MAILTO:")
		if email == "" {
			continue
		}
		ev.Attendees = append(ev.Attendees, reconcile.Attendee{
			Email:       email,
			DisplayName: param(p, "CN"),
			IsResource:  strings.EqualFold(param(p, "CUTYPE"), "RESOURCE") || strings.EqualFold(param(p, "CUTYPE"), "ROOM"),
		})
	}
	return ev, nil
}

func encodeEvent(ve *ical.VEvent, ev reconcile.CalendarEvent) {
	ve.SetDtStampTime(time.Now().UTC())
	ve.SetSummary(ev.Summary)
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
	if ev.Location != "" {
		ve.SetLocation(ev.Location)
	}
	if ev.ConferenceLink != "" {
		ve.SetProperty(ical.ComponentPropertyUrl, ev.ConferenceLink)
	}
	if ev.Transparency == reconcile.TransparencyTransparent {
		ve.SetProperty(ical.ComponentPropertyTransp, "TRANSPARENT")
	}
	if ev.Status != "" {
		ve.SetProperty(ical.ComponentPropertyStatus, strings.ToUpper(ev.Status))
	}
	encodeTime(ve, ical.ComponentPropertyDtStart, ev.Start)
	encodeTime(ve, ical.ComponentPropertyDtEnd, ev.End)
	for _, a := range ev.Attendees {
		var params []ical.PropertyParameter
		if a.DisplayName != "" {
			params = append(params, &ical.KeyValues{Key: "CN", Value: []string{a.DisplayName}})
		}
		if a.IsResource {
			params = append(params, &ical.KeyValues{Key: "CUTYPE", Value: []string{"RESOURCE"}})
		}
		ve.AddProperty(ical.ComponentPropertyAttendee, "mailto:"+a.Email, params...)
	}
}

// encodeTime writes dates as VALUE=DATE and instants in their zone when it loads,
// in UTC otherwise.
func encodeTime(ve *ical.VEvent, prop ical.ComponentProperty, t reconcile.EventTime) {
	switch v := t.(type) {
	case reconcile.AllDay:
		ve.SetProperty(prop, v.Time().Format(dateLayout), &ical.KeyValues{Key: "VALUE", Value: []string{"DATE"}})
	case reconcile.Instant:
		if v.TimeZone != "" {
			if loc, err := time.LoadLocation(v.TimeZone); err == nil {
				ve.SetProperty(prop, v.At.In(loc).Format(localLayout), &ical.KeyValues{Key: "TZID", Value: []string{v.TimeZone}})
				return
			}
		}
		ve.SetProperty(prop, v.At.UTC().Format(utcLayout))
	}
}

func decodeTime(p *ical.IANAProperty) (reconcile.EventTime, error) {
	if p == nil || strings.TrimSpace(p.Value) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(p.Value)

	switch {
	case strings.EqualFold(param(p, "VALUE"), "DATE") || !strings.Contains(v, "T"):
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, err
		}
		return reconcile.OnDate(t), nil
	case strings.HasSuffix(v, "Z"):
		t, err := time.Parse(utcLayout, v)
		if err != nil {
			return nil, err
		}
		return reconcile.At(t, ""), nil
	default:
		tz := param(p, "TZID")
		loc := time.UTC
		if tz != "" {
			if l, err := time.LoadLocation(tz); err == nil {
				loc = l
			}
		}
		t, err := time.ParseInLocation(localLayout, v, loc)
		if err != nil {
			return nil, err
		}
		return reconcile.At(t.UTC(), tz), nil
	}
}

func value(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func param(p *ical.IANAProperty, key string) string {
	if vs, ok := p.ICalParameters[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func startOf(ev reconcile.CalendarEvent) time.Time {
	if ev.Start == nil {
		return time.Time{}
	}
	return ev.Start.Time()
}

// overlaps reports whether ev intersects window. Events without times are kept.
func overlaps(ev reconcile.CalendarEvent, window reconcile.Window) bool {
	if ev.Start == nil {
		return true
	}
	start := ev.Start.Time()
	end := start
	if ev.End != nil {
		end = ev.End.Time()
	}
	if !end.After(start) {
		end = start.Add(time.Nanosecond)
	}
	return end.After(window.Start) && start.Before(window.End)
}
