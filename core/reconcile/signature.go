package reconcile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// signaturePayload fixes the fields and their order. Attendees, status and other
// server-managed fields are left out on purpose: they change without the user
// editing the event.
type signaturePayload struct {
	Title          string        `json:"title"`
	Start          eventTimeJSON `json:"start"`
	End            eventTimeJSON `json:"end"`
	Location       string        `json:"location"`
	Transparency   string        `json:"transparency"`
	ConferenceLink string        `json:"conferenceLink"`
	Description    string        `json:"description"`
}

// ComputeSignature returns the content fingerprint of event: a hex SHA-256 over the
// canonical JSON of the fields that matter for equality. Two events are unchanged
// iff their signatures are equal.
func ComputeSignature(event CalendarEvent) string {
	transparency := event.Transparency
	if transparency == "" {
		transparency = TransparencyOpaque
	}

	payload := signaturePayload{
		Title:          norm.NFC.String(event.Summary),
		Start:          canonicalEventTime(event.Start),
		End:            canonicalEventTime(event.End),
		Location:       norm.NFC.String(event.Location),
		Transparency:   string(transparency),
		ConferenceLink: event.ConferenceLink,
		Description:    norm.NFC.String(event.Description),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Struct of strings only; Encode cannot fail.
	_ = enc.Encode(payload)

	sum := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(sum[:])
}
