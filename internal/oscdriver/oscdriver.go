// Package oscdriver forwards a phrase.Phrase's emitted events to a synth
// engine listening for OSC messages, the way the teacher drives
// SuperCollider over /instrument messages.
package oscdriver

import (
	"fmt"
	"log"

	"github.com/hypebeast/go-osc/osc"

	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/notename"
	"github.com/schollz/phrasekit/internal/phrase"
)

// Driver sends every (sample_time, event) pair emitted by a phrase.Phrase
// to an OSC-addressable synth as /note or /param messages.
type Driver struct {
	client *osc.Client
	// SamplesPerSec converts sample-time into seconds for the "time" arg
	// on outgoing messages; 0 disables that conversion (messages carry
	// sample_time verbatim instead).
	SamplesPerSec uint32
	// Verbose logs every sent message at debug level, mirroring the
	// teacher's DEBUG-prefixed sendOSCInstrumentMessage logging.
	Verbose bool
}

// New returns a Driver sending to host:port.
func New(host string, port int) *Driver {
	return &Driver{client: osc.NewClient(host, port)}
}

// Visitor returns a phrase.Visitor bound to this Driver, suitable for
// passing directly to phrase.Phrase.RunUntilTime.
func (d *Driver) Visitor() phrase.Visitor {
	return func(sampleTime phrase.SampleTime, event *events.Event) {
		d.Send(sampleTime, event)
	}
}

// Send emits a single event as one or more OSC messages. A nil event
// (a rest) is not sent.
func (d *Driver) Send(sampleTime phrase.SampleTime, event *events.Event) {
	if event == nil {
		return
	}
	switch event.Kind {
	case events.KindNoteEvents:
		d.sendNotes(sampleTime, event.Notes)
	case events.KindParameterChange:
		d.sendParameterChange(sampleTime, event.Parameter)
	}
}

func (d *Driver) sendNotes(sampleTime phrase.SampleTime, notes []*events.NoteEvent) {
	for _, n := range notes {
		if n == nil {
			continue
		}
		msg := osc.NewMessage("/note")
		msg.Append(d.timeArg(sampleTime))
		msg.Append(int32(instrumentID(n.Instrument)))
		msg.Append(int32(n.Note))
		msg.Append(n.Velocity)
		msg.Append(notename.FromMIDI(n.Note))

		if err := d.client.Send(msg); err != nil {
			log.Printf("oscdriver: error sending /note: %v", err)
			continue
		}
		if d.Verbose {
			log.Printf("oscdriver: sent %s", msg)
		}
	}
}

func (d *Driver) sendParameterChange(sampleTime phrase.SampleTime, p events.ParameterChangeEvent) {
	msg := osc.NewMessage("/param")
	msg.Append(d.timeArg(sampleTime))
	msg.Append(int32(instrumentID(p.Parameter)))
	msg.Append(p.Value)

	if err := d.client.Send(msg); err != nil {
		log.Printf("oscdriver: error sending /param: %v", err)
		return
	}
	if d.Verbose {
		log.Printf("oscdriver: sent %s", msg)
	}
}

func (d *Driver) timeArg(sampleTime phrase.SampleTime) string {
	if d.SamplesPerSec == 0 {
		return fmt.Sprintf("%d", sampleTime)
	}
	seconds := float64(sampleTime) / float64(d.SamplesPerSec)
	return fmt.Sprintf("%.6f", seconds)
}

func instrumentID(id *uint64) uint64 {
	if id == nil {
		return 0
	}
	return *id
}
