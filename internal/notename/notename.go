// Package notename converts MIDI note numbers to human-readable names, for
// use in driver/monitor logging.
package notename

import (
	"fmt"
	"strings"
)

var names = []string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

// FromMIDI converts a MIDI note number (0-127) to a 3-character name like
// "c-1", "c#4". MIDI note 60 = C4 (middle C), note 12 = C0. Out-of-range
// notes return "---".
func FromMIDI(note uint32) string {
	if note > 127 {
		return "---"
	}
	octave := int(note/12) - 1
	name := names[note%12]

	if strings.Contains(name, "#") {
		if octave < 0 {
			return fmt.Sprintf("%s%d", name, -octave)
		}
		return fmt.Sprintf("%s%d", name, octave)
	}
	if octave < 0 {
		return fmt.Sprintf("%s-%d", name, -octave)
	}
	return fmt.Sprintf("%s-%d", name, octave)
}
