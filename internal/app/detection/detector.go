// Package detection maps free text onto at most one catalog feature.
package detection

import (
	"strings"

	"github.com/PabloGalante/friday-agent/internal/catalog"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

type entry struct {
	record    domain.FeatureRecord
	trigger   string
	nameWords []string
}

// Detector matches input against the catalog in catalog order; the first match wins.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	entries []entry
}

func NewDetector(c *catalog.Catalog) *Detector {
	d := &Detector{}
	c.Each(func(f domain.FeatureRecord) bool {
		d.entries = append(d.entries, entry{
			record:    f,
			trigger:   strings.ToLower(f.TriggerCommand),
			nameWords: strings.Fields(strings.ToLower(f.Name)),
		})
		return true
	})
	return d
}

// Detect returns the first feature whose trigger command, or any word of its name,
// is a substring of the case-folded text. Used by the text chat entry point.
func (d *Detector) Detect(text string) (domain.FeatureRecord, bool) {
	return d.match(text, true)
}

// DetectCommand only considers trigger commands. Used by the voice entry point.
func (d *Detector) DetectCommand(text string) (domain.FeatureRecord, bool) {
	return d.match(text, false)
}

func (d *Detector) match(text string, withNames bool) (domain.FeatureRecord, bool) {
	folded := strings.ToLower(text)

	for _, e := range d.entries {
		if e.trigger != "" && strings.Contains(folded, e.trigger) {
			return e.record, true
		}
		if !withNames {
			continue
		}
		for _, w := range e.nameWords {
			if strings.Contains(folded, w) {
				return e.record, true
			}
		}
	}

	return domain.FeatureRecord{}, false
}
