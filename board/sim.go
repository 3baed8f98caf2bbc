package board

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// SimPin is an output pin without hardware behind it. It remembers every level
// written and optionally logs changes.
type SimPin struct {
	Name string
	Log  logrus.FieldLogger

	mu     sync.Mutex
	levels []bool
}

func (p *SimPin) Set(high bool) {
	p.mu.Lock()
	p.levels = append(p.levels, high)
	p.mu.Unlock()
	if p.Log != nil {
		p.Log.WithFields(logrus.Fields{"pin": p.Name, "high": high}).Debug("Pin set")
	}
}

// Level returns the last level written.
func (p *SimPin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.levels) == 0 {
		return false
	}
	return p.levels[len(p.levels)-1]
}

// Writes returns the number of writes.
func (p *SimPin) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.levels)
}
