package petstore

import (
	"math"
	"sync"
)

// Progress es el porcentaje (0-100) de una secuencia de subidas.
// Llega a 100 con el último archivo y no antes; una falla a mitad de la
// secuencia lo vuelve a 0.
type Progress struct {
	mu       sync.Mutex
	value    int
	total    int
	done     int
	observer func(int)
}

func NewProgress(observer func(int)) *Progress {
	return &Progress{observer: observer}
}

// Begin arranca una secuencia de n archivos.
func (p *Progress) Begin(n int) {
	p.mu.Lock()
	p.total = n
	p.done = 0
	p.mu.Unlock()
	p.set(0)
}

// Advance marca un archivo más como subido: round(k/n*100).
func (p *Progress) Advance() int {
	p.mu.Lock()
	if p.total <= 0 {
		p.mu.Unlock()
		return p.Value()
	}
	if p.done < p.total {
		p.done++
	}
	v := int(math.Round(float64(p.done) / float64(p.total) * 100))
	if p.done < p.total && v > 99 {
		v = 99
	}
	p.mu.Unlock()

	p.set(v)
	return v
}

func (p *Progress) Fail() {
	p.mu.Lock()
	p.total, p.done = 0, 0
	p.mu.Unlock()
	p.set(0)
}

func (p *Progress) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *Progress) set(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}

	p.mu.Lock()
	p.value = v
	obs := p.observer
	p.mu.Unlock()

	if obs != nil {
		obs(v)
	}
}
