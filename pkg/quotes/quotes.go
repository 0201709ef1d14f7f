// Package quotes serves the /quote command.
package quotes

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Quote is a saying and who said it.
type Quote struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

func (q Quote) String() string {
	return q.Content + " - " + q.Author
}

// Catalogue is the fixed set of quotes.
var Catalogue = []Quote{
	{Content: "The quieter you become, the more you can hear.", Author: "Ram Dass"},
	{Content: "We're all just walking each other home.", Author: "Ram Dass"},
	{Content: "Everything in your life is there as a vehicle for your transformation. Use it!", Author: "Ram Dass"},
	{Content: "Treat everyone you meet like God in drag.", Author: "Ram Dass"},
	{Content: "I would like my life to be a statement of love and compassion—and where it isn't, that's where my work lies.", Author: "Ram Dass"},

	{Content: "Trying to define yourself is like trying to bite your own teeth.", Author: "Alan Watts"},
	{Content: "The only way to make sense out of change is to plunge into it, move with it, and join the dance.", Author: "Alan Watts"},
	{Content: "This is the real secret of life—to be completely engaged with what you are doing in the here and now.", Author: "Alan Watts"},

	{Content: "Realize deeply that the present moment is all you have. Make the NOW the primary focus of your life.", Author: "Eckhart Tolle"},
	{Content: "Life will give you whatever experience is most helpful for the evolution of your consciousness.", Author: "Eckhart Tolle"},

	{Content: "Smile, breathe, and go slowly.", Author: "Thich Nhat Hanh"},
	{Content: "There is no way to happiness - happiness is the way.", Author: "Thich Nhat Hanh"},

	{Content: "Peace comes from within. Do not seek it without.", Author: "Buddha"},
	{Content: "What you think, you become. What you feel, you attract. What you imagine, you create.", Author: "Buddha"},

	{Content: "A journey of a thousand miles begins with a single step.", Author: "Lao Tzu"},

	{Content: "The wound is the place where the Light enters you.", Author: "Rumi"},
	{Content: "Lose yourself completely, return to the source, and you will be folded in.", Author: "Rumi"},
}

// Picker hands out quotes at random, never the same one twice in a row.
type Picker struct {
	mu     sync.Mutex
	rng    *rand.Rand
	quotes []Quote
	last   int
}

// NewPicker seeds a picker from the current time so every run differs.
func NewPicker() *Picker {
	seed := uint64(time.Now().UnixNano())
	return NewPickerWithSource(rand.NewPCG(seed, seed>>1|1), Catalogue)
}

// NewPickerWithSource allows deterministic tests.
func NewPickerWithSource(src rand.Source, quotes []Quote) *Picker {
	return &Picker{
		rng:    rand.New(src),
		quotes: quotes,
		last:   -1,
	}
}

// Random returns a quote. It returns the zero Quote if the picker has none.
func (p *Picker) Random() Quote {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.quotes) == 0 {
		return Quote{}
	}
	i := p.rng.IntN(len(p.quotes))
	if len(p.quotes) > 1 && i == p.last {
		i = (i + 1) % len(p.quotes)
	}
	p.last = i
	return p.quotes[i]
}
