// Package quotes picks a motivational quote for the header.
package quotes

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"
)

// Builtin is used when no quotes file is configured.
var Builtin = []string{
	"The only way to do great work is to love what you do. - Steve Jobs",
	"Success is not final, failure is not fatal: It is the courage to continue that counts. - Winston Churchill",
	"Believe you can and you're halfway there. - Theodore Roosevelt",
	"The only limit to our realization of tomorrow will be our doubts of today. - Franklin D. Roosevelt",
	"The only person you should try to be better than is the person you were yesterday. - Unknown",
}

// Picker selects quotes at random.
type Picker struct {
	rnd    *rand.Rand
	quotes []string
}

// New returns a Picker over quotes seeded with the current time.
// An empty list falls back to Builtin.
func New(quotes []string) *Picker {
	return NewWithSeed(quotes, time.Now().UnixNano())
}

// NewWithSeed is New with a fixed seed.
func NewWithSeed(quotes []string, seed int64) *Picker {
	if len(quotes) == 0 {
		quotes = Builtin
	}
	return &Picker{
		rnd:    rand.New(rand.NewSource(seed)),
		quotes: append([]string(nil), quotes...),
	}
}

// Pick returns one quote.
func (p *Picker) Pick() string {
	return p.quotes[p.rnd.Intn(len(p.quotes))]
}

// Load reads one quote per line, skipping blank lines and # comments.
// An empty path returns Builtin.
func Load(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), Builtin...), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var quotes []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quotes = append(quotes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("quotes file is empty")
	}
	return quotes, nil
}
